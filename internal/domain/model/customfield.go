package model

// CustomFieldDefinition is a tenant-configured attribute that can be set on a person.
// Name is the first non-empty of the remote's alternate name attributes and is
// used for matching only.
type CustomFieldDefinition struct {
	ID   int64
	Name string
}

// CustomFieldValue is one custom-field entry on a person record. Value holds the
// decoded JSON value exactly as the remote returned it.
type CustomFieldValue struct {
	FieldID int64
	Name    string
	Value   any
}
