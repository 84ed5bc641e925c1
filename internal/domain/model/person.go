package model

// Person is a transient snapshot of a remote person record. Location ids keep
// the decoded JSON type so writes can be verified by strict comparison.
type Person struct {
	ID             int64
	Name           string
	CustomFields   []CustomFieldValue
	LocationID     any
	HomeLocationID any
	Address        Address
}

// Address holds the postal address components of a person.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// CustomField returns the entry for fieldID, or nil when the person has no value for it.
func (p *Person) CustomField(fieldID int64) *CustomFieldValue {
	for i := range p.CustomFields {
		if p.CustomFields[i].FieldID == fieldID {
			return &p.CustomFields[i]
		}
	}
	return nil
}
