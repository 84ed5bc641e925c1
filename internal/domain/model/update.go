package model

// Encoding identifies the wire representation used for a person update. The
// numbering matches what existing callers of the update endpoints expect.
type Encoding int

const (
	// EncodingMap writes custom fields as an object keyed by field id.
	EncodingMap Encoding = 1
	// EncodingArray writes custom fields as a list of {id, value} entries.
	EncodingArray Encoding = 2
)

const (
	// EncodingLocationID writes the person's location_id attribute.
	EncodingLocationID Encoding = 1
	// EncodingHomeLocationID writes the person's home_location_id attribute.
	EncodingHomeLocationID Encoding = 2
)

// UpdateResult describes one write-then-verify attempt against a person record.
// Success is true only when Observed strictly equals the requested value.
type UpdateResult struct {
	Method   Encoding
	FieldID  int64 // Zero for location updates.
	Observed any
	Success  bool
	Err      error // Set when the write or verification read failed.
}

// DualTestResult holds the independent outcomes of both encodings for one
// diagnostic run, ordered as attempted.
type DualTestResult struct {
	PersonID  string
	Requested any
	Attempts  []UpdateResult
}

// Succeeded returns the methods whose attempt was verified.
func (d DualTestResult) Succeeded() []Encoding {
	methods := []Encoding{}
	for _, a := range d.Attempts {
		if a.Success {
			methods = append(methods, a.Method)
		}
	}
	return methods
}
