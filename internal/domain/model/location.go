package model

// Location is a business location as listed by the remote API.
type Location struct {
	ID       int64
	Name     string
	Address  string
	TimeZone string
	Hidden   bool
}
