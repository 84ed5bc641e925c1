// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// LandingViewModel holds presentation-ready data for the landing page.
type LandingViewModel struct {
	Title         string
	Authenticated bool
	TokenSource   string // "session", "store", or empty when not authenticated.
	LoginPath     string
	FieldName     string // Configured exact field name; empty means heuristic matching.
	UsageHTML     string // Sanitized HTML rendered from the usage notes.
}

// StatusLabel returns the connection line shown under the heading.
func (v LandingViewModel) StatusLabel() string {
	switch {
	case !v.Authenticated:
		return "Not connected"
	case v.TokenSource == "session":
		return "Connected (this browser)"
	default:
		return "Connected (stored token)"
	}
}
