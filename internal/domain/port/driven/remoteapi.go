package driven

import (
	"context"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
)

// RemoteAPI defines the driven port for the tenant's person/custom-field/location
// REST resources. Every call carries the caller's bearer token; no call retries.
type RemoteAPI interface {
	// FetchCustomFields returns all custom field definitions in remote order.
	FetchCustomFields(ctx context.Context, token string) ([]model.CustomFieldDefinition, error)

	// FetchPerson returns a fresh snapshot of the person record.
	FetchPerson(ctx context.Context, token, personID string) (*model.Person, error)

	// UpdatePerson sends a partial update. attrs becomes the body's "person" object.
	UpdatePerson(ctx context.Context, token, personID string, attrs map[string]any) error

	// FetchLocations returns the tenant's locations.
	FetchLocations(ctx context.Context, token string) ([]model.Location, error)
}
