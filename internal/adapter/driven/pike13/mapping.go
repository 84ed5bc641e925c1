package pike13

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
)

// flexID decodes an identifier sent either as a JSON number or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*f = flexID(n)
	return nil
}

type customFieldJSON struct {
	ID          flexID `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Label       string `json:"label"`
	Title       string `json:"title"`
}

// toModel picks the first non-empty name attribute as the display name.
func (f customFieldJSON) toModel() model.CustomFieldDefinition {
	name := ""
	for _, candidate := range []string{f.Name, f.DisplayName, f.Label, f.Title} {
		if candidate != "" {
			name = candidate
			break
		}
	}
	return model.CustomFieldDefinition{ID: int64(f.ID), Name: name}
}

type customFieldValueJSON struct {
	ID            flexID `json:"id"`
	CustomFieldID flexID `json:"custom_field_id"`
	Name          string `json:"name"`
	Value         any    `json:"value"`
}

type personJSON struct {
	ID             flexID                 `json:"id"`
	Name           string                 `json:"name"`
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	LocationID     any                    `json:"location_id"`
	HomeLocationID any                    `json:"home_location_id"`
	CustomFields   []customFieldValueJSON `json:"custom_fields"`
	Address        json.RawMessage        `json:"address"`
	City           string                 `json:"city"`
	State          string                 `json:"state_code"`
	PostalCode     string                 `json:"postal_code"`
	Country        string                 `json:"country_code"`
}

type addressJSON struct {
	Street     string `json:"address"`
	Street1    string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state_code"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country_code"`
}

func (p personJSON) toModel() *model.Person {
	name := p.Name
	if name == "" {
		name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	fields := make([]model.CustomFieldValue, 0, len(p.CustomFields))
	for _, cf := range p.CustomFields {
		// Entries carry their own id; the definition id lives in custom_field_id
		// when present.
		fieldID := int64(cf.CustomFieldID)
		if fieldID == 0 {
			fieldID = int64(cf.ID)
		}
		fields = append(fields, model.CustomFieldValue{FieldID: fieldID, Name: cf.Name, Value: cf.Value})
	}

	return &model.Person{
		ID:             int64(p.ID),
		Name:           name,
		CustomFields:   fields,
		LocationID:     p.LocationID,
		HomeLocationID: p.HomeLocationID,
		Address:        p.address(),
	}
}

// address accepts the address either as a single street string alongside
// top-level components, or as a nested object.
func (p personJSON) address() model.Address {
	addr := model.Address{City: p.City, State: p.State, PostalCode: p.PostalCode, Country: p.Country}
	if len(p.Address) == 0 {
		return addr
	}

	var street string
	if err := json.Unmarshal(p.Address, &street); err == nil {
		addr.Street = street
		return addr
	}

	var nested addressJSON
	if err := json.Unmarshal(p.Address, &nested); err == nil {
		addr.Street = nested.Street
		if addr.Street == "" {
			addr.Street = nested.Street1
		}
		if nested.City != "" {
			addr.City = nested.City
		}
		if nested.State != "" {
			addr.State = nested.State
		}
		if nested.PostalCode != "" {
			addr.PostalCode = nested.PostalCode
		}
		if nested.Country != "" {
			addr.Country = nested.Country
		}
	}
	return addr
}

type locationJSON struct {
	ID       flexID `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"formatted_address"`
	TimeZone string `json:"time_zone"`
	Hidden   bool   `json:"hidden"`
}
