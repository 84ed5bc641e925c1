package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// ErrFieldNotFound is returned when no custom field matches the preferred name
// and every heuristic score is zero.
var ErrFieldNotFound = errors.New("membership custom field not found")

// FieldResolver identifies the custom field holding the USA Fencing membership
// number. Definitions are fetched on every call.
type FieldResolver struct {
	api           driven.RemoteAPI
	preferredName string
}

// NewFieldResolver creates a FieldResolver. preferredName may be empty.
func NewFieldResolver(api driven.RemoteAPI, preferredName string) *FieldResolver {
	return &FieldResolver{api: api, preferredName: preferredName}
}

// PreferredName returns the configured exact display name, if any.
func (r *FieldResolver) PreferredName() string {
	return r.preferredName
}

// Resolve fetches the field definitions and selects the membership field.
func (r *FieldResolver) Resolve(ctx context.Context, token string) (model.CustomFieldDefinition, error) {
	fields, err := r.api.FetchCustomFields(ctx, token)
	if err != nil {
		return model.CustomFieldDefinition{}, fmt.Errorf("resolving membership field: %w", err)
	}

	field, ok := SelectField(fields, r.preferredName)
	if !ok {
		return model.CustomFieldDefinition{}, ErrFieldNotFound
	}
	return field, nil
}

// SelectField returns the first field whose display name equals preferredName
// exactly. Failing that, it returns the field with the strictly highest
// ScoreFieldName, keeping the earliest on ties, provided that score is above zero.
func SelectField(fields []model.CustomFieldDefinition, preferredName string) (model.CustomFieldDefinition, bool) {
	if preferredName != "" {
		for _, f := range fields {
			if f.Name == preferredName {
				return f, true
			}
		}
	}

	best := -1
	bestScore := 0
	for i, f := range fields {
		if score := ScoreFieldName(f.Name); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return model.CustomFieldDefinition{}, false
	}
	return fields[best], true
}

// ScoreFieldName rates how likely a display name is to be the membership number
// field. Rules are additive over the lower-cased name; deployed tenants rely on
// these exact weights.
func ScoreFieldName(name string) int {
	n := strings.ToLower(name)
	score := 0

	if n == "usa fencing membership number" {
		score += 10
	}
	if n == "usfa number" {
		score += 8
	}
	if strings.Contains(n, "usa") && strings.Contains(n, "fenc") {
		score += 5
	}
	if strings.Contains(n, "usfa") {
		score += 4
	}
	if strings.Contains(n, "membership") {
		score += 3
	}
	if strings.Contains(n, "member") {
		score += 2
	}
	if strings.Contains(n, "number") || strings.Contains(n, "no") || strings.Contains(n, "id") {
		score++
	}

	return score
}
