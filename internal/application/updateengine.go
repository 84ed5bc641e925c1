package application

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// UpdateEngine writes person attributes and verifies each write by re-reading
// the person. A write always completes before its verification read starts.
type UpdateEngine struct {
	api    driven.RemoteAPI
	logger *slog.Logger
}

// NewUpdateEngine creates an UpdateEngine over the given remote API.
func NewUpdateEngine(api driven.RemoteAPI, logger *slog.Logger) *UpdateEngine {
	return &UpdateEngine{api: api, logger: logger}
}

// UpdateField sets a custom field value, trying the array encoding first. The
// map encoding is used only when the array attempt returns an error; an array
// attempt that completes but does not verify is returned as is, with
// Success=false.
func (e *UpdateEngine) UpdateField(ctx context.Context, token, personID string, fieldID int64, value any) (model.UpdateResult, error) {
	result, err := e.attemptField(ctx, token, personID, fieldID, value, model.EncodingArray)
	if err == nil {
		return result, nil
	}

	e.logger.Warn("array-form custom field update failed, retrying with map form",
		"person_id", personID,
		"field_id", fieldID,
		"error", err,
	)

	return e.attemptField(ctx, token, personID, fieldID, value, model.EncodingMap)
}

// UpdateLocation sets the person's location_id and verifies it. There is no
// fallback encoding on this path.
func (e *UpdateEngine) UpdateLocation(ctx context.Context, token, personID string, locationID any) (model.UpdateResult, error) {
	return e.attemptLocation(ctx, token, personID, locationID, model.EncodingLocationID)
}

// TestFieldMethods runs both custom field encodings independently, array form
// first, and reports each outcome. An error in one attempt is recorded on that
// attempt and does not stop the other.
func (e *UpdateEngine) TestFieldMethods(ctx context.Context, token, personID string, fieldID int64, value any) model.DualTestResult {
	out := model.DualTestResult{PersonID: personID, Requested: value}
	for _, enc := range []model.Encoding{model.EncodingArray, model.EncodingMap} {
		result, err := e.attemptField(ctx, token, personID, fieldID, value, enc)
		if err != nil {
			e.logger.Info("diagnostic custom field attempt failed", "method", int(enc), "person_id", personID, "error", err)
			result = model.UpdateResult{Method: enc, FieldID: fieldID, Err: err}
		}
		out.Attempts = append(out.Attempts, result)
	}
	return out
}

// TestLocationMethods runs both location encodings independently, location_id
// first, and reports each outcome.
func (e *UpdateEngine) TestLocationMethods(ctx context.Context, token, personID string, locationID any) model.DualTestResult {
	out := model.DualTestResult{PersonID: personID, Requested: locationID}
	for _, enc := range []model.Encoding{model.EncodingLocationID, model.EncodingHomeLocationID} {
		result, err := e.attemptLocation(ctx, token, personID, locationID, enc)
		if err != nil {
			e.logger.Info("diagnostic location attempt failed", "method", int(enc), "person_id", personID, "error", err)
			result = model.UpdateResult{Method: enc, Err: err}
		}
		out.Attempts = append(out.Attempts, result)
	}
	return out
}

func (e *UpdateEngine) attemptField(ctx context.Context, token, personID string, fieldID int64, value any, enc model.Encoding) (model.UpdateResult, error) {
	var attrs map[string]any
	switch enc {
	case model.EncodingArray:
		attrs = map[string]any{
			"custom_fields": []map[string]any{{"id": fieldID, "value": value}},
		}
	case model.EncodingMap:
		attrs = map[string]any{
			"custom_fields": map[string]any{strconv.FormatInt(fieldID, 10): value},
		}
	default:
		return model.UpdateResult{}, fmt.Errorf("unknown custom field encoding %d", enc)
	}

	if err := e.api.UpdatePerson(ctx, token, personID, attrs); err != nil {
		return model.UpdateResult{}, err
	}

	person, err := e.api.FetchPerson(ctx, token, personID)
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("verifying custom field %d: %w", fieldID, err)
	}

	var observed any
	if entry := person.CustomField(fieldID); entry != nil {
		observed = entry.Value
	}

	result := model.UpdateResult{
		Method:   enc,
		FieldID:  fieldID,
		Observed: observed,
		Success:  strictEqual(observed, value),
	}
	e.logger.Debug("custom field update verified",
		"method", int(enc),
		"person_id", personID,
		"person", person.Name,
		"field_id", fieldID,
		"success", result.Success,
	)
	return result, nil
}

func (e *UpdateEngine) attemptLocation(ctx context.Context, token, personID string, locationID any, enc model.Encoding) (model.UpdateResult, error) {
	var attr string
	switch enc {
	case model.EncodingLocationID:
		attr = "location_id"
	case model.EncodingHomeLocationID:
		attr = "home_location_id"
	default:
		return model.UpdateResult{}, fmt.Errorf("unknown location encoding %d", enc)
	}

	if err := e.api.UpdatePerson(ctx, token, personID, map[string]any{attr: locationID}); err != nil {
		return model.UpdateResult{}, err
	}

	person, err := e.api.FetchPerson(ctx, token, personID)
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("verifying %s: %w", attr, err)
	}

	observed := person.LocationID
	if enc == model.EncodingHomeLocationID {
		observed = person.HomeLocationID
	}

	result := model.UpdateResult{
		Method:   enc,
		Observed: observed,
		Success:  strictEqual(observed, locationID),
	}
	e.logger.Debug("location update verified",
		"method", int(enc),
		"person_id", personID,
		"person", person.Name,
		"city", person.Address.City,
		"state", person.Address.State,
		"success", result.Success,
	)
	return result, nil
}

// strictEqual compares two decoded JSON values without coercion: the string
// "5" and the number 5 differ. Composite values never compare equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	switch ta.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer, reflect.Interface:
		return false
	}
	return a == b
}
