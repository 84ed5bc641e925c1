package application_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/pike13bridge/internal/application"
	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
)

const membershipFieldID int64 = 11

func newPerson() model.Person {
	return model.Person{
		ID:   13156858,
		Name: "Ada Lovelace",
		CustomFields: []model.CustomFieldValue{
			{FieldID: membershipFieldID, Name: "USA Fencing Membership Number", Value: "100000000"},
		},
		LocationID: float64(1),
		Address:    model.Address{City: "Springfield", State: "IL"},
	}
}

func TestUpdateField_ArrayFormVerified(t *testing.T) {
	remote := &fakeRemote{person: newPerson()}
	engine := application.NewUpdateEngine(remote, discardLogger())

	result, err := engine.UpdateField(context.Background(), "tok", "13156858", membershipFieldID, "101118977")

	require.NoError(t, err)
	assert.Equal(t, model.EncodingArray, result.Method)
	assert.True(t, result.Success)
	assert.Equal(t, "101118977", result.Observed)
	assert.Equal(t, membershipFieldID, result.FieldID)

	require.Len(t, remote.updates, 1, "map form is not attempted after a clean array write")
	assert.Equal(t, []map[string]any{{"id": membershipFieldID, "value": "101118977"}}, remote.updates[0]["custom_fields"])
	assert.Equal(t, 1, remote.fetchCalls)
}

func TestUpdateField_ArrayErrorFallsBackToMap(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), arrayMode: "fail"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	result, err := engine.UpdateField(context.Background(), "tok", "13156858", membershipFieldID, "101118977")

	require.NoError(t, err)
	assert.Equal(t, model.EncodingMap, result.Method)
	assert.True(t, result.Success)

	require.Len(t, remote.updates, 2)
	assert.Equal(t, map[string]any{"11": "101118977"}, remote.updates[1]["custom_fields"])
}

func TestUpdateField_ArrayMismatchDoesNotFallBack(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), arrayMode: "ignore"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	result, err := engine.UpdateField(context.Background(), "tok", "13156858", membershipFieldID, "101118977")

	require.NoError(t, err)
	assert.Equal(t, model.EncodingArray, result.Method)
	assert.False(t, result.Success)
	assert.Equal(t, "100000000", result.Observed)
	assert.Len(t, remote.updates, 1)
}

func TestUpdateField_VerifyReadErrorFallsBackToMap(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), fetchErr: errTransport}
	engine := application.NewUpdateEngine(remote, discardLogger())

	_, err := engine.UpdateField(context.Background(), "tok", "13156858", membershipFieldID, "101118977")

	require.ErrorIs(t, err, errTransport)
	assert.Len(t, remote.updates, 2, "a failed verification read counts as a failed array attempt")
}

func TestUpdateField_BothFail(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), arrayMode: "fail", mapMode: "fail"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	_, err := engine.UpdateField(context.Background(), "tok", "13156858", membershipFieldID, "101118977")

	require.ErrorIs(t, err, errTransport)
	assert.Len(t, remote.updates, 2)
}

func TestUpdateField_StrictEquality(t *testing.T) {
	tests := []struct {
		name    string
		stored  any
		request any
		want    bool
	}{
		{"same string", "5", "5", true},
		{"string vs number", "5", float64(5), false},
		{"number vs string", float64(5), "5", false},
		{"same number", float64(5), float64(5), true},
		{"null vs empty string", nil, "", false},
		{"bool", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{person: newPerson(), arrayMode: "ignore"}
			remote.person.CustomFields[0].Value = tt.stored
			engine := application.NewUpdateEngine(remote, discardLogger())

			result, err := engine.UpdateField(context.Background(), "tok", "1", membershipFieldID, tt.request)

			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Success)
		})
	}
}

func TestUpdateField_FieldAbsentAfterWrite(t *testing.T) {
	remote := &fakeRemote{person: model.Person{ID: 1}, arrayMode: "ignore"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	result, err := engine.UpdateField(context.Background(), "tok", "1", membershipFieldID, "42")

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, result.Observed)
}

func TestUpdateLocation(t *testing.T) {
	remote := &fakeRemote{person: newPerson()}
	engine := application.NewUpdateEngine(remote, discardLogger())

	result, err := engine.UpdateLocation(context.Background(), "tok", "1", float64(7))

	require.NoError(t, err)
	assert.Equal(t, model.EncodingLocationID, result.Method)
	assert.True(t, result.Success)
	assert.Equal(t, float64(7), result.Observed)
	require.Len(t, remote.updates, 1)
	assert.Equal(t, map[string]any{"location_id": float64(7)}, remote.updates[0])
}

func TestUpdateLocation_NoFallback(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), locationMode: "fail"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	_, err := engine.UpdateLocation(context.Background(), "tok", "1", float64(7))

	require.ErrorIs(t, err, errTransport)
	assert.Len(t, remote.updates, 1, "home_location_id is never tried on the plain update path")
}

func TestTestFieldMethods_RunsBothEncodings(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), arrayMode: "ignore"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	out := engine.TestFieldMethods(context.Background(), "tok", "13156858", membershipFieldID, "101118977")

	assert.Equal(t, "13156858", out.PersonID)
	assert.Equal(t, "101118977", out.Requested)
	require.Len(t, out.Attempts, 2)
	assert.Equal(t, model.EncodingArray, out.Attempts[0].Method)
	assert.False(t, out.Attempts[0].Success)
	assert.Equal(t, model.EncodingMap, out.Attempts[1].Method)
	assert.True(t, out.Attempts[1].Success)
	assert.Equal(t, []model.Encoding{model.EncodingMap}, out.Succeeded())
	assert.Len(t, remote.updates, 2)
}

func TestTestFieldMethods_ErrorDoesNotStopOtherAttempt(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), arrayMode: "fail"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	out := engine.TestFieldMethods(context.Background(), "tok", "1", membershipFieldID, "101118977")

	require.Len(t, out.Attempts, 2)
	assert.ErrorIs(t, out.Attempts[0].Err, errTransport)
	assert.False(t, out.Attempts[0].Success)
	assert.NoError(t, out.Attempts[1].Err)
	assert.True(t, out.Attempts[1].Success)
}

func TestTestFieldMethods_NeitherSucceeds(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), arrayMode: "ignore", mapMode: "ignore"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	out := engine.TestFieldMethods(context.Background(), "tok", "1", membershipFieldID, "101118977")

	assert.Empty(t, out.Succeeded())
	assert.NotNil(t, out.Succeeded())
}

func TestTestLocationMethods(t *testing.T) {
	remote := &fakeRemote{person: newPerson(), locationMode: "ignore"}
	engine := application.NewUpdateEngine(remote, discardLogger())

	out := engine.TestLocationMethods(context.Background(), "tok", "1", float64(9))

	require.Len(t, out.Attempts, 2)
	assert.Equal(t, model.EncodingLocationID, out.Attempts[0].Method)
	assert.False(t, out.Attempts[0].Success)
	assert.Equal(t, float64(1), out.Attempts[0].Observed)
	assert.Equal(t, model.EncodingHomeLocationID, out.Attempts[1].Method)
	assert.True(t, out.Attempts[1].Success)
	assert.Equal(t, map[string]any{"home_location_id": float64(9)}, remote.updates[1])
}

func TestUpdateEngine_VerificationLogsIncludePerson(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	engine := application.NewUpdateEngine(&fakeRemote{person: newPerson()}, logger)

	_, err := engine.UpdateField(context.Background(), "tok", "13156858", membershipFieldID, "101118977")
	require.NoError(t, err)
	_, err = engine.UpdateLocation(context.Background(), "tok", "13156858", float64(2))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="custom field update verified"`)
	assert.Contains(t, out, `msg="location update verified"`)
	assert.Contains(t, out, `person="Ada Lovelace"`)
	assert.Contains(t, out, "city=Springfield")
}
