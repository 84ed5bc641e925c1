package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/pike13bridge/internal/application"
	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
)

func defs(names ...string) []model.CustomFieldDefinition {
	out := make([]model.CustomFieldDefinition, 0, len(names))
	for i, n := range names {
		out = append(out, model.CustomFieldDefinition{ID: int64(100 + i), Name: n})
	}
	return out
}

func TestScoreFieldName(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		// 10 exact + 5 usa&fenc + 3 membership + 2 member + 1 number
		{"USA Fencing Membership Number", 21},
		{"usa fencing membership number", 21},
		// 8 exact + 4 usfa + 1 number
		{"USFA Number", 13},
		// 5 usa&fenc + 3 membership + 2 member
		{"USA Fencing Membership", 10},
		{"USFA ID", 5},
		{"Member ID", 3},
		{"Membership Level", 5},
		// "notes" contains "no"
		{"Notes", 1},
		{"Shirt Size", 0},
		{"Color", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, application.ScoreFieldName(tt.name))
		})
	}
}

func TestSelectField_HighestScoreWins(t *testing.T) {
	fields := defs("Notes", "USFA Number", "USA Fencing Membership Number")

	got, ok := application.SelectField(fields, "")

	require.True(t, ok)
	assert.Equal(t, "USA Fencing Membership Number", got.Name)
	assert.Equal(t, int64(102), got.ID)
}

func TestSelectField_TieKeepsFirst(t *testing.T) {
	fields := defs("Member A", "Member B")

	got, ok := application.SelectField(fields, "")

	require.True(t, ok)
	assert.Equal(t, "Member A", got.Name)
}

func TestSelectField_AllZeroIsNotFound(t *testing.T) {
	_, ok := application.SelectField(defs("Shirt Size", "Color", "Age"), "")
	assert.False(t, ok)

	_, ok = application.SelectField(nil, "")
	assert.False(t, ok)
}

func TestSelectField_PreferredNameOverridesScores(t *testing.T) {
	fields := defs("USA Fencing Membership Number", "Fencer Ref")

	got, ok := application.SelectField(fields, "Fencer Ref")

	require.True(t, ok)
	assert.Equal(t, "Fencer Ref", got.Name)
}

func TestSelectField_PreferredNameIsCaseSensitive(t *testing.T) {
	fields := defs("Shirt Size", "USFA Number")

	got, ok := application.SelectField(fields, "shirt size")

	require.True(t, ok)
	assert.Equal(t, "USFA Number", got.Name, "case mismatch falls through to the heuristic")
}

func TestSelectField_PreferredNameMissFallsThroughToNotFound(t *testing.T) {
	_, ok := application.SelectField(defs("Shirt Size"), "Fencer Ref")
	assert.False(t, ok)
}

func TestFieldResolver_Resolve(t *testing.T) {
	remote := &fakeRemote{fields: defs("Notes", "USFA Number")}
	resolver := application.NewFieldResolver(remote, "")

	got, err := resolver.Resolve(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, "USFA Number", got.Name)
	assert.Equal(t, 1, remote.fieldsCalls)

	_, err = resolver.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, remote.fieldsCalls, "definitions are fetched on every call")
}

func TestFieldResolver_NotFound(t *testing.T) {
	resolver := application.NewFieldResolver(&fakeRemote{fields: defs("Shirt Size")}, "")

	_, err := resolver.Resolve(context.Background(), "tok")

	require.ErrorIs(t, err, application.ErrFieldNotFound)
}

func TestFieldResolver_RemoteError(t *testing.T) {
	resolver := application.NewFieldResolver(&fakeRemote{fieldsErr: errTransport}, "Fencer Ref")

	_, err := resolver.Resolve(context.Background(), "tok")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errTransport))
	assert.False(t, errors.Is(err, application.ErrFieldNotFound))
	assert.Equal(t, "Fencer Ref", resolver.PreferredName())
}
