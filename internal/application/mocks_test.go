package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

var errTransport = errors.New("connection reset by peer")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRemote implements driven.RemoteAPI over an in-memory person. Each
// behavior knob decides how a given update shape is handled.
type fakeRemote struct {
	mu sync.Mutex

	fields    []model.CustomFieldDefinition
	fieldsErr error
	person    model.Person
	fetchErr  error
	locations []model.Location

	// arrayMode / mapMode: "apply" stores the value, "ignore" accepts without
	// storing, "fail" returns errTransport. Empty means "apply".
	arrayMode string
	mapMode   string
	// locationMode / homeLocationMode follow the same convention.
	locationMode     string
	homeLocationMode string

	updates     []map[string]any
	fetchCalls  int
	fieldsCalls int
}

var _ driven.RemoteAPI = (*fakeRemote)(nil)

func (f *fakeRemote) FetchCustomFields(_ context.Context, _ string) ([]model.CustomFieldDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldsCalls++
	return f.fields, f.fieldsErr
}

func (f *fakeRemote) FetchPerson(_ context.Context, _ string, _ string) (*model.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p := f.person
	p.CustomFields = append([]model.CustomFieldValue(nil), f.person.CustomFields...)
	return &p, nil
}

func (f *fakeRemote) UpdatePerson(_ context.Context, _ string, _ string, attrs map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, attrs)

	if v, ok := attrs["location_id"]; ok {
		return f.apply(f.locationMode, func() { f.person.LocationID = v })
	}
	if v, ok := attrs["home_location_id"]; ok {
		return f.apply(f.homeLocationMode, func() { f.person.HomeLocationID = v })
	}

	switch cf := attrs["custom_fields"].(type) {
	case []map[string]any:
		entry := cf[0]
		return f.apply(f.arrayMode, func() { f.setField(entry["id"].(int64), entry["value"]) })
	case map[string]any:
		return f.apply(f.mapMode, func() {
			for k, v := range cf {
				id, _ := strconv.ParseInt(k, 10, 64)
				f.setField(id, v)
			}
		})
	}
	return errors.New("unexpected update shape")
}

func (f *fakeRemote) FetchLocations(_ context.Context, _ string) ([]model.Location, error) {
	return f.locations, nil
}

func (f *fakeRemote) apply(mode string, set func()) error {
	switch mode {
	case "fail":
		return errTransport
	case "ignore":
		return nil
	default:
		set()
		return nil
	}
}

func (f *fakeRemote) setField(id int64, v any) {
	for i := range f.person.CustomFields {
		if f.person.CustomFields[i].FieldID == id {
			f.person.CustomFields[i].Value = v
			return
		}
	}
	f.person.CustomFields = append(f.person.CustomFields, model.CustomFieldValue{FieldID: id, Value: v})
}

// memTokenStore implements driven.TokenStore in memory with injectable errors.
type memTokenStore struct {
	token   string
	loadErr error
	saveErr error
	saves   int
}

var _ driven.TokenStore = (*memTokenStore)(nil)

func (m *memTokenStore) Save(_ context.Context, token string) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memTokenStore) Load(_ context.Context) (string, error) {
	return m.token, m.loadErr
}
