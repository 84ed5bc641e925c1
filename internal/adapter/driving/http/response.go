package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/pike13bridge/internal/application"
	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Details carries the
// remote service's own error payload when there is one.
type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// unauthenticatedResponse tells the caller where to start authorization.
type unauthenticatedResponse struct {
	Error   string `json:"error"`
	AuthURL string `json:"auth_url"`
}

// authorizationErrorResponse relays an OAuth provider error unchanged.
type authorizationErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// UpdateResponse is the JSON representation of a single update.
type UpdateResponse struct {
	MethodUsed  int   `json:"method_used"`
	Success     bool  `json:"success"`
	ResultValue any   `json:"result_value"`
	FieldID     int64 `json:"field_id,omitempty"`
}

// AttemptResponse is one encoding's outcome in a diagnostic run.
type AttemptResponse struct {
	Method      int    `json:"method"`
	Encoding    string `json:"encoding"`
	Success     bool   `json:"success"`
	ResultValue any    `json:"result_value"`
	Error       string `json:"error,omitempty"`
}

// DualTestResponse is the JSON representation of a diagnostic run.
type DualTestResponse struct {
	PersonID          string            `json:"person_id"`
	FieldID           int64             `json:"field_id,omitempty"`
	RequestedValue    any               `json:"requested_value"`
	Results           []AttemptResponse `json:"results"`
	SuccessfulMethods []int             `json:"successful_methods"`
}

// LocationResponse is the JSON representation of a location.
type LocationResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	TimeZone string `json:"time_zone,omitempty"`
	Hidden   bool   `json:"hidden"`
}

// CustomFieldResponse is the JSON representation of a custom field definition.
type CustomFieldResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// CustomFieldsResponse lists definitions alongside the membership field the
// resolver would pick, which is null when none qualifies.
type CustomFieldsResponse struct {
	CustomFields  []CustomFieldResponse `json:"custom_fields"`
	Selected      *CustomFieldResponse  `json:"selected"`
	PreferredName string                `json:"preferred_name,omitempty"`
}

// AuthStatusResponse reports whether a token is available and where it came from.
type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Source        string `json:"source,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toUpdateResponse(res model.UpdateResult) UpdateResponse {
	return UpdateResponse{
		MethodUsed:  int(res.Method),
		Success:     res.Success,
		ResultValue: res.Observed,
		FieldID:     res.FieldID,
	}
}

func toDualTestResponse(res model.DualTestResult, fieldID int64, names map[model.Encoding]string) DualTestResponse {
	results := make([]AttemptResponse, 0, len(res.Attempts))
	for _, a := range res.Attempts {
		ar := AttemptResponse{
			Method:      int(a.Method),
			Encoding:    names[a.Method],
			Success:     a.Success,
			ResultValue: a.Observed,
		}
		if a.Err != nil {
			ar.Error = a.Err.Error()
		}
		results = append(results, ar)
	}

	succeeded := make([]int, 0, len(res.Attempts))
	for _, m := range res.Succeeded() {
		succeeded = append(succeeded, int(m))
	}

	return DualTestResponse{
		PersonID:          res.PersonID,
		FieldID:           fieldID,
		RequestedValue:    res.Requested,
		Results:           results,
		SuccessfulMethods: succeeded,
	}
}

func toLocationResponse(l model.Location) LocationResponse {
	return LocationResponse{
		ID:       l.ID,
		Name:     l.Name,
		Address:  l.Address,
		TimeZone: l.TimeZone,
		Hidden:   l.Hidden,
	}
}

func toCustomFieldResponse(f model.CustomFieldDefinition) CustomFieldResponse {
	return CustomFieldResponse{
		ID:    f.ID,
		Name:  f.Name,
		Score: application.ScoreFieldName(f.Name),
	}
}

var (
	fieldEncodingNames = map[model.Encoding]string{
		model.EncodingMap:   "map",
		model.EncodingArray: "array",
	}
	locationEncodingNames = map[model.Encoding]string{
		model.EncodingLocationID:     "location_id",
		model.EncodingHomeLocationID: "home_location_id",
	}
)
