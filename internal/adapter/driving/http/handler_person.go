package httphandler

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/pike13bridge/internal/application"
)

// personRequest is the validated common part of an update body.
type personRequest struct {
	body     map[string]any
	personID string
}

// parsePersonRequest decodes the body and checks that every key in required is
// present. It writes the 400 response itself and returns false on failure, so
// no credential lookup or remote call happens for incomplete input.
func parsePersonRequest(w http.ResponseWriter, r *http.Request, required ...string) (personRequest, bool) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return personRequest{}, false
	}

	if missing, ok := requireParams(body, append([]string{"person_id"}, required...)...); !ok {
		writeError(w, http.StatusBadRequest, missing+" is required")
		return personRequest{}, false
	}

	id, err := personID(body["person_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return personRequest{}, false
	}

	return personRequest{body: body, personID: id}, true
}

// membershipField returns the explicit field_id from the body when given,
// otherwise the resolver's pick. It writes the error response on failure.
func (h *Handler) membershipField(w http.ResponseWriter, r *http.Request, req personRequest, token string) (int64, bool) {
	if present(req.body, "field_id") {
		id, err := fieldID(req.body["field_id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return 0, false
		}
		return id, true
	}

	field, err := h.resolver.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, application.ErrFieldNotFound) {
			writeError(w, http.StatusNotFound, "USA Fencing membership custom field not found")
			return 0, false
		}
		h.writeRemoteError(w, r, "failed to fetch custom fields", err)
		return 0, false
	}

	h.logger.Debug("membership field resolved", "field_id", field.ID, "name", field.Name)
	return field.ID, true
}

// UpdateMembership sets the membership number custom field on a person.
func (h *Handler) UpdateMembership(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePersonRequest(w, r, "value")
	if !ok {
		return
	}
	cred, ok := h.credential(w, r)
	if !ok {
		return
	}
	fid, ok := h.membershipField(w, r, req, cred.AccessToken)
	if !ok {
		return
	}

	res, err := h.engine.UpdateField(r.Context(), cred.AccessToken, req.personID, fid, req.body["value"])
	if err != nil {
		h.writeRemoteError(w, r, "failed to update membership", err)
		return
	}

	h.logger.Info("membership updated",
		"person_id", req.personID,
		"field_id", fid,
		"method", int(res.Method),
		"success", res.Success,
	)
	writeJSON(w, http.StatusOK, toUpdateResponse(res))
}

// UpdateLocation sets a person's location.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePersonRequest(w, r, "location_id")
	if !ok {
		return
	}
	cred, ok := h.credential(w, r)
	if !ok {
		return
	}

	res, err := h.engine.UpdateLocation(r.Context(), cred.AccessToken, req.personID, req.body["location_id"])
	if err != nil {
		h.writeRemoteError(w, r, "failed to update location", err)
		return
	}

	h.logger.Info("location updated", "person_id", req.personID, "success", res.Success)
	writeJSON(w, http.StatusOK, toUpdateResponse(res))
}

// TestFieldMethods writes the membership value with both custom field
// encodings and reports each outcome.
func (h *Handler) TestFieldMethods(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePersonRequest(w, r, "value")
	if !ok {
		return
	}
	cred, ok := h.credential(w, r)
	if !ok {
		return
	}
	fid, ok := h.membershipField(w, r, req, cred.AccessToken)
	if !ok {
		return
	}

	res := h.engine.TestFieldMethods(r.Context(), cred.AccessToken, req.personID, fid, req.body["value"])
	writeJSON(w, http.StatusOK, toDualTestResponse(res, fid, fieldEncodingNames))
}

// TestLocationMethods writes the location with both location attributes and
// reports each outcome.
func (h *Handler) TestLocationMethods(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePersonRequest(w, r, "location_id")
	if !ok {
		return
	}
	cred, ok := h.credential(w, r)
	if !ok {
		return
	}

	res := h.engine.TestLocationMethods(r.Context(), cred.AccessToken, req.personID, req.body["location_id"])
	writeJSON(w, http.StatusOK, toDualTestResponse(res, 0, locationEncodingNames))
}

// ListLocations relays the tenant's locations.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.credential(w, r)
	if !ok {
		return
	}

	locations, err := h.api.FetchLocations(r.Context(), cred.AccessToken)
	if err != nil {
		h.writeRemoteError(w, r, "failed to fetch locations", err)
		return
	}

	resp := make([]LocationResponse, 0, len(locations))
	for _, l := range locations {
		resp = append(resp, toLocationResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": resp})
}

// ListCustomFields relays the custom field definitions with their heuristic
// scores and the field that membership updates would target.
func (h *Handler) ListCustomFields(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.credential(w, r)
	if !ok {
		return
	}

	fields, err := h.api.FetchCustomFields(r.Context(), cred.AccessToken)
	if err != nil {
		h.writeRemoteError(w, r, "failed to fetch custom fields", err)
		return
	}

	resp := CustomFieldsResponse{
		CustomFields:  make([]CustomFieldResponse, 0, len(fields)),
		PreferredName: h.resolver.PreferredName(),
	}
	for _, f := range fields {
		resp.CustomFields = append(resp.CustomFields, toCustomFieldResponse(f))
	}
	if selected, found := application.SelectField(fields, h.resolver.PreferredName()); found {
		sel := toCustomFieldResponse(selected)
		resp.Selected = &sel
	}

	writeJSON(w, http.StatusOK, resp)
}
