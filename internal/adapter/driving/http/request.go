package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON object request body. Numbers decode to float64 and
// strings stay strings, so requested values keep the type the caller sent. An
// empty body yields an empty map.
func decodeBody(r *http.Request) (map[string]any, error) {
	body := map[string]any{}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	return body, nil
}

// present reports whether key carries a value. Absent keys, null and the empty
// string all count as missing.
func present(body map[string]any, key string) bool {
	v, ok := body[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// personID normalizes a person identifier sent as a JSON number or string.
func personID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id), nil
	case float64:
		if id != math.Trunc(id) || id <= 0 {
			return "", errors.New("person_id must be a positive integer")
		}
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	default:
		return "", errors.New("person_id must be a number or string")
	}
}

// fieldID parses an explicit custom field id sent as a JSON number or numeric string.
func fieldID(v any) (int64, error) {
	switch id := v.(type) {
	case float64:
		if id != math.Trunc(id) || id <= 0 || id >= math.MaxInt64 {
			return 0, errors.New("field_id must be a positive integer")
		}
		return int64(id), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil || n <= 0 {
			return 0, errors.New("field_id must be a positive integer")
		}
		return n, nil
	default:
		return 0, errors.New("field_id must be a number or string")
	}
}

// requireParams returns the first key in keys that is missing from body.
func requireParams(body map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if !present(body, k) {
			return k, false
		}
	}
	return "", true
}
