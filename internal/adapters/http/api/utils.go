package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

// decodeObject reads a JSON object body. An empty body decodes to an empty
// object so optional bodies need no special casing.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, WrapKind("invalid JSON body", ErrBadRequest, err)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

// truthy follows JavaScript truthiness, which decides whether a required
// field counts as supplied.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	}
	return true
}

// stringField reads an optional string field, falling back to def.
func stringField(body map[string]any, key, def string) string {
	if s, ok := body[key].(string); ok {
		return s
	}
	return def
}

// parseLimit reads the limit query parameter. Absent means def; anything
// that is not a positive integer is an error. Values above maxLimit are capped.
func parseLimit(r *http.Request, def, maxLimit int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return min(def, maxLimit), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return min(n, maxLimit), nil
}
