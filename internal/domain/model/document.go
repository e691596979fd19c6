// Package model contains the documents and jobs passed between layers.
package model

import (
	"maps"
	"strconv"
	"strings"
)

// Collection names of the document store.
const (
	CollectionPrograms    = "programs"
	CollectionVehicles    = "vehicles"
	CollectionSensors     = "sensors"
	CollectionTests       = "tests"
	CollectionStreams     = "streams"
	CollectionEvents      = "events"
	CollectionKPIs        = "kpis"
	CollectionPredictions = "ml_predictions"
	CollectionTestData    = "testData"
	CollectionCompliance  = "compliance"
	CollectionMetrics     = "metrics"
	CollectionPlugins     = "plugins"
	DashboardMetricsDocID = "dashboard"
	FieldID               = "id"
)

// Document is a JSON object held in a collection. Its id lives under "id"
// once it has been read from a store.
type Document map[string]any

// ID returns the document id.
func (d Document) ID() string {
	return d.String(FieldID)
}

// Clone returns a deep copy of nested objects and arrays.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// With returns a copy of d with id set.
func (d Document) With(id string) Document {
	out := maps.Clone(d)
	if out == nil {
		out = Document{}
	}
	out[FieldID] = id
	return out
}

// String reads key as a string. Numbers are formatted.
func (d Document) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Number reads key as a float64, accepting numbers and numeric strings.
func (d Document) Number(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// NumberOr reads key as a number, returning def when it is absent or zero.
func (d Document) NumberOr(key string, def float64) float64 {
	if v, ok := d.Number(key); ok && v != 0 {
		return v
	}
	return def
}

// Has reports whether key is set to a non-empty value.
func (d Document) Has(key string) bool {
	v, ok := d[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

// Object reads key as a nested object.
func (d Document) Object(key string) (map[string]any, bool) {
	switch v := d[key].(type) {
	case map[string]any:
		return v, true
	case Document:
		return v, true
	}
	return nil, false
}
