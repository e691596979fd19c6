package prediction

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Features is a bag of named numeric observations. Any key may be absent.
type Features map[string]float64

// FeaturesFromJSON converts a decoded JSON object. Numbers and numeric
// strings are kept; every other value is dropped.
func FeaturesFromJSON(raw map[string]any) Features {
	f := make(Features, len(raw))
	for k, v := range raw {
		if n, ok := Number(v); ok {
			f[k] = n
		}
	}
	return f
}

// Number coerces a decoded JSON value to a float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Lookup returns the raw value of key, including zero.
func (f Features) Lookup(key string) (float64, bool) {
	v, ok := f[key]
	return v, ok
}

// observed reports a usable value for a formula input. Zero and NaN count
// as not observed, so the formula falls back to its default sub-score.
func (f Features) observed(key string) (float64, bool) {
	v, ok := f[key]
	if !ok || v == 0 || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// score applies fn to the observed feature or returns def.
func (f Features) score(key string, def float64, fn func(float64) float64) float64 {
	v, ok := f.observed(key)
	if !ok {
		return def
	}
	return fn(v)
}
