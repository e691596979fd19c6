package repository

import (
	"cmp"
	"strings"

	"github.com/sves-daq/backend/internal/domain/model"
)

// matches applies the filters of q to a document.
func matches(doc model.Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := doc[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	if x, ok := a.(string); ok {
		y, ok := b.(string)
		return ok && x == y
	}
	if x, ok := a.(bool); ok {
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// compareValues orders numbers before strings, each by natural order.
func compareValues(a, b any) int {
	x, xNum := number(a)
	y, yNum := number(b)
	switch {
	case xNum && yNum:
		return cmp.Compare(x, y)
	case xNum:
		return -1
	case yNum:
		return 1
	}
	xs, _ := a.(string)
	ys, _ := b.(string)
	return strings.Compare(xs, ys)
}
