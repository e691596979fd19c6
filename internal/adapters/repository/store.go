// Package repository defines the document store and its implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/pkg/metrics"
)

// Filter matches documents whose Field equals Value. Numbers compare
// numerically; strings compare exactly. The field "id" matches the
// document id.
type Filter struct {
	Field string
	Value any
}

// Query selects documents from one collection.
type Query struct {
	Filters []Filter
	// OrderBy names the field to sort by. Documents without the field are
	// left out. Empty sorts by id.
	OrderBy    string
	Descending bool
	// Limit caps the result; zero or less is unlimited.
	Limit int
}

// Where appends an equality filter.
func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// Store provides document access keyed by collection and id.
type Store interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (model.Document, error)
	List(ctx context.Context, collection string, q Query) ([]model.Document, error)
	// Add stores doc under a new id and returns it.
	Add(ctx context.Context, collection string, doc model.Document) (string, error)
	// Set creates or replaces the document. With merge, top-level fields of
	// doc are written over the existing ones.
	Set(ctx context.Context, collection, id string, doc model.Document, merge bool) error
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validate(collection string, q Query) error {
	if !fieldPattern.MatchString(collection) {
		return fmt.Errorf("%w: collection %q", ErrInvalidQuery, collection)
	}
	if q.OrderBy != "" && !fieldPattern.MatchString(q.OrderBy) {
		return fmt.Errorf("%w: order field %q", ErrInvalidQuery, q.OrderBy)
	}
	for _, f := range q.Filters {
		if !fieldPattern.MatchString(f.Field) {
			return fmt.Errorf("%w: filter field %q", ErrInvalidQuery, f.Field)
		}
	}
	return nil
}

// observe records latency and failure of one store call. A missing
// document is not a failure.
func observe(op, collection string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation(op, collection, float64(time.Since(start).Microseconds())/1000, err)
}

// stripID drops the id key so it is not stored inside the body.
func stripID(doc model.Document) model.Document {
	out := doc.Clone()
	if out == nil {
		out = model.Document{}
	}
	delete(out, model.FieldID)
	return out
}
