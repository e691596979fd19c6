package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sves-daq/backend/internal/domain/model"
)

type memDoc struct {
	seq  uint64
	body model.Document
}

// MemoryStore keeps documents in process memory. Documents are copied on
// the way in and out, so callers never share state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memDoc
	seq         uint64
	newID       func() string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]map[string]memDoc),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (doc model.Document, err error) {
	start := time.Now()
	defer func() { observe("get", collection, start, err) }()
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return d.body.Clone().With(id), nil
}

func (s *MemoryStore) List(_ context.Context, collection string, q Query) (out []model.Document, err error) {
	start := time.Now()
	defer func() { observe("list", collection, start, err) }()
	if err := validate(collection, q); err != nil {
		return nil, err
	}

	s.mu.RLock()
	type hit struct {
		id string
		memDoc
	}
	var hits []hit
	for id, d := range s.collections[collection] {
		view := d.body.With(id)
		if !matches(view, q.Filters) {
			continue
		}
		if q.OrderBy != "" {
			if _, ok := d.body[q.OrderBy]; !ok && q.OrderBy != model.FieldID {
				continue
			}
		}
		hits = append(hits, hit{id: id, memDoc: d})
	}
	s.mu.RUnlock()

	slices.SortFunc(hits, func(a, b hit) int {
		if q.OrderBy == "" || q.OrderBy == model.FieldID {
			c := compareValues(a.id, b.id)
			if q.Descending {
				return -c
			}
			return c
		}
		c := compareValues(a.body[q.OrderBy], b.body[q.OrderBy])
		if q.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return compareSeq(a.seq, b.seq)
	})

	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	out = make([]model.Document, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.body.Clone().With(h.id))
	}
	return out, nil
}

func compareSeq(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s *MemoryStore) Add(ctx context.Context, collection string, doc model.Document) (string, error) {
	id := s.newID()
	if err := s.Set(ctx, collection, id, doc, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, doc model.Document, merge bool) (err error) {
	start := time.Now()
	defer func() { observe("set", collection, start, err) }()
	if err := validate(collection, Query{}); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidQuery
	}

	body := stripID(doc)
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]memDoc)
		s.collections[collection] = coll
	}
	prev, exists := coll[id]
	if merge && exists {
		merged := prev.body.Clone()
		for k, v := range body {
			merged[k] = v
		}
		body = merged
	}
	seq := prev.seq
	if !exists {
		s.seq++
		seq = s.seq
	}
	coll[id] = memDoc{seq: seq, body: body}
	return nil
}

func (s *MemoryStore) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
