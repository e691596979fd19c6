package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sves-daq/backend/internal/domain/model"
)

var sqliteSeq atomic.Int64

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:store_test_%d?mode=memory&cache=shared", sqliteSeq.Add(1))
	s, err := OpenGorm(context.Background(), DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return s
}

func TestStores(t *testing.T) {
	factories := map[string]func(*testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": newSQLiteStore,
	}
	for name, factory := range factories {
		Convey("Given a "+name+" document store", t, func() {
			ctx := context.Background()
			s := factory(t)
			defer func() { _ = s.Close() }()

			seed := []struct {
				id  string
				doc model.Document
			}{
				{"t-3", model.Document{"testName": "Brake fade", "domain": "brakes", "kpi": 71.5, "timestamp": "2025-01-03T00:00:00.000Z"}},
				{"t-1", model.Document{"testName": "Washboard", "domain": "ride", "kpi": 64.0, "timestamp": "2025-01-01T00:00:00.000Z"}},
				{"t-2", model.Document{"testName": "ABS", "domain": "brakes", "kpi": 88.0, "timestamp": "2025-01-02T00:00:00.000Z"}},
				{"t-4", model.Document{"testName": "Untimed", "domain": "brakes"}},
			}
			for _, d := range seed {
				So(s.Set(ctx, model.CollectionTestData, d.id, d.doc, false), ShouldBeNil)
			}

			Convey("Get returns the document with its id", func() {
				doc, err := s.Get(ctx, model.CollectionTestData, "t-2")
				So(err, ShouldBeNil)
				So(doc.ID(), ShouldEqual, "t-2")
				So(doc.String("testName"), ShouldEqual, "ABS")
				So(doc["kpi"], ShouldEqual, 88.0)
			})

			Convey("Get of a missing document is ErrNotFound", func() {
				_, err := s.Get(ctx, model.CollectionTestData, "nope")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})

			Convey("List without order sorts by id", func() {
				docs, err := s.List(ctx, model.CollectionTestData, Query{})
				So(err, ShouldBeNil)
				So(ids(docs), ShouldResemble, []string{"t-1", "t-2", "t-3", "t-4"})
			})

			Convey("Ordering leaves out documents lacking the field", func() {
				docs, err := s.List(ctx, model.CollectionTestData, Query{OrderBy: "timestamp", Descending: true})
				So(err, ShouldBeNil)
				So(ids(docs), ShouldResemble, []string{"t-3", "t-2", "t-1"})
			})

			Convey("Filters and limit combine", func() {
				q := Query{OrderBy: "timestamp", Descending: true, Limit: 1}.Where("domain", "brakes")
				docs, err := s.List(ctx, model.CollectionTestData, q)
				So(err, ShouldBeNil)
				So(ids(docs), ShouldResemble, []string{"t-3"})
			})

			Convey("Numeric filters compare numerically", func() {
				docs, err := s.List(ctx, model.CollectionTestData, Query{}.Where("kpi", 88.0))
				So(err, ShouldBeNil)
				So(ids(docs), ShouldResemble, []string{"t-2"})
			})

			Convey("The id pseudo field filters by document id", func() {
				docs, err := s.List(ctx, model.CollectionTestData, Query{}.Where("id", "t-4"))
				So(err, ShouldBeNil)
				So(ids(docs), ShouldResemble, []string{"t-4"})
			})

			Convey("Numeric ordering is by value", func() {
				docs, err := s.List(ctx, model.CollectionTestData, Query{OrderBy: "kpi"})
				So(err, ShouldBeNil)
				So(ids(docs), ShouldResemble, []string{"t-1", "t-3", "t-2"})
			})

			Convey("Set with merge keeps other fields", func() {
				So(s.Set(ctx, model.CollectionTestData, "t-1", model.Document{"kpi": 70.0}, true), ShouldBeNil)
				doc, err := s.Get(ctx, model.CollectionTestData, "t-1")
				So(err, ShouldBeNil)
				So(doc["kpi"], ShouldEqual, 70.0)
				So(doc.String("testName"), ShouldEqual, "Washboard")
			})

			Convey("Set without merge replaces the document", func() {
				So(s.Set(ctx, model.CollectionTestData, "t-1", model.Document{"kpi": 70.0}, false), ShouldBeNil)
				doc, err := s.Get(ctx, model.CollectionTestData, "t-1")
				So(err, ShouldBeNil)
				So(doc.Has("testName"), ShouldBeFalse)
			})

			Convey("Add assigns a fresh id", func() {
				id, err := s.Add(ctx, model.CollectionPredictions, model.Document{"testId": "t-1", "value": 50.0})
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
				n, err := s.Count(ctx, model.CollectionPredictions)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})

			Convey("Nested values survive a round trip", func() {
				doc := model.Document{"features": map[string]any{"peakStrain": 500.0}, "tags": []any{"a", "b"}}
				So(s.Set(ctx, model.CollectionTests, "nested", doc, false), ShouldBeNil)
				got, err := s.Get(ctx, model.CollectionTests, "nested")
				So(err, ShouldBeNil)
				So(got["features"], ShouldResemble, map[string]any{"peakStrain": 500.0})
				So(got["tags"], ShouldResemble, []any{"a", "b"})
			})

			Convey("Unsafe field names are rejected", func() {
				_, err := s.List(ctx, model.CollectionTestData, Query{OrderBy: "kpi') OR 1=1 --"})
				So(errors.Is(err, ErrInvalidQuery), ShouldBeTrue)
			})
		})
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		n := 0
		s := NewMemoryStore(WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%02d", n) }))

		Convey("Callers cannot mutate stored documents", func() {
			doc := model.Document{"meta": map[string]any{"site": "Arizona"}}
			id, err := s.Add(ctx, model.CollectionTests, doc)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "id-01")

			doc["meta"].(map[string]any)["site"] = "changed"
			got, _ := s.Get(ctx, model.CollectionTests, id)
			got["meta"].(map[string]any)["site"] = "changed again"

			again, _ := s.Get(ctx, model.CollectionTests, id)
			So(again["meta"], ShouldResemble, map[string]any{"site": "Arizona"})
		})

		Convey("Equal sort keys keep insertion order", func() {
			for _, name := range []string{"first", "second", "third"} {
				_, err := s.Add(ctx, model.CollectionEvents, model.Document{"name": name, "timestamp": "same"})
				So(err, ShouldBeNil)
			}
			docs, err := s.List(ctx, model.CollectionEvents, Query{OrderBy: "timestamp", Descending: true})
			So(err, ShouldBeNil)
			var names []string
			for _, d := range docs {
				names = append(names, d.String("name"))
			}
			So(strings.Join(names, ","), ShouldEqual, "first,second,third")
		})
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, DriverMemory, "", nil)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("expected *MemoryStore, got %T", s)
	}

	if _, err := Open(ctx, "firestore", "", nil); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func ids(docs []model.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID())
	}
	return out
}
