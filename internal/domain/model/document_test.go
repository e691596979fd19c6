package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDocumentAccessors(t *testing.T) {
	Convey("Given a decoded document", t, func() {
		d := Document{
			"id":        "t-1",
			"testName":  "Brake fade 60-0",
			"kpi":       82.5,
			"threshold": "90",
			"count":     3,
			"empty":     "",
			"meta":      map[string]any{"site": "Arizona"},
			"tags":      []any{"brakes", map[string]any{"k": "v"}},
		}

		Convey("Strings and numbers are coerced", func() {
			So(d.ID(), ShouldEqual, "t-1")
			So(d.String("kpi"), ShouldEqual, "82.5")
			So(d.String("count"), ShouldEqual, "3")
			So(d.String("missing"), ShouldEqual, "")

			v, ok := d.Number("threshold")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 90)

			_, ok = d.Number("testName")
			So(ok, ShouldBeFalse)
			So(d.NumberOr("missing", 7), ShouldEqual, 7)
			So(d.NumberOr("kpi", 7), ShouldEqual, 82.5)
		})

		Convey("Has treats empty strings as unset", func() {
			So(d.Has("testName"), ShouldBeTrue)
			So(d.Has("empty"), ShouldBeFalse)
			So(d.Has("missing"), ShouldBeFalse)
		})

		Convey("Clone does not share nested values", func() {
			c := d.Clone()
			c["meta"].(map[string]any)["site"] = "Sweden"
			c["tags"].([]any)[1].(map[string]any)["k"] = "changed"
			So(d["meta"].(map[string]any)["site"], ShouldEqual, "Arizona")
			So(d["tags"].([]any)[1].(map[string]any)["k"], ShouldEqual, "v")
		})

		Convey("With stamps an id on a copy", func() {
			c := Document{"a": 1.0}.With("x")
			So(c.ID(), ShouldEqual, "x")
			So(Document(nil).With("y"), ShouldResemble, Document{"id": "y"})
		})

		Convey("Object returns nested maps", func() {
			m, ok := d.Object("meta")
			So(ok, ShouldBeTrue)
			So(m["site"], ShouldEqual, "Arizona")
			_, ok = d.Object("kpi")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestPredictionJobDocument(t *testing.T) {
	Convey("A prediction job renders its stored shape", t, func() {
		doc := PredictionJob{
			JobID:      "j-1",
			TestID:     "t-9",
			ModelType:  "brakeFade",
			Value:      61.2,
			Confidence: 0.9,
			Timestamp:  "2025-01-01T00:00:00.000Z",
			Features:   map[string]float64{"brakeTemperature": 300},
		}.Document()

		So(doc.String("testId"), ShouldEqual, "t-9")
		So(doc.String("model"), ShouldEqual, "brakeFade")
		So(doc["features"], ShouldResemble, map[string]any{"brakeTemperature": 300.0})
	})
}
