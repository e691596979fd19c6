package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestParseFeatures(t *testing.T) {
	convey.Convey("Given feature flags", t, func() {
		convey.Convey("key=value pairs become a feature bag", func() {
			f, err := parseFeatures([]string{"brakeTemperature=320", " fadeSlope = -0.04 "})
			convey.So(err, convey.ShouldBeNil)
			convey.So(f, convey.ShouldResemble, map[string]float64{"brakeTemperature": 320, "fadeSlope": -0.04})
		})

		convey.Convey("malformed pairs are rejected", func() {
			_, err := parseFeatures([]string{"brakeTemperature"})
			convey.So(err, convey.ShouldNotBeNil)
			_, err = parseFeatures([]string{"=3"})
			convey.So(err, convey.ShouldNotBeNil)
			_, err = parseFeatures([]string{"splMax=loud"})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestPredictCommand(t *testing.T) {
	convey.Convey("Given a backend", t, func() {
		var got map[string]any
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"prediction":{"value":80,"confidence":0.9,"model":"brakeFade","timestamp":"2026-03-01T10:00:00.000Z"},"confidence":0.9,"timestamp":"2026-03-01T10:00:00.000Z"}`))
		}))
		defer ts.Close()

		convey.Convey("predict sends the model and features and prints the reply", func() {
			app := newApp()
			var out, errOut bytes.Buffer
			app.Writer, app.ErrWriter = &out, &errOut

			err := app.Run([]string{"probe", "--url", ts.URL, "predict", "-m", "brakeFade", "-f", "brakeTemperature=320"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(got["modelType"], convey.ShouldEqual, "brakeFade")
			convey.So(got["testData"], convey.ShouldResemble, map[string]any{"brakeTemperature": 320.0})
			convey.So(out.String(), convey.ShouldContainSubstring, `"model": "brakeFade"`)
			convey.So(errOut.String(), convey.ShouldBeEmpty)
		})
	})
}
