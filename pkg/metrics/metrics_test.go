package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("NewManager registers collectors under the configured names", func() {
			m := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"site": "proving-ground"}),
			)
			So(m, ShouldNotBeNil)

			m.queueCapacity.Set(64)
			families, err := registry.Gather()
			So(err, ShouldBeNil)

			var found bool
			for _, f := range families {
				if f.GetName() == "test_unit_queue_capacity" {
					found = true
					So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "proving-ground")
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Registering the same manager twice on one registry panics", func() {
			NewManager(WithPrometheusRegistry(registry))
			So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Predictions are counted per model", func() {
			before := testutil.ToFloat64(globalManager.predictions.WithLabelValues("brakeFade"))
			RecordPrediction("brakeFade", 64.5)
			RecordPrediction("brakeFade", 12)
			So(testutil.ToFloat64(globalManager.predictions.WithLabelValues("brakeFade")), ShouldEqual, before+2)
		})

		Convey("Store failures are counted only when an error is passed", func() {
			before := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("get", "tests"))
			RecordStoreOperation("get", "tests", 1.2, nil)
			RecordStoreOperation("get", "tests", 1.2, errors.New("down"))
			So(testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("get", "tests")), ShouldEqual, before+1)
		})

		Convey("Worker outcomes land on separate counters", func() {
			ok := testutil.ToFloat64(globalManager.workerJobs)
			failed := testutil.ToFloat64(globalManager.workerFailures)
			RecordWorkerJob(3, false)
			RecordWorkerJob(3, true)
			So(testutil.ToFloat64(globalManager.workerJobs), ShouldEqual, ok+1)
			So(testutil.ToFloat64(globalManager.workerFailures), ShouldEqual, failed+1)
		})

		Convey("Gauges reflect the last value", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(128)
			UpdateWorkerCount(4)
			UpdateSystemGoroutineCount(33)
			UpdateSystemMemoryUsage(1 << 20)
			So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7.0)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 128.0)
			So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4.0)
		})

		Convey("The remaining recorders do not panic", func() {
			So(func() {
				RecordUnknownModel()
				RecordRiskAssessment("high")
				RecordRecommendations(3)
				RecordQueueEnqueue()
				RecordQueueRejected()
				RecordDuplicateKey()
				RecordNotification("ok")
				RecordPluginRun("ISO2631")
				RecordHTTPRequest("ml_predict", "POST", "200", 4)
				RecordHTTPError("ml_predict", "POST", "client_error")
				RecordHTTPRejected("rate_limited")
			}, ShouldNotPanic)
		})

		Convey("The exported registry serves the sves namespace", func() {
			RecordUnknownModel()
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var names []string
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "sves_daq_prediction_unknown_models_total")
		})
	})
}
