package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sves-daq/backend/internal/config"
	"github.com/sves-daq/backend/pkg/logger"
)

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.WorkerCount = 2
	cfg.QueueSize = 16
	cfg.PluginRunDelayMS = 0
	return cfg
}

func TestInitLogging(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := testConfig()

		convey.Convey("Known formats initialise the logger", func() {
			cfg.LogFormat = "json"
			convey.So(initLogging(cfg), convey.ShouldBeNil)
			convey.So(logger.Get(), convey.ShouldNotBeNil)
		})

		convey.Convey("An invalid level falls back to info", func() {
			cfg.LogLevel = "chatty"
			convey.So(initLogging(cfg), convey.ShouldBeNil)
		})

		convey.Convey("An unknown format is an error", func() {
			cfg.LogFormat = "xml"
			convey.So(initLogging(cfg), convey.ShouldNotBeNil)
		})
	})
}

func TestWiring(t *testing.T) {
	convey.Convey("Given a service built from the default configuration", t, func() {
		_ = logger.Init()
		ctx := context.Background()
		cfg := testConfig()

		svc, err := buildService(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		h := buildHandler(ctx, cfg, svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Operational and docs routes are mounted", func() {
			convey.So(get("/health").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Body.String(), convey.ShouldContainSubstring, `"started":true`)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/metrics").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("The prediction API answers end to end", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/ml/predict",
				strings.NewReader(`{"testData":{"splMax":90},"modelType":"nvhCompliance"}`))
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"model":"nvhCompliance"`)
		})

		convey.Convey("Dashboard metrics fall back to defaults on an empty store", func() {
			convey.So(get("/api/metrics/dashboard").Body.String(), convey.ShouldContainSubstring, `"totalTests":0`)
		})
	})

	convey.Convey("An unreachable Redis leaves notifications disabled", t, func() {
		_ = logger.Init()
		cfg := testConfig()
		cfg.RedisAddr = "127.0.0.1:1"
		svc, err := buildService(context.Background(), cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc, convey.ShouldNotBeNil)
	})

	convey.Convey("An unknown store driver fails the build", t, func() {
		_ = logger.Init()
		cfg := testConfig()
		cfg.StoreDriver = "postgres"
		_, err := buildService(context.Background(), cfg)
		convey.So(err, convey.ShouldNotBeNil)
	})
}
