package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	app "github.com/okian/pediscore/internal/app"
	"github.com/okian/pediscore/internal/config"
	"github.com/okian/pediscore/pkg/logger"
	"github.com/okian/pediscore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("PEDISCORE_ADDR", ":8080")
			_ = os.Setenv("PEDISCORE_QUEUE_SIZE", "1000")
			_ = os.Setenv("PEDISCORE_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("PEDISCORE_ADDR")
				_ = os.Unsetenv("PEDISCORE_QUEUE_SIZE")
				_ = os.Unsetenv("PEDISCORE_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When building the service from configuration", func() {
			cfg := config.New()
			cfg.WorkerCount = 3
			cfg.HistoryLimit = 7
			cfg.MaxBatchSize = 12
			svc := newService(cfg, logger.Get())

			convey.Convey("Then the configured limits should be applied", func() {
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 3)
				convey.So(stats["historyLimit"], convey.ShouldEqual, 7)
				convey.So(stats["maxBatchSize"], convey.ShouldEqual, 12)
				convey.So(stats["started"], convey.ShouldEqual, false)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
			convey.So(manager, convey.ShouldNotBeNil)
		})
	})
}

func TestHTTPServerRoutes(t *testing.T) {
	convey.Convey("Given a started service behind the HTTP server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := config.New()
		cfg.WorkerCount = 2
		cfg.CORSAllowedOrigins = []string{"https://icu.example"}
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv, err := newHTTPServer(ctx, cfg, svc)
		convey.So(err, convey.ShouldBeNil)
		convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)
		convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)

		ts := httptest.NewServer(srv.Handler)
		defer ts.Close()

		convey.Convey("Then the landing page, docs and API should all be served", func() {
			for _, path := range []string{"/", "/api-docs", "/openapi.yaml", "/healthz", "/schemas", "/stats"} {
				resp, err := http.Get(ts.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then a synchronous score should be computed", func() {
			body := `{"scoreType":"COMFORT-B","input":{"alertness":2,"calmness":2,"respiratoryResponse":2,"movement":2,"muscleTone":2,"facialTension":2}}`
			resp, err := http.Post(ts.URL+"/scores", "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then CORS headers should follow the configured origins", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/schemas", http.NoBody)
			req.Header.Set("Origin", "https://icu.example")
			resp, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.Header.Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "https://icu.example")
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the metrics updaters run until cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			svc := app.New()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("When updating metrics directly", func() {
			svc := app.New()
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given invalid configuration", t, func() {
		_ = os.Setenv("PEDISCORE_ADDR", "")
		defer func() { _ = os.Unsetenv("PEDISCORE_ADDR") }()

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
