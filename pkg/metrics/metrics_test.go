package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithScoreBuckets([]float64{50, 100}),
				WithRefreshInterval(3*time.Second),
			)

			Convey("Then options are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
			})

			Convey("And metrics are registered under the namespace", func() {
				manager.analysesTotal.WithLabelValues("sync", "GOOD MATCH").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if strings.HasPrefix(f.GetName(), "test_unit_") {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When zero values are passed to options", func() {
			manager := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace(""),
				WithRefreshInterval(0),
				WithHistogramBuckets(nil),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "cvscreen")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording analyses", func() {
			before := testutil.ToFloat64(globalManager.analysesTotal.WithLabelValues("sync", "WEAK MATCH"))
			RecordAnalysis("sync", "WEAK MATCH", 55.5, 12)
			RecordAnalysis("sync", "WEAK MATCH", 51.0, 8)

			Convey("Then the labelled counter grows", func() {
				after := testutil.ToFloat64(globalManager.analysesTotal.WithLabelValues("sync", "WEAK MATCH"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording queue and worker metrics", func() {
			UpdateQueueSize(4)
			UpdateQueueCapacity(16)
			UpdateQueueUtilization(0.25)
			UpdateWorkerCount(3)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 16)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.25)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 3)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordRedFlag("domain_mismatch")
					RecordAnalysisDuplicate()
					UpdateShortlistEntries(10)
					RecordExtractionFailure("pdf")
					RecordLLMCall("ok", 420)
					RecordUpload("pdf", "ok")
					RecordChatMessage("text", "command")
					RecordRateLimited()
					UpdateWebSocketConnections(2)
					RecordWebSocketMessage("process_update", "queued")
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueRejected()
					RecordWorkerProcessingLatency(3)
					RecordWorkerError()
					RecordHTTPRequest("/api/analyze", "POST", "200")
					RecordHTTPRequestDuration("/api/analyze", "POST", "200", 14)
					RecordErrorByEndpoint("/api/analyze", "POST", "client_error")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then the custom registry is returned", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}
