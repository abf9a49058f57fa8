package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryInterceptorRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewHazardCollector(reg)
	if err != nil {
		t.Fatalf("NewHazardCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/lasersafety.v1.HazardService/EvaluateExposureLimit"}

	_, err = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		time.Sleep(time.Millisecond)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("interceptor handler returned error: %v", err)
	}

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("HazardService", "EvaluateExposureLimit", "OK")); got != 1 {
		t.Fatalf("hazard_requests_total = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "hazard_request_duration_seconds", map[string]string{
		"service": "HazardService",
		"method":  "EvaluateExposureLimit",
	}); count != 1 {
		t.Fatalf("hazard_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestUnaryInterceptorRecordsErrorCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewHazardCollector(reg)
	if err != nil {
		t.Fatalf("NewHazardCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/lasersafety.v1.HazardService/SolveNOHD"}

	_, _ = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.InvalidArgument, "boom")
	})

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("HazardService", "SolveNOHD", "InvalidArgument")); got != 1 {
		t.Fatalf("hazard_requests_total error label = %v, want 1", got)
	}
}

func TestRecordOutcomeAndCatalogGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewHazardCollector(reg)
	if err != nil {
		t.Fatalf("NewHazardCollector: %v", err)
	}
	collector.RecordOutcome("mpe", "ok")
	collector.RecordOutcome("mpe", "ok")
	collector.RecordOutcome("mpe", "not_applicable")
	collector.SetCatalogSize(5)

	if got := testutil.ToFloat64(collector.Outcomes.WithLabelValues("mpe", "ok")); got != 2 {
		t.Fatalf("ok outcomes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.CatalogProducts); got != 5 {
		t.Fatalf("catalog gauge = %v, want 5", got)
	}

	var nilCollector *HazardCollector
	nilCollector.RecordOutcome("mpe", "ok")
	nilCollector.SetCatalogSize(1)
}

func TestNewHazardCollectorTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewHazardCollector(reg)
	if err != nil {
		t.Fatalf("first NewHazardCollector: %v", err)
	}
	second, err := NewHazardCollector(reg)
	if err != nil {
		t.Fatalf("second NewHazardCollector: %v", err)
	}
	if first.RPCRequests != second.RPCRequests {
		t.Fatalf("expected the already registered counter to be reused")
	}
}

func TestRegisterRejectsIncompatibleCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hazard_catalog_products",
		Help: "Laser products currently in the catalog.",
	})); err != nil {
		t.Fatalf("register gauge: %v", err)
	}
	_, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "hazard_catalog_products",
		Help: "Laser products currently in the catalog.",
	}))
	if err == nil {
		t.Fatalf("expected an error when a histogram replaces a gauge")
	}
}

func TestMetricsHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewHazardCollector(reg)
	if err != nil {
		t.Fatalf("NewHazardCollector: %v", err)
	}
	collector.SetCatalogSize(3)
	collector.RPCRequests.WithLabelValues("svc", "method", "OK").Inc()
	collector.RPCDurations.WithLabelValues("svc", "method").Observe(0.01)
	collector.RecordOutcome("nohd", "invalid_geometry")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"hazard_requests_total",
		"hazard_request_duration_seconds",
		"hazard_evaluation_outcomes_total",
		"hazard_catalog_products 3",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output:\n%s", metric, body)
		}
	}
}

func TestSplitMethod(t *testing.T) {
	cases := map[string][2]string{
		"/lasersafety.v1.HazardService/SolveNOHD": {"HazardService", "SolveNOHD"},
		"":         {"unknown", "unknown"},
		"/nothing": {"unknown", "unknown"},
		"/a/b/c":   {"unknown", "unknown"},
	}
	for in, want := range cases {
		svc, m := SplitMethod(in)
		if svc != want[0] || m != want[1] {
			t.Fatalf("SplitMethod(%q) = (%q, %q), want %v", in, svc, m, want)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
