package observability

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// rpcLatencyBuckets span sub-millisecond limit lookups up to long
// overflight screens.
var rpcLatencyBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// HazardCollector holds the Prometheus metrics of the hazard API: RPC
// counts and latency from the gRPC interceptor, evaluation outcomes from
// the service and the catalog size.
type HazardCollector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec
	// Outcomes counts evaluation results by operation and outcome, so
	// range violations and inapplicable requests show up separately from
	// transport errors.
	Outcomes        *prometheus.CounterVec
	CatalogProducts prometheus.Gauge
}

// NewHazardCollector registers the hazard API metrics on reg, or on the
// default registry when reg is nil. Metrics already present on reg are
// reused.
func NewHazardCollector(reg prometheus.Registerer) (*HazardCollector, error) {
	reg, gatherer := registryPair(reg)
	c := &HazardCollector{gatherer: gatherer}

	var err error
	if c.RPCRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hazard_requests_total",
		Help: "Handled hazard RPCs by service, method and gRPC status code.",
	}, []string{"service", "method", "code"})); err != nil {
		return nil, err
	}
	if c.RPCDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hazard_request_duration_seconds",
		Help:    "Hazard RPC latency in seconds.",
		Buckets: rpcLatencyBuckets,
	}, []string{"service", "method"})); err != nil {
		return nil, err
	}
	if c.Outcomes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hazard_evaluation_outcomes_total",
		Help: "Evaluation results by operation and outcome (ok, not_applicable, range_violation, invalid_geometry).",
	}, []string{"operation", "outcome"})); err != nil {
		return nil, err
	}
	if c.CatalogProducts, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hazard_catalog_products",
		Help: "Laser products currently in the catalog.",
	})); err != nil {
		return nil, err
	}
	return c, nil
}

// UnaryServerInterceptor counts and times every unary RPC.
func (c *HazardCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if c == nil {
			return resp, err
		}

		var full string
		if info != nil {
			full = info.FullMethod
		}
		service, method := SplitMethod(full)
		c.RPCRequests.WithLabelValues(service, method, status.Code(err).String()).Inc()
		c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// RecordOutcome counts one evaluation result.
func (c *HazardCollector) RecordOutcome(operation, outcome string) {
	if c == nil {
		return
	}
	c.Outcomes.WithLabelValues(operation, outcome).Inc()
}

// SetCatalogSize updates the catalog gauge.
func (c *HazardCollector) SetCatalogSize(n int) {
	if c == nil {
		return
	}
	c.CatalogProducts.Set(float64(n))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *HazardCollector) Handler() http.Handler {
	g := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		g = c.gatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// SplitMethod turns "/pkg.Service/Method" into ("Service", "Method").
// Anything without both parts yields ("unknown", "unknown").
func SplitMethod(fullMethod string) (service, method string) {
	svc, m, ok := strings.Cut(strings.TrimPrefix(fullMethod, "/"), "/")
	if i := strings.LastIndexByte(svc, '.'); i >= 0 {
		svc = svc[i+1:]
	}
	if !ok || svc == "" || m == "" || strings.Contains(m, "/") {
		return "unknown", "unknown"
	}
	return svc, m
}

// registryPair defaults reg to the global registry and finds the gatherer
// that exposes it.
func registryPair(reg prometheus.Registerer) (prometheus.Registerer, prometheus.Gatherer) {
	if reg == nil {
		return prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		return reg, g
	}
	return reg, prometheus.DefaultGatherer
}

// register adds c to reg. When an equal collector is already registered
// that one is returned instead, provided it has the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	are, ok := err.(prometheus.AlreadyRegisteredError)
	if !ok {
		return c, err
	}
	existing, ok := are.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("metric already registered as %T", are.ExistingCollector)
	}
	return existing, nil
}
