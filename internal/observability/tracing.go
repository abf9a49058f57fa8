package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signalsfoundry/laserhazard/internal/logging"
)

// Exporter names a span exporter.
type Exporter string

const (
	ExporterStdout Exporter = "stdout"
	ExporterOTLP   Exporter = "otlp"
)

const defaultOTLPEndpoint = "localhost:4317"

// TracingConfig selects the tracer provider installed by InitTracing.
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Exporter       Exporter
	// Endpoint is the OTLP collector address.
	Endpoint    string
	SampleRatio float64
	// Writer receives stdout-exporter output; nil means os.Stdout.
	Writer io.Writer
}

// Validate reports configuration InitTracing would reject. A disabled
// config is always valid.
func (c TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	switch c.Exporter {
	case ExporterStdout, ExporterOTLP, "":
	default:
		errs = append(errs, fmt.Errorf("unsupported tracing exporter %q", c.Exporter))
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("sample ratio %g outside [0, 1]", c.SampleRatio))
	}
	return errors.Join(errs...)
}

// TracingConfigFromEnv reads LASERHAZARD_TRACING_ENABLED, _EXPORTER,
// _SERVICE_NAME, _SAMPLE_RATIO and LASERHAZARD_OTLP_ENDPOINT. Tracing is
// off unless enabled explicitly.
func TracingConfigFromEnv() (TracingConfig, error) {
	cfg := TracingConfig{
		Enabled:     strings.EqualFold(os.Getenv("LASERHAZARD_TRACING_ENABLED"), "true"),
		ServiceName: os.Getenv("LASERHAZARD_TRACING_SERVICE_NAME"),
		Exporter:    Exporter(strings.ToLower(os.Getenv("LASERHAZARD_TRACING_EXPORTER"))),
		Endpoint:    os.Getenv("LASERHAZARD_OTLP_ENDPOINT"),
		SampleRatio: 1,
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "laserhazard"
	}
	if raw := os.Getenv("LASERHAZARD_TRACING_SAMPLE_RATIO"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("LASERHAZARD_TRACING_SAMPLE_RATIO: %w", err)
		}
		cfg.SampleRatio = r
	}
	return cfg, cfg.Validate()
}

// InitTracing installs a global tracer provider and W3C propagators and
// returns the function that flushes and stops it. Disabled configs install
// the no-op provider.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.TraceContext{})
		log.Debug(ctx, "tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	attrs := []attribute.KeyValue{
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.namespace", "lasersafety"),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info(ctx, "tracing enabled",
		logging.String("exporter", string(cfg.exporter())),
		logging.String("service_name", cfg.ServiceName),
		logging.Float("sample_ratio", cfg.SampleRatio),
	)
	return tp.Shutdown, nil
}

func (c TracingConfig) exporter() Exporter {
	if c.Exporter == "" {
		return ExporterStdout
	}
	return c.Exporter
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.exporter() == ExporterOTLP {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		))
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	return stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
}

// ShutdownWithTimeout gives shutdown five seconds and logs its failure.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logging.Noop()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
