package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/laserhazard/internal/logging"
)

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("LASERHAZARD_TRACING_ENABLED", "TRUE")
	t.Setenv("LASERHAZARD_TRACING_EXPORTER", "OTLP")
	t.Setenv("LASERHAZARD_TRACING_SERVICE_NAME", "")
	t.Setenv("LASERHAZARD_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("LASERHAZARD_OTLP_ENDPOINT", "collector:4317")

	cfg, err := TracingConfigFromEnv()
	if err != nil {
		t.Fatalf("TracingConfigFromEnv: %v", err)
	}
	if !cfg.Enabled || cfg.Exporter != ExporterOTLP || cfg.ServiceName != "laserhazard" || cfg.SampleRatio != 0.25 || cfg.Endpoint != "collector:4317" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("LASERHAZARD_TRACING_SAMPLE_RATIO", "7")
	if _, err := TracingConfigFromEnv(); err == nil {
		t.Fatalf("out-of-range ratio accepted")
	}
	t.Setenv("LASERHAZARD_TRACING_SAMPLE_RATIO", "half")
	if _, err := TracingConfigFromEnv(); err == nil {
		t.Fatalf("unparsable ratio accepted")
	}
}

func TestTracingConfigFromEnvDefaultsOff(t *testing.T) {
	t.Setenv("LASERHAZARD_TRACING_ENABLED", "")
	t.Setenv("LASERHAZARD_TRACING_EXPORTER", "zipkin")
	cfg, err := TracingConfigFromEnv()
	if err != nil {
		t.Fatalf("disabled config rejected: %v", err)
	}
	if cfg.Enabled {
		t.Fatalf("tracing enabled by default")
	}
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:        true,
		ServiceName:    "test",
		ServiceVersion: "v0.0.0-test",
		Exporter:       ExporterStdout,
		SampleRatio:    1,
		Writer:         &buf,
	}, logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "evaluate")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, logging.Noop())

	out := buf.String()
	if !strings.Contains(out, "evaluate") || !strings.Contains(out, "v0.0.0-test") {
		t.Fatalf("span not exported with its resource:\n%s", out)
	}
}

func TestInitTracingRejectsBadConfig(t *testing.T) {
	for _, cfg := range []TracingConfig{
		{Enabled: true, Exporter: "zipkin"},
		{Enabled: true, Exporter: ExporterStdout, SampleRatio: -0.5},
	} {
		if _, err := InitTracing(context.Background(), cfg, nil); err == nil {
			t.Fatalf("InitTracing(%+v) accepted", cfg)
		}
	}
}
