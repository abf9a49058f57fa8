package hazardapi

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/laserhazard/internal/logging"
	"github.com/signalsfoundry/laserhazard/internal/observability"
)

const tracerName = "github.com/signalsfoundry/laserhazard/internal/hazardapi"

// Span attribute keys set by the hazard API.
const (
	attrOperation = attribute.Key("hazard.operation")
	attrOutcome   = attribute.Key("hazard.outcome")
	attrRequestID = attribute.Key("request_id")
)

// TracingUnaryServerInterceptor names the RPC span "HazardAPI/<service>/<method>"
// and records the gRPC status on it. When no stats handler has opened a
// server span, it opens one.
func TracingUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		service, method := observability.SplitMethod(info.FullMethod)
		name := "HazardAPI/" + service + "/" + method

		span := trace.SpanFromContext(ctx)
		owned := !span.SpanContext().IsValid()
		if owned {
			ctx, span = otel.Tracer(tracerName).Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
		} else {
			span.SetName(name)
		}
		span.SetAttributes(
			attribute.String("rpc.system", "grpc"),
			attribute.String("rpc.service", service),
			attribute.String("rpc.method", method),
		)
		if id := logging.RequestIDFromContext(ctx); id != "" {
			span.SetAttributes(attrRequestID.String(id))
		}

		resp, err := handler(ctx, req)
		code := status.Code(err)
		span.SetAttributes(attribute.Int("rpc.grpc.status_code", int(code)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, code.String())
		}
		return resp, err
	}
}

// StartEvaluationSpan opens the span wrapping one engine call.
func StartEvaluationSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "Engine/"+operation,
		trace.WithAttributes(append([]attribute.KeyValue{attrOperation.String(operation)}, attrs...)...))
}
