package hazardapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/signalsfoundry/laserhazard/internal/logging"
)

const requestIDMetadataKey = "x-request-id"

// RequestIDUnaryServerInterceptor ensures a request ID is present on the
// context, taking it from x-request-id metadata when the caller sent one,
// and stores a logger annotated with the method. The logger picks the
// request ID up from the context.
func RequestIDUnaryServerInterceptor(base logging.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = logging.Noop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if ids := metadata.ValueFromIncomingContext(ctx, requestIDMetadataKey); len(ids) > 0 && ids[0] != "" {
			ctx = logging.ContextWithRequestID(ctx, ids[0])
		}

		ctx, _ = logging.EnsureRequestID(ctx)
		ctx = logging.ContextWithLogger(ctx, base.With(logging.String("method", info.FullMethod)))

		return handler(ctx, req)
	}
}

// RequestIDUnaryClientInterceptor forwards the caller's request_id, if any,
// as x-request-id metadata.
func RequestIDUnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if id := logging.RequestIDFromContext(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, requestIDMetadataKey, id)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
