package hazardapi

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/kb"
	"github.com/signalsfoundry/laserhazard/model"
	"github.com/signalsfoundry/laserhazard/timectrl"
)

// ToStatusError maps engine and catalog errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, kb.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, kb.ErrInvalidProduct),
		errors.Is(err, model.ErrRangeViolation),
		errors.Is(err, model.ErrInvalidGeometry),
		errors.Is(err, core.ErrInvalidTLE),
		errors.Is(err, timectrl.ErrInvalidWindow):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, model.ErrNotApplicable):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, kb.ErrProductExists):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
