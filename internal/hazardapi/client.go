package hazardapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
	"github.com/signalsfoundry/laserhazard/model"
)

// HazardClient is a typed client for the hazard service.
type HazardClient struct {
	cc grpc.ClientConnInterface
}

// NewHazardClient wraps an established connection.
func NewHazardClient(cc grpc.ClientConnInterface) *HazardClient {
	return &HazardClient{cc: cc}
}

func (c *HazardClient) call(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := types.Encode(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return types.Decode(out, resp)
}

func (c *HazardClient) EvaluateExposureLimit(ctx context.Context, req types.LimitRequest, opts ...grpc.CallOption) (model.ExposureLimit, error) {
	var out model.ExposureLimit
	err := c.call(ctx, MethodEvaluateExposureLimit, req, &out, opts...)
	return out, err
}

func (c *HazardClient) EvaluatePulseTrainFactor(ctx context.Context, req types.PulseTrainRequest, opts ...grpc.CallOption) (model.PulseTrainFactor, error) {
	var out model.PulseTrainFactor
	err := c.call(ctx, MethodEvaluatePulseTrainFactor, req, &out, opts...)
	return out, err
}

func (c *HazardClient) EvaluateCriticalLimit(ctx context.Context, req types.CriticalLimitRequest, opts ...grpc.CallOption) (model.CriticalLimitResult, error) {
	var out model.CriticalLimitResult
	err := c.call(ctx, MethodEvaluateCriticalLimit, req, &out, opts...)
	return out, err
}

func (c *HazardClient) SolveNOHD(ctx context.Context, req types.BeamRequest, opts ...grpc.CallOption) (core.BeamHazard, error) {
	var out core.BeamHazard
	err := c.call(ctx, MethodSolveNOHD, req, &out, opts...)
	return out, err
}

func (c *HazardClient) ClassifyProduct(ctx context.Context, req types.ClassifyRequest, opts ...grpc.CallOption) (model.ClassificationResult, error) {
	var out model.ClassificationResult
	err := c.call(ctx, MethodClassifyProduct, req, &out, opts...)
	return out, err
}

func (c *HazardClient) Sweep(ctx context.Context, req types.SweepRequest, opts ...grpc.CallOption) ([]core.SweepPoint, error) {
	var out types.SweepResponse
	err := c.call(ctx, MethodSweep, req, &out, opts...)
	return out.Points, err
}

func (c *HazardClient) ScreenOverflights(ctx context.Context, req types.OverflightRequest, opts ...grpc.CallOption) (core.OverflightReport, error) {
	var out core.OverflightReport
	err := c.call(ctx, MethodScreenOverflights, req, &out, opts...)
	return out, err
}

func (c *HazardClient) ListProducts(ctx context.Context, opts ...grpc.CallOption) ([]model.LaserProduct, error) {
	var out types.ProductList
	err := c.call(ctx, MethodListProducts, struct{}{}, &out, opts...)
	return out.Products, err
}

func (c *HazardClient) GetProduct(ctx context.Context, id string, opts ...grpc.CallOption) (model.LaserProduct, error) {
	var out model.LaserProduct
	err := c.call(ctx, MethodGetProduct, types.ProductRequest{ProductID: id}, &out, opts...)
	return out, err
}

func (c *HazardClient) AddProduct(ctx context.Context, p model.LaserProduct, opts ...grpc.CallOption) (model.LaserProduct, error) {
	var out model.LaserProduct
	err := c.call(ctx, MethodAddProduct, p, &out, opts...)
	return out, err
}

func (c *HazardClient) UpdateProduct(ctx context.Context, p model.LaserProduct, opts ...grpc.CallOption) (model.LaserProduct, error) {
	var out model.LaserProduct
	err := c.call(ctx, MethodUpdateProduct, p, &out, opts...)
	return out, err
}

func (c *HazardClient) RemoveProduct(ctx context.Context, id string, opts ...grpc.CallOption) error {
	return c.call(ctx, MethodRemoveProduct, types.ProductRequest{ProductID: id}, nil, opts...)
}

func (c *HazardClient) AssessProduct(ctx context.Context, req types.AssessRequest, opts ...grpc.CallOption) (core.ProductAssessment, error) {
	var out core.ProductAssessment
	err := c.call(ctx, MethodAssessProduct, req, &out, opts...)
	return out, err
}
