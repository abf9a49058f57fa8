package hazardapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "lasersafety.v1.HazardService"

// Method names of the hazard service.
const (
	MethodEvaluateExposureLimit    = "EvaluateExposureLimit"
	MethodEvaluatePulseTrainFactor = "EvaluatePulseTrainFactor"
	MethodEvaluateCriticalLimit    = "EvaluateCriticalLimit"
	MethodSolveNOHD                = "SolveNOHD"
	MethodClassifyProduct          = "ClassifyProduct"
	MethodSweep                    = "Sweep"
	MethodScreenOverflights        = "ScreenOverflights"
	MethodListProducts             = "ListProducts"
	MethodGetProduct               = "GetProduct"
	MethodAddProduct               = "AddProduct"
	MethodUpdateProduct            = "UpdateProduct"
	MethodRemoveProduct            = "RemoveProduct"
	MethodAssessProduct            = "AssessProduct"
)

// HazardServiceServer is the server API of the hazard service. Every
// message is a google.protobuf.Struct whose fields are described by the
// types package.
type HazardServiceServer interface {
	EvaluateExposureLimit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvaluatePulseTrainFactor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvaluateCriticalLimit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SolveNOHD(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClassifyProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Sweep(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ScreenOverflights(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AssessProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ HazardServiceServer = (*HazardService)(nil)

type structMethod func(HazardServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// HazardServiceDesc describes the service for grpc.Server.RegisterService.
var HazardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HazardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodEvaluateExposureLimit, HazardServiceServer.EvaluateExposureLimit),
		unaryMethod(MethodEvaluatePulseTrainFactor, HazardServiceServer.EvaluatePulseTrainFactor),
		unaryMethod(MethodEvaluateCriticalLimit, HazardServiceServer.EvaluateCriticalLimit),
		unaryMethod(MethodSolveNOHD, HazardServiceServer.SolveNOHD),
		unaryMethod(MethodClassifyProduct, HazardServiceServer.ClassifyProduct),
		unaryMethod(MethodSweep, HazardServiceServer.Sweep),
		unaryMethod(MethodScreenOverflights, HazardServiceServer.ScreenOverflights),
		unaryMethod(MethodListProducts, HazardServiceServer.ListProducts),
		unaryMethod(MethodGetProduct, HazardServiceServer.GetProduct),
		unaryMethod(MethodAddProduct, HazardServiceServer.AddProduct),
		unaryMethod(MethodUpdateProduct, HazardServiceServer.UpdateProduct),
		unaryMethod(MethodRemoveProduct, HazardServiceServer.RemoveProduct),
		unaryMethod(MethodAssessProduct, HazardServiceServer.AssessProduct),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterHazardServiceServer registers srv on s.
func RegisterHazardServiceServer(s grpc.ServiceRegistrar, srv HazardServiceServer) {
	s.RegisterService(&HazardServiceDesc, srv)
}

// FullMethod returns "/<service>/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryMethod(name string, call structMethod) grpc.MethodDesc {
	full := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(HazardServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(HazardServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
