package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the calculator RPC service
const ServiceName = "factorio.calculator.v1.Calculator"

// Method names of the calculator service
const (
	MethodCalculate        = "Calculate"
	MethodListRecipes      = "ListRecipes"
	MethodListDefaults     = "ListDefaults"
	MethodSetDefault       = "SetDefault"
	MethodExclude          = "Exclude"
	MethodListCalculations = "ListCalculations"
	MethodGetCalculation   = "GetCalculation"
)

// CalculatorServiceServer is the server API of the calculator service.
// Every message travels as a google.protobuf.Struct.
type CalculatorServiceServer interface {
	Calculate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListRecipes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListDefaults(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SetDefault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Exclude(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListCalculations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetCalculation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCalculatorServiceServer registers srv on a gRPC server
func RegisterCalculatorServiceServer(s grpc.ServiceRegistrar, srv CalculatorServiceServer) {
	s.RegisterService(&CalculatorServiceDesc, srv)
}

// CalculatorServiceDesc describes the calculator service for grpc.Server
var CalculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCalculate, Handler: unaryHandler(MethodCalculate, CalculatorServiceServer.Calculate)},
		{MethodName: MethodListRecipes, Handler: unaryHandler(MethodListRecipes, CalculatorServiceServer.ListRecipes)},
		{MethodName: MethodListDefaults, Handler: unaryHandler(MethodListDefaults, CalculatorServiceServer.ListDefaults)},
		{MethodName: MethodSetDefault, Handler: unaryHandler(MethodSetDefault, CalculatorServiceServer.SetDefault)},
		{MethodName: MethodExclude, Handler: unaryHandler(MethodExclude, CalculatorServiceServer.Exclude)},
		{MethodName: MethodListCalculations, Handler: unaryHandler(MethodListCalculations, CalculatorServiceServer.ListCalculations)},
		{MethodName: MethodGetCalculation, Handler: unaryHandler(MethodGetCalculation, CalculatorServiceServer.GetCalculation)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "factorio/calculator/v1/calculator.proto",
}

// FullMethod returns the /service/method path of a calculator method
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type unaryMethod func(CalculatorServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalculatorServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CalculatorServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
