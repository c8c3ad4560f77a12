package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "crmkeeper.v1.CRMService"

const (
	createEntityMethod     = "/" + ServiceName + "/CreateEntity"
	updateEntityMethod     = "/" + ServiceName + "/UpdateEntity"
	deleteEntityMethod     = "/" + ServiceName + "/DeleteEntity"
	getEntityMethod        = "/" + ServiceName + "/GetEntity"
	listAuditTrailMethod   = "/" + ServiceName + "/ListAuditTrail"
	exportAuditTrailMethod = "/" + ServiceName + "/ExportAuditTrail"
	pingMethod             = "/" + ServiceName + "/Ping"
)

// CRMServiceServer is the server API. Every message is a
// google.protobuf.Struct.
type CRMServiceServer interface {
	CreateEntity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEntity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEntity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEntity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAuditTrail(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportAuditTrail(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterCRMServiceServer(s grpc.ServiceRegistrar, srv CRMServiceServer) {
	s.RegisterService(&CRMServiceDesc, srv)
}

func unaryHandler(method string, call func(CRMServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CRMServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CRMServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CRMServiceDesc describes the service for grpc.Server.RegisterService.
var CRMServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CRMServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateEntity", Handler: unaryHandler(createEntityMethod, CRMServiceServer.CreateEntity)},
		{MethodName: "UpdateEntity", Handler: unaryHandler(updateEntityMethod, CRMServiceServer.UpdateEntity)},
		{MethodName: "DeleteEntity", Handler: unaryHandler(deleteEntityMethod, CRMServiceServer.DeleteEntity)},
		{MethodName: "GetEntity", Handler: unaryHandler(getEntityMethod, CRMServiceServer.GetEntity)},
		{MethodName: "ListAuditTrail", Handler: unaryHandler(listAuditTrailMethod, CRMServiceServer.ListAuditTrail)},
		{MethodName: "ExportAuditTrail", Handler: unaryHandler(exportAuditTrailMethod, CRMServiceServer.ExportAuditTrail)},
		{MethodName: "Ping", Handler: unaryHandler(pingMethod, CRMServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crmkeeper/v1/crm.proto",
}

// CRMServiceClient calls a remote CRMService.
type CRMServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCRMServiceClient(cc grpc.ClientConnInterface) *CRMServiceClient {
	return &CRMServiceClient{cc: cc}
}

func (c *CRMServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CRMServiceClient) CreateEntity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, createEntityMethod, in, opts...)
}

func (c *CRMServiceClient) UpdateEntity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, updateEntityMethod, in, opts...)
}

func (c *CRMServiceClient) DeleteEntity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, deleteEntityMethod, in, opts...)
}

func (c *CRMServiceClient) GetEntity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getEntityMethod, in, opts...)
}

func (c *CRMServiceClient) ListAuditTrail(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, listAuditTrailMethod, in, opts...)
}

func (c *CRMServiceClient) ExportAuditTrail(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, exportAuditTrailMethod, in, opts...)
}

func (c *CRMServiceClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, pingMethod, in, opts...)
}
