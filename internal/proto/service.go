package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "worklog.v1.WorkLogService"

const (
	WorkLogService_RegisterUser_FullMethodName       = "/" + ServiceName + "/RegisterUser"
	WorkLogService_GetSalt_FullMethodName            = "/" + ServiceName + "/GetSalt"
	WorkLogService_Login_FullMethodName              = "/" + ServiceName + "/Login"
	WorkLogService_RefreshToken_FullMethodName       = "/" + ServiceName + "/RefreshToken"
	WorkLogService_WhoAmI_FullMethodName             = "/" + ServiceName + "/WhoAmI"
	WorkLogService_Ping_FullMethodName               = "/" + ServiceName + "/Ping"
	WorkLogService_GetProfile_FullMethodName         = "/" + ServiceName + "/GetProfile"
	WorkLogService_UpsertProfile_FullMethodName      = "/" + ServiceName + "/UpsertProfile"
	WorkLogService_ListEntriesByOwner_FullMethodName = "/" + ServiceName + "/ListEntriesByOwner"
	WorkLogService_ListRecentEntries_FullMethodName  = "/" + ServiceName + "/ListRecentEntries"
	WorkLogService_InsertEntry_FullMethodName        = "/" + ServiceName + "/InsertEntry"
	WorkLogService_DeleteEntry_FullMethodName        = "/" + ServiceName + "/DeleteEntry"
	WorkLogService_GetExportUploadURL_FullMethodName = "/" + ServiceName + "/GetExportUploadURL"
	WorkLogService_Subscribe_FullMethodName          = "/" + ServiceName + "/Subscribe"
)

// WorkLogServiceClient is the client API for WorkLogService.
type WorkLogServiceClient interface {
	RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error)
	GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*WhoAmIResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*GetProfileResponse, error)
	UpsertProfile(ctx context.Context, in *UpsertProfileRequest, opts ...grpc.CallOption) (*UpsertProfileResponse, error)
	ListEntriesByOwner(ctx context.Context, in *ListEntriesByOwnerRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error)
	ListRecentEntries(ctx context.Context, in *ListRecentEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error)
	InsertEntry(ctx context.Context, in *InsertEntryRequest, opts ...grpc.CallOption) (*InsertEntryResponse, error)
	DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*DeleteEntryResponse, error)
	GetExportUploadURL(ctx context.Context, in *GetExportUploadURLRequest, opts ...grpc.CallOption) (*GetExportUploadURLResponse, error)
	Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ChangeEvent], error)
}

type workLogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewWorkLogServiceClient(cc grpc.ClientConnInterface) WorkLogServiceClient {
	return &workLogServiceClient{cc}
}

// invoke issues a unary call with the package codec selected.
func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in Message, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workLogServiceClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error) {
	return invoke[RegisterUserResponse](ctx, c.cc, WorkLogService_RegisterUser_FullMethodName, in, opts)
}

func (c *workLogServiceClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, WorkLogService_GetSalt_FullMethodName, in, opts)
}

func (c *workLogServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, WorkLogService_Login_FullMethodName, in, opts)
}

func (c *workLogServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, WorkLogService_RefreshToken_FullMethodName, in, opts)
}

func (c *workLogServiceClient) WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*WhoAmIResponse, error) {
	return invoke[WhoAmIResponse](ctx, c.cc, WorkLogService_WhoAmI_FullMethodName, in, opts)
}

func (c *workLogServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, WorkLogService_Ping_FullMethodName, in, opts)
}

func (c *workLogServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*GetProfileResponse, error) {
	return invoke[GetProfileResponse](ctx, c.cc, WorkLogService_GetProfile_FullMethodName, in, opts)
}

func (c *workLogServiceClient) UpsertProfile(ctx context.Context, in *UpsertProfileRequest, opts ...grpc.CallOption) (*UpsertProfileResponse, error) {
	return invoke[UpsertProfileResponse](ctx, c.cc, WorkLogService_UpsertProfile_FullMethodName, in, opts)
}

func (c *workLogServiceClient) ListEntriesByOwner(ctx context.Context, in *ListEntriesByOwnerRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c.cc, WorkLogService_ListEntriesByOwner_FullMethodName, in, opts)
}

func (c *workLogServiceClient) ListRecentEntries(ctx context.Context, in *ListRecentEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c.cc, WorkLogService_ListRecentEntries_FullMethodName, in, opts)
}

func (c *workLogServiceClient) InsertEntry(ctx context.Context, in *InsertEntryRequest, opts ...grpc.CallOption) (*InsertEntryResponse, error) {
	return invoke[InsertEntryResponse](ctx, c.cc, WorkLogService_InsertEntry_FullMethodName, in, opts)
}

func (c *workLogServiceClient) DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*DeleteEntryResponse, error) {
	return invoke[DeleteEntryResponse](ctx, c.cc, WorkLogService_DeleteEntry_FullMethodName, in, opts)
}

func (c *workLogServiceClient) GetExportUploadURL(ctx context.Context, in *GetExportUploadURLRequest, opts ...grpc.CallOption) (*GetExportUploadURLResponse, error) {
	return invoke[GetExportUploadURLResponse](ctx, c.cc, WorkLogService_GetExportUploadURL_FullMethodName, in, opts)
}

func (c *workLogServiceClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ChangeEvent], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &WorkLogService_ServiceDesc.Streams[0], WorkLogService_Subscribe_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeRequest, ChangeEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// WorkLogServiceServer is the server API for WorkLogService.
// Implementations must embed UnimplementedWorkLogServiceServer.
type WorkLogServiceServer interface {
	RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error)
	UpsertProfile(context.Context, *UpsertProfileRequest) (*UpsertProfileResponse, error)
	ListEntriesByOwner(context.Context, *ListEntriesByOwnerRequest) (*ListEntriesResponse, error)
	ListRecentEntries(context.Context, *ListRecentEntriesRequest) (*ListEntriesResponse, error)
	InsertEntry(context.Context, *InsertEntryRequest) (*InsertEntryResponse, error)
	DeleteEntry(context.Context, *DeleteEntryRequest) (*DeleteEntryResponse, error)
	GetExportUploadURL(context.Context, *GetExportUploadURLRequest) (*GetExportUploadURLResponse, error)
	Subscribe(*SubscribeRequest, grpc.ServerStreamingServer[ChangeEvent]) error
	mustEmbedUnimplementedWorkLogServiceServer()
}

// UnimplementedWorkLogServiceServer answers every call with codes.Unimplemented.
type UnimplementedWorkLogServiceServer struct{}

func (UnimplementedWorkLogServiceServer) RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterUser not implemented")
}
func (UnimplementedWorkLogServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSalt not implemented")
}
func (UnimplementedWorkLogServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedWorkLogServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedWorkLogServiceServer) WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method WhoAmI not implemented")
}
func (UnimplementedWorkLogServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedWorkLogServiceServer) GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedWorkLogServiceServer) UpsertProfile(context.Context, *UpsertProfileRequest) (*UpsertProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertProfile not implemented")
}
func (UnimplementedWorkLogServiceServer) ListEntriesByOwner(context.Context, *ListEntriesByOwnerRequest) (*ListEntriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEntriesByOwner not implemented")
}
func (UnimplementedWorkLogServiceServer) ListRecentEntries(context.Context, *ListRecentEntriesRequest) (*ListEntriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRecentEntries not implemented")
}
func (UnimplementedWorkLogServiceServer) InsertEntry(context.Context, *InsertEntryRequest) (*InsertEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method InsertEntry not implemented")
}
func (UnimplementedWorkLogServiceServer) DeleteEntry(context.Context, *DeleteEntryRequest) (*DeleteEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteEntry not implemented")
}
func (UnimplementedWorkLogServiceServer) GetExportUploadURL(context.Context, *GetExportUploadURLRequest) (*GetExportUploadURLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetExportUploadURL not implemented")
}
func (UnimplementedWorkLogServiceServer) Subscribe(*SubscribeRequest, grpc.ServerStreamingServer[ChangeEvent]) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}
func (UnimplementedWorkLogServiceServer) mustEmbedUnimplementedWorkLogServiceServer() {}

func RegisterWorkLogServiceServer(s grpc.ServiceRegistrar, srv WorkLogServiceServer) {
	s.RegisterService(&WorkLogService_ServiceDesc, srv)
}

// unary builds a MethodDesc that decodes Req and dispatches to call through
// the server's interceptor chain.
func unary[Req any, PReq interface {
	*Req
	Message
}, Resp any](name string, call func(WorkLogServiceServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(WorkLogServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(WorkLogServiceServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	m := new(SubscribeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(WorkLogServiceServer).Subscribe(m, &grpc.GenericServerStream[SubscribeRequest, ChangeEvent]{ServerStream: stream})
}

// WorkLogService_ServiceDesc is the grpc.ServiceDesc for WorkLogService.
var WorkLogService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WorkLogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("RegisterUser", WorkLogServiceServer.RegisterUser),
		unary("GetSalt", WorkLogServiceServer.GetSalt),
		unary("Login", WorkLogServiceServer.Login),
		unary("RefreshToken", WorkLogServiceServer.RefreshToken),
		unary("WhoAmI", WorkLogServiceServer.WhoAmI),
		unary("Ping", WorkLogServiceServer.Ping),
		unary("GetProfile", WorkLogServiceServer.GetProfile),
		unary("UpsertProfile", WorkLogServiceServer.UpsertProfile),
		unary("ListEntriesByOwner", WorkLogServiceServer.ListEntriesByOwner),
		unary("ListRecentEntries", WorkLogServiceServer.ListRecentEntries),
		unary("InsertEntry", WorkLogServiceServer.InsertEntry),
		unary("DeleteEntry", WorkLogServiceServer.DeleteEntry),
		unary("GetExportUploadURL", WorkLogServiceServer.GetExportUploadURL),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "worklog.proto",
}
