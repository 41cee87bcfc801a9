package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// UserServiceName is the fully-qualified name of the UserService service.
const UserServiceName = "splitledger.v1.UserService"

// UserService procedure paths.
const (
	UserServiceCreateUserProcedure         = "/splitledger.v1.UserService/CreateUser"
	UserServiceGetUserProcedure            = "/splitledger.v1.UserService/GetUser"
	UserServiceListUsersProcedure          = "/splitledger.v1.UserService/ListUsers"
	UserServiceListAvailableUsersProcedure = "/splitledger.v1.UserService/ListAvailableUsers"
)

// UserServiceHandler is implemented by the server.
type UserServiceHandler interface {
	CreateUser(context.Context, *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	ListAvailableUsers(context.Context, *connect.Request[api.ListAvailableUsersRequest]) (*connect.Response[api.ListAvailableUsersResponse], error)
}

// NewUserServiceHandler builds an HTTP handler for svc. The returned path
// is the prefix to mount it under.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(UserServiceCreateUserProcedure, connect.NewUnaryHandler(UserServiceCreateUserProcedure, svc.CreateUser, opts...))
	mux.Handle(UserServiceGetUserProcedure, connect.NewUnaryHandler(UserServiceGetUserProcedure, svc.GetUser, opts...))
	mux.Handle(UserServiceListUsersProcedure, connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, opts...))
	mux.Handle(UserServiceListAvailableUsersProcedure, connect.NewUnaryHandler(UserServiceListAvailableUsersProcedure, svc.ListAvailableUsers, opts...))
	return "/" + UserServiceName + "/", mux
}

// UserServiceClient calls a UserService.
type UserServiceClient interface {
	CreateUser(context.Context, *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	ListAvailableUsers(context.Context, *connect.Request[api.ListAvailableUsersRequest]) (*connect.Response[api.ListAvailableUsersResponse], error)
}

// NewUserServiceClient creates a client for the UserService at baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &userServiceClient{
		createUser:         connect.NewClient[api.CreateUserRequest, api.CreateUserResponse](httpClient, baseURL+UserServiceCreateUserProcedure, opts...),
		getUser:            connect.NewClient[api.GetUserRequest, api.GetUserResponse](httpClient, baseURL+UserServiceGetUserProcedure, opts...),
		listUsers:          connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL+UserServiceListUsersProcedure, opts...),
		listAvailableUsers: connect.NewClient[api.ListAvailableUsersRequest, api.ListAvailableUsersResponse](httpClient, baseURL+UserServiceListAvailableUsersProcedure, opts...),
	}
}

type userServiceClient struct {
	createUser         *connect.Client[api.CreateUserRequest, api.CreateUserResponse]
	getUser            *connect.Client[api.GetUserRequest, api.GetUserResponse]
	listUsers          *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	listAvailableUsers *connect.Client[api.ListAvailableUsersRequest, api.ListAvailableUsersResponse]
}

func (c *userServiceClient) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	return c.createUser.CallUnary(ctx, req)
}

func (c *userServiceClient) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *userServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *userServiceClient) ListAvailableUsers(ctx context.Context, req *connect.Request[api.ListAvailableUsersRequest]) (*connect.Response[api.ListAvailableUsersResponse], error) {
	return c.listAvailableUsers.CallUnary(ctx, req)
}
