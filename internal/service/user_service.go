package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.UserServiceHandler = (*UserService)(nil)

// UserService implements the Connect UserService
type UserService struct {
	store storage.Store
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// CreateUser registers a new user.
func (s *UserService) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	slog.Info("CreateUser request received", "name", req.Msg.Name)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	user := &models.User{Name: req.Msg.Name}
	if err := user.Validate(); err != nil {
		return nil, connectError(err)
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		slog.Error("CreateUser failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("User created", "user_id", user.ID)

	return connect.NewResponse(&api.CreateUserResponse{User: toAPIUser(user)}), nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	user, err := s.store.GetUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetUserResponse{User: toAPIUser(user)}), nil
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		slog.Error("ListUsers failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("ListUsers successful", "count", len(users))

	return connect.NewResponse(&api.ListUsersResponse{Users: toAPIUsers(users)}), nil
}

// ListAvailableUsers returns the users who are not yet members of a group.
func (s *UserService) ListAvailableUsers(ctx context.Context, req *connect.Request[api.ListAvailableUsersRequest]) (*connect.Response[api.ListAvailableUsersResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	users, err := s.store.ListAvailableUsers(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListAvailableUsers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListAvailableUsersResponse{Users: toAPIUsers(users)}), nil
}
