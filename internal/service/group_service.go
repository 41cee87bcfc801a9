package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group. The viewer, when given, becomes its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"title", req.Msg.Title,
		"viewer_id", req.Msg.ViewerID,
		"members_count", len(req.Msg.Members),
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	var members []string
	if req.Msg.ViewerID != "" {
		members = append(members, req.Msg.ViewerID)
	}
	members = append(members, req.Msg.Members...)

	group := &models.Group{Title: req.Msg.Title, Members: members}
	if err := group.Validate(); err != nil {
		return nil, connectError(err)
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// DeleteGroup removes a group by ID, along with its ledger.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a user to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	if err := s.store.AddMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		slog.Warn("AddMember failed", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "error", err)
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group)}), nil
}

// RemoveMember removes a user from a group. A viewer cannot remove themself.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received",
		"group_id", req.Msg.GroupID,
		"user_id", req.Msg.UserID,
		"viewer_id", req.Msg.ViewerID,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}
	if req.Msg.UserID == req.Msg.ViewerID {
		return nil, connectError(ledgererr.State(ledgererr.RemovalDenied, "user %s cannot remove themself from a group", req.Msg.ViewerID))
	}

	if err := s.store.RemoveMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		slog.Warn("RemoveMember failed", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "error", err)
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.RemoveMemberResponse{Group: toAPIGroup(group)}), nil
}

// GetGroupView returns the group as seen by a member: their own balance,
// every member's balance and a set of transfers that would settle the group.
func (s *GroupService) GetGroupView(ctx context.Context, req *connect.Request[api.GetGroupViewRequest]) (*connect.Response[api.GetGroupViewResponse], error) {
	slog.Info("GetGroupView request received", "group_id", req.Msg.GroupID, "viewer_id", req.Msg.ViewerID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	ledger, names, err := loadLedgerWithNames(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroupView failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	if !ledger.Group.HasMember(req.Msg.ViewerID) {
		return nil, connectError(ledgererr.Reference(ledgererr.InvalidReference, "viewerId",
			"user %s is not a member of group %s", req.Msg.ViewerID, req.Msg.GroupID))
	}

	balances := calculator.ComputeBalances(ledger.Input())
	viewerBalance := calculator.ComputeBalance(ledger.Input(), req.Msg.ViewerID)

	slog.Info("GetGroupView successful",
		"group_id", req.Msg.GroupID,
		"viewer_id", req.Msg.ViewerID,
		"balance", models.Format(viewerBalance),
	)

	return connect.NewResponse(&api.GetGroupViewResponse{
		Group:              toAPIGroup(ledger.Group),
		Balance:            models.Format(viewerBalance),
		Members:            toAPIBalances(balances, names),
		SuggestedTransfers: toAPITransfers(calculator.SimplifyDebts(balances)),
	}), nil
}
