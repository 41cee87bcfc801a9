package api

// CreateGroupRequest creates a group. When ViewerID is set the viewer is
// added as the first member.
type CreateGroupRequest struct {
	Title    string   `json:"title" validate:"max=200"`
	Members  []string `json:"members" validate:"dive,required"`
	ViewerID string   `json:"viewerId"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

// RemoveMemberRequest removes UserID from a group on behalf of ViewerID.
// Viewers cannot remove themselves.
type RemoveMemberRequest struct {
	GroupID  string `json:"groupId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
	ViewerID string `json:"viewerId" validate:"required"`
}

type RemoveMemberResponse struct {
	Group *Group `json:"group"`
}

// GetGroupViewRequest asks for a group as seen by one of its members.
type GetGroupViewRequest struct {
	GroupID  string `json:"groupId" validate:"required"`
	ViewerID string `json:"viewerId" validate:"required"`
}

// GetGroupViewResponse carries the viewer's balance and every member's balance.
type GetGroupViewResponse struct {
	Group              *Group           `json:"group"`
	Balance            string           `json:"balance"`
	Members            []*MemberBalance `json:"members"`
	SuggestedTransfers []*Transfer      `json:"suggestedTransfers"`
}
