package api

type CreateUserRequest struct {
	Name string `json:"name" validate:"max=100"`
}

type CreateUserResponse struct {
	User *User `json:"user"`
}

type GetUserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type GetUserResponse struct {
	User *User `json:"user"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

// ListAvailableUsersRequest asks for the users that could still join a group.
type ListAvailableUsersRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListAvailableUsersResponse struct {
	Users []*User `json:"users"`
}
