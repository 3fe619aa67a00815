package user

import domain "user-admin-console/internal/domain/user"

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	FirstName string `validate:"min=2,max=100"`
	LastName  string `validate:"min=2,max=100"`
	Email     string `validate:"required,email"`
	Enabled   bool
	Org       string `validate:"required,org"`
	Role      string `validate:"required,role"`
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	ID string
}

// PutUserRequest replaces every field of an existing user.
type PutUserRequest struct {
	ID        string `validate:"required"`
	FirstName string `validate:"min=2,max=100"`
	LastName  string `validate:"min=2,max=100"`
	Email     string `validate:"required,email"`
	Enabled   bool
	Org       string `validate:"required,org"`
	Role      string `validate:"required,role"`
}

// PutUserResponse represents the response payload after replacing a user.
type PutUserResponse struct {
	ID string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string
}

// GetUserResponse carries one user record.
type GetUserResponse struct {
	User domain.User
}

// ListUsersRequest represents the request payload for listing users.
// It supports pagination and search functionality.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []domain.User
	Pagination *domain.Pagination
}
