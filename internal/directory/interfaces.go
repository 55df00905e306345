package directory

import "context"

// UserStore defines the interface for user record persistence
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, userID string) error
	AddMembership(ctx context.Context, userID, groupID string) error
	RemoveMembership(ctx context.Context, userID, groupID string) error
}

// GroupStore defines the interface for group lookups. Groups are managed
// outside this service, so the store is read-only.
type GroupStore interface {
	GetGroup(ctx context.Context, groupID string) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
}

// UserPager defines the interface for paginated user retrieval. Criteria are
// expected to be normalized before they reach the pager.
type UserPager interface {
	PaginateUsers(ctx context.Context, criteria *ListCriteria) (*UserPage, error)
}

// Validator defines the interface for payload validation. Implementations
// return a *ValidationErrors describing every failed field, or nil.
type Validator interface {
	ValidateCreate(req *CreateUserRequest) error
	ValidateUpdate(req *UpdateUserRequest) error
}

// DirectoryManager defines the interface for directory operations
type DirectoryManager interface {
	ListUsers(ctx context.Context, criteria *ListCriteria) (*UserPage, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, userID string, req *UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, userID string) error
	AddUserToGroup(ctx context.Context, userID, groupID string) error
	RemoveUserFromGroup(ctx context.Context, userID, groupID string) error
	GetGroup(ctx context.Context, groupID string) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
}
