package directory

import (
	"time"

	"github.com/uptrace/bun"
)

// User represents a directory user
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk,type:uuid" json:"id"`
	Username  string    `bun:"username,notnull,unique" json:"username"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	FullName  *string   `bun:"full_name" json:"full_name,omitempty"`
	Enabled   bool      `bun:"enabled,notnull,default:true" json:"enabled"`
	Groups    []*Group  `bun:"m2m:user_groups,join:User=Group" json:"groups"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// HasGroup reports whether the user is a member of the given group
func (u *User) HasGroup(groupID string) bool {
	for _, g := range u.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

// Group represents a directory group. Groups are read-only from this
// service's perspective; they are created by migrations or seeding.
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:g"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description *string   `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// UserGroup is the membership join row between users and groups
type UserGroup struct {
	bun.BaseModel `bun:"table:user_groups,alias:ug"`

	UserID    string    `bun:"user_id,pk,type:uuid" json:"user_id"`
	User      *User     `bun:"rel:belongs-to,join:user_id=id,on_delete:CASCADE" json:"-"`
	GroupID   string    `bun:"group_id,pk" json:"group_id"`
	Group     *Group    `bun:"rel:belongs-to,join:group_id=id,on_delete:CASCADE" json:"-"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// CreateUserRequest is the payload for creating a user
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=2,max=64"`
	Email    string  `json:"email" validate:"required,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=128"`
	Enabled  *bool   `json:"enabled,omitempty"`
}

// ToUser builds the user record to persist. Enabled defaults to true when
// the payload leaves it unset.
func (r *CreateUserRequest) ToUser(id string) *User {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}

	now := time.Now()
	return &User{
		ID:        id,
		Username:  r.Username,
		Email:     r.Email,
		FullName:  r.FullName,
		Enabled:   enabled,
		Groups:    []*Group{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateUserRequest is the payload for updating a user. All fields are
// optional; unset fields leave the stored value untouched.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=2,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=128"`
	Enabled  *bool   `json:"enabled,omitempty"`
}

// ApplyTo merges the payload over an existing user record
func (r *UpdateUserRequest) ApplyTo(user *User) {
	if r.Username != nil {
		user.Username = *r.Username
	}
	if r.Email != nil {
		user.Email = *r.Email
	}
	if r.FullName != nil {
		user.FullName = r.FullName
	}
	if r.Enabled != nil {
		user.Enabled = *r.Enabled
	}
	user.UpdatedAt = time.Now()
}

// UserPage is one page of a user listing
type UserPage struct {
	Users      []*User `json:"users"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
}

// NewUserPage assembles page metadata from a result slice and total count
func NewUserPage(users []*User, criteria *ListCriteria, total int) *UserPage {
	if users == nil {
		users = []*User{}
	}
	totalPages := 0
	if criteria.Count > 0 {
		totalPages = (total + criteria.Count - 1) / criteria.Count
	}
	return &UserPage{
		Users:      users,
		Page:       criteria.Page,
		PerPage:    criteria.Count,
		Total:      total,
		TotalPages: totalPages,
	}
}
