package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service implements the DirectoryManager interface. It holds no state of
// its own; every record lives in the injected stores, so a single instance
// is safe for concurrent use.
type Service struct {
	users     UserStore
	groups    GroupStore
	pager     UserPager
	validator Validator
}

// NewService creates a new directory service
func NewService(users UserStore, groups GroupStore, pager UserPager, validator Validator) *Service {
	return &Service{
		users:     users,
		groups:    groups,
		pager:     pager,
		validator: validator,
	}
}

// ListUsers returns one page of users for the given criteria. Criteria are
// normalized first: page/count fall back to defaults, unknown filter keys
// and nil filter values are dropped, sort directions default to ascending.
func (s *Service) ListUsers(ctx context.Context, criteria *ListCriteria) (*UserPage, error) {
	if criteria == nil {
		criteria = &ListCriteria{}
	}
	page, err := s.pager.PaginateUsers(ctx, criteria.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to paginate users: %w", err)
	}
	return page, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, NewValidationErrors(NewFieldError("id", userID, "is required"))
	}
	return s.users.GetUser(ctx, userID)
}

// CreateUser validates the payload and persists a new user. Nothing is
// written when validation fails.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, err
	}

	user := req.ToUser(uuid.NewString())
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UpdateUser merges the payload over an existing user and persists the
// result. The user is resolved before the payload is validated, so an
// unknown ID yields not-found even when the payload is invalid.
func (s *Service) UpdateUser(ctx context.Context, userID string, req *UpdateUserRequest) (*User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(req); err != nil {
		return nil, err
	}

	req.ApplyTo(user)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return user, nil
}

// DeleteUser removes a user. Deletion is unconditional once the user
// resolves; membership rows are cleaned up by the store.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	return nil
}

// AddUserToGroup attaches a group to a user. Adding a membership that
// already exists is a conflict, not a no-op. The store's uniqueness
// constraint backs the existence check, so a concurrent duplicate add
// surfaces as the same conflict.
func (s *Service) AddUserToGroup(ctx context.Context, userID, groupID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if user.HasGroup(group.ID) {
		return NewAlreadyMemberError(userID, groupID)
	}

	if err := s.users.AddMembership(ctx, userID, groupID); err != nil {
		if IsConstraintViolation(err) {
			return NewAlreadyMemberError(userID, groupID)
		}
		return fmt.Errorf("failed to add user %s to group %s: %w", userID, groupID, err)
	}
	return nil
}

// RemoveUserFromGroup detaches a group from a user. Removing an absent
// membership is a conflict, symmetric to AddUserToGroup.
func (s *Service) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if !user.HasGroup(group.ID) {
		return NewNotMemberError(userID, groupID)
	}

	if err := s.users.RemoveMembership(ctx, userID, groupID); err != nil {
		if IsConstraintViolation(err) {
			return NewNotMemberError(userID, groupID)
		}
		return fmt.Errorf("failed to remove user %s from group %s: %w", userID, groupID, err)
	}
	return nil
}

// GetGroup retrieves a group by ID
func (s *Service) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	if groupID == "" {
		return nil, NewValidationErrors(NewFieldError("id", groupID, "is required"))
	}
	return s.groups.GetGroup(ctx, groupID)
}

// ListGroups returns all groups
func (s *Service) ListGroups(ctx context.Context) ([]*Group, error) {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
