package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// SQLSTATE for unique constraint violations
const pgUniqueViolation = "23505"

// PostgresStore implements UserStore, GroupStore and UserPager using
// PostgreSQL
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL store. The membership join
// model is registered here so the many-to-many relation resolves.
func NewPostgresStore(db *bun.DB) *PostgresStore {
	db.RegisterModel((*UserGroup)(nil))
	return &PostgresStore{db: db}
}

// GetUser retrieves a user with its group memberships
func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*User, error) {
	user := &User{}
	err := s.db.NewSelect().
		Model(user).
		Relation("Groups").
		Where("u.id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewUserNotFoundError(userID)
		}
		return nil, NewStorageQueryError("get", "users", err)
	}
	if user.Groups == nil {
		user.Groups = []*Group{}
	}
	return user, nil
}

// CreateUser persists a new user record
func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	_, err := s.db.NewInsert().
		Model(user).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return NewUserAlreadyExistsError(user.ID, err)
		}
		return NewStorageQueryError("create", "users", err)
	}
	return nil
}

// UpdateUser persists changes to an existing user record
func (s *PostgresStore) UpdateUser(ctx context.Context, user *User) error {
	result, err := s.db.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return NewStorageConstraintError("update", "users", err)
		}
		return NewStorageQueryError("update", "users", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return NewStorageQueryError("update", "users", err)
	}
	if rowsAffected == 0 {
		return NewUserNotFoundError(user.ID)
	}
	return nil
}

// DeleteUser removes a user record. Membership rows follow via the foreign
// key cascade on user_groups.
func (s *PostgresStore) DeleteUser(ctx context.Context, userID string) error {
	result, err := s.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return NewStorageQueryError("delete", "users", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return NewStorageQueryError("delete", "users", err)
	}
	if rowsAffected == 0 {
		return NewUserNotFoundError(userID)
	}
	return nil
}

// AddMembership inserts a membership row. The composite primary key on
// (user_id, group_id) makes a duplicate insert a constraint violation, which
// closes the read-then-write race on concurrent adds.
func (s *PostgresStore) AddMembership(ctx context.Context, userID, groupID string) error {
	membership := &UserGroup{UserID: userID, GroupID: groupID}
	_, err := s.db.NewInsert().
		Model(membership).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return NewStorageConstraintError("add_membership", "user_groups", err)
		}
		return NewStorageQueryError("add_membership", "user_groups", err)
	}
	return nil
}

// RemoveMembership deletes a membership row. Zero rows affected means the
// membership was already gone.
func (s *PostgresStore) RemoveMembership(ctx context.Context, userID, groupID string) error {
	result, err := s.db.NewDelete().
		Model((*UserGroup)(nil)).
		Where("user_id = ?", userID).
		Where("group_id = ?", groupID).
		Exec(ctx)
	if err != nil {
		return NewStorageQueryError("remove_membership", "user_groups", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return NewStorageQueryError("remove_membership", "user_groups", err)
	}
	if rowsAffected == 0 {
		return NewStorageConstraintError("remove_membership", "user_groups",
			fmt.Errorf("membership %s/%s does not exist", userID, groupID))
	}
	return nil
}

// PaginateUsers returns one page of users matching the criteria, with the
// total count taken before limit/offset are applied. Criteria must already
// be normalized.
func (s *PostgresStore) PaginateUsers(ctx context.Context, criteria *ListCriteria) (*UserPage, error) {
	var users []*User
	query := s.db.NewSelect().
		Model(&users).
		Relation("Groups")

	if enabled, ok := criteria.EnabledFilter(); ok {
		query = query.Where("u.enabled = ?", enabled)
	}

	for _, sf := range criteria.Sort {
		query = query.Order(fmt.Sprintf("u.%s %s", sf.Field, sortKeyword(sf.Direction)))
	}

	total, err := query.
		Limit(criteria.Count).
		Offset(criteria.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, NewStorageQueryError("paginate", "users", err)
	}

	for _, user := range users {
		if user.Groups == nil {
			user.Groups = []*Group{}
		}
	}
	return NewUserPage(users, criteria, total), nil
}

// GetGroup retrieves a group by ID
func (s *PostgresStore) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	group := &Group{}
	err := s.db.NewSelect().
		Model(group).
		Where("g.id = ?", groupID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewGroupNotFoundError(groupID)
		}
		return nil, NewStorageQueryError("get", "groups", err)
	}
	return group, nil
}

// ListGroups returns all groups ordered by ID
func (s *PostgresStore) ListGroups(ctx context.Context) ([]*Group, error) {
	var groups []*Group
	err := s.db.NewSelect().
		Model(&groups).
		Order("g.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, NewStorageQueryError("list", "groups", err)
	}
	if groups == nil {
		groups = []*Group{}
	}
	return groups, nil
}

func sortKeyword(d SortDirection) string {
	if d == SortDescending {
		return "DESC"
	}
	return "ASC"
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation
}
