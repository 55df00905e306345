package directory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewUserNotFoundError("u1")))
	assert.True(t, IsNotFound(NewGroupNotFoundError("g1")))
	assert.False(t, IsNotFound(NewAlreadyMemberError("u1", "g1")))
	assert.False(t, IsNotFound(errors.New("boom")))

	// matching survives wrapping
	wrapped := fmt.Errorf("resolving member: %w", NewUserNotFoundError("u1"))
	assert.True(t, IsNotFound(wrapped))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(NewAlreadyMemberError("u1", "g1")))
	assert.True(t, IsConflict(NewNotMemberError("u1", "g1")))
	assert.False(t, IsConflict(NewUserNotFoundError("u1")))
}

func TestIsConstraintViolation(t *testing.T) {
	cause := errors.New("duplicate key")
	assert.True(t, IsConstraintViolation(NewStorageConstraintError("add", "user_groups", cause)))
	assert.False(t, IsConstraintViolation(NewStorageQueryError("get", "users", cause)))
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageConnectionError("ping", "users", cause)
	assert.ErrorIs(t, err, cause)
}

func TestMembershipErrorMessages(t *testing.T) {
	assert.Equal(t, `User "u1" already has group "g1"`, NewAlreadyMemberError("u1", "g1").Message)
	assert.Equal(t, `User "u1" has not group "g1"`, NewNotMemberError("u1", "g1").Message)
}

func TestValidationErrorsFieldMessages(t *testing.T) {
	verrs := NewValidationErrors(
		NewFieldError("email", "nope", "must be a valid email address"),
		NewFieldError("username", "", "is required"),
	)

	assert.Equal(t, map[string]string{
		"email":    "must be a valid email address",
		"username": "is required",
	}, verrs.FieldMessages())
	assert.Contains(t, verrs.Error(), "email")
}
