package directory

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for directory operations

// UserError represents errors related to user operations
type UserError struct {
	Type    string
	UserID  string
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("user error [%s] for user %s: %s (caused by: %v)", e.Type, e.UserID, e.Message, e.Cause)
	}
	return fmt.Sprintf("user error [%s] for user %s: %s", e.Type, e.UserID, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// User error types
const (
	UserErrorTypeNotFound      = "not_found"
	UserErrorTypeAlreadyExists = "already_exists"
)

// NewUserNotFoundError creates an error for when a user is not found
func NewUserNotFoundError(userID string) *UserError {
	return &UserError{
		Type:    UserErrorTypeNotFound,
		UserID:  userID,
		Message: "user not found",
	}
}

// NewUserAlreadyExistsError creates an error for a duplicate user record
func NewUserAlreadyExistsError(userID string, cause error) *UserError {
	return &UserError{
		Type:    UserErrorTypeAlreadyExists,
		UserID:  userID,
		Message: "user already exists",
		Cause:   cause,
	}
}

// GroupError represents errors related to group operations
type GroupError struct {
	Type    string
	GroupID string
	Message string
	Cause   error
}

func (e *GroupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("group error [%s] for group %s: %s (caused by: %v)", e.Type, e.GroupID, e.Message, e.Cause)
	}
	return fmt.Sprintf("group error [%s] for group %s: %s", e.Type, e.GroupID, e.Message)
}

func (e *GroupError) Unwrap() error {
	return e.Cause
}

// Group error types
const (
	GroupErrorTypeNotFound = "not_found"
)

// NewGroupNotFoundError creates an error for when a group is not found
func NewGroupNotFoundError(groupID string) *GroupError {
	return &GroupError{
		Type:    GroupErrorTypeNotFound,
		GroupID: groupID,
		Message: "group not found",
	}
}

// MembershipError represents a rejected membership state transition. Both
// directions carry conflict semantics: the requested transition is refused
// because the current state already holds (or already does not hold).
type MembershipError struct {
	Type    string
	UserID  string
	GroupID string
	Message string
}

func (e *MembershipError) Error() string {
	return fmt.Sprintf("membership error [%s]: %s", e.Type, e.Message)
}

// Membership error types
const (
	MembershipErrorTypeAlreadyMember = "already_member"
	MembershipErrorTypeNotMember     = "not_member"
)

// NewAlreadyMemberError creates an error for adding an existing membership
func NewAlreadyMemberError(userID, groupID string) *MembershipError {
	return &MembershipError{
		Type:    MembershipErrorTypeAlreadyMember,
		UserID:  userID,
		GroupID: groupID,
		Message: fmt.Sprintf("User %q already has group %q", userID, groupID),
	}
}

// NewNotMemberError creates an error for removing an absent membership
func NewNotMemberError(userID, groupID string) *MembershipError {
	return &MembershipError{
		Type:    MembershipErrorTypeNotMember,
		UserID:  userID,
		GroupID: groupID,
		Message: fmt.Sprintf("User %q has not group %q", userID, groupID),
	}
}

// FieldError is one field-level validation failure
type FieldError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s' (value: %v): %s", e.Field, e.Value, e.Message)
}

// ValidationErrors aggregates the field-level failures of one payload
type ValidationErrors struct {
	Fields []*FieldError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("payload validation failed: %s", strings.Join(msgs, "; "))
}

// NewValidationErrors creates a validation error set from field errors
func NewValidationErrors(fields ...*FieldError) *ValidationErrors {
	return &ValidationErrors{Fields: fields}
}

// NewFieldError creates a new field-level validation error
func NewFieldError(field string, value interface{}, message string) *FieldError {
	return &FieldError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// FieldMessages returns the failures as a field → message map for responses
func (e *ValidationErrors) FieldMessages() map[string]string {
	msgs := make(map[string]string, len(e.Fields))
	for _, fe := range e.Fields {
		msgs[fe.Field] = fe.Message
	}
	return msgs
}

// StorageError represents errors from the underlying persistence layer
type StorageError struct {
	Type      string
	Operation string
	Resource  string
	Message   string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error [%s] during %s on %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Resource, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error [%s] during %s on %s: %s",
		e.Type, e.Operation, e.Resource, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Storage error types
const (
	StorageErrorTypeConnectionFailed    = "connection_failed"
	StorageErrorTypeQueryFailed         = "query_failed"
	StorageErrorTypeConstraintViolation = "constraint_violation"
)

// NewStorageConnectionError creates an error for storage connection failures
func NewStorageConnectionError(operation, resource string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeConnectionFailed,
		Operation: operation,
		Resource:  resource,
		Message:   "failed to connect to storage",
		Cause:     cause,
	}
}

// NewStorageQueryError creates an error for storage query failures
func NewStorageQueryError(operation, resource string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeQueryFailed,
		Operation: operation,
		Resource:  resource,
		Message:   "storage query failed",
		Cause:     cause,
	}
}

// NewStorageConstraintError creates an error for constraint violations
func NewStorageConstraintError(operation, resource string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeConstraintViolation,
		Operation: operation,
		Resource:  resource,
		Message:   "storage constraint violation",
		Cause:     cause,
	}
}

// IsNotFound reports whether err is a user or group not-found error
func IsNotFound(err error) bool {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Type == UserErrorTypeNotFound
	}
	var groupErr *GroupError
	if errors.As(err, &groupErr) {
		return groupErr.Type == GroupErrorTypeNotFound
	}
	return false
}

// IsConflict reports whether err is a membership conflict
func IsConflict(err error) bool {
	var memberErr *MembershipError
	return errors.As(err, &memberErr)
}

// IsConstraintViolation reports whether err is a storage constraint violation
func IsConstraintViolation(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr) && storageErr.Type == StorageErrorTypeConstraintViolation
}
