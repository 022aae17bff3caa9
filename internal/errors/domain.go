package errors

import (
	stderrors "errors"
	"fmt"
)

// ValidationError reports a malformed or missing field.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s.%s: %s", e.Entity, e.Field, e.Reason)
}

// NewValidationError creates a ValidationError
func NewValidationError(entity, field, reason string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Reason: reason}
}

// NotFoundError reports an operation on a missing or tombstoned row.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// IllegalTransitionError reports a status change the workflow does not allow.
type IllegalTransitionError struct {
	TicketID string
	From     string
	To       string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("ticket %q cannot move from status %q to %q", e.TicketID, e.From, e.To)
}

// WorkflowConfigError reports a malformed workflow step graph.
type WorkflowConfigError struct {
	WorkflowID string
	Reason     string
}

func (e *WorkflowConfigError) Error() string {
	return fmt.Sprintf("workflow %q is misconfigured: %s", e.WorkflowID, e.Reason)
}

// ConflictError reports a failed optimistic-concurrency precondition.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %q: %s", e.Entity, e.ID, e.Reason)
}

// IsValidation reports whether err wraps a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsIllegalTransition reports whether err wraps an IllegalTransitionError
func IsIllegalTransition(err error) bool {
	var target *IllegalTransitionError
	return stderrors.As(err, &target)
}

// IsWorkflowConfig reports whether err wraps a WorkflowConfigError
func IsWorkflowConfig(err error) bool {
	var target *WorkflowConfigError
	return stderrors.As(err, &target)
}

// IsConflict reports whether err wraps a ConflictError
func IsConflict(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}
