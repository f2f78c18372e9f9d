// Package apperrors defines the closed set of business error kinds. Expected
// outcomes are returned as values of these types and inspected with
// errors.As; they are never signalled through panics.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError: caller-fixable input problem, rejected before any
// gateway call. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError: the operation contradicts current state (double refund,
// cancel-after-complete). Rejected before any gateway call.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Reason)
}

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError: the referenced record does not exist.
type NotFoundError struct {
	Resource string
	Ref      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Ref)
}

func NotFound(resource, ref string) error {
	return &NotFoundError{Resource: resource, Ref: ref}
}

// GatewayError: the provider definitively declined. Terminal for this
// attempt; counts toward a subscription's failure budget.
type GatewayError struct {
	GatewayId string
	Code      string
	Reason    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s declined (%s): %s", e.GatewayId, e.Code, e.Reason)
}

// GatewayTransientError: timeout / 5xx / network failure. The outcome is
// ambiguous, not a decline: the charge may have succeeded on the provider
// side, so the donation must stay non-terminal until reconciliation.
type GatewayTransientError struct {
	GatewayId string
	Err       error
}

func (e *GatewayTransientError) Error() string {
	return fmt.Sprintf("gateway %s transient failure: %v", e.GatewayId, e.Err)
}

func (e *GatewayTransientError) Unwrap() error {
	return e.Err
}

// DuplicateEventError: the webhook event was already applied. Absorbed by
// callers as a successful no-op.
type DuplicateEventError struct {
	GatewayId string
	EventId   string
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("duplicate gateway event %s/%s", e.GatewayId, e.EventId)
}

// SchedulerClaimConflict: another tick already claimed the subscription.
// Skipped silently, logged for observability.
type SchedulerClaimConflict struct {
	SubscriptionId string
}

func (e *SchedulerClaimConflict) Error() string {
	return fmt.Sprintf("subscription %s already claimed", e.SubscriptionId)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsGateway(err error) bool {
	var target *GatewayError
	return errors.As(err, &target)
}

func IsGatewayTransient(err error) bool {
	var target *GatewayTransientError
	return errors.As(err, &target)
}

func IsDuplicateEvent(err error) bool {
	var target *DuplicateEventError
	return errors.As(err, &target)
}

func IsClaimConflict(err error) bool {
	var target *SchedulerClaimConflict
	return errors.As(err, &target)
}
