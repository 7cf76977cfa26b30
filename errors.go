package restro

import (
	"errors"
	"fmt"

	"github.com/xraph/restro/entitlement"
	"github.com/xraph/restro/tenant"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound            = errors.New("restro: not found")
	ErrAlreadyExists       = errors.New("restro: already exists")
	ErrValidation          = errors.New("restro: validation failed")
	ErrPermissionDenied    = errors.New("restro: permission denied")
	ErrReadOnly            = errors.New("restro: tenant is read-only")
	ErrTrialExpired        = errors.New("restro: trial period has expired")
	ErrExternalUnavailable = errors.New("restro: external service unavailable")
	ErrInvalidTransition   = errors.New("restro: invalid state transition")

	// Entity errors
	ErrTenantNotFound       = fmt.Errorf("%w: tenant", ErrNotFound)
	ErrOrderNotFound        = fmt.Errorf("%w: order", ErrNotFound)
	ErrIngredientNotFound   = fmt.Errorf("%w: ingredient", ErrNotFound)
	ErrTableNotFound        = fmt.Errorf("%w: table", ErrNotFound)
	ErrProductNotFound      = fmt.Errorf("%w: product", ErrNotFound)
	ErrCategoryNotFound     = fmt.Errorf("%w: category", ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("%w: subscription", ErrNotFound)

	// Command errors
	ErrConfirmationNotFound = fmt.Errorf("%w: confirmation", ErrNotFound)
	ErrNothingToExport      = errors.New("restro: nothing to export")

	// Store errors
	ErrStoreClosed     = errors.New("restro: store is closed")
	ErrMigrationFailed = errors.New("restro: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("restro: validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return ValidationError{Field: field, Message: msg}
}

// PermissionError reports a feature the tenant's plan does not include,
// with the plan that would unlock it.
type PermissionError struct {
	Feature  entitlement.Feature
	Required tenant.Plan
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("restro: %s requires the %s plan", e.Feature.Label(), e.Required)
}

func (e PermissionError) Unwrap() error { return ErrPermissionDenied }

// ErrorKind classifies errors for callers that present them.
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION"
	KindPermissionDenied    ErrorKind = "PERMISSION_DENIED"
	KindReadOnly            ErrorKind = "READ_ONLY"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindExternalUnavailable ErrorKind = "EXTERNAL_UNAVAILABLE"
	KindTrialExpired        ErrorKind = "TRIAL_EXPIRED"
	KindInvalidState        ErrorKind = "INVALID_STATE"
	KindInternal            ErrorKind = "INTERNAL"
)

// Kind returns the class of err. A nil error has no kind.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrReadOnly):
		return KindReadOnly
	case errors.Is(err, ErrTrialExpired):
		return KindTrialExpired
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNothingToExport):
		return KindValidation
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrExternalUnavailable):
		return KindExternalUnavailable
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidState
	default:
		return KindInternal
	}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation returns true if a required field was missing or invalid.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsPermissionDenied returns true if the tenant's plan is insufficient.
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }

// IsReadOnly returns true if the tenant is a read-only demo.
func IsReadOnly(err error) bool { return errors.Is(err, ErrReadOnly) }
