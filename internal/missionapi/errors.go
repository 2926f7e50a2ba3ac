package missionapi

import "fmt"

// ErrorKind is the closed set of boundary error kinds.
// Validation kinds abort before any computation; PROPAGATOR_ERROR and
// RUN_CANCELLED surface mid-run; INTERNAL_ERROR marks an invariant bug.
type ErrorKind string

const (
	ErrInvalidTLE            ErrorKind = "INVALID_TLE"
	ErrInvalidTarget         ErrorKind = "INVALID_TARGET"
	ErrInvalidHorizon        ErrorKind = "INVALID_HORIZON"
	ErrSchedulerConfigInvalid ErrorKind = "SCHEDULER_CONFIG_INVALID"
	ErrPropagatorError       ErrorKind = "PROPAGATOR_ERROR"
	ErrRunCancelled          ErrorKind = "RUN_CANCELLED"
	ErrInternal              ErrorKind = "INTERNAL_ERROR"
)

// PlanError is the typed error returned at or after the request boundary.
// Field names the offending input field when the kind is a validation
// kind; it is empty for run-level failures.
type PlanError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *PlanError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Field, e.Message)
}

func newFieldError(kind ErrorKind, field, format string, args ...any) *PlanError {
	return &PlanError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}
