package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a completion-service failure. The conversation engine
// switches on the kind to pick a deterministic fallback instead of aborting
// the turn.
type ErrorKind string

const (
	KindDisabled         ErrorKind = "disabled"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindQuotaExceeded    ErrorKind = "quota_exceeded"
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindUnknown          ErrorKind = "unknown"
)

// ServiceError is returned by a Completer when the underlying service fails.
type ServiceError struct {
	Kind ErrorKind
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("completion service failure: %s", e.Kind)
	}
	return fmt.Sprintf("completion service failure (%s): %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// KindOf extracts the classified kind from an error chain. Errors that are not
// a ServiceError report KindUnknown.
func KindOf(err error) ErrorKind {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	return KindUnknown
}

// Completer is the opaque text-completion service consumed by the engine.
// Token limits and temperature are fixed at construction time by the
// implementation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Disabled is a Completer for deployments without a configured provider.
// Every call fails with KindDisabled so the engine degrades to its
// deterministic fallbacks.
type Disabled struct {
	Reason string
}

func (d *Disabled) Complete(_ context.Context, _ string) (string, error) {
	reason := d.Reason
	if reason == "" {
		reason = "no completion provider configured"
	}
	return "", &ServiceError{Kind: KindDisabled, Err: errors.New(reason)}
}
