package services

import (
	"errors"
	"fmt"

	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/models"
	"github.com/cashwise/backend/internal/storage"
	"github.com/google/uuid"
)

// Kind classifies a failed operation for the transport layer.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindNotFound     Kind = "NOT_FOUND"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindStorage      Kind = "STORAGE_ERROR"
)

// Error is returned by every core operation that fails for a domain reason.
// Message is safe to show to the caller; Err carries the cause.
type Error struct {
	Kind    Kind
	Message string
	// Code overrides the error type reported to clients when set.
	Code    string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func UnauthorizedError(err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: "You are not allowed to perform this action!", Err: err}
}

func StorageError(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: "Something went wrong, please try again", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf reports the kind of err. Errors that are not *Error are treated as
// storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, authz.ErrUnauthenticated) || errors.Is(err, authz.ErrForbidden) || errors.Is(err, authz.ErrNotOwner) {
		return KindUnauthorized
	}
	if errors.Is(err, storage.ErrNotFound) {
		return KindNotFound
	}
	return KindStorage
}

func authorize(policy *authz.Policy, actor models.Actor, op authz.Operation, subjectID string) error {
	var err error
	if subjectID == "" {
		err = policy.Authorize(actor, op)
	} else {
		err = policy.AuthorizeFor(actor, op, subjectID)
	}
	if err != nil {
		return UnauthorizedError(err)
	}
	return nil
}

// validID reports whether id is a canonical uuid. Anything else can never
// match a stored row.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
