package services

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Error kinds returned by every service. Handlers map them to responses with KindOf.
var (
	ErrValidation   = stderrors.New("validation failed")
	ErrDuplicate    = stderrors.New("already exists")
	ErrNotFound     = stderrors.New("not found")
	ErrUnauthorized = stderrors.New("not authorized")
	ErrInvalidToken = stderrors.New("invalid or used token")
	ErrInternal     = stderrors.New("internal error")
)

// Refinements of the kinds above.
var (
	ErrAlreadyLinked    = errors.WithMessage(ErrDuplicate, "doctor and patient are already linked")
	ErrNotADoctor       = errors.WithMessage(ErrUnauthorized, "caller is not a doctor")
	ErrPasswordMismatch = errors.WithMessage(ErrUnauthorized, "password does not match")
	ErrEmailTaken       = errors.WithMessage(ErrDuplicate, "email already registered")
	ErrPhoneTaken       = errors.WithMessage(ErrDuplicate, "phone number already registered")
)

var kinds = []error{ErrInternal, ErrValidation, ErrDuplicate, ErrNotFound, ErrUnauthorized, ErrInvalidToken}

// KindOf returns the taxonomy kind err belongs to. Unclassified errors are internal.
func KindOf(err error) error {
	for _, k := range kinds {
		if stderrors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// internalError keeps the storage cause for logs while classifying as ErrInternal.
type internalError struct {
	op    string
	cause error
}

func (e *internalError) Error() string {
	return e.op + ": " + e.cause.Error()
}

func (e *internalError) Unwrap() error { return e.cause }

func (e *internalError) Is(target error) bool { return target == ErrInternal }

func internal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &internalError{op: op, cause: err}
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

// validationFailed classifies an ozzo-validation result as ErrValidation.
func validationFailed(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(ErrValidation, err.Error())
}

func isDuplicateKey(err error) bool {
	return stderrors.Is(err, gorm.ErrDuplicatedKey)
}
