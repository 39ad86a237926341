package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDocumentID = errors.New("invalid document id")
	ErrInvalidWord       = errors.New("invalid word")
	ErrInvalidQueryToken = errors.New("invalid query token")
	ErrIndexConsistency  = errors.New("index consistency violation")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal error")
)

// Exit codes returned by the searcher CLI for each error class.
const (
	ExitOK       = 0
	ExitInternal = 1
	ExitUsage    = 2
	ExitNotFound = 3
	ExitCorrupt  = 4
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err was caused by rejected caller input.
// Validation failures are raised before any index mutation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDocumentID) ||
		errors.Is(err, ErrInvalidWord) ||
		errors.Is(err, ErrInvalidQueryToken) ||
		errors.Is(err, ErrInvalidInput)
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsValidation(err):
		return ExitUsage
	case errors.Is(err, ErrDocumentNotFound):
		return ExitNotFound
	case errors.Is(err, ErrIndexConsistency):
		return ExitCorrupt
	default:
		return ExitInternal
	}
}
