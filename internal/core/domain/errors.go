package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrContractNotFound   = errors.New("contract not found")
	ErrFileNotFound       = errors.New("no file associated with this contract")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user account is inactive")
	ErrUserExists         = errors.New("username or email already exists")
	ErrDuplicate          = errors.New("record already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSelfDelete         = errors.New("cannot delete current user")
	ErrUnsupportedFile    = errors.New("unsupported file type")
)

// ImportError reports a rejected bulk upload. Details carries one entry per
// offending row so the client can show them all at once.
type ImportError struct {
	Message string
	Details []string
}

func (e *ImportError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// Unwrap lets callers match the error with errors.Is(err, ErrInvalidInput).
func (e *ImportError) Unwrap() error { return ErrInvalidInput }
