package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// ValidationError carries a message safe to show to the end user, in contrast
// to infrastructure errors which must stay behind a generic reply.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// Validation wraps a user-facing message into an error.
func Validation(msg string) error { return ValidationError{Msg: msg} }

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
