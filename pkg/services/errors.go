package services

import (
	"errors"
	"net/http"
)

// Error kinds returned by the service layer. Match with errors.Is.
var (
	ErrInvalidReference  = errors.New("invalid reference")
	ErrInvalidTimeWindow = errors.New("invalid time window")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
)

// Error carries a user-facing message on top of one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// HTTPStatus maps the kind onto a response status.
func (e *Error) HTTPStatus() int {
	switch {
	case errors.Is(e.Kind, ErrInvalidReference), errors.Is(e.Kind, ErrInvalidTimeWindow):
		return http.StatusBadRequest
	case errors.Is(e.Kind, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(e.Kind, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// 对外暴露的错误信息
const (
	MsgInvalidGym      = "Invalid gym id!"
	MsgForbidden       = "Forbidden"
	MsgJioNotFound     = "Jio not found"
	MsgProfileNotFound = "Profile not found"
	MsgNotSameDay      = "startDateTime and endDateTime should fall on the same day!"
	MsgStartAfterEnd   = "startDateTime should be before endDateTime!"
)
