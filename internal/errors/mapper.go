// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatusClientClosedRequest is the de-facto status for a request the client
// abandoned before we answered.
const StatusClientClosedRequest = 499

// Error is an error that already knows its HTTP status and public message.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Map converts repo/infra errors into HTTP-friendly errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	switch {
	case errors.As(err, &e):
		return e

	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Status: http.StatusNotFound, Message: "record not found", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Status: http.StatusGatewayTimeout, Message: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Status: StatusClientClosedRequest, Message: "request was canceled", Err: err}

	default:
		// the cause is logged by the caller, never sent to the client
		return &Error{Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
	}
}

// InvalidArgument creates a 400 error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// TooManyRequests creates a 429 error.
func TooManyRequests(msg string) error {
	return &Error{Status: http.StatusTooManyRequests, Message: msg}
}

// Respond writes err as a JSON error body and aborts the gin chain.
func Respond(c *gin.Context, err error) {
	e := Map(err)
	if e == nil {
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.Status, gin.H{"error": e.Message})
}
