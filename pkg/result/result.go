// Package result renders every API response in one JSON envelope.
package result

import (
	"errors"

	"grosir/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the single response shape of the API.
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Create builds the envelope for an operation outcome. A non-nil err wins over data.
func Create(err error, data interface{}) Envelope {
	if err != nil {
		return Envelope{Status: StatusError, Error: err.Error()}
	}
	return Envelope{Status: StatusSuccess, Data: data}
}

// Writer sends envelopes. Unless Strict is set every envelope goes out
// with 200 OK and clients read the status field.
type Writer struct {
	Strict bool
}

// Send writes the envelope for (data, err) to c.
func (w Writer) Send(c *fiber.Ctx, data interface{}, err error) error {
	return c.Status(w.StatusFor(err)).JSON(Create(err, data))
}

// StatusFor picks the HTTP status for err.
func (w Writer) StatusFor(err error) int {
	if err == nil || !w.Strict {
		return fiber.StatusOK
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	switch apperror.KindOf(err) {
	case apperror.KindInvalidInput:
		return fiber.StatusBadRequest
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindStore, apperror.KindInternal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders errors that escape handlers (unknown routes,
// oversized bodies, panics caught by recover) through the envelope.
func (w Writer) ErrorHandler(c *fiber.Ctx, err error) error {
	return w.Send(c, nil, err)
}
