package handler

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"itemapi/internal/dberr"
	"itemapi/internal/http/middleware"
	"itemapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "CONFLICT")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details map[string]any) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// handleServiceError translates a service or store error into the standard
// envelope. This is the single place where the closed set of error kinds
// becomes HTTP; raw store internals never reach the caller.
func handleServiceError(c *fiber.Ctx, err error) error {
	if kind, ok := service.KindOf(err); ok {
		switch kind {
		case service.KindNotFound:
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
		case service.KindConflict:
			return writeError(c, fiber.StatusConflict, "CONFLICT", err.Error())
		case service.KindForbidden:
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
		case service.KindInvalid:
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
		}
	}

	var blocked *dberr.DeletionBlockedError
	if errors.As(err, &blocked) {
		return writeErrorDetails(c, fiber.StatusConflict, "DELETION_PREVENTED", blocked.Reason, map[string]any{
			"entity_type":  blocked.EntityType,
			"entity_id":    blocked.EntityID,
			"reason":       blocked.Reason,
			"dependencies": blocked.Dependencies,
		})
	}

	switch dberr.KindOf(err) {
	case dberr.KindConnection:
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	case dberr.KindTimeout:
		return writeError(c, fiber.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "operation timed out")
	case dberr.KindUniqueViolation:
		return writeError(c, fiber.StatusConflict, "CONSTRAINT_VIOLATION", "this record already exists")
	case dberr.KindForeignKeyViolation:
		return writeError(c, fiber.StatusBadRequest, "FOREIGN_KEY_VIOLATION", "the operation references data that does not exist")
	case dberr.KindNotNullViolation:
		return writeError(c, fiber.StatusBadRequest, "REQUIRED_FIELD_MISSING", "a required field is missing")
	case dberr.KindCheckViolation:
		return writeError(c, fiber.StatusConflict, "CONSTRAINT_VIOLATION", "the operation violates a data constraint")
	case dberr.KindData:
		return writeError(c, fiber.StatusBadRequest, "INVALID_DATA", "the provided data is invalid or in the wrong format")
	default:
		logInternal(c, err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// logInternal records the full error detail for unclassified failures; the
// caller only ever sees the generic message.
func logInternal(c *fiber.Ctx, err error) {
	entry := map[string]any{
		"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		"level":      "error",
		"msg":        "unhandled_error",
		"request_id": requestIDFromCtx(c),
		"method":     c.Method(),
		"path":       c.Path(),
		"error":      err.Error(),
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
