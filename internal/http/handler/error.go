package handler

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"tiktokapi/internal/http/middleware"
	"tiktokapi/internal/service"
	"tiktokapi/internal/tiktok"
)

const emptyResponseDetail = "TikTok returned no data, which usually means the request was detected as automated. " +
	"Retry later or configure a fresh MS_TOKEN."

// errorPayload is the body of every error response.
type errorPayload struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Error     string `json:"error"`
	Detail    string `json:"detail"`
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
// - code: machine-readable short error code (e.g., "MISSING_PARAMETER", "EMPTY_RESPONSE")
// - msg: human-readable safe message
// - detail: optional hint for the caller, empty when there is nothing to add
func writeError(c *fiber.Ctx, status int, code, msg, detail string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Code:      code,
		Error:     msg,
		Detail:    detail,
	})
}

// writeServiceError translates errors returned by the service layer.
func writeServiceError(c *fiber.Ctx, err error) error {
	var apiErr *tiktok.APIError
	switch {
	case errors.Is(err, service.ErrParamRequired):
		return writeError(c, fiber.StatusBadRequest, "MISSING_PARAMETER", "missing required parameter", "")
	case errors.Is(err, tiktok.ErrEmptyResponse):
		return writeError(c, fiber.StatusServiceUnavailable, "EMPTY_RESPONSE", "TikTok returned an empty response", emptyResponseDetail)
	case errors.Is(err, tiktok.ErrInvalidURL):
		return writeError(c, fiber.StatusBadRequest, "INVALID_URL", "invalid video url", "url must point to tiktok.com")
	case errors.Is(err, tiktok.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found", "TikTok reports the user or video does not exist")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "fetch not found", "")
	case errors.As(err, &apiErr):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "TikTok rejected the request", apiErr.Message)
	case errors.Is(err, tiktok.ErrInvalidJSON):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "TikTok returned an unreadable response", "")
	case errors.Is(err, context.DeadlineExceeded):
		return writeError(c, fiber.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "TikTok did not answer in time", "")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", "")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request", "")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found", "")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed", "")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error", "")
		}
	}
}
