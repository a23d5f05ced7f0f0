package tiktok

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse is returned when TikTok answers with no data at all.
	// In practice this means the request was flagged as automated.
	ErrEmptyResponse = errors.New("tiktok returned an empty response")
	// ErrNotFound is returned when TikTok reports the user or video does not exist.
	ErrNotFound = errors.New("tiktok resource not found")
	// ErrInvalidJSON is returned when a response body cannot be decoded.
	ErrInvalidJSON = errors.New("tiktok returned invalid json")
	// ErrInvalidURL is returned for video URLs outside the TikTok domain.
	ErrInvalidURL = errors.New("invalid tiktok video url")
	// ErrUnsupportedBrowser is returned by New for an unknown browser engine.
	ErrUnsupportedBrowser = errors.New("unsupported browser")
)

// notFoundCodes are TikTok statusCode values meaning the target is gone.
var notFoundCodes = map[int]bool{
	10202: true, // user does not exist
	10204: true, // item does not exist
	10221: true, // user banned
}

// APIError is a non-zero statusCode reported inside a 200 response.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tiktok %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

func statusError(endpoint string, code int, msg string) error {
	if code == 0 {
		return nil
	}
	if notFoundCodes[code] {
		return fmt.Errorf("%w: %s (status %d)", ErrNotFound, msg, code)
	}
	return &APIError{Endpoint: endpoint, StatusCode: code, Message: msg}
}

// outcome maps an error to the metric label recorded for a request.
func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidJSON):
		return "invalid_json"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "error"
	}
}
