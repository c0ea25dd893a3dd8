package webutil

import (
	"fmt"
	"net/http"
)

const (
	msgNotFound       = "Resource not found"
	msgInternalServer = "Internal Server Error"
)

// publicMessages are used when a constructor is given an empty message.
var publicMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusNotFound:            msgNotFound,
	http.StatusConflict:            "Conflict",
	http.StatusInternalServerError: msgInternalServer,
	http.StatusBadGateway:          "Upstream service failed",
	http.StatusServiceUnavailable:  "Service Unavailable",
}

// HTTPError carries the status code and client-safe message for a failed
// request. The cause is only logged.
type HTTPError struct {
	Code    int
	Message string
	cause   error
}

func (he *HTTPError) Error() string {
	return he.Message
}

func (he *HTTPError) Unwrap() error {
	return he.cause
}

func newHTTPError(code int, message string, cause error) *HTTPError {
	if message == "" {
		message = publicMessages[code]
	}
	if message == "" {
		message = http.StatusText(code)
	}
	return &HTTPError{Code: code, Message: message, cause: cause}
}

// NewHTTPError returns an error for code with message shown to the client.
func NewHTTPError(code int, message string) *HTTPError {
	return newHTTPError(code, message, nil)
}

// NewHTTPErrorWrap is NewHTTPError with an underlying cause.
func NewHTTPErrorWrap(code int, message string, cause error) *HTTPError {
	return newHTTPError(code, message, cause)
}

func ErrBadRequest(message string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message, nil)
}

func ErrBadRequestWrap(message string, cause error) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message, cause)
}

func ErrNotFound(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, nil)
}

func ErrNotFoundWrap(message string, cause error) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, cause)
}

func ErrConflict(message string) *HTTPError {
	return newHTTPError(http.StatusConflict, message, nil)
}

// ErrInternalServerWrap hides message from the client; it is kept in the
// logged cause instead.
func ErrInternalServerWrap(message string, cause error) *HTTPError {
	return newHTTPError(http.StatusInternalServerError, msgInternalServer, fmt.Errorf("%s: %w", message, cause))
}

// ErrBadGatewayWrap reports a failure of an upstream service such as an
// email provider.
func ErrBadGatewayWrap(message string, cause error) *HTTPError {
	return newHTTPError(http.StatusBadGateway, message, cause)
}

func ErrServiceUnavailable(message string) *HTTPError {
	return newHTTPError(http.StatusServiceUnavailable, message, nil)
}
