package apix

import "fmt"

// The client maps every failure to one of four error types so callers can
// branch with errors.As instead of string matching.

// NetworkError is a transport-level failure: DNS, refused connection,
// timeout. The request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network_error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// InvalidResponseError means the backend returned a body that is not JSON
// where JSON was expected. This is a contract violation, not retried.
type InvalidResponseError struct {
	Status int
	Err    error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid_json_response (status %d): %v", e.Status, e.Err)
}
func (e *InvalidResponseError) Unwrap() error { return e.Err }

// UnauthorizedError is raised on any 401. By the time the caller sees it,
// the stored token and cached user have already been cleared.
type UnauthorizedError struct {
	Payload map[string]any
}

func (e *UnauthorizedError) Error() string { return "unauthorized" }

// APIError is any other non-2xx response. Code carries the backend error
// discriminator (e.g. "invalid_current_password") when present.
type APIError struct {
	Status  int
	Code    string
	Payload map[string]any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api_error %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api_error %d", e.Status)
}

// ValidationError is a pre-flight argument failure raised before any
// network call is made.
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string { return e.Code }

func requireID(code, v string) error {
	if v == "" {
		return &ValidationError{Code: code}
	}
	return nil
}
