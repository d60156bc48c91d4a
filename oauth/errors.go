package oauth

import "fmt"

// ErrorResponse is the typed form of an OAuth error body returned by a
// token or registration endpoint on a 4xx response (RFC 6749 §5.2):
// {"error": "...", "error_description": "..."}.
type ErrorResponse struct {
	Op          string
	StatusCode  int
	ErrorCode   string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *ErrorResponse) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauth: %s rejected (%d): %s: %s", e.Op, e.StatusCode, e.ErrorCode, e.Description)
	}
	return fmt.Sprintf("oauth: %s rejected (%d): %s", e.Op, e.StatusCode, e.ErrorCode)
}

// MissingRegistrationEndpointError is returned when Flow needs to register a
// client but the authorization server metadata carries no
// registration_endpoint.
type MissingRegistrationEndpointError struct{}

func (*MissingRegistrationEndpointError) Error() string {
	return "oauth: server published no registration_endpoint"
}

// RegistrationFailedError wraps a registration-endpoint failure that did not
// come back as a well-formed ErrorResponse body (malformed JSON, missing
// client_id, unexpected status).
type RegistrationFailedError struct {
	StatusCode int
	Cause      error
}

func (e *RegistrationFailedError) Error() string {
	return fmt.Sprintf("oauth: client registration failed (status %d): %v", e.StatusCode, e.Cause)
}

func (e *RegistrationFailedError) Unwrap() error { return e.Cause }

// NetworkError wraps a failure that produced no usable OAuth response. For
// discovery and registration the request never produced an HTTP response;
// the token exchange and refresh also report here any failure that is not an
// OAuth error response, such as a 2xx body without an access_token.
type NetworkError struct {
	Op    string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("oauth: %s: network error: %v", e.Op, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }
