package authclient

import "fmt"

// ErrorKind tags an APIError with how the request failed. Classification is
// total: every failure a Client returns carries exactly one kind.
type ErrorKind string

const (
	// KindNetwork means the request never produced a response.
	KindNetwork ErrorKind = "network"
	// KindServerStatus means the server responded with an error status.
	KindServerStatus ErrorKind = "server_status"
	// KindClient means the failure was local: a bad request body, an
	// unreadable response, or a malformed payload.
	KindClient ErrorKind = "client"
)

// APIError is the normalized form of every failed remote call.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // set only for KindServerStatus
	Detail     string // server-provided detail, when the body carried one
	Err        error  // underlying cause, when there is one
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindServerStatus:
		if e.Detail != "" {
			return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("server returned %d", e.StatusCode)
	case KindNetwork:
		return fmt.Sprintf("network failure: %v", e.Err)
	default:
		return fmt.Sprintf("client failure: %v", e.Err)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// IsStatus reports whether the error is a server response with the given
// status code.
func (e *APIError) IsStatus(code int) bool {
	return e.Kind == KindServerStatus && e.StatusCode == code
}
