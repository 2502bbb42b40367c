package authclient

import "net/http"

// statusMessages maps known HTTP status codes to user-facing messages. This
// table is the single place a status code becomes a message; call sites must
// go through messageFor instead of matching codes themselves.
var statusMessages = map[int]string{
	http.StatusUnauthorized:        "Incorrect email or password",
	http.StatusForbidden:           "Your account has been disabled",
	http.StatusNotFound:            "Account does not exist",
	http.StatusConflict:            "Email already registered",
	http.StatusUnprocessableEntity: "Invalid input, please check your details",
}

const (
	networkMessage   = "Cannot reach the server, please check your connection"
	serverMessage    = "Something went wrong, please try again later"
	genericMessage   = "Operation failed, please try again"
	notLoggedMessage = "You are not logged in"
)

// messageFor derives the user-facing message for a failed remote call.
// Known status codes win, then the server's detail text, then a generic
// fallback per error kind.
func messageFor(err *APIError) string {
	if err == nil {
		return genericMessage
	}
	switch err.Kind {
	case KindNetwork:
		return networkMessage
	case KindServerStatus:
		if msg, ok := statusMessages[err.StatusCode]; ok {
			return msg
		}
		if err.StatusCode >= 500 {
			return serverMessage
		}
		if err.Detail != "" {
			return err.Detail
		}
		return genericMessage
	default:
		return genericMessage
	}
}
