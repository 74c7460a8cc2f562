package handlers

import (
	"net/http"

	"github.com/crucial707/hci-users/internal/envelope"
)

// ErrMessageInternal is the generic message for 500 responses when errors are not exposed.
const ErrMessageInternal = "internal server error"

// Messages returned to API clients for create-user failures.
const (
	MsgJSONNotProvided     = "JSON data not provided."
	MsgCredentialsMissing  = "Username or password not provided."
	MsgCredentialsTooLong  = "Username or password too long."
	MsgUserAlreadyExists   = "User already exists."
	MsgRequestBodyTooLarge = "Request body too large."
)

// JSONError sends an envelope carrying only status and message.
func JSONError(w http.ResponseWriter, message string, status int) {
	envelope.Status(w, status, message)
}

// internalMessage is the info text of a 500 response for err.
func internalMessage(err error, expose bool) string {
	if expose && err != nil {
		return err.Error()
	}
	return ErrMessageInternal
}
