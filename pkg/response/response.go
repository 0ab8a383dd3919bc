package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Application error codes carried alongside the HTTP status so clients can
// tell "you aren't allowed" from "this isn't possible right now" from "you
// made an invalid request".
const (
	CodeInvalidRequest      = 4001 // validation failure in the request payload
	CodeNotEligible         = 4002 // voter not on the session roster
	CodeInvalidOption       = 4003 // unknown ballot option
	CodeMissingMotivo       = 4004 // impediment declared without a reason
	CodeUnauthorized        = 4010 // caller role insufficient
	CodeNotFound            = 4040 // entity does not exist
	CodeInvalidSessionState = 4090 // operation outside the permitted state
	CodeAlreadyClosed       = 4091 // duplicate close rejected
	CodeStoreUnavailable    = 5030 // persistence collaborator failed
)

var msg = map[int]string{
	CodeInvalidRequest:      "invalid request",
	CodeNotEligible:         "voter is not eligible in this session",
	CodeInvalidOption:       "unknown ballot option",
	CodeMissingMotivo:       "impediment requires a reason",
	CodeUnauthorized:        "caller is not allowed to perform this action",
	CodeNotFound:            "not found",
	CodeInvalidSessionState: "operation not permitted in the current session state",
	CodeAlreadyClosed:       "session is already closed",
	CodeStoreUnavailable:    "storage temporarily unavailable",
}

// Message returns the canonical message for an application error code.
func Message(code int) string {
	if m, ok := msg[code]; ok {
		return m
	}
	return "unexpected error"
}

// Error writes the standard error payload.
func Error(c *gin.Context, status, code int, details string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": Message(code),
		"details": details,
	})
}

// BadRequest is the shorthand for payload validation failures.
func BadRequest(c *gin.Context, details string) {
	Error(c, http.StatusBadRequest, CodeInvalidRequest, details)
}
