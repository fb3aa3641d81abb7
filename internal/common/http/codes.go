package http

// Codes for failures that never reach the domain error taxonomy; domain
// errors carry their own codes.
const (
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeMissingAuthorization = "MISSING_AUTHORIZATION"
	CodeInternal             = "INTERNAL_ERROR"
)
