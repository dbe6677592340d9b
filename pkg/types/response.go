package types

// SuccessEnvelope wraps every successful API payload under a "data" key so
// clients can distinguish results from errors without inspecting status codes.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a typed error: a stable machine-readable code,
// a human-readable message and optional structured details.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under an "error" key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewErrorEnvelope builds the error wire shape from its parts.
func NewErrorEnvelope(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
