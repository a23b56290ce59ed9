package model

import "time"

// Error codes used in HTTP responses. Transport signaling is deliberately
// coarse: permission-gated denials and internal failures surface as generic
// tokens, never as internal error detail.
const (
	ErrCodeNotFound     = "notfound"
	ErrCodeError        = "error"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeRateLimited  = "rate_limited"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ErrorDetail carries the coarse error token and a short message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta is attached to every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ListPeopleResponse is the envelope for GET /v1/people.
type ListPeopleResponse struct {
	People  []Person     `json:"people"`
	Total   int          `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	HasMore bool         `json:"has_more"`
	Meta    ResponseMeta `json:"meta"`
}

// SavePersonRequest is the request body for POST /v1/people. Cosmetic fields
// are sanitized to safe defaults rather than rejected.
type SavePersonRequest struct {
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Login     bool     `json:"login"`
	Username  string   `json:"username"`
	Password  string   `json:"password,omitempty"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	GroupIDs  []string `json:"group_ids"`
}

// UsernameUniqueRequest is the request body for POST /v1/people/username-unique.
type UsernameUniqueRequest struct {
	Username string `json:"username"`
}

// UsernameUniqueResponse returns the negotiated username, possibly mutated.
type UsernameUniqueResponse struct {
	Username string `json:"username"`
}

// GeneratePasswordResponse returns a freshly generated memorable passphrase.
type GeneratePasswordResponse struct {
	Password string `json:"password"`
}

// AutocompleteResponse is the envelope for GET /v1/people/autocomplete.
type AutocompleteResponse struct {
	Entries []AutocompleteEntry `json:"entries"`
}
