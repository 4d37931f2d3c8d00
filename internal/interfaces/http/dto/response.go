package dto

import "strconv"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string             `json:"error" example:"Product not found"`
	Code    string             `json:"code" example:"ERR_NOT_FOUND"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: message, Code: code}
}

// NewValidationErrorResponse creates an error response with field details
func NewValidationErrorResponse(message string, details []ValidationDetail) ErrorResponse {
	return ErrorResponse{Error: message, Code: ErrCodeValidation, Details: details}
}

// MessageResponse is returned by operations without an entity payload
type MessageResponse struct {
	Message string `json:"message" example:"Product deleted successfully"`
}

// PageQuery holds the common pagination and search query parameters
type PageQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

// DefaultPage and DefaultLimit apply when the query omits them
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Normalize clamps page and limit into their allowed ranges
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// ParseLimit parses an optional positive row cap, returning 0 when absent or invalid
func ParseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
