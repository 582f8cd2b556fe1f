package errors

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the API error payload for err
func NewErrorResponse(err error) ErrorResponse {
	display := GetHint(err)
	if display == "" {
		display = "an unexpected error occurred"
	}
	return ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Display:       display,
			InternalError: err.Error(),
		},
	}
}
