package types

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error   string `json:"error" example:"All fields are required"`
	Type    string `json:"type" example:"VALIDATION_ERROR"`
	Code    string `json:"code" example:"400"`
	Details string `json:"details,omitempty"`
}
