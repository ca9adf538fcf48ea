package constants

// Standard Response Field Keys
const (
	ResponseFieldSuccess  = "success"
	ResponseFieldMessage  = "message"
	ResponseFieldData     = "data"
	ResponseFieldMetadata = "metadata"
	ResponseFieldErrors   = "errors"
)

// Pagination metadata
type Pagination struct {
	Total     int64 `json:"total"`
	Page      int   `json:"page"`
	PageTotal int   `json:"page_total"`
}

// BuildSuccessResponse builds the uniform envelope for a successful call.
func BuildSuccessResponse(message string, data any) map[string]any {
	response := map[string]any{
		ResponseFieldSuccess: true,
		ResponseFieldMessage: message,
	}
	if data != nil {
		response[ResponseFieldData] = data
	} else {
		response[ResponseFieldData] = map[string]any{}
	}
	return response
}

// BuildErrorResponse builds the uniform envelope for a failed call. The
// message must stay human-readable and free of internal detail.
func BuildErrorResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldSuccess: false,
		ResponseFieldMessage: message,
		ResponseFieldData:    map[string]any{},
	}
}

// BuildValidationErrorResponse attaches field-level messages to the envelope.
func BuildValidationErrorResponse(message string, errors []string) map[string]any {
	response := BuildErrorResponse(message)
	response[ResponseFieldErrors] = errors
	return response
}

// BuildListResponse wraps a collection with pagination metadata.
func BuildListResponse(message string, data any, pagination Pagination) map[string]any {
	response := BuildSuccessResponse(message, data)
	response[ResponseFieldMetadata] = map[string]any{"pagination": pagination}
	return response
}
