package validation

import (
	"fmt"
	"strings"
)

func DefaultMessage(field, tag, param string) string {
	field = strings.ToLower(field)

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s may not be greater than %s characters", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and numbers", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "eqfield":
		return fmt.Sprintf("%s confirmation does not match", strings.ToLower(strings.TrimSuffix(param, "Confirmation")))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
