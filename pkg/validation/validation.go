package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Messages flattens validator errors into user facing strings, preferring
// field specific wording over the generic tag message.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"request body is invalid"}
	}

	var messages []string
	for _, e := range verrs {
		if fieldMessages := CustomMessage(e.Field()); fieldMessages != nil {
			if msg, exists := fieldMessages[e.Tag()]; exists {
				messages = append(messages, msg)
				continue
			}
		}
		messages = append(messages, DefaultMessage(e.Field(), e.Tag(), e.Param()))
	}
	return messages
}
