package validation

func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"required": "email is required",
			"email":    "email must be a valid email address",
		},
		"Password": {
			"required": "password is required",
			"min":      "password must be at least 6 characters",
		},
		"Username": {
			"required": "username is required",
			"max":      "username may not be greater than 10 characters",
		},
		"Code": {
			"required": "code is required",
		},
		"RecoveryCode": {
			"required": "recovery code is required",
		},
		"Token": {
			"required": "token is required",
		},
		"CurrentPassword": {
			"required": "current password is required",
		},
	}
	return customValidationMessages[field]
}
