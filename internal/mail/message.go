package mail

// Template names understood by the renderer.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
)

// Message is the unit queued for delivery. Data feeds the named template.
type Message struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}
