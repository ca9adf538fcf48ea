package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

type emailTemplate struct {
	subject string
	body    string
}

var emailTemplates = map[string]emailTemplate{
	TemplateVerifyEmail: {
		subject: "Verify your email address",
		body: `Hello {{ .username | default "there" }},

Thanks for signing up. Please confirm your email address by opening the
link below. The link is valid for one hour.

{{ .frontend_url }}/verify-email?token={{ .token }}

If you did not create an account, you can safely ignore this message.
`,
	},
	TemplateResetPassword: {
		subject: "Reset your password",
		body: `Hello {{ .username | default "there" }},

We received a request to reset the password for your account. Open the
link below to choose a new password. The link is valid for one hour.

{{ .frontend_url }}/reset-password?token={{ .token }}&email={{ .email }}

If you did not request a password reset, no further action is required.
`,
	},
}

// Renderer turns a queued Message into a subject and body.
type Renderer struct {
	templates map[string]*template.Template
	subjects  map[string]string
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template, len(emailTemplates)),
		subjects:  make(map[string]string, len(emailTemplates)),
	}
	for name, tmpl := range emailTemplates {
		parsed, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(tmpl.body)
		if err != nil {
			return nil, fmt.Errorf("parse mail template %q: %w", name, err)
		}
		r.templates[name] = parsed
		r.subjects[name] = tmpl.subject
	}
	return r, nil
}

func (r *Renderer) Render(msg Message) (subject, body string, err error) {
	tmpl, ok := r.templates[msg.Template]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", msg.Template)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, msg.Data); err != nil {
		return "", "", fmt.Errorf("render mail template %q: %w", msg.Template, err)
	}
	return r.subjects[msg.Template], buf.String(), nil
}
