package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender speaks plain SMTP with AUTH. Delivery failures are surfaced to
// the worker, which owns retry and circuit-breaking policy.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg.String()))
}
