// Package notify delivers reminder emails over SMTP.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender delivers one reminder message to a recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through a plain-auth SMTP relay.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(host, port, user, pass, from string) (*SMTPSender, error) {
	if host == "" || from == "" {
		return nil, errors.New("smtp host and from address are required")
	}
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return errors.New("missing recipient address")
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}

	slog.InfoContext(ctx, "sent reminder email", "to", to, "subject", subject)
	return nil
}

// LogSender logs reminders instead of delivering them, for development.
type LogSender struct{}

var _ Sender = LogSender{}

func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	slog.InfoContext(ctx, "reminder (email disabled)", "to", to, "subject", subject)
	return nil
}
