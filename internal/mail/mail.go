// Package mail sends the store's transactional messages.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	applog "joyeria/internal/log"
)

type Message struct {
	To      string
	Subject string
	Body    string // HTML
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPSender(host, port, username, password, from string) (*SMTPSender, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST not set")
	}
	if port == "" {
		return nil, fmt.Errorf("SMTP_PORT not set")
	}
	if from == "" {
		from = username
	}
	return &SMTPSender{host: host, port: port, username: username, password: password, from: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := s.host + ":" + s.port
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	if err := smtp.SendMail(addr, auth, s.from, []string{m.To}, compose(s.from, m)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func compose(from string, m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	return []byte(b.String())
}

// LogSender writes messages to the application log instead of sending them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, m Message) error {
	applog.Event("mail.logged", map[string]any{"to": m.To, "subject": m.Subject})
	return nil
}
