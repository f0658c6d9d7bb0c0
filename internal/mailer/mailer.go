// Package mailer defines the outbound email capability and its SMTP
// implementation. The account core only depends on the Mailer interface;
// delivery runs on the background worker.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message is a single transactional email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP delivers messages over plain SMTP, e.g. to Mailpit in development
// or a relay in production.
type SMTP struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

// NewSMTP constructs an SMTP mailer.
func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{
		addr:     fmt.Sprintf("%s:%d", host, port),
		host:     host,
		username: username,
		password: password,
		from:     from,
	}
}

const mimeBoundary = "meridian-alt-29a7f1"

// Send delivers one message. The context deadline is not observed by
// net/smtp; the worker wraps the call with its own timeout.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	body := buildMIME(s.from, msg)
	if err := smtp.SendMail(s.addr, auth, s.from, []string{msg.To}, body); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", mimeBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}

var _ Mailer = (*SMTP)(nil)
