package mail

import (
	"context"
	"fmt"
	"net/smtp"
)

// Sender delivers an assembled message. Implementations make exactly one
// attempt; retry policy (there is none) belongs to the caller.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// smtpSendMail is a seam for testing.
var smtpSendMail = smtp.SendMail

// SMTPSender delivers via a single SMTP relay.
type SMTPSender struct {
	addr string // host:port
	auth smtp.Auth
}

// NewSMTPSender configures delivery through addr. Username may be empty for
// relays that accept unauthenticated submission (e.g. a local MTA).
func NewSMTPSender(addr, username, password, host string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{addr: addr, auth: auth}
}

// Send performs one delivery attempt. The context is consulted before
// dialing; net/smtp itself does not support mid-flight cancellation.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtpSendMail(s.addr, s.auth, msg.From, []string{msg.To}, msg.Raw); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
