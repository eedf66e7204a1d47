package mailer

import (
	"fmt"
	"net/smtp"
)

// Sender delivers a plain-text email. The worker depends on this interface
// so tests can substitute a fake.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPClient struct {
	addr     string
	host     string
	user     string
	password string
	from     string
}

func NewSMTPClient(addr, host, user, password, from string) *SMTPClient {
	return &SMTPClient{addr: addr, host: host, user: user, password: password, from: from}
}

func (s *SMTPClient) Send(to, subject, body string) error {
	if s == nil || s.host == "" {
		return fmt.Errorf("smtp not configured")
	}
	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" + body + "\r\n")
	return smtp.SendMail(s.addr, auth, s.from, []string{to}, msg)
}

var _ Sender = (*SMTPClient)(nil)
