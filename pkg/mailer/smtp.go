package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"futures-dashboard/config"
)

// SMTPClient sends plain-text alert emails. smtp.SendMail negotiates STARTTLS
// on port 587 by itself.
type SMTPClient struct {
	cfg config.SMTP
}

func NewSMTPClient(cfg config.SMTP) *SMTPClient {
	return &SMTPClient{cfg: cfg}
}

func (c *SMTPClient) Send(to, subject, body string) error {
	if c.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	if c.cfg.From == "" {
		return fmt.Errorf("smtp from address is not configured")
	}
	if c.cfg.Port <= 0 {
		return fmt.Errorf("smtp port is not configured")
	}

	fromHeader := c.cfg.From
	if c.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", c.cfg.FromName, c.cfg.From)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)

	if err := smtp.SendMail(addr, auth, c.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
