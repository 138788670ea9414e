package delivery

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"courierbot/internal/models"
)

// SMTPChannel sends plain-text email over SMTP with STARTTLS.
type SMTPChannel struct {
	host     string
	port     int
	address  string
	password string
	fromName string
	logger   *zap.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPChannel(host string, port int, address, password, fromName string, logger *zap.Logger) *SMTPChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPChannel{
		host:     host,
		port:     port,
		address:  address,
		password: password,
		fromName: fromName,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

func (c *SMTPChannel) SendEmail(ctx context.Context, to, subject, body string) (*models.SendResult, error) {
	if c.address == "" || c.password == "" {
		return nil, fmt.Errorf("email client not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", c.fromName, c.address)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	auth := smtp.PlainAuth("", c.address, c.password, c.host)
	if err := c.send(addr, auth, c.address, []string{to}, []byte(b.String())); err != nil {
		return nil, fmt.Errorf("send email to %s: %w", to, err)
	}

	c.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject))

	return &models.SendResult{
		Recipient:          to,
		FormattedRecipient: to,
		Success:            true,
		Type:               "email",
		SentAt:             time.Now(),
	}, nil
}
