package smtp

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-menu-auth/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer delivers HTML email over SMTP.
type Mailer struct {
	from string
	send func(*gomail.Message) error
}

func NewMailer(cfg *config.Config) *Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &Mailer{
		from: cfg.MailFrom,
		send: func(msg *gomail.Message) error { return d.DialAndSend(msg) },
	}
}

// Send dials the server and delivers one message to a single recipient.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
