package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/felipecalderon/food-truck-pos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending receipt emails.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Enabled reports whether SMTP is configured. When false the email worker
// drops jobs with a warning instead of failing.
func (m *Mailer) Enabled() bool { return m.host != "" }

// SendRecibo mails the PDF receipt to the customer.
func (m *Mailer) SendRecibo(to, subject, body string, pdfBytes []byte) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if len(pdfBytes) > 0 {
		if _, err := e.Attach(bytes.NewReader(pdfBytes), "recibo.pdf", "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
