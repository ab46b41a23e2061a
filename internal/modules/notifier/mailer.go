package notifier

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

type smtpTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport returns a MailTransport that dials the SMTP server for every message.
func NewSMTPTransport(cfg SMTPConfig) MailTransport {
	return &smtpTransport{cfg: cfg}
}

func (t *smtpTransport) options() []mail.Option {
	opts := []mail.Option{mail.WithPort(t.cfg.Port)}
	if t.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}
	return opts
}

func buildMessage(msg MailMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", msg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.PlainBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}
	return m, nil
}

func (t *smtpTransport) Send(ctx context.Context, msg MailMessage) error {
	m, err := buildMessage(msg)
	if err != nil {
		return transportError(err)
	}

	client, err := mail.NewClient(t.cfg.Host, t.options()...)
	if err != nil {
		return transportError(fmt.Errorf("smtp client: %w", err))
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return transportError(fmt.Errorf("smtp send to %s: %w", msg.To, err))
	}
	return nil
}
