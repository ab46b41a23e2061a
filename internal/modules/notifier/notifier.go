package notifier

import (
	"context"
	"errors"
	"fmt"

	"newera.app/reentry/internal/entity"
	"newera.app/reentry/pkg/apperror"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// MailMessage carries both renderings of one email.
type MailMessage struct {
	Subject   string
	PlainBody string
	HTMLBody  string
	From      string
	To        string
}

type MailTransport interface {
	Send(ctx context.Context, msg MailMessage) error
}

type SMSGateway interface {
	Send(ctx context.Context, from, to, body string) error
}

type TemplateRenderer interface {
	Render(name string, data any) (string, error)
	StripTags(html string) string
}

// Config is everything the notifier needs from the environment.
type Config struct {
	OrgName  string
	BaseURL  string
	MailFrom string
	SMSFrom  string
}

// DeliveryResult reports one send attempt. Skipped means no recipient was on file.
type DeliveryResult struct {
	Channel   Channel
	Recipient string
	Skipped   bool
	Err       error
}

func (r DeliveryResult) Delivered() bool {
	return !r.Skipped && r.Err == nil
}

// Notifier sends referral emails and texts. Both sends report failures in the
// returned DeliveryResult and never panic or return errors to the caller.
type Notifier struct {
	cfg      Config
	mail     MailTransport
	sms      SMSGateway
	renderer TemplateRenderer
}

// New builds a Notifier. A nil transport or gateway turns its channel into a reported failure.
func New(cfg Config, mail MailTransport, sms SMSGateway, renderer TemplateRenderer) *Notifier {
	return &Notifier{cfg: cfg, mail: mail, sms: sms, renderer: renderer}
}

func (n *Notifier) SendEmailNotification(ctx context.Context, referral *entity.Referral, token string) DeliveryResult {
	result := DeliveryResult{Channel: ChannelEmail}
	if referral == nil {
		result.Err = errors.New("referral is nil")
		return result
	}

	to := ResolveEmailRecipient(referral)
	if to == "" {
		result.Skipped = true
		return result
	}
	result.Recipient = to

	if n.mail == nil || n.renderer == nil {
		result.Err = fmt.Errorf("mail is not configured: %w", apperror.ErrTransport)
		return result
	}

	htmlBody, err := n.renderer.Render(referralMailerTemplate, newMailerContext(n.cfg.OrgName, n.cfg.BaseURL, referral, token))
	if err != nil {
		result.Err = err
		return result
	}

	msg := MailMessage{
		Subject:   emailSubject(n.cfg.OrgName, referral),
		PlainBody: n.renderer.StripTags(htmlBody),
		HTMLBody:  htmlBody,
		From:      n.cfg.MailFrom,
		To:        to,
	}

	if err := n.mail.Send(ctx, msg); err != nil {
		result.Err = transportError(err)
	}
	return result
}

func (n *Notifier) SendSMSNotification(ctx context.Context, referral *entity.Referral, token string) DeliveryResult {
	result := DeliveryResult{Channel: ChannelSMS}
	if referral == nil {
		result.Err = errors.New("referral is nil")
		return result
	}

	to := ResolveSMSRecipient(referral)
	if to == "" {
		result.Skipped = true
		return result
	}
	result.Recipient = to

	if n.sms == nil {
		result.Err = fmt.Errorf("sms is not configured: %w", apperror.ErrTransport)
		return result
	}

	body := smsBody(n.cfg.OrgName, n.cfg.BaseURL, referral, token)
	if err := n.sms.Send(ctx, n.cfg.SMSFrom, to, body); err != nil {
		result.Err = transportError(err)
	}
	return result
}

func transportError(err error) error {
	if errors.Is(err, apperror.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %v", apperror.ErrTransport, err)
}
