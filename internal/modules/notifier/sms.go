package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"newera.app/reentry/pkg/validator"
)

type TwilioConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	Timeout    time.Duration
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

type twilioGateway struct {
	httpClient *resty.Client
	accountSID string
}

// NewTwilioGateway sends texts through the Twilio Messages REST endpoint. Failed sends are not retried.
func NewTwilioGateway(cfg TwilioConfig) SMSGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &twilioGateway{httpClient: client, accountSID: cfg.AccountSID}
}

// E164 formats a stored 10-digit US number as +1XXXXXXXXXX and leaves anything else alone.
func E164(number string) string {
	number = strings.TrimSpace(number)
	switch {
	case validator.IsDigits(number, 10):
		return "+1" + number
	case validator.IsDigits(number, 11) && strings.HasPrefix(number, "1"):
		return "+" + number
	default:
		return number
	}
}

func (g *twilioGateway) Send(ctx context.Context, from, to, body string) error {
	var sent twilioMessage
	var apiErr twilioError

	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"From": E164(from),
			"To":   E164(to),
			"Body": body,
		}).
		SetResult(&sent).
		SetError(&apiErr).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", g.accountSID))
	if err != nil {
		return transportError(fmt.Errorf("twilio request failed: %w", err))
	}

	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = resp.Status()
		}
		return transportError(fmt.Errorf("twilio rejected message to %s (status %d): %s", to, resp.StatusCode(), msg))
	}
	return nil
}
