// Package nudge wraps the Twilio API for delivering positive-nudge SMS
// messages produced by the attendance analysis. Delivery is best-effort and
// optional: when no Twilio credentials are configured the feature is off.
package nudge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MinPhoneDigits is the minimum number of digits accepted in a recipient.
const MinPhoneDigits = 6

var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Sender delivers a nudge message to a phone number.
type Sender interface {
	SendNudge(ctx context.Context, to, body string) error
}

// Opts holds configuration options for the Twilio sender.
type Opts struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Option defines a configuration option for the Twilio sender.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFromNumber sets the sending phone number.
func WithFromNumber(from string) Option {
	return func(o *Opts) { o.FromNumber = from }
}

// CanonicalizeRecipient strips all non-digit characters from a phone number
// and validates the remainder.
func CanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < MinPhoneDigits {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum %d digits required)", canonical, MinPhoneDigits)
	}
	if recipient != canonical {
		slog.Debug("nudge.CanonicalizeRecipient: recipient canonicalized", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}

// messageCreator defines the minimal Twilio REST surface for testing.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends nudge SMS messages through the Twilio REST API.
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender creates a sender from options, falling back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER environment
// variables.
func NewTwilioSender(opts ...Option) (*TwilioSender, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromNumber == "" {
		cfg.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	}
	slog.Debug("nudge.NewTwilioSender: config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromNumber_set", cfg.FromNumber != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{api: client.Api, from: cfg.FromNumber}, nil
}

// SendNudge sends an SMS to the recipient. The recipient is canonicalized
// before sending.
func (s *TwilioSender) SendNudge(ctx context.Context, to, body string) error {
	canonical, err := CanonicalizeRecipient(to)
	if err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("+" + canonical)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.api.CreateMessage(params); err != nil {
		slog.Error("nudge.TwilioSender.SendNudge: send failed", "to", canonical, "error", err)
		return fmt.Errorf("failed to send nudge to %s: %w", canonical, err)
	}
	slog.Debug("nudge.TwilioSender.SendNudge: nudge sent", "to", canonical)
	return nil
}

// MockSender records nudges for tests.
type MockSender struct {
	Sent []SentNudge
	Err  error
}

// SentNudge is a recorded mock delivery.
type SentNudge struct {
	To   string
	Body string
}

// NewMockSender creates an empty mock sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// SendNudge records the nudge and returns the configured error.
func (m *MockSender) SendNudge(ctx context.Context, to, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNudge{To: to, Body: body})
	return nil
}
