package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridSettings configure delivery through the SendGrid v3 mail API.
type SendGridSettings struct {
	APIKey   string
	From     string
	FromName string
	// Host overrides the API base URL.
	Host    string
	Timeout time.Duration
}

type sendGridMailer struct {
	cfg    SendGridSettings
	client *rest.Client
}

// NewSendGridMailer returns a Mailer that posts messages to the SendGrid API.
func NewSendGridMailer(cfg SendGridSettings) (Mailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid: api key is required")
	}
	if strings.TrimSpace(cfg.Host) == "" {
		cfg.Host = sendGridHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &sendGridMailer{
		cfg:    cfg,
		client: &rest.Client{HTTPClient: &http.Client{Timeout: cfg.Timeout}},
	}, nil
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	from, recipients, err := envelope(msg, m.cfg.From)
	if err != nil {
		return err
	}

	payload, err := m.build(from, recipients, msg)
	if err != nil {
		return err
	}

	request := sendgrid.GetRequest(m.cfg.APIKey, sendGridEndpoint, m.cfg.Host)
	request.Method = rest.Post
	request.Body = sgmail.GetRequestBody(payload)

	response, err := m.client.SendWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid: send: %w", err)
	}
	if response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", response.StatusCode, strings.TrimSpace(response.Body))
	}
	return nil
}

func (m *sendGridMailer) build(from string, recipients []string, msg Message) (*sgmail.SGMailV3, error) {
	sender, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: invalid from address: %w", err)
	}
	name := sender.Name
	if name == "" {
		name = strings.TrimSpace(m.cfg.FromName)
	}

	payload := sgmail.NewV3Mail()
	payload.SetFrom(sgmail.NewEmail(name, sender.Address))
	payload.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	for _, rcpt := range recipients {
		addr, err := mail.ParseAddress(rcpt)
		if err != nil {
			return nil, fmt.Errorf("sendgrid: invalid recipient address %q: %w", rcpt, err)
		}
		p.AddTos(sgmail.NewEmail(addr.Name, addr.Address))
	}
	payload.AddPersonalizations(p)

	if replyTo := strings.TrimSpace(msg.ReplyTo); replyTo != "" {
		if addr, err := mail.ParseAddress(replyTo); err == nil {
			payload.SetReplyTo(sgmail.NewEmail(addr.Name, addr.Address))
		}
	}

	payload.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return payload, nil
}
