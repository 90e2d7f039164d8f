package app

import (
	"strings"
	"time"

	"github.com/charlesng35/wedding-rsvp/internal/services"
	"github.com/charlesng35/wedding-rsvp/pkg/mail"
)

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// SendGridSettings converts the SendGrid section to the mail package representation.
func (c EmailConfig) SendGridSettings() mail.SendGridSettings {
	return mail.SendGridSettings{
		APIKey:   strings.TrimSpace(c.SendGrid.APIKey),
		From:     c.SendGrid.From,
		FromName: c.SendGrid.FromName,
		Host:     c.SendGrid.Host,
		Timeout:  c.SendGrid.Timeout,
	}
}

// NewMailer builds the configured transport. SendGrid wins when enabled; otherwise
// the SMTP mailer is returned, which reports mail.ErrSMTPDisabled when switched off.
func (c EmailConfig) NewMailer() (mail.Mailer, error) {
	if c.SendGrid.Enabled {
		return mail.NewSendGridMailer(c.SendGridSettings())
	}
	return mail.NewSMTPMailer(c.SMTPSettings())
}

// DeliveryTimeout returns the timeout of the active transport.
func (c EmailConfig) DeliveryTimeout() time.Duration {
	if c.SendGrid.Enabled {
		return c.SendGrid.Timeout
	}
	return c.SMTP.Timeout
}

// ConfirmationSettings converts ConfirmationConfig for the RSVP service.
func (c ConfirmationConfig) ConfirmationSettings(timeout time.Duration) services.ConfirmationSettings {
	return services.ConfirmationSettings{
		EventName: strings.TrimSpace(c.EventName),
		ReplyTo:   strings.TrimSpace(c.ReplyTo),
		Timeout:   timeout,
	}
}

// DigestRecipients returns the trimmed, non-empty digest recipients.
func (c DigestConfig) DigestRecipients() []string {
	recipients := make([]string, 0, len(c.Recipients))
	for _, r := range c.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}
