package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type bufferCloser struct {
	*bytes.Buffer
}

func (bufferCloser) Close() error { return nil }

type fakeClient struct {
	from   string
	rcpts  []string
	data   bytes.Buffer
	quit   bool
	rcptFn func(string) error
}

func (f *fakeClient) Mail(from string) error { f.from = from; return nil }
func (f *fakeClient) Rcpt(to string) error {
	if f.rcptFn != nil {
		if err := f.rcptFn(to); err != nil {
			return err
		}
	}
	f.rcpts = append(f.rcpts, to)
	return nil
}
func (f *fakeClient) Data() (io.WriteCloser, error)   { return bufferCloser{&f.data}, nil }
func (f *fakeClient) Quit() error                     { f.quit = true; return nil }
func (f *fakeClient) Close() error                    { return nil }
func (f *fakeClient) StartTLS(*tls.Config) error      { return nil }
func (f *fakeClient) Auth(smtp.Auth) error            { return nil }
func (f *fakeClient) Extension(string) (bool, string) { return false, "" }

func newTestMailer(t *testing.T, client *fakeClient) *smtpMailer {
	t.Helper()

	m, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "wedding@example.com",
	})
	require.NoError(t, err)

	sm := m.(*smtpMailer)
	sm.dialFn = func(context.Context, SMTPSettings) (net.Conn, smtpClient, error) {
		server, clientConn := net.Pipe()
		t.Cleanup(func() { _ = server.Close() })
		return clientConn, client, nil
	}
	sm.now = func() time.Time { return time.Date(2026, 6, 20, 15, 0, 0, 0, time.UTC) }
	return sm
}

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.ErrorContains(t, err, "host is required")

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.ErrorContains(t, err, "port is required")

	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, mailer)
	require.Equal(t, 10*time.Second, mailer.(*smtpMailer).cfg.Timeout)
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{
		To:      []string{"guest@example.com"},
		Subject: "Thanks",
		Body:    "Hello",
	})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSMTPMailerSendDeliversMessage(t *testing.T) {
	client := &fakeClient{}
	mailer := newTestMailer(t, client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"ana@example.com", " ANA@example.com "},
		ReplyTo: "couple@example.com",
		Subject: "We got your RSVP",
		Body:    "line one\nline two",
	})
	require.NoError(t, err)

	require.Equal(t, "wedding@example.com", client.from)
	require.Equal(t, []string{"ana@example.com"}, client.rcpts)
	require.True(t, client.quit)

	payload := client.data.String()
	require.Contains(t, payload, "Reply-To: couple@example.com\r\n")
	require.Contains(t, payload, "Subject: We got your RSVP\r\n")
	require.Contains(t, payload, "Date: Sat, 20 Jun 2026 15:00:00 +0000\r\n")
	require.Contains(t, payload, "@smtp.example.com>\r\n")
	require.True(t, strings.HasSuffix(payload, "\r\n\r\nline one\r\nline two"), payload)
}

func TestSMTPMailerSendPropagatesRecipientFailure(t *testing.T) {
	client := &fakeClient{rcptFn: func(string) error { return errors.New("mailbox unavailable") }}
	mailer := newTestMailer(t, client)

	err := mailer.Send(context.Background(), Message{To: []string{"ana@example.com"}})
	require.ErrorContains(t, err, "rcpt to ana@example.com")
	require.False(t, client.quit)
}

func TestSMTPMailerSendValidatesAddresses(t *testing.T) {
	mailer := newTestMailer(t, &fakeClient{})

	err := mailer.Send(context.Background(), Message{To: []string{"   ", "\t"}})
	require.ErrorContains(t, err, "at least one recipient")

	err = mailer.Send(context.Background(), Message{From: "invalid-from", To: []string{"ana@example.com"}})
	require.ErrorContains(t, err, "invalid from address")

	err = mailer.Send(context.Background(), Message{To: []string{"ana@example.com", "bad-address"}})
	require.ErrorContains(t, err, "invalid recipient address")
}

func TestFormatMessageSanitisesHeaders(t *testing.T) {
	content := formatMessage("from@example.com", []string{"to@example.com"}, Message{
		Subject: "Subject\r\nBcc: someone@example.com",
		Body:    "Body",
	}, time.Unix(0, 0).UTC(), "")

	require.Contains(t, content, "From: from@example.com\r\n")
	require.Contains(t, content, "Subject: Subject  Bcc: someone@example.com\r\n")
	require.Contains(t, content, "@localhost>")
	require.NotContains(t, content, "Reply-To")
	require.True(t, strings.HasSuffix(content, "\r\n\r\nBody"))
}

func TestRecorderKeepsMessages(t *testing.T) {
	rec := &Recorder{}
	require.NoError(t, rec.Send(context.Background(), Message{Subject: "one"}))

	rec.Err = errors.New("down")
	require.Error(t, rec.Send(context.Background(), Message{Subject: "two"}))

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "two", msgs[1].Subject)
}
