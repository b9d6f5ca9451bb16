// Package mailer implements the mail-send collaborator: given a draft's
// recipient, subject and content it performs actual delivery over SMTP. The
// artifact store never sends mail itself; callers sequence a Mailer around
// store.SendDraft, which only records the status change.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/logging"
)

// Mailer delivers a draft as an outbound message.
type Mailer interface {
	Send(ctx context.Context, from string, draft core.Draft) error
}

// Options configures the SMTP mailer.
type Options struct {
	// SSL dials an implicit-TLS connection (typically port 465).
	SSL bool
	// StartTLS upgrades a plain connection (typically port 587). Ignored
	// when SSL is set.
	StartTLS bool
	// Logger receives delivery diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// SMTPMailer sends mail through a single SMTP endpoint, dialing a fresh
// connection per send.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	opts     Options
}

// Interface compliance (compile-time assertion)
var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer for the given endpoint. An empty password
// skips authentication.
func NewSMTPMailer(host string, port int, username, password string, optFns ...func(o *Options)) *SMTPMailer {
	opts := Options{StartTLS: true, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SMTPMailer{host: host, port: port, username: username, password: password, opts: opts}
}

// Send builds a MIME message from the draft and delivers it. The context
// bounds connection setup and delivery.
func (m *SMTPMailer) Send(ctx context.Context, from string, draft core.Draft) error {
	msg, err := buildMessage(from, draft)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	client, err := m.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if deadline, ok := ctx.Deadline(); ok {
		client.CommandTimeout = time.Until(deadline)
		client.SubmissionTimeout = time.Until(deadline)
	}

	if m.password != "" {
		auth := sasl.NewPlainClient("", m.username, m.password)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp authentication failed: %w", err)
		}
	}

	if err := client.SendMail(from, []string{draft.To}, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.opts.Logger.Info("mail delivered", "to", draft.To, "draft_id", draft.ID)
	return client.Quit()
}

func (m *SMTPMailer) dial() (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	tlsCfg := &tls.Config{ServerName: m.host}

	var client *smtp.Client
	var err error
	switch {
	case m.opts.SSL:
		client, err = smtp.DialTLS(addr, tlsCfg)
	case m.opts.StartTLS:
		client, err = smtp.DialStartTLS(addr, tlsCfg)
	default:
		client, err = smtp.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to smtp server: %w", err)
	}
	return client, nil
}

// buildMessage renders the draft as a single-part text/plain message.
func buildMessage(from string, draft core.Draft) ([]byte, error) {
	var buf bytes.Buffer

	var header mail.Header
	header.SetDate(time.Now())
	header.SetSubject(draft.Subject)
	header.SetAddressList("From", []*mail.Address{{Address: from}})
	header.SetAddressList("To", []*mail.Address{{Address: draft.To}})

	iw, err := mail.CreateSingleInlineWriter(&buf, header)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(iw, draft.Content); err != nil {
		iw.Close()
		return nil, err
	}
	if err := iw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
