// Package delivery sends ranking results to users over SMTP.
package delivery

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/toyinlola/topsis/pkg/interfaces"
)

// Defaults applied to zero-value Config fields.
const (
	DefaultPort    = 465
	DefaultSubject = "TOPSIS Result"
	DefaultTimeout = 30 * time.Second
)

// ErrInvalidRecipient is returned when a message has a malformed To address.
var ErrInvalidRecipient = errors.New("delivery: invalid recipient address")

var validate = validator.New()

// Config holds SMTP connection settings. All values are explicit; the mailer
// never reads environment variables or the keyring itself.
type Config struct {
	Host        string `validate:"required,hostname|ip"`
	Port        int    `validate:"min=1,max=65535"`
	ImplicitTLS bool
	Username    string
	Password    string
	From        string `validate:"required,email"`
	Subject     string
	Timeout     time.Duration `validate:"min=0"`
}

// Addr returns the host:port dial address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Transport hands a fully encoded message to an SMTP server.
type Transport func(ctx context.Context, cfg Config, from string, to []string, msg []byte) error

// Option configures an SMTPMailer.
type Option func(*SMTPMailer)

// WithTransport replaces the network transport, mainly for tests.
func WithTransport(t Transport) Option {
	return func(m *SMTPMailer) {
		m.transport = t
	}
}

// WithClock overrides the clock used for the Date header.
func WithClock(now func() time.Time) Option {
	return func(m *SMTPMailer) {
		m.now = now
	}
}

// SMTPMailer implements interfaces.Mailer on top of net/smtp.
type SMTPMailer struct {
	cfg       Config
	transport Transport
	now       func() time.Time
}

// NewSMTPMailer validates cfg and returns a mailer for it.
func NewSMTPMailer(cfg Config, opts ...Option) (*SMTPMailer, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("delivery: invalid smtp config: %w", err)
	}

	m := &SMTPMailer{
		cfg:       cfg,
		transport: dialAndSend,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Send encodes msg as a MIME message and delivers it.
func (m *SMTPMailer) Send(ctx context.Context, msg interfaces.Message) error {
	if err := validate.Var(msg.To, "required,email"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, msg.To)
	}
	if msg.Subject == "" {
		msg.Subject = m.cfg.Subject
	}

	data, err := encodeMessage(m.cfg.From, msg, m.now())
	if err != nil {
		return fmt.Errorf("delivery: encoding message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	slog.Debug("sending mail", "to", msg.To, "server", m.cfg.Addr(), "attachments", len(msg.Attachments))

	if err := m.transport(ctx, m.cfg, m.cfg.From, []string{msg.To}, data); err != nil {
		return fmt.Errorf("delivery: sending to %s: %w", msg.To, err)
	}

	slog.Info("mail sent", "to", msg.To)
	return nil
}

// dialAndSend is the default Transport. It uses implicit TLS when configured
// and upgrades plain connections with STARTTLS when the server offers it.
func dialAndSend(ctx context.Context, cfg Config, from string, to []string, msg []byte) error {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.Addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close() // no-op after Quit

	if !cfg.ImplicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
				return fmt.Errorf("auth: %w", err)
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("writing body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing body: %w", err)
	}

	return c.Quit()
}

func dial(ctx context.Context, cfg Config) (net.Conn, error) {
	d := &net.Dialer{Timeout: cfg.Timeout}
	if !cfg.ImplicitTLS {
		return d.DialContext(ctx, "tcp", cfg.Addr())
	}
	td := &tls.Dialer{
		NetDialer: d,
		Config:    &tls.Config{ServerName: cfg.Host},
	}
	return td.DialContext(ctx, "tcp", cfg.Addr())
}
