package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/toyinlola/topsis/pkg/delivery"
)

// KeyringService is the OS keyring service SMTP passwords are stored under.
const KeyringService = "topsis"

// ErrNoUsername is returned when a keyring operation has no account to key on.
var ErrNoUsername = errors.New("cli: mail.username is not configured")

// ResolveSMTPPassword returns the SMTP password from the environment variable
// named by cfg.PasswordEnv, falling back to the OS keyring. A missing
// password is not an error; servers without AUTH need none.
func ResolveSMTPPassword(cfg MailConfig) (string, error) {
	if cfg.PasswordEnv != "" {
		if v := os.Getenv(cfg.PasswordEnv); v != "" {
			slog.Debug("smtp password loaded from environment", "var", cfg.PasswordEnv)
			return v, nil
		}
	}
	if cfg.Username == "" {
		return "", nil
	}

	secret, err := keyring.Get(KeyringService, cfg.Username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("cli: reading keyring: %w", err)
	}
	slog.Debug("smtp password loaded from keyring", "user", cfg.Username)
	return secret, nil
}

// StoreSMTPPassword saves password in the OS keyring for username.
func StoreSMTPPassword(username, password string) error {
	if username == "" {
		return ErrNoUsername
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return fmt.Errorf("cli: empty password")
	}
	if err := keyring.Set(KeyringService, username, password); err != nil {
		return fmt.Errorf("cli: storing password in keyring: %w", err)
	}
	return nil
}

// DeleteSMTPPassword removes the stored password for username. Deleting a
// password that was never stored is not an error.
func DeleteSMTPPassword(username string) error {
	if username == "" {
		return ErrNoUsername
	}
	if err := keyring.Delete(KeyringService, username); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("cli: deleting password from keyring: %w", err)
	}
	return nil
}

// MailerConfig turns the file settings plus a resolved password into an
// explicit delivery configuration.
func MailerConfig(cfg MailConfig, password string) delivery.Config {
	return delivery.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		ImplicitTLS: cfg.UseImplicitTLS(),
		Username:    cfg.Username,
		Password:    password,
		From:        cfg.Sender(),
		Subject:     cfg.Subject,
		Timeout:     cfg.Timeout,
	}
}

// NewMailer builds a mailer from cfg, resolving the password. It returns
// (nil, nil) when mail is not configured.
func NewMailer(cfg MailConfig) (*delivery.SMTPMailer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	password, err := ResolveSMTPPassword(cfg)
	if err != nil {
		return nil, err
	}
	m, err := delivery.NewSMTPMailer(MailerConfig(cfg, password))
	if err != nil {
		return nil, fmt.Errorf("cli: %w", err)
	}
	return m, nil
}
