// Package cli provides CLI-specific logic including configuration loading.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config flag is given.
const DefaultConfigFile = ".topsis.yml"

// Config represents the .topsis.yml configuration file.
type Config struct {
	Version string       `yaml:"version"`
	Output  OutputConfig `yaml:"output"`
	Server  ServerConfig `yaml:"server"`
	Mail    MailConfig   `yaml:"mail"`
}

// OutputConfig controls report output settings.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=terminal json markdown csv"`
}

// ServerConfig holds settings for the HTTP adapter.
type ServerConfig struct {
	Address         string        `yaml:"address" validate:"required,hostname_port"`
	OutputDir       string        `yaml:"output_dir" validate:"required"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" validate:"min=1"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gt=0"`
	RateBurst       int           `yaml:"rate_burst" validate:"min=1"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Retention       time.Duration `yaml:"retention"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// MailConfig holds SMTP settings. The password never lives in the file; it
// comes from the environment variable named by PasswordEnv or the keyring.
type MailConfig struct {
	Host        string        `yaml:"host" validate:"omitempty,hostname|ip"`
	Port        int           `yaml:"port" validate:"min=1,max=65535"`
	ImplicitTLS *bool         `yaml:"implicit_tls"`
	Username    string        `yaml:"username"`
	From        string        `yaml:"from" validate:"omitempty,email"`
	PasswordEnv string        `yaml:"password_env"`
	Subject     string        `yaml:"subject"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Enabled reports whether enough mail settings exist to send anything.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.Sender() != ""
}

// Sender returns the From address, falling back to the username.
func (m MailConfig) Sender() string {
	if m.From != "" {
		return m.From
	}
	return m.Username
}

// UseImplicitTLS reports whether to dial with TLS. Defaults to true.
func (m MailConfig) UseImplicitTLS() bool {
	if m.ImplicitTLS == nil {
		return true
	}
	return *m.ImplicitTLS
}

var validate = validator.New()

// LoadConfig reads and parses a .topsis.yml configuration file.
// If path is empty, it looks for .topsis.yml in the current directory.
// If the default config file is not found, sensible defaults are returned.
// If an explicitly specified config file is not found, an error is returned.
func LoadConfig(path string) (*Config, error) {
	useDefault := path == ""
	if useDefault {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && useDefault {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("cli: reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cli: parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cli: config %s: %w", path, err)
	}

	slog.Debug("config file loaded", "path", path)
	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults matching the documented
// .topsis.yml schema.
func DefaultConfig() *Config {
	cfg := &Config{Version: "1"}
	applyDefaults(cfg)
	return cfg
}

// Validate checks field constraints after defaults are applied.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Output.Format == "" {
		cfg.Output.Format = "terminal"
	}

	s := &cfg.Server
	if s.Address == "" {
		s.Address = "127.0.0.1:5000"
	}
	if s.OutputDir == "" {
		s.OutputDir = "outputs"
	}
	if s.MaxUploadBytes == 0 {
		s.MaxUploadBytes = 10 << 20
	}
	if s.RateLimit == 0 {
		s.RateLimit = 5
	}
	if s.RateBurst == 0 {
		s.RateBurst = 10
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 5 * time.Second
	}
	if s.Retention == 0 {
		s.Retention = time.Hour
	}
	if len(s.CORSOrigins) == 0 {
		s.CORSOrigins = []string{"*"}
	}

	m := &cfg.Mail
	if m.Port == 0 {
		m.Port = 465
	}
	if m.PasswordEnv == "" {
		m.PasswordEnv = "TOPSIS_SMTP_PASSWORD"
	}
	if m.Subject == "" {
		m.Subject = "TOPSIS Result"
	}
	if m.Timeout == 0 {
		m.Timeout = 30 * time.Second
	}
}
