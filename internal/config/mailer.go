package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/signet-dev/signet/internal/mailer"
)

const (
	// EnvMailerEnabled toggles SMTP delivery. When disabled, messages are
	// logged instead of sent.
	EnvMailerEnabled = "MAILER_ENABLED"

	// EnvMailerHost overrides the SMTP host.
	EnvMailerHost = "MAILER_HOST"

	// EnvMailerPort overrides the SMTP port.
	EnvMailerPort = "MAILER_PORT"

	// EnvMailerUsername overrides the SMTP username.
	EnvMailerUsername = "MAILER_USERNAME"

	// EnvMailerPassword overrides the SMTP password.
	EnvMailerPassword = "MAILER_PASSWORD"

	// EnvMailerFrom overrides the sender address.
	EnvMailerFrom = "MAILER_FROM"

	// EnvMailerFrontendURL overrides the base URL used to build signing
	// links.
	EnvMailerFrontendURL = "MAILER_FRONTEND_URL"

	// EnvMailerQueueSize overrides the delivery queue capacity.
	EnvMailerQueueSize = "MAILER_QUEUE_SIZE"
)

// MailerConfig contains email delivery configuration.
type MailerConfig struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	From        string `toml:"from"`
	FrontendURL string `toml:"frontend_url"`
	QueueSize   int    `toml:"queue_size"`
}

// SMTP returns the dispatcher configuration.
func (c *MailerConfig) SMTP() mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.From,
	}
}

// Finalize applies defaults, loads environment overrides, and validates the
// mailer configuration.
func (c *MailerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *MailerConfig) Merge(overlay *MailerConfig) {
	c.Enabled = overlay.Enabled

	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.From != "" {
		c.From = overlay.From
	}
	if overlay.FrontendURL != "" {
		c.FrontendURL = overlay.FrontendURL
	}
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
}

func (c *MailerConfig) loadDefaults() {
	if c.Port == 0 {
		c.Port = 587
	}
	if c.FrontendURL == "" {
		c.FrontendURL = "http://localhost:5173"
	}
	if c.QueueSize == 0 {
		c.QueueSize = 256
	}
}

func (c *MailerConfig) loadEnv() {
	if v := os.Getenv(EnvMailerEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvMailerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvMailerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv(EnvMailerUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvMailerPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvMailerFrom); v != "" {
		c.From = v
	}
	if v := os.Getenv(EnvMailerFrontendURL); v != "" {
		c.FrontendURL = v
	}
	if v := os.Getenv(EnvMailerQueueSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QueueSize = n
		}
	}
}

func (c *MailerConfig) validate() error {
	if c.Enabled {
		if c.Host == "" {
			return fmt.Errorf("host required when enabled")
		}
		if c.From == "" {
			return fmt.Errorf("from required when enabled")
		}
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive")
	}
	return nil
}
