package config

import (
	"fmt"
	"strings"
)

// SMTPConfig configures the optional low-stock mail notifier.
// When disabled, quantity changes are persisted without sending alerts.
type SMTPConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	To       string `koanf:"to"`
}

// String returns a string representation of the SMTP configuration. Credentials are masked.
func (c *SMTPConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- SMTP ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  host: %s\n", c.Host))
	b.WriteString(fmt.Sprintf("  port: %d\n", c.Port))
	b.WriteString(fmt.Sprintf("  username: %s\n", mask(c.Username)))
	b.WriteString(fmt.Sprintf("  from: %s\n", c.From))
	b.WriteString(fmt.Sprintf("  to: %s\n", c.To))
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}

func (c *SMTPConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid smtp port: %d", c.Port)
	}
	if c.From == "" {
		return fmt.Errorf("smtp sender address is not configured")
	}
	if c.To == "" {
		return fmt.Errorf("smtp recipient address is not configured")
	}
	return nil
}
