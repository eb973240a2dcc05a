// Package config resolves the tool's settings from an optional YAML
// file, MAILTRIAGE_-prefixed environment variables, and the OS keyring
// for the password, with the environment winning over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nhle/mailtriage/internal/credential"
)

// Config holds every setting the tool consumes.
type Config struct {
	// Server is the IMAP server hostname.
	Server string `mapstructure:"server"`

	// Address is the account's own mail address; it drives both the
	// direct-recipient check and the internal-domain derivation.
	Address string `mapstructure:"address"`

	// Username and Password authenticate against IMAP and SMTP.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Domain, when set, selects the DOMAIN\username login form some
	// corporate IMAP services require. It never affects classification.
	Domain string `mapstructure:"domain"`

	IMAPPort int `mapstructure:"imap_port"`

	// SMTPServer defaults to Server when empty.
	SMTPServer string `mapstructure:"smtp_server"`
	SMTPPort   int    `mapstructure:"smtp_port"`

	// SMTPImplicitTLS dials the submission port with TLS directly
	// instead of upgrading via STARTTLS.
	SMTPImplicitTLS bool `mapstructure:"smtp_implicit_tls"`

	// StartTLS upgrades the IMAP connection instead of implicit TLS.
	StartTLS bool `mapstructure:"starttls"`

	// Insecure skips TLS certificate verification on both connections.
	Insecure bool `mapstructure:"insecure"`
}

// MissingError lists the required settings that resolved to nothing. It
// is reported once, with every missing name, before any network attempt.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "missing required settings: " + strings.Join(e.Names, ", ")
}

// settingKeys are the viper keys bound to MAILTRIAGE_-prefixed
// environment variables.
var settingKeys = []string{
	"server", "address", "username", "password", "domain",
	"imap_port", "smtp_server", "smtp_port", "smtp_implicit_tls",
	"starttls", "insecure",
}

// DefaultPath returns the default configuration file location,
// ~/.config/mailtriage/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailtriage", "config.yaml")
}

// Load reads settings from the file at path (DefaultPath when empty; a
// missing file is not an error) merged with the environment. When the
// password is still unset it falls back to the OS keyring entry for the
// account address. Load does not validate; call Validate before
// connecting anywhere.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("MAILTRIAGE")
	for _, key := range settingKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding environment: %w", err)
		}
	}

	v.SetDefault("imap_port", 993)
	v.SetDefault("smtp_port", 587)

	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if _, isPathErr := err.(*os.PathError); !isPathErr && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.SMTPServer == "" {
		cfg.SMTPServer = cfg.Server
	}

	if cfg.Password == "" && cfg.Address != "" {
		if stored, err := credential.Get(credential.IMAPKey(cfg.Address)); err == nil {
			cfg.Password = stored
		}
	}

	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Server == "" {
		missing = append(missing, "server (MAILTRIAGE_SERVER)")
	}
	if c.Address == "" {
		missing = append(missing, "address (MAILTRIAGE_ADDRESS)")
	}
	if c.Username == "" {
		missing = append(missing, "username (MAILTRIAGE_USERNAME)")
	}
	if c.Password == "" {
		missing = append(missing, "password (MAILTRIAGE_PASSWORD)")
	}

	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

// LoginUsername returns the username in the DOMAIN\username form when a
// Windows logon domain is configured, the bare username otherwise.
func (c *Config) LoginUsername() string {
	if c.Domain != "" {
		return c.Domain + `\` + c.Username
	}
	return c.Username
}
