package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailtriage/internal/config"
)

// clearEnv blanks every MAILTRIAGE_ variable a developer machine might
// carry into the test run.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"MAILTRIAGE_SERVER", "MAILTRIAGE_ADDRESS", "MAILTRIAGE_USERNAME",
		"MAILTRIAGE_PASSWORD", "MAILTRIAGE_DOMAIN", "MAILTRIAGE_IMAP_PORT",
		"MAILTRIAGE_SMTP_SERVER", "MAILTRIAGE_SMTP_PORT",
		"MAILTRIAGE_SMTP_IMPLICIT_TLS", "MAILTRIAGE_STARTTLS",
		"MAILTRIAGE_INSECURE",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func missingPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAILTRIAGE_SERVER", "mail.corp.com")
	t.Setenv("MAILTRIAGE_ADDRESS", "user@corp.com")
	t.Setenv("MAILTRIAGE_USERNAME", "user")
	t.Setenv("MAILTRIAGE_PASSWORD", "secret")
	t.Setenv("MAILTRIAGE_DOMAIN", "CORP")

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "mail.corp.com", cfg.Server)
	assert.Equal(t, "user@corp.com", cfg.Address)
	assert.Equal(t, 993, cfg.IMAPPort)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "mail.corp.com", cfg.SMTPServer,
		"SMTP server defaults to the IMAP server")
	assert.Equal(t, `CORP\user`, cfg.LoginUsername())
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server: mail.corp.com\n"+
			"address: user@corp.com\n"+
			"username: user\n"+
			"password: from-file\n"+
			"imap_port: 1993\n"+
			"smtp_server: smtp.corp.com\n",
	), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-file", cfg.Password)
	assert.Equal(t, 1993, cfg.IMAPPort)
	assert.Equal(t, "smtp.corp.com", cfg.SMTPServer)
	assert.Equal(t, "user", cfg.LoginUsername(), "no domain, bare username")
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAILTRIAGE_PASSWORD", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server: mail.corp.com\n"+
			"address: user@corp.com\n"+
			"username: user\n"+
			"password: from-file\n",
	), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Password)
}

func TestValidateReportsAllMissingNames(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err, "loading with nothing set is not itself an error")

	err = cfg.Validate()
	require.Error(t, err)

	var missing *config.MissingError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Names, 4)
	assert.Contains(t, err.Error(), "MAILTRIAGE_SERVER")
	assert.Contains(t, err.Error(), "MAILTRIAGE_ADDRESS")
	assert.Contains(t, err.Error(), "MAILTRIAGE_USERNAME")
	assert.Contains(t, err.Error(), "MAILTRIAGE_PASSWORD")
}

func TestValidateReportsOnlyMissingNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAILTRIAGE_SERVER", "mail.corp.com")
	t.Setenv("MAILTRIAGE_USERNAME", "user")
	t.Setenv("MAILTRIAGE_PASSWORD", "secret")

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)

	var missing *config.MissingError
	require.ErrorAs(t, err, &missing)
	require.Len(t, missing.Names, 1)
	assert.Contains(t, missing.Names[0], "MAILTRIAGE_ADDRESS")
}
