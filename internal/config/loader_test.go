package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bytemomo/sonar/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Basic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefaultFile, `
application:
  version: "0.19"
  helper_version: 0.6.1.655
  locale: en-US
  session: 6f1c2a8e-9a57-4c5e-9e64-0b8f5f3a7d21
  session_start: 2024-05-01T10:00:00Z
  public_key_override: true
proxy:
  url: 127.0.0.1:8877
reachability:
  timeout: 5s
publish:
  enabled: true
  timeout: 30s
hosts:
  zeta.example: 10.0.0.2
  example.com: 1.2.3.4
key_sites:
  titlekeys: https://keys.example
certificates:
  dir: certs
logs:
  application: logs/launcher.log
`)

	cfg, err := NewLoader(dir).LoadConfig(DefaultFile)
	require.NoError(t, err)

	assert.Equal(t, "0.19", cfg.Application.Version)
	assert.Equal(t, "0.6.1.655", cfg.Application.HelperVersion)
	assert.True(t, cfg.Application.PublicKeyOverride)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), cfg.Application.SessionStart.UTC())
	assert.Equal(t, 5*time.Second, cfg.Reachability.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Publish.Timeout)
	assert.True(t, cfg.Publish.Enabled)
	assert.Equal(t, filepath.Join(dir, "certs"), cfg.Certificates.Dir)
	assert.Equal(t, filepath.Join(dir, "logs", "launcher.log"), cfg.Logs.Application)
	assert.Empty(t, cfg.Logs.ProxyTool)

	// file order, not sorted
	assert.Equal(t, Mapping{
		{Key: "zeta.example", Value: "10.0.0.2"},
		{Key: "example.com", Value: "1.2.3.4"},
	}, cfg.Hosts)
	assert.Len(t, cfg.KeySites, 1)
	assert.Empty(t, cfg.EndpointFallbacks)

	ctx := cfg.Context()
	assert.Equal(t, uuid.MustParse("6f1c2a8e-9a57-4c5e-9e64-0b8f5f3a7d21"), ctx.Session)
	assert.Equal(t, "en-US", ctx.Locale)
	assert.True(t, ctx.PublicKeyOverride)
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefaultFile, "application:\n  version: \"1.0\"\n")

	loader := NewLoader(dir)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loader.now = func() time.Time { return fixed }

	cfg, err := loader.LoadConfig(DefaultFile)
	require.NoError(t, err)

	assert.Equal(t, DefaultAppName, cfg.Application.Name)
	_, err = uuid.Parse(cfg.Application.Session)
	assert.NoError(t, err)
	assert.Equal(t, fixed, cfg.Application.SessionStart)
	assert.Equal(t, DefaultSecurityWait, cfg.Security.Timeout)
	assert.Equal(t, filepath.Join(dir, DefaultOutputDir), cfg.Output.Dir)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Zero(t, cfg.Reachability.Timeout)
	assert.Zero(t, cfg.Publish.Timeout)
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := NewLoader("").LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAppName, cfg.Application.Name)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := NewLoader(t.TempDir()).LoadConfig("absent.yaml")
	require.Error(t, err)

	var lerr LoaderError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "config", lerr.Type)
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SONAR_TEST_PROXY", "127.0.0.1:9999")
	t.Setenv("SONAR_TEST_VERSION", "2.5")
	writeFile(t, dir, DefaultFile, `
application:
  version: ${SONAR_TEST_VERSION}
proxy:
  url: http://${SONAR_TEST_PROXY}
`)

	cfg, err := NewLoader(dir).LoadConfig(DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, "2.5", cfg.Application.Version)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Proxy.URL)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "SONAR_TEST_HELPER=0.6.1\n")
	writeFile(t, dir, DefaultFile, "application:\n  helper_version: ${SONAR_TEST_HELPER}\n")
	t.Setenv("SONAR_TEST_HELPER", "")
	os.Unsetenv("SONAR_TEST_HELPER")

	loader := NewLoader(dir)
	require.NoError(t, loader.LoadEnvFile(".env", true))

	cfg, err := loader.LoadConfig(DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, "0.6.1", cfg.Application.HelperVersion)
}

func TestLoadEnvFile_Missing(t *testing.T) {
	loader := NewLoader(t.TempDir())
	assert.NoError(t, loader.LoadEnvFile(".env", false))
	assert.Error(t, loader.LoadEnvFile(".env", true))
	assert.NoError(t, loader.LoadEnvFile("", true))
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad session", "application:\n  session: not-a-guid\n"},
		{"bad proxy scheme", "proxy:\n  url: ftp://proxy:21\n"},
		{"bad endpoint", "reachability:\n  endpoint: ftp://example.com/session\n"},
		{"endpoint without host", "reachability:\n  endpoint: http:///session\n"},
		{"negative timeout", "publish:\n  timeout: -1s\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"nested mapping", "hosts:\n  example.com:\n    ip: 1.2.3.4\n"},
		{"list instead of mapping", "key_sites:\n  - a\n  - b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, DefaultFile, tt.content)

			_, err := NewLoader(dir).LoadConfig(DefaultFile)
			assert.Error(t, err)
		})
	}
}

func TestValidate_ConfigError(t *testing.T) {
	cfg := &Config{Security: Security{Timeout: -time.Second}}
	err := cfg.Validate()

	var cerr ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "invalid_config", cerr.Type)
	assert.Contains(t, cerr.Error(), "security.timeout")
}

func TestMapping_Entries(t *testing.T) {
	m := Mapping{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "a", Value: "3"}}
	assert.Equal(t, []domain.Entry{{Key: "a", Value: "3"}, {Key: "b", Value: "2"}}, m.Entries())
}
