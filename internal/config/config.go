package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"bytemomo/sonar/internal/domain"
	"bytemomo/sonar/internal/transport"

	"github.com/google/uuid"
)

// Config is the top level of sonar.yaml.
type Config struct {
	Application       Application            `yaml:"application" json:"application"`
	Proxy             transport.ProxyOptions `yaml:"proxy" json:"proxy"`
	Reachability      Reachability           `yaml:"reachability" json:"reachability"`
	Security          Security               `yaml:"security" json:"security"`
	Publish           Publish                `yaml:"publish" json:"publish"`
	TLS               transport.TLSOptions   `yaml:"tls" json:"tls"`
	Hosts             Mapping                `yaml:"hosts" json:"hosts"`
	EndpointFallbacks Mapping                `yaml:"endpoint_fallbacks" json:"endpoint_fallbacks"`
	KeySites          Mapping                `yaml:"key_sites" json:"key_sites"`
	Certificates      Certificates           `yaml:"certificates" json:"certificates"`
	Logs              Logs                   `yaml:"logs" json:"logs"`
	Output            Output                 `yaml:"output" json:"output"`
	Logging           Logging                `yaml:"logging" json:"logging"`
}

// Application is the state of the launcher the report describes.
type Application struct {
	Name              string    `yaml:"name" json:"name"`
	Version           string    `yaml:"version" json:"version"`
	HelperVersion     string    `yaml:"helper_version" json:"helper_version"`
	Locale            string    `yaml:"locale" json:"locale"`
	Session           string    `yaml:"session" json:"session"`
	SessionStart      time.Time `yaml:"session_start" json:"session_start"`
	PublicKeyOverride bool      `yaml:"public_key_override" json:"public_key_override"`
}

type Reachability struct {
	Endpoint string        `yaml:"endpoint" json:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

type Security struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

type Publish struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

type Certificates struct {
	Dir string `yaml:"dir" json:"dir"`
}

// Logs points at the raw logs appended to the report.
type Logs struct {
	Application string `yaml:"application" json:"application"`
	ProxyTool   string `yaml:"proxy_tool" json:"proxy_tool"`
	MaxBytes    int64  `yaml:"max_bytes" json:"max_bytes"`
}

type Output struct {
	Dir string `yaml:"dir" json:"dir"`
}

// Logging configures sonar's own log output.
type Logging struct {
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Application.Session != "" {
		if _, err := uuid.Parse(c.Application.Session); err != nil {
			return ErrInvalidConfig("application.session", fmt.Sprintf("not a valid GUID: %v", err))
		}
	}

	if c.Proxy.URL != "" {
		if _, err := transport.ParseProxyURL(c.Proxy.URL); err != nil {
			return ErrInvalidConfig("proxy.url", err.Error())
		}
	}

	if err := validateHTTPURL("reachability.endpoint", c.Reachability.Endpoint); err != nil {
		return err
	}
	if err := validateHTTPURL("publish.base_url", c.Publish.BaseURL); err != nil {
		return err
	}

	if c.Reachability.Timeout < 0 {
		return ErrInvalidConfig("reachability.timeout", "must not be negative")
	}
	if c.Security.Timeout < 0 {
		return ErrInvalidConfig("security.timeout", "must not be negative")
	}
	if c.Publish.Timeout < 0 {
		return ErrInvalidConfig("publish.timeout", "must not be negative")
	}
	if c.Logs.MaxBytes < 0 {
		return ErrInvalidConfig("logs.max_bytes", "must not be negative")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return ErrInvalidConfig("logging.format", fmt.Sprintf("unsupported format %q", c.Logging.Format))
	}

	return nil
}

func validateHTTPURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidConfig(field, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidConfig(field, fmt.Sprintf("scheme must be http or https, got %q", u.Scheme))
	}
	if u.Host == "" {
		return ErrInvalidConfig(field, "missing host")
	}
	return nil
}

// Context returns the read-only application state for one report. An
// unparsable session yields the zero GUID; Validate rejects that earlier.
func (c *Config) Context() domain.Context {
	session, _ := uuid.Parse(c.Application.Session)
	return domain.Context{
		Session:           session,
		SessionStart:      c.Application.SessionStart,
		Version:           c.Application.Version,
		HelperVersion:     c.Application.HelperVersion,
		Locale:            c.Application.Locale,
		PublicKeyOverride: c.Application.PublicKeyOverride,
	}
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Type    string
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}

func ErrInvalidConfig(field, msg string) error {
	return ConfigError{Type: "invalid_config", Message: field + ": " + msg}
}
