package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile         = "sonar.yaml"
	DefaultAppName      = "USBHelperLauncher"
	DefaultOutputDir    = "output"
	DefaultSecurityWait = 10 * time.Second
)

// Loader provides functionality to load and validate configuration files
type Loader struct {
	basePath string
	now      func() time.Time
}

// NewLoader creates a new configuration loader with the specified base path
func NewLoader(basePath string) *Loader {
	if basePath == "" {
		basePath = "."
	}
	return &Loader{
		basePath: basePath,
		now:      time.Now,
	}
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error
// unless it was asked for explicitly.
func (l *Loader) LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	fullPath := l.resolvePath(path)
	if err := godotenv.Load(fullPath); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return NewConfigLoadError(fullPath, "failed to load env file", err)
	}
	return nil
}

// LoadConfig loads and validates the configuration at path. An empty path
// yields the defaults.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		fullPath := l.resolvePath(path)

		data, err := l.readFile(fullPath)
		if err != nil {
			return nil, NewConfigLoadError(fullPath, "failed to read config file", err)
		}

		// Expand environment variables
		data = l.expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, NewConfigLoadError(fullPath, "failed to parse config file", err)
		}
	}

	l.setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, NewConfigLoadError(path, "validation failed", err)
	}

	return &cfg, nil
}

// resolvePath resolves a path relative to the loader's base path
func (l *Loader) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.basePath, path)
}

// readFile reads a file and returns its contents
func (l *Loader) readFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}

	return os.ReadFile(path)
}

// expandEnvVars expands environment variables in the configuration data
func (l *Loader) expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// setDefaults fills unset values. A missing session gets a fresh GUID and
// a missing session start means the session starts now.
func (l *Loader) setDefaults(cfg *Config) {
	if cfg.Application.Name == "" {
		cfg.Application.Name = DefaultAppName
	}
	if cfg.Application.Session == "" {
		cfg.Application.Session = uuid.NewString()
	}
	if cfg.Application.SessionStart.IsZero() {
		cfg.Application.SessionStart = l.now().UTC()
	}

	if cfg.Security.Timeout == 0 {
		cfg.Security.Timeout = DefaultSecurityWait
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	cfg.Output.Dir = l.resolvePath(cfg.Output.Dir)

	if cfg.Certificates.Dir != "" {
		cfg.Certificates.Dir = l.resolvePath(cfg.Certificates.Dir)
	}
	if cfg.Logs.Application != "" {
		cfg.Logs.Application = l.resolvePath(cfg.Logs.Application)
	}
	if cfg.Logs.ProxyTool != "" {
		cfg.Logs.ProxyTool = l.resolvePath(cfg.Logs.ProxyTool)
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// LoaderError represents a configuration loading error
type LoaderError struct {
	Type    string
	Path    string
	Message string
	Cause   error
}

func (e LoaderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error for %s: %s (caused by: %v)", e.Type, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error for %s: %s", e.Type, e.Path, e.Message)
}

func (e LoaderError) Unwrap() error {
	return e.Cause
}

func NewConfigLoadError(path, message string, cause error) error {
	return LoaderError{
		Type:    "config",
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}
