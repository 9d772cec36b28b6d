package transport

import (
	"crypto/tls"
	"strings"
)

// TLSOptions is the user-facing TLS knob set shared by every outbound client.
type TLSOptions struct {
	MinVersion string `yaml:"min_version" json:"min_version"`
	SkipVerify bool   `yaml:"skip_verify" json:"skip_verify"`
}

// BuildTLSConfig builds a TLS config from options. Unknown versions keep
// the TLS 1.2 floor.
func BuildTLSConfig(opts TLSOptions) *tls.Config {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: opts.SkipVerify, //nolint:gosec
	}

	switch strings.ToUpper(strings.TrimSpace(opts.MinVersion)) {
	case "TLS1.0", "TLS10":
		cfg.MinVersion = tls.VersionTLS10
	case "TLS1.1", "TLS11":
		cfg.MinVersion = tls.VersionTLS11
	case "TLS1.2", "TLS12":
		cfg.MinVersion = tls.VersionTLS12
	case "TLS1.3", "TLS13":
		cfg.MinVersion = tls.VersionTLS13
	}

	return cfg
}
