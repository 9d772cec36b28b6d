package domain

import (
	"time"

	"github.com/google/uuid"
)

// Context is the read-only application state a report is built against.
// Callers fill it once per report request.
type Context struct {
	Session           uuid.UUID
	SessionStart      time.Time
	Version           string
	HelperVersion     string
	Locale            string
	PublicKeyOverride bool
}

// SystemSnapshot holds host facts captured at report-build time.
type SystemSnapshot struct {
	Time              time.Time     `json:"time"`
	SessionLength     time.Duration `json:"session_length"`
	Session           uuid.UUID     `json:"session"`
	PublicKeyOverride bool          `json:"public_key_override"`
	Version           string        `json:"version"`
	HelperVersion     string        `json:"helper_version"`
	FrameworkVersion  string        `json:"framework_version"`
	OSName            string        `json:"os_name"`
	OSBits            int           `json:"os_bits"`
	Platform          string        `json:"platform"`
	Locale            string        `json:"locale"`
	SystemLanguage    string        `json:"system_language"`
	TotalMemory       uint64        `json:"total_memory"`
	AvailableMemory   uint64        `json:"available_memory"`
}

// SecurityProducts maps an installed protection product to whether its
// real-time protection is enabled.
type SecurityProducts map[string]bool

// SecurityProbeResult is either a product inventory or the reason it
// could not be collected. An empty inventory with a nil Err means no data.
type SecurityProbeResult struct {
	Products SecurityProducts `json:"products,omitempty"`
	Err      error            `json:"-"`
}

func (r SecurityProbeResult) Failed() bool { return r.Err != nil }

// Certificate is a trusted root presented by the proxy.
type Certificate struct {
	Name       string `json:"name"`
	Thumbprint string `json:"thumbprint"`
}

// Report is the rendered diagnostic document.
type Report struct {
	Text     string         `json:"-"`
	Snapshot SystemSnapshot `json:"snapshot"`
	Proxy    Reachability   `json:"proxy"`
}

// PublishResult is where a published report can be retrieved.
type PublishResult struct {
	URL string `json:"url"`
}
