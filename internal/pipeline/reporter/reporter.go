package reporter

import (
	"fmt"
	"strings"
	"time"

	"bytemomo/sonar/internal/domain"

	"github.com/dustin/go-humanize"
)

// Section labels, in the order they appear in a report.
const (
	LabelAntivirus         = "Antivirus Software"
	LabelHosts             = "Hosts"
	LabelEndpointFallbacks = "Endpoint Fallbacks"
	LabelKeySites          = "Key Sites"
	LabelCertificates      = "Server Certificates"
)

const (
	DefaultTitle = "USBHelperLauncher Debug Information"

	debugTimeLayout = "2006-01-02 15:04:05"
	unknownValue    = "Unknown"
)

// Reporter renders a diagnostic report.
type Reporter interface {
	// Format is pure: identical input yields byte-identical output.
	Format(in Input) string
}

// Input is everything a report is built from. Slices keep their order;
// the security inventory is a map and is sorted by product name. Extra
// sections follow the certificates.
type Input struct {
	Snapshot          domain.SystemSnapshot
	Proxy             domain.Reachability
	Security          domain.SecurityProbeResult
	Hosts             []domain.Entry
	EndpointFallbacks []domain.Entry
	KeySites          []domain.Entry
	Certificates      []domain.Certificate
	Extra             []domain.NamedMapping
	Log               string
	ProxyToolLog      string
}

// ReporterConfig controls the decoration around the report body.
type ReporterConfig struct {
	Title           string `yaml:"title" json:"title"`
	LogBanner       string `yaml:"log_banner" json:"log_banner"`
	ProxyToolBanner string `yaml:"proxy_tool_banner" json:"proxy_tool_banner"`
}

// DefaultReporterConfig returns the banners support tooling expects.
func DefaultReporterConfig() ReporterConfig {
	return ReporterConfig{
		Title:           DefaultTitle,
		LogBanner:       "Log Start",
		ProxyToolBanner: "Fiddler Log Start",
	}
}

// TextReporter builds the plain text report.
type TextReporter struct {
	config ReporterConfig
}

func NewTextReporter(config ReporterConfig) *TextReporter {
	def := DefaultReporterConfig()
	if config.Title == "" {
		config.Title = def.Title
	}
	if config.LogBanner == "" {
		config.LogBanner = def.LogBanner
	}
	if config.ProxyToolBanner == "" {
		config.ProxyToolBanner = def.ProxyToolBanner
	}
	return &TextReporter{config: config}
}

// Format renders independent fragments and joins them in a fixed order:
// title, header, probe errors, mapping sections, then both logs. Logs are
// appended exactly as given.
func (r *TextReporter) Format(in Input) string {
	fragments := []string{
		banner(r.config.Title, 13),
		header(in.Snapshot, in.Proxy),
		securityError(in.Security),
	}
	for _, m := range Sections(in) {
		fragments = append(fragments, Section(m))
	}
	fragments = append(fragments,
		banner(r.config.LogBanner, 26),
		in.Log,
		banner(r.config.ProxyToolBanner, 22),
		in.ProxyToolLog,
	)
	return strings.Join(fragments, "")
}

// Sections lists the mapping sections of a report in output order,
// including empty ones.
func Sections(in Input) []domain.NamedMapping {
	sections := []domain.NamedMapping{
		SecurityMapping(in.Security.Products),
		domain.MappingFromEntries(LabelHosts, in.Hosts),
		domain.MappingFromEntries(LabelEndpointFallbacks, in.EndpointFallbacks),
		domain.MappingFromEntries(LabelKeySites, in.KeySites),
		domain.CertificateMapping(LabelCertificates, in.Certificates),
	}
	return append(sections, in.Extra...)
}

// SecurityMapping renders each product as "name -> Enabled|Disabled".
func SecurityMapping(products domain.SecurityProducts) domain.NamedMapping {
	kv := make(map[string]string, len(products))
	for name, enabled := range products {
		if enabled {
			kv[name] = "Enabled"
		} else {
			kv[name] = "Disabled"
		}
	}
	return domain.MappingFromMap(LabelAntivirus, kv)
}

// Section renders "Label:" followed by one line per entry. An empty
// mapping renders nothing, header included.
func Section(m domain.NamedMapping) string {
	if m.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.Label)
	b.WriteString(":\n")
	format := m.EntryFormat()
	for _, e := range m.Entries {
		fmt.Fprintf(&b, format, e.Key, e.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

func banner(title string, dashes int) string {
	pad := strings.Repeat("-", dashes)
	return pad + " " + title + " " + pad + "\n"
}

func header(s domain.SystemSnapshot, proxy domain.Reachability) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}

	line("Debug Time", s.Time.UTC().Format(debugTimeLayout)+" (UTC)")
	line("Session Length", Clock(s.SessionLength))
	line("Session GUID", s.Session.String())
	line("Proxy Available", proxy.String())
	line("Public Key Override", yesNo(s.PublicKeyOverride))
	line("Version", s.Version)
	line("Helper Version", s.HelperVersion)
	line(".NET Framework Version", s.FrameworkVersion)
	line("Operating System", fmt.Sprintf("%s (%d-bit)", s.OSName, s.OSBits))
	line("Platform", s.Platform)
	line("Used Locale", s.Locale)
	line("System Language", s.SystemLanguage)
	line("Total Memory", Memory(s.TotalMemory))
	line("Available Memory", Memory(s.AvailableMemory))
	return b.String()
}

func securityError(res domain.SecurityProbeResult) string {
	if !res.Failed() {
		return ""
	}
	return LabelAntivirus + ": Error (" + res.Err.Error() + ")\n"
}

// Clock renders a duration as hh:mm:ss. Hours are not wrapped at 24.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// Memory shows the byte count with a readable size next to it. Zero
// means the probe could not read it.
func Memory(bytes uint64) string {
	if bytes == 0 {
		return unknownValue
	}
	return fmt.Sprintf("%d (%s)", bytes, humanize.IBytes(bytes))
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
