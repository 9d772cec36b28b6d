package reporter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bytemomo/sonar/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() domain.SystemSnapshot {
	return domain.SystemSnapshot{
		Time:             time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
		SessionLength:    26*time.Hour + 3*time.Minute + 4*time.Second,
		Session:          uuid.MustParse("6f1c2a8e-9a57-4c5e-9e64-0b8f5f3a7d21"),
		Version:          "0.19",
		HelperVersion:    "0.6.1.655",
		FrameworkVersion: "4.6 or later",
		OSName:           "Microsoft Windows 10 Pro (build 19045)",
		OSBits:           64,
		Platform:         "windows/amd64",
		Locale:           "en-US",
		SystemLanguage:   "en-US",
		TotalMemory:      16 << 30,
	}
}

func sampleInput() Input {
	return Input{
		Snapshot: sampleSnapshot(),
		Proxy:    domain.ProxyReachable(),
		Security: domain.SecurityProbeResult{Products: domain.SecurityProducts{
			"Windows Defender": true,
			"Avast Antivirus":  false,
		}},
		Hosts:             []domain.Entry{{Key: "example.com", Value: "1.2.3.4"}},
		EndpointFallbacks: []domain.Entry{{Key: "ccs.cdn.wup.shop.nintendo.net", Value: "ccs.cdn.c.shop.nintendowifi.net"}},
		Certificates: []domain.Certificate{
			{Name: "DO_NOT_TRUST_FiddlerRoot", Thumbprint: "AB12"},
		},
		Log:          "launcher started\n",
		ProxyToolLog: "fiddler started\n",
	}
}

func TestFormat_Layout(t *testing.T) {
	out := NewTextReporter(ReporterConfig{}).Format(sampleInput())

	want := strings.Join([]string{
		"------------- USBHelperLauncher Debug Information -------------",
		"Debug Time: 2024-03-09 14:05:07 (UTC)",
		"Session Length: 26:03:04",
		"Session GUID: 6f1c2a8e-9a57-4c5e-9e64-0b8f5f3a7d21",
		"Proxy Available: Yes",
		"Public Key Override: No",
		"Version: 0.19",
		"Helper Version: 0.6.1.655",
		".NET Framework Version: 4.6 or later",
		"Operating System: Microsoft Windows 10 Pro (build 19045) (64-bit)",
		"Platform: windows/amd64",
		"Used Locale: en-US",
		"System Language: en-US",
		"Total Memory: 17179869184 (16 GiB)",
		"Available Memory: Unknown",
		"Antivirus Software:",
		"Avast Antivirus -> Disabled",
		"Windows Defender -> Enabled",
		"Hosts:",
		"example.com -> 1.2.3.4",
		"Endpoint Fallbacks:",
		"ccs.cdn.wup.shop.nintendo.net -> ccs.cdn.c.shop.nintendowifi.net",
		"Server Certificates:",
		"DO_NOT_TRUST_FiddlerRoot (AB12)",
		"-------------------------- Log Start --------------------------",
		"launcher started",
		"---------------------- Fiddler Log Start ----------------------",
		"fiddler started",
		"",
	}, "\n")

	assert.Equal(t, want, out)
}

func TestFormat_Deterministic(t *testing.T) {
	r := NewTextReporter(DefaultReporterConfig())
	in := sampleInput()
	in.Security.Products["McAfee"] = true
	in.Security.Products["Norton"] = false

	first := r.Format(in)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, r.Format(in))
	}
}

func TestFormat_EmptySectionsOmitted(t *testing.T) {
	in := sampleInput()
	in.Security = domain.SecurityProbeResult{}
	in.Hosts = nil
	in.EndpointFallbacks = nil
	in.Certificates = nil
	in.Extra = []domain.NamedMapping{{Label: "Empty Extra"}}

	out := NewTextReporter(ReporterConfig{}).Format(in)

	for _, label := range []string{LabelAntivirus, LabelHosts, LabelEndpointFallbacks, LabelKeySites, LabelCertificates, "Empty Extra"} {
		assert.NotContains(t, out, label+":", "section %q should be omitted", label)
	}
	assert.NotContains(t, out, "->")
	assert.Contains(t, out, "Log Start")
	assert.Contains(t, out, "Fiddler Log Start")
}

func TestFormat_SecurityProbeFailure(t *testing.T) {
	in := sampleInput()
	in.Security = domain.SecurityProbeResult{Err: errors.New("Invalid namespace")}

	out := NewTextReporter(ReporterConfig{}).Format(in)

	assert.Contains(t, out, "Antivirus Software: Error (Invalid namespace)\n")
	assert.NotContains(t, out, "Antivirus Software:\n")
	// other sections are unaffected
	assert.Contains(t, out, "Hosts:\nexample.com -> 1.2.3.4\n")
	assert.Contains(t, out, "Server Certificates:\nDO_NOT_TRUST_FiddlerRoot (AB12)\n")
}

func TestFormat_ProxyStates(t *testing.T) {
	r := NewTextReporter(ReporterConfig{})
	in := sampleInput()

	in.Proxy = domain.ProxyUnreachable("Unable to connect to the remote server")
	assert.Contains(t, r.Format(in), "Proxy Available: No (Unable to connect to the remote server)\n")

	in.Proxy = domain.ProxySessionMismatch("<html>...")
	assert.Contains(t, r.Format(in), "Proxy Available: No (Invalid response: <html>...)\n")
}

func TestFormat_ExtraSectionsFollowCertificates(t *testing.T) {
	in := sampleInput()
	in.Extra = []domain.NamedMapping{
		domain.MappingFromEntries("Plugins", []domain.Entry{{Key: "titlekeys", Value: "loaded"}}).WithFormat("%s: %s"),
	}

	out := NewTextReporter(ReporterConfig{}).Format(in)

	certs := strings.Index(out, "Server Certificates:")
	extra := strings.Index(out, "Plugins:\ntitlekeys: loaded\n")
	logs := strings.Index(out, "Log Start")
	require.NotEqual(t, -1, extra)
	assert.Less(t, certs, extra)
	assert.Less(t, extra, logs)
}

func TestFormat_CustomBanners(t *testing.T) {
	r := NewTextReporter(ReporterConfig{Title: "Sonar Report", ProxyToolBanner: "Proxy Log Start"})
	out := r.Format(sampleInput())

	assert.True(t, strings.HasPrefix(out, "------------- Sonar Report -------------\n"))
	assert.Contains(t, out, "---------------------- Proxy Log Start ----------------------\n")
	assert.Contains(t, out, "-------------------------- Log Start --------------------------\n")
}

func TestFormat_LogsAppendedVerbatim(t *testing.T) {
	in := sampleInput()
	in.Log = "abc"
	in.ProxyToolLog = "xyz"

	out := NewTextReporter(ReporterConfig{}).Format(in)

	assert.Contains(t, out, "-------------------------- Log Start --------------------------\nabc---------------------- Fiddler Log Start")
	assert.True(t, strings.HasSuffix(out, "Fiddler Log Start ----------------------\nxyz"))

	in.ProxyToolLog = ""
	out = NewTextReporter(ReporterConfig{}).Format(in)
	assert.True(t, strings.HasSuffix(out, "Fiddler Log Start ----------------------\n"))
}

// Empty security inventory, one host override, reachable proxy and a
// 200 character log. An empty inventory is "no data", so the Antivirus
// Software section is left out like any other empty mapping; only a failed
// probe prints an error line there.
func TestFormat_EndToEnd(t *testing.T) {
	log := strings.Repeat("0123456789", 20)
	in := Input{
		Snapshot: sampleSnapshot(),
		Proxy:    domain.ProxyReachable(),
		Security: domain.SecurityProbeResult{Products: domain.SecurityProducts{}},
		Hosts:    []domain.Entry{{Key: "example.com", Value: "1.2.3.4"}},
		Log:      log,
	}

	out := NewTextReporter(ReporterConfig{}).Format(in)

	assert.Contains(t, out, "Debug Time: ")
	assert.Contains(t, out, "Proxy Available: Yes\n")
	assert.NotContains(t, out, "Antivirus Software")
	assert.Contains(t, out, "Hosts:\nexample.com -> 1.2.3.4\n-------------------------- Log Start")
	assert.Equal(t, 1, strings.Count(out, " -> "))
	assert.Contains(t, out, "-------------------------- Log Start --------------------------\n"+log)
}

func TestClock(t *testing.T) {
	assert.Equal(t, "00:00:00", Clock(0))
	assert.Equal(t, "00:00:00", Clock(-time.Minute))
	assert.Equal(t, "01:30:05", Clock(90*time.Minute+5*time.Second+400*time.Millisecond))
	assert.Equal(t, "100:00:00", Clock(100*time.Hour))
}

func TestMemory(t *testing.T) {
	assert.Equal(t, "Unknown", Memory(0))
	assert.Equal(t, "1024 (1.0 KiB)", Memory(1024))
}

func TestSecurityMapping(t *testing.T) {
	m := SecurityMapping(domain.SecurityProducts{"b": false, "a": true})
	assert.Equal(t, []domain.Entry{{Key: "a", Value: "Enabled"}, {Key: "b", Value: "Disabled"}}, m.Entries)
	assert.True(t, SecurityMapping(nil).Empty())
}
