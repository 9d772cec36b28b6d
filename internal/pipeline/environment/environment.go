package environment

import (
	"context"
	"errors"
	"time"

	"bytemomo/sonar/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	// Unknown is shown for any host fact that could not be read.
	Unknown = "Unknown"

	// FrameworkNotDetected is shown when the framework release key is absent.
	FrameworkNotDetected = "Version 4.5 or later is not detected."
)

// Host exposes the raw facts the probe reads. Every method may fail; the
// probe turns failures into fallback values.
type Host interface {
	OSName() (string, error)
	Platform() string
	Is64Bit() bool
	Memory() (total, available uint64, err error)
	// FrameworkRelease returns the installed framework release code.
	// ok is false when the release key does not exist. Platforms without a
	// framework registry return errors.ErrUnsupported.
	FrameworkRelease() (code int, ok bool, err error)
	RuntimeVersion() string
	UILanguage() (string, error)
}

type releaseThreshold struct {
	min   int
	label string
}

// Descending so the first match is the highest threshold reached.
var releaseThresholds = []releaseThreshold{
	{393295, "4.6 or later"},
	{379893, "4.5.2 or later"},
	{378675, "4.5.1 or later"},
	{378389, "4.5 or later"},
}

// ClassifyRelease maps a framework release code to the newest version it
// implies. Bounds are inclusive. The key only exists once 4.5 is installed,
// so a code under the lowest bound still gets the lowest label.
func ClassifyRelease(code int) string {
	for _, t := range releaseThresholds {
		if code >= t.min {
			return t.label
		}
	}
	return releaseThresholds[len(releaseThresholds)-1].label
}

// Probe builds a SystemSnapshot from a Host.
type Probe struct {
	host Host
	log  *logrus.Entry
}

func NewProbe(host Host, log *logrus.Entry) *Probe {
	if host == nil {
		host = NewSystemHost()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Probe{host: host, log: log.WithField("probe", "environment")}
}

// Snapshot never fails; each unreadable fact is logged and replaced by its
// fallback.
func (p *Probe) Snapshot(_ context.Context, app domain.Context, now time.Time) domain.SystemSnapshot {
	now = now.UTC()
	snap := domain.SystemSnapshot{
		Time:              now,
		Session:           app.Session,
		PublicKeyOverride: app.PublicKeyOverride,
		Version:           orUnknown(app.Version),
		HelperVersion:     orUnknown(app.HelperVersion),
		Locale:            orUnknown(app.Locale),
		Platform:          p.host.Platform(),
		OSBits:            32,
		FrameworkVersion:  p.frameworkVersion(),
	}
	if !app.SessionStart.IsZero() && now.After(app.SessionStart) {
		snap.SessionLength = now.Sub(app.SessionStart)
	}
	if p.host.Is64Bit() {
		snap.OSBits = 64
	}

	if name, err := p.host.OSName(); err != nil || name == "" {
		p.fallback("os_name", err)
		snap.OSName = Unknown
	} else {
		snap.OSName = name
	}

	if lang, err := p.host.UILanguage(); err != nil || lang == "" {
		p.fallback("system_language", err)
		snap.SystemLanguage = Unknown
	} else {
		snap.SystemLanguage = lang
	}

	total, avail, err := p.host.Memory()
	if err != nil {
		p.fallback("memory", err)
	} else {
		snap.TotalMemory, snap.AvailableMemory = total, avail
	}

	return snap
}

func (p *Probe) frameworkVersion() string {
	code, ok, err := p.host.FrameworkRelease()
	switch {
	case errors.Is(err, errors.ErrUnsupported):
		return orUnknown(p.host.RuntimeVersion())
	case err != nil:
		p.fallback("framework_version", err)
		return FrameworkNotDetected
	case !ok:
		return FrameworkNotDetected
	}
	return ClassifyRelease(code)
}

func (p *Probe) fallback(fact string, err error) {
	entry := p.log.WithField("fact", fact)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("Host fact unavailable, using fallback")
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
