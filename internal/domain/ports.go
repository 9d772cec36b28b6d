package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EnvironmentProbe reads host facts. It never fails; unknown facts carry a
// fallback value.
type EnvironmentProbe interface {
	Snapshot(ctx context.Context, app Context, now time.Time) SystemSnapshot
}

// SecurityProbe inventories installed protection products. Failures are
// returned inside the result, never as a separate error.
type SecurityProbe interface {
	Probe(ctx context.Context) SecurityProbeResult
}

// ReachabilityChecker performs one round trip through the configured proxy.
type ReachabilityChecker interface {
	Check(ctx context.Context, session uuid.UUID) Reachability
}

type CertificateSource interface {
	Certificates() ([]Certificate, error)
}

type LogSource interface {
	ReadLog() (string, error)
}

// Publisher uploads a rendered report and returns where it can be read.
type Publisher interface {
	Publish(ctx context.Context, text string, timeout time.Duration) (PublishResult, error)
}

type ReportWriter interface {
	Save(report *Report) (string, error)
}
