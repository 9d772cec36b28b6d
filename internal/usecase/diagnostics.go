package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bytemomo/sonar/internal/domain"
	"bytemomo/sonar/internal/pipeline/reporter"
	"bytemomo/sonar/pkg/sonarerr"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Request carries the caller-owned inputs of one report.
type Request struct {
	App               domain.Context
	Hosts             []domain.Entry
	EndpointFallbacks []domain.Entry
	KeySites          []domain.Entry
	Extra             []domain.NamedMapping
}

// Dependencies wires the probes and adapters a DiagnosticsOrchestrator
// drives. Publisher and Writer may be nil when unused.
type Dependencies struct {
	Environment  domain.EnvironmentProbe
	Security     domain.SecurityProbe
	Reachability domain.ReachabilityChecker
	Certificates domain.CertificateSource
	AppLog       domain.LogSource
	ProxyToolLog domain.LogSource
	Reporter     reporter.Reporter
	Publisher    domain.Publisher
	Writer       domain.ReportWriter
}

// DiagnosticsStatus represents the current status of a report build
type DiagnosticsStatus struct {
	Phase       string        `json:"phase"`
	StartTime   time.Time     `json:"start_time"`
	ElapsedTime time.Duration `json:"elapsed_time"`
	Message     string        `json:"message,omitempty"`
}

// Phase constants
const (
	PhaseIdle       = "idle"
	PhaseProbing    = "probing"
	PhaseFormatting = "formatting"
	PhasePublishing = "publishing"
	PhaseCompleted  = "completed"
	PhaseFailed     = "failed"
	PhaseCancelled  = "cancelled"
)

// DiagnosticsOrchestrator gathers facts, renders the report and hands it
// to the publisher. It holds no state between requests besides status.
type DiagnosticsOrchestrator struct {
	deps Dependencies
	log  *logrus.Entry
	now  func() time.Time

	mu     sync.Mutex
	status DiagnosticsStatus
}

func NewDiagnosticsOrchestrator(deps Dependencies, log *logrus.Entry) *DiagnosticsOrchestrator {
	if deps.Reporter == nil {
		deps.Reporter = reporter.NewTextReporter(reporter.DefaultReporterConfig())
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &DiagnosticsOrchestrator{
		deps:   deps,
		log:    log.WithField("component", "diagnostics"),
		now:    time.Now,
		status: DiagnosticsStatus{Phase: PhaseIdle},
	}
}

// Build runs every probe concurrently, waits for all of them and formats
// the result. Probe failures end up in the report. The only error is a ctx
// that is already done before probing starts; once every probe has
// returned the report is always formatted.
func (o *DiagnosticsOrchestrator) Build(ctx context.Context, req Request) (*domain.Report, error) {
	o.startStatus()
	if err := ctx.Err(); err != nil {
		o.updateStatus(PhaseCancelled, "Report build cancelled")
		return nil, sonarerr.E("diagnostics.Build", sonarerr.KindCanceled, "report build cancelled", err)
	}
	o.updateStatus(PhaseProbing, "Collecting diagnostics")

	startedAt := o.now()
	var (
		snapshot domain.SystemSnapshot
		proxy    domain.Reachability
		security domain.SecurityProbeResult
		certs    []domain.Certificate
		appLog   string
		proxyLog string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if o.deps.Environment != nil {
			snapshot = o.deps.Environment.Snapshot(gctx, req.App, startedAt)
		} else {
			snapshot = domain.SystemSnapshot{Time: startedAt.UTC(), Session: req.App.Session}
		}
		return nil
	})
	g.Go(func() error {
		if o.deps.Security != nil {
			security = o.deps.Security.Probe(gctx)
		}
		return nil
	})
	g.Go(func() error {
		if o.deps.Reachability != nil {
			proxy = o.deps.Reachability.Check(gctx, req.App.Session)
		} else {
			proxy = domain.ProxyUnreachable("no proxy configured")
		}
		return nil
	})
	g.Go(func() error {
		certs = o.certificates()
		return nil
	})
	g.Go(func() error {
		appLog = o.readLog("application", o.deps.AppLog)
		return nil
	})
	g.Go(func() error {
		proxyLog = o.readLog("proxy_tool", o.deps.ProxyToolLog)
		return nil
	})
	// probes report failures as data, so Wait only synchronises
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		o.log.WithError(err).Warn("Context ended while probing, cut-short probes are reported as failures")
	}

	o.updateStatus(PhaseFormatting, "Formatting report")
	in := reporter.Input{
		Snapshot:          snapshot,
		Proxy:             proxy,
		Security:          security,
		Hosts:             req.Hosts,
		EndpointFallbacks: req.EndpointFallbacks,
		KeySites:          req.KeySites,
		Certificates:      certs,
		Extra:             req.Extra,
		Log:               appLog,
		ProxyToolLog:      proxyLog,
	}
	report := &domain.Report{
		Text:     o.deps.Reporter.Format(in),
		Snapshot: snapshot,
		Proxy:    proxy,
	}

	o.log.WithFields(logrus.Fields{
		"session":  snapshot.Session.String(),
		"proxy":    proxy.Kind.String(),
		"bytes":    len(report.Text),
		"duration": o.now().Sub(startedAt).String(),
	}).Info("Report built")
	o.updateStatus(PhaseCompleted, "Report built")
	return report, nil
}

// Publish uploads a built report. timeout <= 0 means no timeout.
func (o *DiagnosticsOrchestrator) Publish(ctx context.Context, report *domain.Report, timeout time.Duration) (domain.PublishResult, error) {
	const op = "diagnostics.Publish"
	if report == nil {
		return domain.PublishResult{}, sonarerr.E(op, sonarerr.KindConfig, "report is nil", nil)
	}
	if o.deps.Publisher == nil {
		return domain.PublishResult{}, sonarerr.E(op, sonarerr.KindConfig, "no publisher configured", nil)
	}

	o.updateStatus(PhasePublishing, "Uploading report")
	res, err := o.deps.Publisher.Publish(ctx, report.Text, timeout)
	if err != nil {
		phase := PhaseFailed
		if sonarerr.Is(err, sonarerr.KindCanceled) {
			phase = PhaseCancelled
		}
		o.updateStatus(phase, err.Error())
		return domain.PublishResult{}, err
	}

	o.updateStatus(PhaseCompleted, "Report published")
	return res, nil
}

// BuildAndPublish builds a report and uploads it once every probe has
// finished. The report is returned even when publishing fails.
func (o *DiagnosticsOrchestrator) BuildAndPublish(ctx context.Context, req Request, timeout time.Duration) (*domain.Report, domain.PublishResult, error) {
	report, err := o.Build(ctx, req)
	if err != nil {
		return nil, domain.PublishResult{}, err
	}
	res, err := o.Publish(ctx, report, timeout)
	return report, res, err
}

// Save persists a report through the configured writer.
func (o *DiagnosticsOrchestrator) Save(report *domain.Report) (string, error) {
	if o.deps.Writer == nil {
		return "", sonarerr.E("diagnostics.Save", sonarerr.KindConfig, "no report writer configured", nil)
	}
	path, err := o.deps.Writer.Save(report)
	if err != nil {
		return path, fmt.Errorf("save report: %w", err)
	}
	o.log.WithField("path", path).Info("Report saved")
	return path, nil
}

// GetStatus returns the current status
func (o *DiagnosticsOrchestrator) GetStatus() DiagnosticsStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *DiagnosticsOrchestrator) certificates() []domain.Certificate {
	if o.deps.Certificates == nil {
		return nil
	}
	certs, err := o.deps.Certificates.Certificates()
	if err != nil {
		o.log.WithError(err).Warn("Certificate source failed, section omitted")
		return nil
	}
	return certs
}

// readLog never fails; an unreadable log is replaced by a one-line marker.
func (o *DiagnosticsOrchestrator) readLog(name string, src domain.LogSource) string {
	if src == nil {
		return ""
	}
	text, err := src.ReadLog()
	if err != nil {
		o.log.WithError(err).WithField("log", name).Warn("Log source failed")
		return fmt.Sprintf("Error reading log (%v)\n", err)
	}
	return text
}

func (o *DiagnosticsOrchestrator) startStatus() {
	o.mu.Lock()
	o.status = DiagnosticsStatus{Phase: PhaseIdle, StartTime: o.now()}
	o.mu.Unlock()
}

func (o *DiagnosticsOrchestrator) updateStatus(phase, message string) {
	o.mu.Lock()
	o.status = DiagnosticsStatus{
		Phase:       phase,
		StartTime:   o.status.StartTime,
		ElapsedTime: o.now().Sub(o.status.StartTime),
		Message:     message,
	}
	o.mu.Unlock()
	o.log.WithField("phase", phase).Debug(message)
}
