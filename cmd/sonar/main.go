package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"bytemomo/sonar/internal/adapter/certstore"
	"bytemomo/sonar/internal/adapter/hastebin"
	"bytemomo/sonar/internal/adapter/logfile"
	"bytemomo/sonar/internal/adapter/logger"
	"bytemomo/sonar/internal/adapter/textreport"
	"bytemomo/sonar/internal/config"
	"bytemomo/sonar/internal/pipeline/environment"
	"bytemomo/sonar/internal/pipeline/reachability"
	"bytemomo/sonar/internal/pipeline/reporter"
	"bytemomo/sonar/internal/pipeline/security"
	"bytemomo/sonar/internal/transport"
	"bytemomo/sonar/internal/usecase"

	"github.com/sirupsen/logrus"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

// errPublish marks a run whose report was built but could not be uploaded.
var errPublish = errors.New("publish failed")

type options struct {
	configPath string
	envFile    string
	outDir     string
	publish    bool
	timeout    time.Duration
	verbose    bool
}

func main() {
	var opts options
	versionFlag := flag.Bool("version", false, "Show version information")
	flag.StringVar(&opts.configPath, "config", "", "Path to sonar YAML config (default: ./"+config.DefaultFile+" if present)")
	flag.StringVar(&opts.envFile, "env-file", "", "Load environment variables from this file before reading the config (default: ./.env if present)")
	flag.StringVar(&opts.outDir, "out", "", "Output directory (overrides config)")
	flag.BoolVar(&opts.publish, "publish", false, "Upload the report to the paste service")
	flag.DurationVar(&opts.timeout, "timeout", 0, "Upload timeout, 0 waits indefinitely (overrides config)")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("sonar diagnostics reporter v%s (%s)\n", version, commit)
		return
	}

	if err := run(opts); err != nil {
		if errors.Is(err, errPublish) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	loader := config.NewLoader("")

	envRequired := opts.envFile != ""
	if !envRequired {
		opts.envFile = ".env"
	}
	if err := loader.LoadEnvFile(opts.envFile, envRequired); err != nil {
		return err
	}

	configPath := opts.configPath
	if configPath == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			configPath = config.DefaultFile
		}
	}
	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.publish {
		cfg.Publish.Enabled = true
	}
	if opts.timeout > 0 {
		cfg.Publish.Timeout = opts.timeout
	}

	baseLog, closeLog := logger.New(logger.Options{
		Level:  logger.Level(opts.verbose),
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	defer closeLog()
	log := baseLog.WithFields(logrus.Fields{
		"session": cfg.Application.Session,
		"config":  configPath,
	})
	log.WithField("version", version).Info("Starting sonar")

	orchestrator, err := setupOrchestrator(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := orchestrator.Build(ctx, usecase.Request{
		App:               cfg.Context(),
		Hosts:             cfg.Hosts.Entries(),
		EndpointFallbacks: cfg.EndpointFallbacks.Entries(),
		KeySites:          cfg.KeySites.Entries(),
	})
	if err != nil {
		return fmt.Errorf("could not build report: %w", err)
	}

	path, err := orchestrator.Save(report)
	if err != nil {
		log.WithError(err).Warn("Could not save report")
	}

	if !cfg.Publish.Enabled {
		fmt.Print(report.Text)
		if path != "" {
			fmt.Fprintf(os.Stderr, "Report saved to %s\n", path)
		}
		return nil
	}

	res, err := orchestrator.Publish(ctx, report, cfg.Publish.Timeout)
	if err != nil {
		log.WithError(err).Error("Failed to publish report")
		if path != "" {
			fmt.Fprintf(os.Stderr, "Could not publish report, raw report at %s\n", path)
		} else {
			fmt.Print(report.Text)
		}
		return fmt.Errorf("%w: %v", errPublish, err)
	}

	fmt.Println(res.URL)
	return nil
}

func setupOrchestrator(cfg *config.Config, log *logrus.Entry) (*usecase.DiagnosticsOrchestrator, error) {
	proxy, err := transport.NewProxyFunc(cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("could not configure proxy: %w", err)
	}

	// the check goes through the proxy, the upload does not
	proxied := transport.NewHTTPClient(transport.ClientOptions{Proxy: proxy, TLS: cfg.TLS})
	direct := transport.NewHTTPClient(transport.ClientOptions{TLS: cfg.TLS})

	rcfg := reporter.DefaultReporterConfig()
	rcfg.Title = cfg.Application.Name + " Debug Information"

	deps := usecase.Dependencies{
		Environment:  environment.NewProbe(nil, log),
		Security:     security.NewProbe(nil, cfg.Security.Timeout, log),
		Reachability: reachability.NewChecker(proxied, cfg.Reachability.Endpoint, cfg.Reachability.Timeout, log),
		Certificates: certstore.New(cfg.Certificates.Dir, log),
		AppLog:       logfile.New(cfg.Logs.Application, cfg.Logs.MaxBytes, log),
		ProxyToolLog: logfile.New(cfg.Logs.ProxyTool, cfg.Logs.MaxBytes, log),
		Reporter:     reporter.NewTextReporter(rcfg),
		Writer:       textreport.New(filepath.Clean(cfg.Output.Dir)),
	}
	if cfg.Publish.Enabled {
		deps.Publisher = hastebin.New(direct, cfg.Publish.BaseURL, log)
	}

	return usecase.NewDiagnosticsOrchestrator(deps, log), nil
}
