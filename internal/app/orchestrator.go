package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/cache"
	"github.com/quantmind-br/hippofactory-go/internal/config"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/expander"
	"github.com/quantmind-br/hippofactory-go/internal/manifest"
	"github.com/quantmind-br/hippofactory-go/internal/output"
	"github.com/quantmind-br/hippofactory-go/internal/registry"
	"github.com/quantmind-br/hippofactory-go/internal/utils"
)

// Orchestrator coordinates loading, expanding and emitting invoices
type Orchestrator struct {
	config    *config.Config
	logger    *utils.Logger
	registry  domain.RegistryClient
	client    *registry.Client
	cache     *cache.BadgerCache
	loader    *manifest.Loader
	clock     func() time.Time
	lookupEnv func(string) (string, bool)
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Config  *config.Config
	Verbose bool
	// LogOutput receives log lines; nil means stderr
	LogOutput io.Writer
	// Registry replaces the HTTP registry client built from the config
	Registry  domain.RegistryClient
	Clock     func() time.Time
	LookupEnv func(string) (string, bool)
}

// PrepareOptions controls where a standalone bindle is written
type PrepareOptions struct {
	Directory string
	S3Bucket  string
	Force     bool
	DryRun    bool
	// Progress receives the progress bar; nil hides it
	Progress io.Writer
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := cfg.Logging.Level
	if logLevel == "" {
		logLevel = config.DefaultLogLevel
	}
	logFormat := cfg.Logging.Format
	if logFormat == "" {
		logFormat = config.DefaultLogFormat
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  logFormat,
		Output:  opts.LogOutput,
		Verbose: opts.Verbose,
	})

	o := &Orchestrator{
		config:    cfg,
		logger:    logger,
		loader:    manifest.NewLoader(),
		clock:     opts.Clock,
		lookupEnv: opts.LookupEnv,
	}

	switch {
	case opts.Registry != nil:
		o.registry = opts.Registry
	case cfg.Registry.URL != "":
		if err := o.connectRegistry(); err != nil {
			_ = o.Close()
			return nil, err
		}
	}

	return o, nil
}

// connectRegistry builds the HTTP registry client and its optional cache
func (o *Orchestrator) connectRegistry() error {
	cfg := o.config.Registry

	var responseCache domain.Cache
	if cfg.Cache.Enabled {
		c, err := cache.NewBadgerCache(cache.Options{Directory: cfg.Cache.Directory})
		if err != nil {
			return fmt.Errorf("failed to open registry cache: %w", err)
		}
		o.cache = c
		responseCache = c
	}

	client, err := registry.NewClient(registry.ClientOptions{
		BaseURL:    cfg.URL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Cache:      responseCache,
		CacheTTL:   cfg.Cache.TTL,
		Logger:     o.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create registry client: %w", err)
	}

	o.client = client
	o.registry = client
	return nil
}

// Logger returns the orchestrator logger
func (o *Orchestrator) Logger() *utils.Logger {
	return o.logger
}

// Expand loads the HIPPOFACTS at path, a file or a directory holding one,
// and expands it into an invoice
func (o *Orchestrator) Expand(ctx context.Context, path string) (*bindle.Invoice, error) {
	inv, _, err := o.expand(ctx, path)
	return inv, err
}

func (o *Orchestrator) expand(ctx context.Context, path string) (*bindle.Invoice, string, error) {
	startTime := time.Now()

	file, err := manifest.ResolvePath(path)
	if err != nil {
		return nil, "", err
	}

	facts, err := o.loader.Load(file)
	if err != nil {
		return nil, "", err
	}

	baseDir := filepath.Dir(file)
	ectx, err := expander.NewContext(expander.ContextOptions{
		BaseDir:    baseDir,
		Versioning: expander.ParseVersioning(o.config.Expansion.Versioning),
		Registry:   o.registry,
		Clock:      o.clock,
		LookupEnv:  o.lookupEnv,
		Logger:     o.logger,
	})
	if err != nil {
		return nil, "", err
	}

	o.logger.Debug().
		Str("manifest", file).
		Str("versioning", ectx.Versioning().String()).
		Int("handlers", len(facts.Handlers)).
		Msg("Expanding manifest")

	inv, err := expander.Expand(ctx, facts, ectx)
	if err != nil {
		return nil, "", err
	}

	o.logger.Info().
		Str("bindle", inv.ID()).
		Int("parcels", len(inv.Parcel)).
		Int("groups", len(inv.Group)).
		Dur("duration", time.Since(startTime)).
		Msg("Expanded invoice")

	return inv, ectx.BaseDir(), nil
}

// Render encodes the invoice in the given format, or the configured one
// when format is empty
func (o *Orchestrator) Render(w io.Writer, inv *bindle.Invoice, format string) error {
	if format == "" {
		format = o.config.Output.Format
	}
	f, err := bindle.ParseFormat(format)
	if err != nil {
		return err
	}
	return bindle.Encode(w, inv, f)
}

// RenderToFile encodes the invoice into a file, replacing it atomically
func (o *Orchestrator) RenderToFile(path string, inv *bindle.Invoice, format string) error {
	if format == "" {
		format = o.config.Output.Format
	}
	f, err := bindle.ParseFormat(format)
	if err != nil {
		return err
	}
	data, err := bindle.Marshal(inv, f)
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(utils.ExpandPath(path), data, 0644)
}

// Prepare expands the manifest at path and writes it as a standalone bindle
func (o *Orchestrator) Prepare(ctx context.Context, path string, opts PrepareOptions) (*output.Report, error) {
	inv, baseDir, err := o.expand(ctx, path)
	if err != nil {
		return nil, err
	}

	dest := DetectDestination(opts, o.config)
	sink, description, err := CreateSink(dest, inv, opts, o.config)
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("destination", string(dest)).
		Str("location", sink.Location()).
		Bool("dry_run", opts.DryRun).
		Msg("Preparing standalone bindle")

	publisher := output.NewPublisher(sink, output.PublisherOptions{
		BaseDir:     baseDir,
		Workers:     o.config.Publish.Workers,
		DryRun:      opts.DryRun,
		Progress:    opts.Progress,
		Description: description,
		Logger:      o.logger,
	})

	return publisher.Publish(ctx, inv)
}

// CheckResult is the outcome of one doctor check
type CheckResult struct {
	Name   string
	OK     bool
	Detail string
}

// Doctor checks the configured registry and cache
func (o *Orchestrator) Doctor(ctx context.Context) []CheckResult {
	results := []CheckResult{{Name: "config", OK: true, Detail: "loaded"}}

	switch {
	case o.client != nil:
		if err := o.client.Ping(ctx); err != nil {
			results = append(results, CheckResult{Name: "registry", Detail: err.Error()})
		} else {
			results = append(results, CheckResult{Name: "registry", OK: true, Detail: o.client.BaseURL()})
		}
	case o.registry != nil:
		results = append(results, CheckResult{Name: "registry", OK: true, Detail: "custom client"})
	default:
		results = append(results, CheckResult{Name: "registry", OK: true, Detail: "not configured, external handlers will fail"})
	}

	cacheCfg := o.config.Registry.Cache
	if !cacheCfg.Enabled {
		results = append(results, CheckResult{Name: "cache", OK: true, Detail: "disabled"})
	} else {
		results = append(results, checkWritableDir("cache", utils.ExpandPath(cacheCfg.Directory)))
	}

	return results
}

func checkWritableDir(name, dir string) CheckResult {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return CheckResult{Name: name, Detail: err.Error()}
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return CheckResult{Name: name, Detail: err.Error()}
	}
	probe.Close()
	_ = os.Remove(probe.Name())
	return CheckResult{Name: name, OK: true, Detail: dir}
}

// Close releases resources held by the orchestrator
func (o *Orchestrator) Close() error {
	var errs []error
	if o.cache != nil {
		errs = append(errs, o.cache.Close())
	}
	return errors.Join(errs...)
}
