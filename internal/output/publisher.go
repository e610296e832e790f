package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/expander"
	"github.com/quantmind-br/hippofactory-go/internal/utils"
)

// PublisherOptions contains options for the publisher
type PublisherOptions struct {
	// BaseDir is the directory parcel names are relative to
	BaseDir string
	Workers int
	DryRun  bool
	// Progress receives the progress bar; nil hides it
	Progress    io.Writer
	Description string
	Logger      *utils.Logger
}

// Publisher writes an expanded invoice and its local parcels to a Sink
type Publisher struct {
	sink        Sink
	baseDir     string
	workers     int
	dryRun      bool
	progress    io.Writer
	description string
	logger      *utils.Logger
}

type parcelJob struct {
	label bindle.Label
	path  string
}

// NewPublisher creates a new publisher
func NewPublisher(sink Sink, opts PublisherOptions) *Publisher {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.Description == "" {
		opts.Description = utils.DescWriting
	}

	return &Publisher{
		sink:        sink,
		baseDir:     opts.BaseDir,
		workers:     opts.Workers,
		dryRun:      opts.DryRun,
		progress:    opts.Progress,
		description: opts.Description,
		logger:      utils.OrNop(opts.Logger).WithComponent("publisher"),
	}
}

// Publish writes every locally available parcel, then the invoice. Parcels
// are written once per digest and their contents are checked against the
// invoice first. The invoice is not written when any parcel fails.
func (p *Publisher) Publish(ctx context.Context, inv *bindle.Invoice) (*Report, error) {
	if inv == nil {
		return nil, errors.New("publish: nil invoice")
	}

	report := NewReport(p.sink.Location(), p.dryRun)
	jobs := p.plan(inv, report)

	bar := utils.NewProgressBar(len(jobs), p.description, p.progress)
	pool := utils.NewPool(p.workers, func(ctx context.Context, job parcelJob) (any, error) {
		defer func() { _ = bar.Add(1) }()

		status, err := p.publishParcel(ctx, job)
		if err != nil {
			return nil, err
		}
		report.Add(ParcelRecord{
			Name:   job.label.Name,
			SHA256: job.label.SHA256,
			Size:   job.label.Size,
			Status: status,
		})
		return status, nil
	})

	tasks, err := pool.Process(ctx, jobs)
	_ = bar.Finish()
	if err != nil {
		return report, err
	}
	if err := utils.JoinTaskErrors(tasks); err != nil {
		return report, err
	}

	data, err := bindle.Marshal(inv, bindle.FormatTOML)
	if err != nil {
		return report, err
	}
	if err := p.sink.WriteInvoice(ctx, data); err != nil {
		return report, err
	}
	report.SetInvoice(inv.ID())

	p.logger.Info().
		Str("bindle", inv.ID()).
		Str("location", report.Location()).
		Int("written", report.Count(StatusWritten)).
		Int("existing", report.Count(StatusExisting)).
		Int("skipped", report.Count(StatusSkipped)).
		Bool("dry_run", p.dryRun).
		Msg("Published bindle")

	return report, nil
}

// plan selects one parcel per digest and records parcels with no local file
func (p *Publisher) plan(inv *bindle.Invoice, report *Report) []parcelJob {
	seen := make(map[string]bool, len(inv.Parcel))
	jobs := make([]parcelJob, 0, len(inv.Parcel))

	for _, parcel := range inv.Parcel {
		label := parcel.Label
		if seen[label.SHA256] {
			continue
		}
		seen[label.SHA256] = true

		path, ok := p.localPath(label.Name)
		if !ok {
			p.logger.Debug().Str("parcel", label.Name).Msg("No local file, skipping parcel")
			report.Add(ParcelRecord{Name: label.Name, SHA256: label.SHA256, Size: label.Size, Status: StatusSkipped})
			continue
		}
		jobs = append(jobs, parcelJob{label: label, path: path})
	}

	return jobs
}

// localPath maps a parcel name to a file under the base directory
func (p *Publisher) localPath(name string) (string, bool) {
	rel := filepath.FromSlash(name)
	if name == "" || !filepath.IsLocal(rel) {
		return "", false
	}
	path := filepath.Join(p.baseDir, rel)
	return path, utils.FileExists(path)
}

func (p *Publisher) publishParcel(ctx context.Context, job parcelJob) (Status, error) {
	digest := job.label.SHA256

	exists, err := p.sink.HasParcel(ctx, digest)
	if err != nil {
		return "", fmt.Errorf("parcel %s: %w", job.label.Name, err)
	}
	if exists {
		return StatusExisting, nil
	}

	actual, err := expander.DigestFile(job.path)
	if err != nil {
		return "", err
	}
	if actual != digest {
		return "", fmt.Errorf("parcel %s: %w: invoice has %s, file has %s",
			job.label.Name, domain.ErrDigestMismatch, digest, actual)
	}

	f, err := os.Open(job.path)
	if err != nil {
		return "", domain.NewIOError(domain.ErrOpen, job.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", domain.NewIOError(domain.ErrStat, job.path, err)
	}

	if err := p.sink.WriteParcel(ctx, digest, f, info.Size()); err != nil {
		return "", err
	}

	p.logger.Debug().
		Str("parcel", job.label.Name).
		Str("sha256", digest).
		Int64("size", info.Size()).
		Msg("Wrote parcel")

	return StatusWritten, nil
}
