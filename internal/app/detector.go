package app

import (
	"path"
	"strings"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/config"
	"github.com/quantmind-br/hippofactory-go/internal/output"
	"github.com/quantmind-br/hippofactory-go/internal/utils"
)

// DestinationType is where a standalone bindle is written
type DestinationType string

const (
	DestinationDirectory DestinationType = "directory"
	DestinationS3        DestinationType = "s3"
)

// DetectDestination picks the destination for a prepare run. An explicit
// directory wins, then an explicit or configured bucket, then the
// configured output directory.
func DetectDestination(opts PrepareOptions, cfg *config.Config) DestinationType {
	if strings.TrimSpace(opts.Directory) != "" {
		return DestinationDirectory
	}
	if strings.TrimSpace(opts.S3Bucket) != "" {
		return DestinationS3
	}
	if cfg != nil && cfg.HasS3() {
		return DestinationS3
	}
	return DestinationDirectory
}

// CreateSink creates the sink for the destination. Objects in a bucket are
// stored under <name>/<version>.
func CreateSink(dest DestinationType, inv *bindle.Invoice, opts PrepareOptions, cfg *config.Config) (output.Sink, string, error) {
	force := opts.Force || cfg.Output.Force

	switch dest {
	case DestinationS3:
		s3 := cfg.Publish.S3
		bucket := s3.Bucket
		if strings.TrimSpace(opts.S3Bucket) != "" {
			bucket = opts.S3Bucket
		}
		sink, err := output.NewS3Writer(output.S3Options{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			Bucket:    bucket,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			UseSSL:    s3.UseSSL,
			Prefix:    path.Join(inv.Bindle.Name, inv.Bindle.Version),
			Force:     force,
			DryRun:    opts.DryRun,
		})
		if err != nil {
			return nil, "", err
		}
		return sink, utils.DescUploading, nil
	default:
		dir := opts.Directory
		if strings.TrimSpace(dir) == "" {
			dir = cfg.Output.Directory
		}
		return output.NewWriter(output.WriterOptions{
			BaseDir: dir,
			Force:   force,
			DryRun:  opts.DryRun,
		}), utils.DescWriting, nil
	}
}
