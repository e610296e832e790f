package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quantmind-br/hippofactory-go/internal/utils"
)

// Writer writes a standalone bindle to a local directory
type Writer struct {
	baseDir string
	force   bool
	dryRun  bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	BaseDir string
	Force   bool
	DryRun  bool
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.BaseDir == "" {
		opts.BaseDir = "./bindle"
	}

	return &Writer{
		baseDir: utils.ExpandPath(opts.BaseDir),
		force:   opts.Force,
		dryRun:  opts.DryRun,
	}
}

// Location returns the output directory
func (w *Writer) Location() string {
	return w.baseDir
}

// InvoicePath returns the path of the invoice file
func (w *Writer) InvoicePath() string {
	return filepath.Join(w.baseDir, InvoiceFileName)
}

// ParcelPath returns the path a parcel with the digest is written to
func (w *Writer) ParcelPath(digest string) string {
	return filepath.Join(w.baseDir, filepath.FromSlash(parcelKey(digest)))
}

// HasParcel reports whether the parcel file exists. With force set every
// parcel is rewritten.
func (w *Writer) HasParcel(ctx context.Context, digest string) (bool, error) {
	if w.force {
		return false, nil
	}
	return utils.FileExists(w.ParcelPath(digest)), nil
}

// WriteParcel streams parcel bytes into parcels/<digest>.dat
func (w *Writer) WriteParcel(ctx context.Context, digest string, r io.Reader, size int64) error {
	if w.dryRun {
		return nil
	}

	path := w.ParcelPath(digest)
	if err := utils.EnsureDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".parcel-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write parcel %s: %w", digest, err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("write parcel %s: wrote %d of %d bytes", digest, written, size)
	}

	return os.Rename(tmp.Name(), path)
}

// WriteInvoice writes invoice.toml. An existing invoice is an error unless
// force is set.
func (w *Writer) WriteInvoice(ctx context.Context, data []byte) error {
	path := w.InvoicePath()
	if !w.force && utils.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrInvoiceExists, path)
	}

	if w.dryRun {
		return nil
	}

	return utils.WriteFileAtomic(path, data, 0644)
}

// Ensure Writer implements Sink
var _ Sink = (*Writer)(nil)
