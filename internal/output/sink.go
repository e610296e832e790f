package output

import (
	"context"
	"errors"
	"io"
	"path"
)

// Standalone bindle layout
const (
	InvoiceFileName = "invoice.toml"
	ParcelDirName   = "parcels"
	parcelExt       = ".dat"
)

// ErrInvoiceExists indicates the destination already holds an invoice and
// overwriting was not requested
var ErrInvoiceExists = errors.New("invoice already exists")

// Sink is a destination for a standalone bindle
type Sink interface {
	// Location describes where the bindle is written
	Location() string
	// HasParcel reports whether a parcel with the digest is already stored
	HasParcel(ctx context.Context, digest string) (bool, error)
	// WriteParcel stores parcel bytes under their digest
	WriteParcel(ctx context.Context, digest string, r io.Reader, size int64) error
	// WriteInvoice stores the encoded invoice
	WriteInvoice(ctx context.Context, data []byte) error
}

// parcelKey returns the slash-separated parcel location relative to the bindle root
func parcelKey(digest string) string {
	return path.Join(ParcelDirName, digest+parcelExt)
}
