package output

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
)

// Status is the outcome for one parcel of a published bindle
type Status string

const (
	// StatusWritten means the parcel bytes were written
	StatusWritten Status = "written"
	// StatusExisting means the destination already held the parcel
	StatusExisting Status = "existing"
	// StatusSkipped means no local file backs the parcel
	StatusSkipped Status = "skipped"
)

// ParcelRecord describes what happened to one parcel
type ParcelRecord struct {
	Name   string `json:"name"`
	SHA256 string `json:"sha256"`
	Size   uint64 `json:"size"`
	Status Status `json:"status"`
}

// Report collects parcel outcomes while a bindle is published. It is safe
// for concurrent use.
type Report struct {
	mu       sync.RWMutex
	location string
	invoice  string
	dryRun   bool
	records  []ParcelRecord
}

// NewReport creates an empty report for a destination
func NewReport(location string, dryRun bool) *Report {
	return &Report{
		location: location,
		dryRun:   dryRun,
		records:  make([]ParcelRecord, 0),
	}
}

// Add records a parcel outcome
func (r *Report) Add(rec ParcelRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// SetInvoice records the id of the invoice that was written
func (r *Report) SetInvoice(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoice = id
}

// Location returns the destination the report describes
func (r *Report) Location() string {
	return r.location
}

// Invoice returns the written invoice id, or "" when none was written
func (r *Report) Invoice() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.invoice
}

// DryRun reports whether nothing was actually written
func (r *Report) DryRun() bool {
	return r.dryRun
}

// Records returns the parcel outcomes ordered by name then digest
func (r *Report) Records() []ParcelRecord {
	r.mu.RLock()
	out := make([]ParcelRecord, len(r.records))
	copy(out, r.records)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SHA256 < out[j].SHA256
	})
	return out
}

// Count returns the number of parcels with the status
func (r *Report) Count(status Status) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, rec := range r.records {
		if rec.Status == status {
			n++
		}
	}
	return n
}

// BytesWritten returns the total size of written parcels
func (r *Report) BytesWritten() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total uint64
	for _, rec := range r.records {
		if rec.Status == StatusWritten {
			total += rec.Size
		}
	}
	return total
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	doc := struct {
		Location string         `json:"location"`
		Invoice  string         `json:"invoice,omitempty"`
		DryRun   bool           `json:"dry_run"`
		Parcels  []ParcelRecord `json:"parcels"`
	}{
		Location: r.location,
		Invoice:  r.Invoice(),
		DryRun:   r.dryRun,
		Parcels:  r.Records(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
