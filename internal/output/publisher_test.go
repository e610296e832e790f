package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/expander"
)

// writeSource creates files under dir and returns a parcel per file
func writeSource(t *testing.T, dir string, files map[string]string) map[string]bindle.Parcel {
	t.Helper()
	parcels := make(map[string]bindle.Parcel, len(files))
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		digest, err := expander.DigestFile(path)
		require.NoError(t, err)
		parcels[name] = bindle.Parcel{Label: bindle.Label{
			Name:      name,
			SHA256:    digest,
			MediaType: "application/octet-stream",
			Size:      uint64(len(content)),
		}}
	}
	return parcels
}

func testInvoice(parcels ...bindle.Parcel) *bindle.Invoice {
	return &bindle.Invoice{
		BindleVersion: bindle.BindleVersion,
		Bindle:        bindle.Spec{Name: "weather", Version: "1.2.3"},
		Parcel:        parcels,
	}
}

func TestPublisher_Publish(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	local := writeSource(t, src, map[string]string{
		"weather.wasm":      "wasm bytes",
		"assets/index.html": "<html/>",
		"assets/copy.html":  "<html/>",
		"assets/styles.css": "body{}",
	})
	remote := bindle.Parcel{Label: bindle.Label{Name: "fileserver.gr.wasm", SHA256: "feedface", Size: 42}}
	outside := bindle.Parcel{Label: bindle.Label{Name: "../escape.txt", SHA256: "deadbeef", Size: 1}}

	inv := testInvoice(
		local["weather.wasm"],
		local["assets/index.html"],
		local["assets/copy.html"],
		local["assets/styles.css"],
		remote,
		outside,
	)

	w := NewWriter(WriterOptions{BaseDir: out})
	p := NewPublisher(w, PublisherOptions{BaseDir: src, Workers: 3})

	report, err := p.Publish(context.Background(), inv)
	require.NoError(t, err)

	assert.Equal(t, "weather/1.2.3", report.Invoice())
	assert.Equal(t, 3, report.Count(StatusWritten))
	assert.Equal(t, 2, report.Count(StatusSkipped))
	assert.False(t, report.DryRun())

	for _, name := range []string{"weather.wasm", "assets/index.html", "assets/styles.css"} {
		data, err := os.ReadFile(w.ParcelPath(local[name].Label.SHA256))
		require.NoError(t, err, name)
		content, err := os.ReadFile(filepath.Join(src, filepath.FromSlash(name)))
		require.NoError(t, err)
		assert.Equal(t, content, data)
	}
	assert.NoFileExists(t, w.ParcelPath("feedface"))

	entries, err := os.ReadDir(filepath.Join(out, ParcelDirName))
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	data, err := os.ReadFile(w.InvoicePath())
	require.NoError(t, err)
	written, err := bindle.Unmarshal(data, bindle.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, inv.ID(), written.ID())
	assert.Len(t, written.Parcel, 6)
}

func TestPublisher_ExistingParcels(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	local := writeSource(t, src, map[string]string{"a.txt": "a", "b.txt": "b"})
	ctx := context.Background()

	w := NewWriter(WriterOptions{BaseDir: out})
	require.NoError(t, w.WriteParcel(ctx, local["a.txt"].Label.SHA256, strings.NewReader("a"), 1))

	report, err := NewPublisher(w, PublisherOptions{BaseDir: src}).
		Publish(ctx, testInvoice(local["a.txt"], local["b.txt"]))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(StatusExisting))
	assert.Equal(t, 1, report.Count(StatusWritten))
}

func TestPublisher_DigestMismatch(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	local := writeSource(t, src, map[string]string{"a.txt": "original"})
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("changed"), 0644))

	w := NewWriter(WriterOptions{BaseDir: out})
	_, err := NewPublisher(w, PublisherOptions{BaseDir: src}).
		Publish(context.Background(), testInvoice(local["a.txt"]))

	assert.ErrorIs(t, err, domain.ErrDigestMismatch)
	assert.NoFileExists(t, w.InvoicePath())
}

func TestPublisher_DryRun(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "bindle")
	local := writeSource(t, src, map[string]string{"a.txt": "a"})

	w := NewWriter(WriterOptions{BaseDir: out, DryRun: true})
	report, err := NewPublisher(w, PublisherOptions{BaseDir: src, DryRun: true}).
		Publish(context.Background(), testInvoice(local["a.txt"]))
	require.NoError(t, err)

	assert.True(t, report.DryRun())
	assert.Equal(t, 1, report.Count(StatusWritten))
	assert.NoDirExists(t, out)
}

func TestPublisher_InvoiceExists(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	local := writeSource(t, src, map[string]string{"a.txt": "a"})
	ctx := context.Background()

	w := NewWriter(WriterOptions{BaseDir: out})
	p := NewPublisher(w, PublisherOptions{BaseDir: src})

	_, err := p.Publish(ctx, testInvoice(local["a.txt"]))
	require.NoError(t, err)

	_, err = p.Publish(ctx, testInvoice(local["a.txt"]))
	assert.ErrorIs(t, err, ErrInvoiceExists)
}

func TestPublisher_NilInvoice(t *testing.T) {
	p := NewPublisher(NewWriter(WriterOptions{BaseDir: t.TempDir()}), PublisherOptions{})
	_, err := p.Publish(context.Background(), nil)
	assert.Error(t, err)
}

func TestPublisher_CancelledContext(t *testing.T) {
	src := t.TempDir()
	local := writeSource(t, src, map[string]string{"a.txt": "a", "b.txt": "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWriter(WriterOptions{BaseDir: t.TempDir()})
	_, err := NewPublisher(w, PublisherOptions{BaseDir: src}).
		Publish(ctx, testInvoice(local["a.txt"], local["b.txt"]))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, w.InvoicePath())
}
