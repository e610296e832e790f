package expander

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/manifest"
)

var fixedClock = func() time.Time {
	return time.Date(2021, time.March, 4, 5, 6, 7, 890_000_000, time.UTC)
}

func noUser(string) (string, bool) { return "", false }

// writeTree creates files under dir from a map of slash paths to contents
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func sha(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func newTestContext(t *testing.T, dir string, registry domain.RegistryClient) *Context {
	t.Helper()
	c, err := NewContext(ContextOptions{
		BaseDir:    dir,
		Versioning: Production,
		Registry:   registry,
		Clock:      fixedClock,
		LookupEnv:  noUser,
	})
	require.NoError(t, err)
	return c
}

func local(path, route string, files ...string) manifest.Handler {
	return manifest.Handler{Module: manifest.LocalModule{Path: path}, Route: route, Files: files}
}

func external(t *testing.T, ref, route string, files ...string) manifest.Handler {
	t.Helper()
	r, err := manifest.ParseParcelReference(ref)
	require.NoError(t, err)
	return manifest.Handler{Module: manifest.ExternalModule{Ref: r}, Route: route, Files: files}
}

func facts(handlers ...manifest.Handler) *manifest.HippoFacts {
	return &manifest.HippoFacts{
		Bindle:   manifest.BindleSpec{Name: "weather", Version: "1.2.3"},
		Handlers: handlers,
	}
}

func parcelNamed(t *testing.T, inv *bindle.Invoice, name string) bindle.Parcel {
	t.Helper()
	found := inv.ParcelsNamed(name)
	require.Len(t, found, 1, "parcels named %s", name)
	return found[0]
}
