package expander

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/utils"
)

// maxExternalInvoices bounds the in-run store of fetched registry invoices
const maxExternalInvoices = 512

// GlobFunc expands an absolute file pattern into matching file paths
type GlobFunc func(pattern string) ([]string, error)

// ContextOptions contains options for building an expansion context
type ContextOptions struct {
	// BaseDir is the directory relative paths resolve against, normally the
	// directory holding the manifest.
	BaseDir    string
	Versioning Versioning
	// Registry resolves external handler modules. Nil means external
	// references fail with domain.ErrNoRegistry.
	Registry domain.RegistryClient
	// Invoices pre-seeds the external invoice store, keyed by bindle id.
	Invoices map[string]*bindle.Invoice

	Clock     func() time.Time
	LookupEnv func(string) (string, bool)
	Glob      GlobFunc
	Logger    *utils.Logger
}

// Context carries everything an expansion reads besides the manifest
type Context struct {
	baseDir    string
	versioning Versioning
	registry   domain.RegistryClient
	clock      func() time.Time
	lookupEnv  func(string) (string, bool)
	glob       GlobFunc
	logger     *utils.Logger

	invoices *lru.Cache[string, *bindle.Invoice]
	fetches  singleflight.Group
}

// NewContext creates an expansion context. BaseDir is made absolute.
func NewContext(opts ContextOptions) (*Context, error) {
	base := opts.BaseDir
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	invoices, err := lru.New[string, *bindle.Invoice](maxExternalInvoices)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice store: %w", err)
	}
	for id, inv := range opts.Invoices {
		invoices.Add(id, inv)
	}

	c := &Context{
		baseDir:    abs,
		versioning: opts.Versioning,
		registry:   opts.Registry,
		clock:      opts.Clock,
		lookupEnv:  opts.LookupEnv,
		glob:       opts.Glob,
		logger:     utils.OrNop(opts.Logger).WithComponent("expander"),
		invoices:   invoices,
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.lookupEnv == nil {
		c.lookupEnv = os.LookupEnv
	}
	if c.glob == nil {
		c.glob = globFiles
	}
	return c, nil
}

// BaseDir returns the absolute base directory
func (c *Context) BaseDir() string {
	return c.baseDir
}

// Versioning returns the versioning mode
func (c *Context) Versioning() Versioning {
	return c.versioning
}

// ToAbsolute resolves a manifest path or pattern against the base directory.
// Absolute input is returned unchanged. Nothing is checked on disk.
func (c *Context) ToAbsolute(pattern string) string {
	if filepath.IsAbs(pattern) {
		return pattern
	}
	return filepath.Join(c.baseDir, pattern)
}

// ToRelative expresses path relative to the base directory with forward
// slashes, which is how parcel names are written.
func (c *Context) ToRelative(path string) (string, error) {
	rel, err := filepath.Rel(c.baseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &domain.PathError{Path: path, Base: c.baseDir, Err: domain.ErrOutsideBase}
	}
	if !utf8.ValidString(rel) {
		return "", &domain.PathError{Path: path, Base: c.baseDir, Err: domain.ErrNotUTF8}
	}
	rel = filepath.ToSlash(rel)
	return strings.ReplaceAll(rel, "\\", "/"), nil
}

// externalInvoice returns the registry invoice for id, fetching it at most
// once per run however many handlers ask for it.
func (c *Context) externalInvoice(ctx context.Context, id bindle.ID) (*bindle.Invoice, error) {
	key := id.String()
	if inv, ok := c.invoices.Get(key); ok {
		return inv, nil
	}

	v, err, shared := c.fetches.Do(key, func() (any, error) {
		if inv, ok := c.invoices.Get(key); ok {
			return inv, nil
		}
		c.logger.Debug().Str("bindle", key).Msg("Fetching external invoice")
		inv, err := c.registry.FetchInvoice(ctx, id, true)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, domain.ErrInvoiceNotFound
		}
		c.invoices.Add(key, inv)
		return inv, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug().Str("bindle", key).Msg("Shared external invoice fetch")
	}
	return v.(*bindle.Invoice), nil
}
