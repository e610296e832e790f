package domain

import (
	"context"
	"time"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// RegistryClient fetches invoices from a Bindle registry
type RegistryClient interface {
	// FetchInvoice retrieves the invoice with the given id. When includeYanked
	// is set, yanked invoices are returned instead of being treated as missing.
	FetchInvoice(ctx context.Context, id bindle.ID, includeYanked bool) (*bindle.Invoice, error)
}

// Cache defines the interface for registry response caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Has checks if a key exists in cache
	Has(ctx context.Context, key string) bool
	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error
	// Close releases cache resources
	Close() error
}
