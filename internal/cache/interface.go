package cache

import (
	"os"
	"path/filepath"

	"github.com/quantmind-br/hippofactory-go/internal/domain"
)

// Ensure BadgerCache implements domain.Cache
var _ domain.Cache = (*BadgerCache)(nil)

// Options contains cache configuration options
type Options struct {
	Directory string
	InMemory  bool
	Logger    bool
}

// DefaultOptions returns default cache options
func DefaultOptions() Options {
	return Options{
		Directory: DefaultDirectory(),
		InMemory:  false,
		Logger:    false,
	}
}

// DefaultDirectory returns ~/.hippofactory/cache, or a relative fallback
// when the home directory is unknown.
func DefaultDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".hippofactory", "cache")
	}
	return filepath.Join(home, ".hippofactory", "cache")
}
