package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/quantmind-br/hippofactory-go/internal/utils"
)

// KeyPrefix constants for different cache entry types
const (
	PrefixInvoice = "invoice"
)

// GenerateKey returns the SHA-256 hex digest of the given parts joined by NUL
func GenerateKey(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateKeyWithPrefix generates a cache key with a prefix
func GenerateKeyWithPrefix(prefix string, parts ...string) string {
	return prefix + ":" + GenerateKey(parts...)
}

// InvoiceKey generates the cache key for an invoice fetched from a registry.
// Equivalent spellings of the server URL share a key.
func InvoiceKey(serverURL, id string, includeYanked bool) string {
	if normalized, err := utils.NormalizeServerURL(serverURL); err == nil {
		serverURL = normalized
	}
	return GenerateKeyWithPrefix(PrefixInvoice, serverURL, id, strconv.FormatBool(includeYanked))
}
