package bindle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrUnsupportedFormat indicates an unknown invoice encoding
var ErrUnsupportedFormat = errors.New("unsupported invoice format")

// Format selects an invoice encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ParseFormat parses a user supplied format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatTOML:
		return FormatTOML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Encode writes the invoice to w in the given format
func Encode(w io.Writer, inv *Invoice, format Format) error {
	switch format {
	case FormatTOML, "":
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(inv)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(inv)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Marshal encodes the invoice into a byte slice
func Marshal(inv *Invoice, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, inv, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes an invoice. Unknown fields are ignored so invoices from
// newer registries still decode.
func Unmarshal(data []byte, format Format) (*Invoice, error) {
	var inv Invoice
	var err error
	switch format {
	case FormatTOML, "":
		err = toml.Unmarshal(data, &inv)
	case FormatJSON:
		err = json.Unmarshal(data, &inv)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	return &inv, nil
}
