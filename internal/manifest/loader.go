package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the manifest name looked up inside a directory
const DefaultFileName = "HIPPOFACTS"

// Loader loads and validates manifest files
type Loader struct{}

// NewLoader creates a new manifest loader
func NewLoader() *Loader {
	return &Loader{}
}

// ResolvePath returns the manifest file for path. A directory resolves to the
// HIPPOFACTS file inside it.
func ResolvePath(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat manifest path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	file := filepath.Join(path, DefaultFileName)
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, file)
	}
	return file, nil
}

// Load reads and parses a manifest file from the given path
func (l *Loader) Load(path string) (*HippoFacts, error) {
	file, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return l.LoadFromBytes(data, filepath.Ext(file))
}

// LoadFromBytes parses a manifest from raw bytes. An empty extension means TOML.
func (l *Loader) LoadFromBytes(data []byte, ext string) (*HippoFacts, error) {
	ext = strings.ToLower(ext)

	var raw *rawHippoFacts
	var err error
	switch ext {
	case "", ".toml":
		raw, err = decodeTOML(data)
	case ".yaml", ".yml":
		raw, err = decodeYAML(data)
	case ".json":
		raw, err = decodeJSON(data)
	case ".hcl":
		raw, err = decodeHCL(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	return parse(raw)
}

func decodeTOML(data []byte) (*rawHippoFacts, error) {
	var raw rawHippoFacts
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, errors.New(strict.String())
		}
		return nil, err
	}
	return &raw, nil
}

func decodeYAML(data []byte) (*rawHippoFacts, error) {
	var raw rawHippoFacts
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &raw, nil
}

func decodeJSON(data []byte) (*rawHippoFacts, error) {
	var raw rawHippoFacts
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

func decodeHCL(data []byte) (*rawHippoFacts, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, DefaultFileName+".hcl")
	if diags.HasErrors() {
		return nil, diags
	}

	var parsed hclHippoFacts
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, diags
	}
	return parsed.toRaw(), nil
}
