package bindle

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidID indicates a string that is not a valid bindle id
var ErrInvalidID = errors.New("invalid bindle id")

// ID identifies a bindle in a registry. Its text form is name/version where
// name may itself contain slashes and version is a semantic version.
type ID struct {
	name    string
	version string
}

// ParseID parses the text form of a bindle id. The version is whatever
// follows the last slash and must be a full semantic version.
func ParseID(text string) (ID, error) {
	idx := strings.LastIndex(text, "/")
	if idx < 0 {
		return ID{}, fmt.Errorf("%w: %q: missing version", ErrInvalidID, text)
	}
	return NewID(text[:idx], text[idx+1:])
}

// NewID builds an id from its parts
func NewID(name, version string) (ID, error) {
	if name == "" {
		return ID{}, fmt.Errorf("%w: empty name", ErrInvalidID)
	}
	if !isFullSemver(version) {
		return ID{}, fmt.Errorf("%w: %q is not a semantic version", ErrInvalidID, version)
	}
	return ID{name: name, version: version}, nil
}

// Name returns the bindle name
func (id ID) Name() string { return id.name }

// Version returns the bindle version
func (id ID) Version() string { return id.version }

// IsZero reports whether the id was never set
func (id ID) IsZero() bool { return id.name == "" && id.version == "" }

func (id ID) String() string {
	return id.name + "/" + id.version
}

// isFullSemver rejects the shorthand forms (v1, v1.2) that x/mod/semver
// accepts; a bindle version always carries major, minor and patch.
func isFullSemver(version string) bool {
	if version == "" || strings.HasPrefix(version, "v") {
		return false
	}
	v := "v" + version
	if !semver.IsValid(v) {
		return false
	}
	core := strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	return strings.Count(core, ".") == 2
}
