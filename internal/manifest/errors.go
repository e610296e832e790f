package manifest

import "errors"

// Sentinel errors for the manifest package
var (
	// ErrNoHandlers indicates the manifest has no handlers defined
	ErrNoHandlers = errors.New("no handlers defined in manifest")

	// ErrMissingModule indicates a handler with neither name nor external
	ErrMissingModule = errors.New("handler must specify one of 'name' or 'external'")

	// ErrAmbiguousModule indicates a handler with both name and external
	ErrAmbiguousModule = errors.New("handler must specify only one of 'name' or 'external'")

	// ErrMalformedExternalRef indicates an external reference that is not registryId:parcelName
	ErrMalformedExternalRef = errors.New("external reference must be in the format 'bindle_id:parcel_name'")

	// ErrMissingField indicates a required field is absent
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidFormat indicates the manifest file could not be decoded
	ErrInvalidFormat = errors.New("manifest must be valid TOML, YAML, JSON or HCL")

	// ErrFileNotFound indicates the manifest file does not exist
	ErrFileNotFound = errors.New("manifest file not found")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .toml, .yaml, .yml, .json or .hcl)")
)
