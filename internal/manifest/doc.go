// Package manifest loads and validates HIPPOFACTS files. A HIPPOFACTS file
// describes an application as a set of HTTP route handlers, each backed by a
// WebAssembly module and optionally a set of static asset patterns.
//
// # Manifest Format
//
// The canonical format is TOML, and a file named HIPPOFACTS with no extension
// is read as TOML:
//
//	[bindle]
//	name = "weather"
//	version = "1.2.3"
//	authors = ["Joan Q Programmer"]
//
//	[[handler]]
//	name = "out/weather.wasm"
//	route = "/"
//	files = ["static/**/*.css"]
//
//	[[handler]]
//	external = "deislabs/fileserver/1.0.3:fileserver.gr.wasm"
//	route = "/static/..."
//
// YAML (.yaml, .yml), JSON (.json) and HCL (.hcl) files with the same shape
// are accepted too. Every format rejects unknown fields.
//
// # Usage
//
//	loader := manifest.NewLoader()
//	facts, err := loader.Load("./HIPPOFACTS")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, h := range facts.Handlers {
//	    switch m := h.Module.(type) {
//	    case manifest.LocalModule:
//	        // m.Path
//	    case manifest.ExternalModule:
//	        // m.Ref
//	    }
//	}
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrNoHandlers: manifest has no handlers
//   - ErrMissingModule: handler has neither name nor external
//   - ErrAmbiguousModule: handler has both name and external
//   - ErrMalformedExternalRef: external is not registryId:parcelName
//   - ErrMissingField: a required field is absent
//   - ErrInvalidFormat: file is not valid for its format
//   - ErrFileNotFound: manifest file does not exist
//   - ErrUnsupportedExt: unsupported file extension
package manifest
