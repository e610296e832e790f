package manifest

import (
	"fmt"
	"strings"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
)

// HippoFacts is a validated application manifest
type HippoFacts struct {
	Bindle      BindleSpec
	Annotations map[string]string
	Handlers    []Handler
}

// BindleSpec carries the identity and descriptive fields of the bindle to build
type BindleSpec struct {
	Name        string
	Version     string
	Description string
	Authors     []string
}

// Handler binds a route to a module and, optionally, asset patterns.
// Files is nil when the manifest did not list any.
type Handler struct {
	Module HandlerModule
	Route  string
	Files  []string
}

// HandlerModule is either a LocalModule or an ExternalModule
type HandlerModule interface {
	isHandlerModule()
}

// LocalModule is a module file relative to the manifest directory
type LocalModule struct {
	Path string
}

// ExternalModule is a parcel of an invoice already in a registry
type ExternalModule struct {
	Ref ParcelReference
}

func (LocalModule) isHandlerModule()    {}
func (ExternalModule) isHandlerModule() {}

// ParcelReference names one parcel inside a registry invoice
type ParcelReference struct {
	BindleID bindle.ID
	Name     string
}

func (r ParcelReference) String() string {
	return r.BindleID.String() + ":" + r.Name
}

// ParseParcelReference parses the registryId:parcelName form
func ParseParcelReference(text string) (ParcelReference, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return ParcelReference{}, fmt.Errorf("%w: got %q", ErrMalformedExternalRef, text)
	}
	id, err := bindle.ParseID(parts[0])
	if err != nil {
		return ParcelReference{}, fmt.Errorf("%w: got %q: %w", ErrMalformedExternalRef, text, err)
	}
	return ParcelReference{BindleID: id, Name: parts[1]}, nil
}

func parse(raw *rawHippoFacts) (*HippoFacts, error) {
	if raw.Bindle == nil {
		return nil, fmt.Errorf("%w: bindle", ErrMissingField)
	}
	if raw.Bindle.Name == nil {
		return nil, fmt.Errorf("%w: bindle.name", ErrMissingField)
	}
	if raw.Bindle.Version == nil {
		return nil, fmt.Errorf("%w: bindle.version", ErrMissingField)
	}
	if len(raw.Handler) == 0 {
		return nil, ErrNoHandlers
	}

	facts := &HippoFacts{
		Bindle: BindleSpec{
			Name:    *raw.Bindle.Name,
			Version: *raw.Bindle.Version,
			Authors: raw.Bindle.Authors,
		},
		Annotations: raw.Annotations,
		Handlers:    make([]Handler, 0, len(raw.Handler)),
	}
	if raw.Bindle.Description != nil {
		facts.Bindle.Description = *raw.Bindle.Description
	}

	for i, rh := range raw.Handler {
		h, err := parseHandler(rh)
		if err != nil {
			return nil, fmt.Errorf("handler %d: %w", i, err)
		}
		facts.Handlers = append(facts.Handlers, h)
	}
	return facts, nil
}

func parseHandler(rh rawHandler) (Handler, error) {
	if rh.Route == nil {
		return Handler{}, fmt.Errorf("%w: route", ErrMissingField)
	}
	route := *rh.Route

	var module HandlerModule
	switch {
	case rh.Name != nil && rh.External != nil:
		return Handler{}, fmt.Errorf("route %s: %w", route, ErrAmbiguousModule)
	case rh.Name != nil:
		module = LocalModule{Path: *rh.Name}
	case rh.External != nil:
		ref, err := ParseParcelReference(*rh.External)
		if err != nil {
			return Handler{}, fmt.Errorf("route %s: %w", route, err)
		}
		module = ExternalModule{Ref: ref}
	default:
		return Handler{}, fmt.Errorf("route %s: %w", route, ErrMissingModule)
	}

	return Handler{Module: module, Route: route, Files: rh.Files}, nil
}
