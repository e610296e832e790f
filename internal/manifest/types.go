package manifest

// rawHippoFacts is the on-disk shape shared by the TOML, YAML and JSON
// decoders. Pointer fields distinguish absent from empty.
type rawHippoFacts struct {
	Bindle      *rawBindleSpec    `toml:"bindle" yaml:"bindle" json:"bindle"`
	Annotations map[string]string `toml:"annotations" yaml:"annotations" json:"annotations"`
	Handler     []rawHandler      `toml:"handler" yaml:"handler" json:"handler"`
}

type rawBindleSpec struct {
	Name        *string  `toml:"name" yaml:"name" json:"name"`
	Version     *string  `toml:"version" yaml:"version" json:"version"`
	Description *string  `toml:"description" yaml:"description" json:"description"`
	Authors     []string `toml:"authors" yaml:"authors" json:"authors"`
}

type rawHandler struct {
	Name     *string  `toml:"name" yaml:"name" json:"name"`
	External *string  `toml:"external" yaml:"external" json:"external"`
	Route    *string  `toml:"route" yaml:"route" json:"route"`
	Files    []string `toml:"files" yaml:"files" json:"files"`
}

// hclHippoFacts mirrors rawHippoFacts with HCL blocks:
//
//	bindle {
//	  name    = "weather"
//	  version = "1.2.3"
//	}
//
//	handler {
//	  name  = "out/weather.wasm"
//	  route = "/"
//	}
type hclHippoFacts struct {
	Bindle      *hclBindleSpec    `hcl:"bindle,block"`
	Annotations map[string]string `hcl:"annotations,optional"`
	Handler     []*hclHandler     `hcl:"handler,block"`
}

type hclBindleSpec struct {
	Name        *string  `hcl:"name,optional"`
	Version     *string  `hcl:"version,optional"`
	Description *string  `hcl:"description,optional"`
	Authors     []string `hcl:"authors,optional"`
}

type hclHandler struct {
	Name     *string  `hcl:"name,optional"`
	External *string  `hcl:"external,optional"`
	Route    *string  `hcl:"route,optional"`
	Files    []string `hcl:"files,optional"`
}

func (h *hclHippoFacts) toRaw() *rawHippoFacts {
	raw := &rawHippoFacts{Annotations: h.Annotations}
	if h.Bindle != nil {
		raw.Bindle = &rawBindleSpec{
			Name:        h.Bindle.Name,
			Version:     h.Bindle.Version,
			Description: h.Bindle.Description,
			Authors:     h.Bindle.Authors,
		}
	}
	for _, hh := range h.Handler {
		raw.Handler = append(raw.Handler, rawHandler{
			Name:     hh.Name,
			External: hh.External,
			Route:    hh.Route,
			Files:    hh.Files,
		})
	}
	return raw
}
