package bindle

// BindleVersion is the invoice schema version written into every invoice
const BindleVersion = "1.0.0"

// Invoice describes a bindle: its identity, the parcels it carries and the
// groups those parcels belong to.
type Invoice struct {
	BindleVersion string            `toml:"bindleVersion" json:"bindleVersion"`
	Yanked        *bool             `toml:"yanked,omitempty" json:"yanked"`
	Bindle        Spec              `toml:"bindle" json:"bindle"`
	Annotations   map[string]string `toml:"annotations,omitempty" json:"annotations,omitempty"`
	Parcel        []Parcel          `toml:"parcel,omitempty" json:"parcel,omitempty"`
	Group         []Group           `toml:"group,omitempty" json:"group,omitempty"`
	Signature     []Signature       `toml:"signature,omitempty" json:"signature"`
}

// Spec carries the descriptive fields of a bindle
type Spec struct {
	Name        string   `toml:"name" json:"name"`
	Version     string   `toml:"version" json:"version"`
	Description string   `toml:"description,omitempty" json:"description,omitempty"`
	Authors     []string `toml:"authors,omitempty" json:"authors,omitempty"`
}

// ID returns the text form of the invoice id (name/version)
func (inv *Invoice) ID() string {
	return inv.Bindle.Name + "/" + inv.Bindle.Version
}

// IsYanked reports whether the registry marked the invoice as yanked
func (inv *Invoice) IsYanked() bool {
	return inv.Yanked != nil && *inv.Yanked
}

// ParcelsNamed returns every parcel whose label name equals name
func (inv *Invoice) ParcelsNamed(name string) []Parcel {
	var found []Parcel
	for _, p := range inv.Parcel {
		if p.Label.Name == name {
			found = append(found, p)
		}
	}
	return found
}

// Parcel is a single content-addressed payload of a bindle
type Parcel struct {
	Label      Label      `toml:"label" json:"label"`
	Conditions *Condition `toml:"conditions,omitempty" json:"conditions,omitempty"`
}

// MemberOf returns the groups the parcel belongs to
func (p Parcel) MemberOf() []string {
	if p.Conditions == nil {
		return nil
	}
	return p.Conditions.MemberOf
}

// Requires returns the groups the parcel depends on
func (p Parcel) Requires() []string {
	if p.Conditions == nil {
		return nil
	}
	return p.Conditions.Requires
}

// Label describes parcel content
type Label struct {
	SHA256      string                       `toml:"sha256" json:"sha256"`
	MediaType   string                       `toml:"mediaType" json:"mediaType"`
	Name        string                       `toml:"name" json:"name"`
	Size        uint64                       `toml:"size" json:"size"`
	Annotations map[string]string            `toml:"annotations,omitempty" json:"annotations,omitempty"`
	Feature     map[string]map[string]string `toml:"feature,omitempty" json:"feature,omitempty"`
}

// Condition records group membership and group dependencies
type Condition struct {
	MemberOf []string `toml:"memberOf,omitempty" json:"memberOf,omitempty"`
	Requires []string `toml:"requires,omitempty" json:"requires,omitempty"`
}

// Group is a named set of parcels
type Group struct {
	Name        string  `toml:"name" json:"name"`
	Required    *bool   `toml:"required,omitempty" json:"required,omitempty"`
	SatisfiedBy *string `toml:"satisfiedBy,omitempty" json:"satisfiedBy,omitempty"`
}

// Signature is a registry or author signature over an invoice. Expanded
// invoices never carry one; the type exists so fetched invoices decode.
type Signature struct {
	By        string `toml:"by" json:"by"`
	Signature string `toml:"signature" json:"signature"`
	Key       string `toml:"key" json:"key"`
	Role      string `toml:"role" json:"role"`
	At        uint64 `toml:"at" json:"at"`
}
