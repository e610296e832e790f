package expander

// Versioning selects how the manifest version is turned into the invoice version
type Versioning int

const (
	// Dev appends the user name and a timestamp so every build is unique
	Dev Versioning = iota
	// Production uses the manifest version unchanged
	Production
)

// devTimestampLayout renders as YYYY.MM.DD.HH.MM.SS.mmm
const devTimestampLayout = "2006.01.02.15.04.05.000"

// ParseVersioning maps "production" to Production and anything else to Dev
func ParseVersioning(text string) Versioning {
	if text == "production" {
		return Production
	}
	return Dev
}

func (v Versioning) String() string {
	if v == Production {
		return "production"
	}
	return "dev"
}

// MangleVersion returns the invoice version for a manifest version
func (c *Context) MangleVersion(version string) string {
	if c.versioning == Production {
		return version
	}

	stamp := c.clock().Format(devTimestampLayout)
	if user := c.currentUser(); user != "" {
		return version + "-" + user + "-" + stamp
	}
	return version + "-" + stamp
}

func (c *Context) currentUser() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if v, ok := c.lookupEnv(key); ok && v != "" {
			return v
		}
	}
	return ""
}
