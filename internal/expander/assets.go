package expander

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/manifest"
)

// globFiles expands pattern on the local filesystem. Directories are never
// returned and filesystem errors abort the walk.
func globFiles(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern,
		doublestar.WithFailOnIOErrors(),
		doublestar.WithFilesOnly(),
	)
}

// assetParcels builds one parcel per file matched by the handler's patterns,
// in pattern order and then match order. A pattern matching nothing is fine.
func (c *Context) assetParcels(h manifest.Handler) ([]bindle.Parcel, error) {
	group := GroupName(h)

	var parcels []bindle.Parcel
	for _, pattern := range h.Files {
		abs := c.ToAbsolute(pattern)
		matches, err := c.glob(abs)
		if err != nil {
			return nil, domain.NewIOError(domain.ErrGlobMatch, abs, err)
		}
		if len(matches) == 0 {
			c.logger.Debug().Str("route", h.Route).Str("pattern", pattern).Msg("Pattern matched no files")
		}

		for _, match := range matches {
			p, err := c.parcelFromFile(match, assetFeatures(), []string{group}, nil)
			if err != nil {
				return nil, err
			}
			parcels = append(parcels, p)
		}
	}
	return parcels, nil
}
