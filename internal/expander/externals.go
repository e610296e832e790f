package expander

import (
	"context"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/manifest"
)

// externalParcel resolves an external handler module to a parcel carrying the
// remote digest, media type and size, labelled for this handler.
func (c *Context) externalParcel(ctx context.Context, h manifest.Handler, ref manifest.ParcelReference) (bindle.Parcel, error) {
	if c.registry == nil {
		return bindle.Parcel{}, &domain.ResolutionError{Ref: ref.String(), Err: domain.ErrNoRegistry}
	}

	inv, err := c.externalInvoice(ctx, ref.BindleID)
	if err != nil {
		return bindle.Parcel{}, &domain.ResolutionError{Ref: ref.String(), Err: err}
	}

	matches := inv.ParcelsNamed(ref.Name)
	switch len(matches) {
	case 0:
		return bindle.Parcel{}, &domain.ResolutionError{Ref: ref.String(), Err: domain.ErrParcelNotFound}
	case 1:
	default:
		return bindle.Parcel{}, &domain.ResolutionError{Ref: ref.String(), Err: domain.ErrParcelAmbiguous}
	}

	label := matches[0].Label
	c.logger.Debug().
		Str("route", h.Route).
		Str("ref", ref.String()).
		Str("sha256", label.SHA256).
		Msg("Resolved external module")

	return newParcel(ref.Name, label.SHA256, label.MediaType, label.Size,
		handlerFeatures(h.Route), nil, []string{GroupName(h)}), nil
}
