package expander

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/manifest"
)

// Expand builds the invoice for a manifest. Any failure aborts the whole
// expansion; no partial invoice is returned.
func Expand(ctx context.Context, facts *manifest.HippoFacts, c *Context) (*bindle.Invoice, error) {
	log := c.logger.WithBindle(facts.Bindle.Name + "/" + facts.Bindle.Version)

	groups := groupsFor(facts.Handlers)

	handlerParcels, err := c.handlerModuleParcels(ctx, facts.Handlers)
	if err != nil {
		return nil, err
	}

	var assets []bindle.Parcel
	for i, h := range facts.Handlers {
		found, err := c.assetParcels(h)
		if err != nil {
			return nil, fmt.Errorf("handler %s: %w", h.Route, err)
		}
		if len(found) == 0 {
			handlerParcels[i].Conditions.Requires = nil
		}
		assets = append(assets, found...)
	}

	all := make([]bindle.Parcel, 0, len(handlerParcels)+len(assets))
	all = append(all, handlerParcels...)
	all = append(all, assets...)
	parcels := MergeParcels(all)

	inv := &bindle.Invoice{
		BindleVersion: bindle.BindleVersion,
		Bindle: bindle.Spec{
			Name:        facts.Bindle.Name,
			Version:     c.MangleVersion(facts.Bindle.Version),
			Description: facts.Bindle.Description,
			Authors:     facts.Bindle.Authors,
		},
		Annotations: facts.Annotations,
		Group:       groups,
		Parcel:      parcels,
	}

	log.Info().
		Str("id", inv.ID()).
		Int("handlers", len(facts.Handlers)).
		Int("parcels", len(parcels)).
		Int("assets", len(assets)).
		Msg("Expanded manifest")

	return inv, nil
}

// handlerModuleParcels builds one parcel per handler, in handler order.
// External modules are resolved concurrently; local modules are hashed inline
// while the fetches run.
func (c *Context) handlerModuleParcels(ctx context.Context, handlers []manifest.Handler) ([]bindle.Parcel, error) {
	parcels := make([]bindle.Parcel, len(handlers))
	g, gctx := errgroup.WithContext(ctx)

	for i, h := range handlers {
		ext, ok := h.Module.(manifest.ExternalModule)
		if !ok {
			continue
		}
		g.Go(func() error {
			p, err := c.externalParcel(gctx, h, ext.Ref)
			if err != nil {
				return fmt.Errorf("handler %s: %w", h.Route, err)
			}
			parcels[i] = p
			return nil
		})
	}

	var localErr error
	for i, h := range handlers {
		switch m := h.Module.(type) {
		case manifest.LocalModule:
			p, err := c.parcelFromFile(c.ToAbsolute(m.Path), handlerFeatures(h.Route), nil, []string{GroupName(h)})
			if err != nil {
				localErr = fmt.Errorf("handler %s: %w", h.Route, err)
			} else {
				parcels[i] = p
			}
		case manifest.ExternalModule:
		default:
			panic(fmt.Sprintf("unknown handler module %T", h.Module))
		}
		if localErr != nil {
			break
		}
	}

	fetchErr := g.Wait()
	if localErr != nil {
		return nil, localErr
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return parcels, nil
}
