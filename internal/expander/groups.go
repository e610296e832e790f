package expander

import (
	"fmt"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/manifest"
)

const groupSuffix = "-files"

// GroupName returns the name of the asset group owned by a handler
func GroupName(h manifest.Handler) string {
	switch m := h.Module.(type) {
	case manifest.LocalModule:
		return m.Path + groupSuffix
	case manifest.ExternalModule:
		return m.Ref.Name + groupSuffix
	default:
		panic(fmt.Sprintf("unknown handler module %T", h.Module))
	}
}

// GroupFor returns the group owned by a handler. Groups are optional and
// carry no satisfaction rule.
func GroupFor(h manifest.Handler) bindle.Group {
	return bindle.Group{Name: GroupName(h)}
}

func groupsFor(handlers []manifest.Handler) []bindle.Group {
	groups := make([]bindle.Group, 0, len(handlers))
	for _, h := range handlers {
		groups = append(groups, GroupFor(h))
	}
	return groups
}
