package assets

import (
	"strings"

	"keygate/internal/shared/config"
	"keygate/internal/shared/logger"
)

// Locator resolves asset names to download references from configuration.
// The catalog is read-only after construction, so lookups are safe for
// concurrent use.
type Locator struct {
	defaultRef string
	catalog    map[string]string
	logger     logger.Interface
}

// NewLocator builds a locator from the assets configuration. Catalog names
// are normalized to lower case.
func NewLocator(cfg *config.AssetsConfig, log logger.Interface) *Locator {
	catalog := make(map[string]string, len(cfg.Catalog))
	for name, ref := range cfg.Catalog {
		catalog[strings.ToLower(name)] = ref
	}
	return &Locator{
		defaultRef: cfg.Default,
		catalog:    catalog,
		logger:     log,
	}
}

// Resolve returns the reference for an asset name. The empty name maps to
// the default asset; an unknown name reports false.
func (l *Locator) Resolve(name string) (string, bool) {
	if name == "" {
		if l.defaultRef == "" {
			return "", false
		}
		return l.defaultRef, true
	}

	ref, ok := l.catalog[strings.ToLower(name)]
	if !ok {
		l.logger.Debugw("asset not in catalog", "asset", name)
		return "", false
	}
	return ref, true
}
