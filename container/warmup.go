package container

import "go.uber.org/multierr"

// WarmUp eagerly resolves every Singleton-lifetime definition, so
// misconfiguration surfaces at startup instead of on the first request
// that happens to need a given service. Grounded on the teacher's
// plugin.go initializeAsyncProviders, which ran every registered plugin's
// async init concurrently and aggregated failures; WarmUp runs
// sequentially (construction order can matter for singletons with shared
// side effects) but keeps the same "collect every error, don't stop at
// the first" discipline via go.uber.org/multierr. Definitions are taken
// from DefinitionStore.All, which iterates a map, so the order in which
// singletons are built is not defined.
func (c *Container) WarmUp() error {
	var errs error
	for _, def := range c.store.All() {
		if def.Lifetime != Singleton {
			continue
		}
		if _, _, err := c.engine.Resolve(def.Abstract, nil, nil); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
