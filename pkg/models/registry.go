package models

// Registry is the fixed, ordered catalog of forecasting families. The order
// is the order families are fitted and reported in; lookups are by display
// name. A Registry is read-only after construction.
type Registry struct {
	names  []string
	models map[string]Model
}

// NewRegistry builds the catalog with all six families. Holt-Winters uses a
// seasonal period of 12, one cycle per year of monthly observations.
func NewRegistry() *Registry {
	return newRegistry(
		NewMovingAverageModel(),
		NewExponentialSmoothingModel(),
		NewHoltWintersModel(12),
		NewARIMAModel(),
		NewLinearModel(),
		NewRandomForestModel(),
	)
}

func newRegistry(all ...Model) *Registry {
	r := &Registry{
		names:  make([]string, 0, len(all)),
		models: make(map[string]Model, len(all)),
	}
	for _, m := range all {
		r.names = append(r.names, m.Name())
		r.models[m.Name()] = m
	}
	return r
}

// Families returns the family names in registry order.
func (r *Registry) Families() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Lookup returns the model registered under the given display name.
func (r *Registry) Lookup(name string) (Model, bool) {
	m, ok := r.models[name]
	return m, ok
}

// Describe returns the static catalog entry for a family.
func (r *Registry) Describe(name string) (Description, bool) {
	if _, ok := r.models[name]; !ok {
		return Description{}, false
	}
	return describe(name), true
}

// Len returns the number of registered families.
func (r *Registry) Len() int {
	return len(r.names)
}
