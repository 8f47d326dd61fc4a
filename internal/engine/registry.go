package engine

import (
	"fmt"
	"sort"
)

// Factory builds a strategy instance from user parameters. Parameter errors
// surface here as *StrategyError so a bad config never reaches the loop.
type Factory func(params Params, pc PlatformConstraints) (Strategy, error)

// Registry maps strategy names to factories. New strategies are added by
// registering an implementation, not by runtime code loading.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New constructs the named strategy with the given parameters.
func (r *Registry) New(name string, params Params, pc PlatformConstraints) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, r.Names())
	}
	return f(params, pc)
}

// Names returns the registered strategy names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("flat", NewFlatStrategy)
	r.Register("martingale", NewMartingaleStrategy)
	r.Register("fibonacci", NewFibonacciStrategy)
	r.Register("dalembert", NewDalembertStrategy)
	r.Register("paroli", NewParoliStrategy)
	r.Register("kelly", NewKellyStrategy)
	return r
}
