package foreign

import (
	"errors"
	"jasper/internal/object"
	"jasper/internal/util"
	"log/slog"
	"sort"
)

// Registry holds the host namespaces reachable through dotted symbols and the
// asynchronous bindings installed into the global environment.
type Registry struct {
	config     util.Configuration
	namespaces map[string]map[string]object.Value
	db         *dbHandles
}

func NewRegistry(config util.Configuration) *Registry {
	r := &Registry{
		config:     config,
		namespaces: map[string]map[string]object.Value{},
		db:         newDBHandles(config),
	}

	available := map[string]map[string]object.Value{
		"Math": mathNamespace(),
		"Time": timeNamespace(),
		"db":   r.db.namespace(),
	}
	for name, ns := range available {
		if config.HasNamespace(name) {
			r.namespaces[name] = ns
		}
	}
	for _, name := range config.Namespaces {
		if _, ok := available[name]; !ok {
			slog.Warn("unknown host namespace in allowlist", slog.String("namespace", name))
		}
	}
	return r
}

// Lookup resolves scope.member. Namespaces not on the allowlist never resolve.
func (r *Registry) Lookup(scope, member string) (object.Value, bool) {
	ns, ok := r.namespaces[scope]
	if !ok {
		return nil, false
	}
	val, ok := ns[member]
	return val, ok
}

// Namespaces returns the enabled namespace names in sorted order.
func (r *Registry) Namespaces() []string {
	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install adds the host's asynchronous primitives to env.
func (r *Registry) Install(env *object.Environment) {
	env.Seed(map[string]object.Value{
		"fetch": fnFetch(r.config.FetchTimeout.Duration),
	})
}

// Close releases any database handles the program left open.
func (r *Registry) Close() error {
	return errors.Join(r.db.closeAll()...)
}
