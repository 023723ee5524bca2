package tool

import (
	"sort"
	"sync"

	"github.com/taskpilot/taskpilot/logging"
)

// Capability is the introspection view of one registered tool, used by
// planners to route commands and to render tool inventories into prompts.
type Capability struct {
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// RegistryOptions configures Registry construction.
type RegistryOptions struct {
	Logger logging.Logger
}

// Registry is a name-keyed store of invocable capabilities. It is explicitly
// constructed and injected (no process-wide singleton), so isolated engine
// instances and concurrent sessions each see exactly the tools they were
// given. Lookups are read-mostly after startup and safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger logging.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{tools: make(map[string]Tool), logger: opts.Logger}
}

// Register stores a tool keyed by its canonical name. Re-registration under
// the same name overwrites: last wins.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	_, replaced := r.tools[t.Name()]
	r.tools[t.Name()] = t
	r.mu.Unlock()
	r.logger.Debug("registry.tool.registered", "tool", t.Name(), "replaced", replaced)
}

// Get returns the tool registered under name. It never raises; absence is
// signaled by the second return value.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Capabilities returns name -> {description, actions} for every registered
// tool.
func (r *Registry) Capabilities() map[string]Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Capability, len(r.tools))
	for name, t := range r.tools {
		actions := make([]string, len(t.Actions()))
		copy(actions, t.Actions())
		out[name] = Capability{Description: t.Description(), Actions: actions}
	}
	return out
}
