// Package engine provides the calculation registry and the memoizing
// dependency resolver.
//
// Calculations register under a name with their declared dependencies.
// Resolution walks the dependency graph for a set of targets, computes each
// shared sub-result exactly once per call, and stamps every produced value
// with a calc:<name> provenance node.
package engine

import (
	"sort"
	"strings"
	"sync"

	"github.com/teranos/tally/errors"
	"github.com/teranos/tally/logger"
	"github.com/teranos/tally/value"
)

// CalcFunc computes one calculation from the resolved values of its declared
// dependencies, in declaration order. Functions are assumed pure,
// synchronous, and side-effect free.
type CalcFunc func(inputs []value.Value) (value.Value, error)

type registryEntry struct {
	fn        CalcFunc
	dependsOn []string // declaration order, deduplicated
}

// Registry is a concurrency-safe name -> (function, dependencies) table.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Register adds a named calculation with its declared dependencies.
// Fails with ErrInvalidName for empty/whitespace names, ErrDuplicateName
// when the name is taken, and ErrSelfDependency when name lists itself.
func (r *Registry) Register(name string, dependsOn []string, fn CalcFunc) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewInvalidNameError("calculation name %q is empty or whitespace", name)
	}
	if fn == nil {
		return errors.NewInvalidNameError("calculation %q has no function", name)
	}

	deps := make([]string, 0, len(dependsOn))
	seen := make(map[string]struct{}, len(dependsOn))
	for _, d := range dependsOn {
		if d == name {
			return errors.Wrapf(errors.ErrSelfDependency, "calculation %q", name)
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		deps = append(deps, d)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return errors.Wrapf(errors.ErrDuplicateName, "calculation %q", name)
	}
	r.entries[name] = &registryEntry{fn: fn, dependsOn: deps}

	logger.Debugw("calculation registered", "name", name, "depends_on", deps)
	return nil
}

// Get returns the registered function for name.
func (r *Registry) Get(name string) (CalcFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, errors.NewNotFoundError("calculation %q", name)
	}
	return e.fn, nil
}

// Dependencies returns the direct dependencies of name in declaration order.
func (r *Registry) Dependencies(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, errors.NewNotFoundError("calculation %q", name)
	}
	out := make([]string, len(e.dependsOn))
	copy(out, e.dependsOn)
	return out, nil
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Unregister removes name (no-op when absent) and prunes it from every
// other entry's dependency set so no dangling references remain.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return
	}
	delete(r.entries, name)

	for _, e := range r.entries {
		kept := e.dependsOn[:0]
		for _, d := range e.dependsOn {
			if d != name {
				kept = append(kept, d)
			}
		}
		e.dependsOn = kept
	}

	logger.Debugw("calculation unregistered", "name", name)
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DetectCycles finds dependency cycles anywhere in the registered graph
// using a gray/black depth-first traversal. Each cycle is reported once as
// the names along its path; unregistered dependencies are leaves and cannot
// participate.
func (r *Registry) DetectCycles() [][]string {
	r.mu.RLock()
	graph := make(map[string][]string, len(r.entries))
	names := make([]string, 0, len(r.entries))
	for name, e := range r.entries {
		deps := make([]string, len(e.dependsOn))
		copy(deps, e.dependsOn)
		graph[name] = deps
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return detectCycles(graph, names)
}

const (
	white = 0
	gray  = 1
	black = 2
)

// detectCycles runs the gray/black DFS over an adjacency snapshot. roots
// fixes the traversal order so output is deterministic.
func detectCycles(graph map[string][]string, roots []string) [][]string {
	color := make(map[string]int, len(graph))
	var stack []string
	var cycles [][]string
	seen := make(map[string]struct{}) // normalized cycle keys

	var dfs func(name string)
	dfs = func(name string) {
		color[name] = gray
		stack = append(stack, name)

		for _, dep := range graph[name] {
			if _, registered := graph[dep]; !registered {
				continue
			}
			switch color[dep] {
			case white:
				dfs(dep)
			case gray:
				// Back-edge: the cycle is the stack suffix from dep.
				start := 0
				for i, n := range stack {
					if n == dep {
						start = i
						break
					}
				}
				cycle := make([]string, len(stack)-start)
				copy(cycle, stack[start:])
				if key := cycleKey(cycle); key != "" {
					if _, dup := seen[key]; !dup {
						seen[key] = struct{}{}
						cycles = append(cycles, cycle)
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
	}

	for _, name := range roots {
		if color[name] == white {
			dfs(name)
		}
	}
	return cycles
}

// cycleKey normalizes a cycle path to a set key so rotations of the same
// cycle dedupe.
func cycleKey(cycle []string) string {
	names := make([]string, len(cycle))
	copy(names, cycle)
	sort.Strings(names)
	return strings.Join(names, "\x1f")
}
