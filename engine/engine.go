package engine

import (
	"sort"

	"github.com/teranos/tally/errors"
	"github.com/teranos/tally/logger"
	"github.com/teranos/tally/policy"
	"github.com/teranos/tally/value"
)

// Inputs supplies leaf values for a resolution call, keyed by name. Values
// may be calculation values, decimals, plain Go numbers, or numeric
// strings; anything else fails at the engine boundary. An input named after
// a registered calculation overrides that calculation.
type Inputs map[string]any

// Option customizes a single Calculate/CalculateMany call.
type Option func(*callOptions)

type callOptions struct {
	policy       *policy.Policy
	allowPartial bool
}

// WithPolicy applies an explicit rounding policy to computed results,
// overriding the left-operand policy rule for calc nodes.
func WithPolicy(p *policy.Policy) Option {
	return func(o *callOptions) { o.policy = p }
}

// AllowPartial drops targets with missing inputs from the result set
// instead of failing the whole call.
func AllowPartial() Option {
	return func(o *callOptions) { o.allowPartial = true }
}

// Engine resolves registered calculations against leaf inputs. It holds no
// per-call state; one Engine serves concurrent callers.
type Engine struct {
	reg *Registry
}

// New builds an engine over a registry.
func New(reg *Registry) *Engine {
	return &Engine{reg: reg}
}

// Registry exposes the underlying registry.
func (e *Engine) Registry() *Registry { return e.reg }

// Calculate resolves a single target and returns its value.
func (e *Engine) Calculate(name string, ctx Inputs, opts ...Option) (value.Value, error) {
	results, err := e.CalculateMany([]string{name}, ctx, opts...)
	if err != nil {
		return value.Value{}, err
	}
	v, ok := results[name]
	if !ok {
		// Only reachable with AllowPartial when name's inputs were missing.
		return value.Value{}, errors.NewNotFoundError("target %q was dropped from partial results", name)
	}
	return v, nil
}

// CalculateMany resolves a set of targets against leaf inputs.
//
// Each call: computes the transitive closure per target (unregistered names
// are leaf inputs), fails on reachable cycles, fails on missing inputs
// unless AllowPartial drops the affected targets, then evaluates with
// per-call memoization so shared dependencies compute exactly once.
func (e *Engine) CalculateMany(targets []string, ctx Inputs, opts ...Option) (map[string]value.Value, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	supplied, err := normalizeInputs(ctx)
	if err != nil {
		return nil, err
	}

	// Resolving: cycle check over everything reachable from the targets.
	if err := e.checkCycles(targets, supplied); err != nil {
		return nil, err
	}

	// Missing-input analysis per target.
	missing := make(map[string][]string)
	for _, target := range targets {
		if m := e.missingFor(target, supplied); len(m) > 0 {
			missing[target] = m
		}
	}

	evaluable := targets
	if len(missing) > 0 {
		if !o.allowPartial {
			return nil, errors.NewMissingInput(missing)
		}
		evaluable = make([]string, 0, len(targets))
		for _, t := range targets {
			if _, dropped := missing[t]; !dropped {
				evaluable = append(evaluable, t)
			}
		}
		logger.Debugw("partial resolution dropping targets", "missing", missing)
	}

	// Evaluating: memoized DFS, one computation per name per call.
	call := &resolution{
		engine:   e,
		supplied: supplied,
		policy:   o.policy,
		memo:     make(map[string]value.Value),
	}

	results := make(map[string]value.Value, len(evaluable))
	for _, target := range evaluable {
		v, err := call.resolve(target)
		if err != nil {
			return nil, err
		}
		results[target] = v
	}
	return results, nil
}

// GetDependencies returns the sorted transitive dependency closure of a
// registered calculation (the target itself excluded).
func (e *Engine) GetDependencies(name string) ([]string, error) {
	if !e.reg.Contains(name) {
		return nil, errors.NewNotFoundError("calculation %q", name)
	}

	closure := make(map[string]struct{})
	e.walkClosure(name, nil, closure)
	delete(closure, name)

	out := make([]string, 0, len(closure))
	for dep := range closure {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out, nil
}

// ValidateDependencies partitions the transitive closure of name into
// registered and unregistered (leaf input) subsets.
func (e *Engine) ValidateDependencies(name string) (registered, unregistered []string, err error) {
	deps, err := e.GetDependencies(name)
	if err != nil {
		return nil, nil, err
	}
	for _, dep := range deps {
		if e.reg.Contains(dep) {
			registered = append(registered, dep)
		} else {
			unregistered = append(unregistered, dep)
		}
	}
	return registered, unregistered, nil
}

// walkClosure accumulates every name reachable from start. Names present in
// supplied act as leaves: an explicit input always wins over derivation, so
// nothing behind it is required. Cycles are tolerated here; checkCycles
// reports them properly.
func (e *Engine) walkClosure(start string, supplied map[string]value.Value, closure map[string]struct{}) {
	if _, done := closure[start]; done {
		return
	}
	closure[start] = struct{}{}

	if supplied != nil {
		if _, isLeaf := supplied[start]; isLeaf && e.reg.Contains(start) {
			return
		}
	}
	deps, err := e.reg.Dependencies(start)
	if err != nil {
		return // unregistered: leaf input
	}
	for _, dep := range deps {
		e.walkClosure(dep, supplied, closure)
	}
}

// checkCycles fails with CircularDependencyError when a cycle is reachable
// from any target.
func (e *Engine) checkCycles(targets []string, supplied map[string]value.Value) error {
	closure := make(map[string]struct{})
	for _, t := range targets {
		e.walkClosure(t, supplied, closure)
	}

	graph := make(map[string][]string, len(closure))
	roots := make([]string, 0, len(closure))
	for name := range closure {
		if _, isLeaf := supplied[name]; isLeaf {
			continue
		}
		deps, err := e.reg.Dependencies(name)
		if err != nil {
			continue
		}
		graph[name] = deps
		roots = append(roots, name)
	}
	sort.Strings(roots)

	cycles := detectCycles(graph, roots)
	if len(cycles) == 0 {
		return nil
	}
	return errors.NewCircularDependency(cycles[0])
}

// missingFor lists the leaf inputs target needs that were not supplied.
func (e *Engine) missingFor(target string, supplied map[string]value.Value) []string {
	closure := make(map[string]struct{})
	e.walkClosure(target, supplied, closure)

	var missing []string
	for name := range closure {
		if _, ok := supplied[name]; ok {
			continue
		}
		if !e.reg.Contains(name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
