package provenance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/tally/config"
)

// Export and explanation surfaces.
//
// A value retains only its own provenance record, not its ancestors'
// records (parents appear as ids only). Full lineage reconstruction for a
// multi-step chain requires the caller to retain intermediate records
// externally.

// GraphOf returns the record graph reachable from rec: with single-record
// retention that is the record itself, keyed by id. Empty map for nil.
func GraphOf(rec *Record) map[string]*Record {
	if rec == nil {
		return map[string]*Record{}
	}
	return map[string]*Record{rec.id: rec}
}

// TraceNode is the interchange form of one record.
type TraceNode struct {
	ID     string            `json:"id"`
	Op     string            `json:"op"`
	Inputs []string          `json:"inputs"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// Trace is the interchange form of a value's provenance, shaped for JSON
// serialization and round-tripping.
type Trace struct {
	Root  string               `json:"root,omitempty"`
	Nodes map[string]TraceNode `json:"nodes"`
}

// ToTraceJSON exports rec as a JSON-marshalable trace structure. A nil
// record yields an empty trace with no root.
func ToTraceJSON(rec *Record) *Trace {
	trace := &Trace{Nodes: map[string]TraceNode{}}
	if rec == nil {
		return trace
	}
	trace.Root = rec.id
	trace.Nodes[rec.id] = TraceNode{
		ID:     rec.id,
		Op:     rec.op,
		Inputs: rec.Inputs(),
		Meta:   rec.Meta(),
	}
	return trace
}

// Explain renders a human-readable summary of how a value was produced:
// operation, input count, the rendered value, and any span context.
//
// maxDepth bounds how many input ids are listed; the configured history
// truncation depth applies on top when enabled.
func Explain(rec *Record, renderedValue string, maxDepth int) string {
	if rec == nil {
		return fmt.Sprintf("value %s (no provenance)", renderedValue)
	}

	cfg := config.Active()
	if cfg.EnableHistoryTruncation && cfg.MaxHistoryDepth > 0 && maxDepth > cfg.MaxHistoryDepth {
		maxDepth = cfg.MaxHistoryDepth
	}
	if maxDepth <= 0 {
		maxDepth = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s", rec.op, renderedValue)
	fmt.Fprintf(&b, " [id %s]", shortID(rec.id))

	if n := len(rec.inputs); n > 0 {
		shown := rec.inputs
		truncated := false
		if n > maxDepth {
			shown = shown[:maxDepth]
			truncated = true
		}
		short := make([]string, len(shown))
		for i, id := range shown {
			short[i] = shortID(id)
		}
		fmt.Fprintf(&b, "\n  inputs (%d): %s", n, strings.Join(short, ", "))
		if truncated {
			b.WriteString(", …")
		}
	}

	if span, ok := rec.meta["span"]; ok {
		fmt.Fprintf(&b, "\n  span: %s", span)
		if hier, ok := rec.meta["span_hierarchy"]; ok {
			fmt.Fprintf(&b, " (%s)", hier)
		}
	}
	if calc, ok := rec.meta["calculation"]; ok {
		fmt.Fprintf(&b, "\n  calculation: %s", calc)
	}

	if extras := describeExtras(rec.meta); extras != "" {
		fmt.Fprintf(&b, "\n  meta: %s", extras)
	}
	return b.String()
}

// describeExtras lists metadata not already summarized above.
func describeExtras(meta map[string]string) string {
	skip := map[string]bool{
		"span": true, "span_hierarchy": true, "span_depth": true,
		"calculation": true,
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if skip[k] || strings.HasPrefix(k, "span_attr_") || strings.HasPrefix(k, "input_") {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + meta[k]
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
