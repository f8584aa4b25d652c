package provenance

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/petermattis/goid"

	"github.com/teranos/tally/config"
	"github.com/teranos/tally/errors"
)

// Span context stack. Spans are named, attributed scopes that group
// calculations for audit purposes. Each goroutine owns its own stack:
// concurrent callers never observe each other's frames.

// Token identifies one pushed span frame and must be handed back to PopSpan.
type Token struct {
	id  string
	gid int64
}

type spanFrame struct {
	name  string
	attrs map[string]string
	token string
}

var (
	spanMu     sync.Mutex
	spanStacks = make(map[int64][]spanFrame)
)

// ErrSpanMismatch indicates a pop whose token does not match the top frame.
var ErrSpanMismatch = errors.New("span pop does not match top of stack")

// PushSpan enters a named span on the calling goroutine's stack and returns
// a token for the matching PopSpan. attrs may be nil.
func PushSpan(name string, attrs map[string]string) Token {
	gid := goid.Get()
	tok := Token{id: uuid.NewString(), gid: gid}

	frame := spanFrame{name: name, token: tok.id}
	if len(attrs) > 0 {
		frame.attrs = make(map[string]string, len(attrs))
		for k, v := range attrs {
			frame.attrs[k] = v
		}
	}

	spanMu.Lock()
	spanStacks[gid] = append(spanStacks[gid], frame)
	spanMu.Unlock()
	return tok
}

// PopSpan exits the span identified by tok. Frames must pop in strict LIFO
// order on the goroutine that pushed them.
func PopSpan(tok Token) error {
	gid := goid.Get()
	if gid != tok.gid {
		return errors.Wrap(ErrSpanMismatch, "pop called from a different goroutine")
	}

	spanMu.Lock()
	defer spanMu.Unlock()

	stack := spanStacks[gid]
	if len(stack) == 0 {
		return errors.Wrap(ErrSpanMismatch, "span stack is empty")
	}
	top := stack[len(stack)-1]
	if top.token != tok.id {
		return errors.Wrapf(ErrSpanMismatch, "expected span %q on top", top.name)
	}

	if len(stack) == 1 {
		delete(spanStacks, gid)
	} else {
		spanStacks[gid] = stack[:len(stack)-1]
	}
	return nil
}

// WithSpan runs fn inside a named span, guaranteeing the frame pops on all
// exit paths including panics.
func WithSpan(name string, attrs map[string]string, fn func() error) error {
	tok := PushSpan(name, attrs)
	defer PopSpan(tok)
	return fn()
}

// CurrentSpan returns the innermost active span name and the stack depth for
// the calling goroutine. ok is false when no span is active.
func CurrentSpan() (name string, depth int, ok bool) {
	gid := goid.Get()
	spanMu.Lock()
	defer spanMu.Unlock()

	stack := spanStacks[gid]
	if len(stack) == 0 {
		return "", 0, false
	}
	return stack[len(stack)-1].name, len(stack), true
}

// currentSpanMeta snapshots the calling goroutine's span state as record
// metadata. Returns nil when spans are disabled or no span is active.
//
// Keys: span (top frame name), span_attr_<k> per top-frame attribute, and,
// only when nested, span_hierarchy (outer to inner, comma-joined) plus
// span_depth.
func currentSpanMeta() map[string]string {
	if !config.Active().EnableSpans {
		return nil
	}

	gid := goid.Get()
	spanMu.Lock()
	stack := spanStacks[gid]
	if len(stack) == 0 {
		spanMu.Unlock()
		return nil
	}

	top := stack[len(stack)-1]
	meta := map[string]string{"span": top.name}
	for k, v := range top.attrs {
		meta["span_attr_"+k] = v
	}
	if len(stack) > 1 {
		names := make([]string, len(stack))
		for i, f := range stack {
			names[i] = f.name
		}
		meta["span_hierarchy"] = strings.Join(names, ",")
		meta["span_depth"] = strconv.Itoa(len(stack))
	}
	spanMu.Unlock()
	return meta
}
