package notepack

import (
	"fmt"
	"io"
)

// DefaultContext is the context name every terminal lookup falls back to.
const DefaultContext = "DEFAULT"

// An Expander reconstructs bytes from a template under one context. Every
// symbol's expansion is memoized, so a rule referenced many times, directly
// or through other rules, is expanded once and reused. An Expander serves a
// single decode run and is not safe for concurrent use; decoding the same
// template under another context needs a fresh Expander.
type Expander struct {
	// Template is the template being expanded.
	Template *Template

	// Context selects which terminal bytes to resolve. Empty means
	// DefaultContext. A terminal missing the active context falls back to
	// DefaultContext, then to its first stored context, then to nothing.
	Context string

	// Strict makes expansion fail on symbols defined by neither the
	// dictionary nor the rules. The default mirrors the original format's
	// behavior and expands them to zero bytes, silently.
	Strict bool

	memo map[Symbol][]byte
}

type expandFrame struct {
	sym   Symbol
	rule  Rule
	stage int
}

// Expand returns sym's bytes under the expander's context.
//
// Expansion is iterative over an explicit stack, so rule nesting depth is
// not limited by the goroutine stack, and a rule graph with a cycle is
// reported as ErrMalformedGrammar rather than looping.
func (x *Expander) Expand(sym Symbol) ([]byte, error) {
	if x.memo == nil {
		x.memo = make(map[Symbol][]byte)
	}
	if b, ok := x.memo[sym]; ok {
		return b, nil
	}

	stack := []expandFrame{{sym: sym}}
	expanding := make(map[Symbol]bool)
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		switch f.stage {
		case 0:
			if _, ok := x.memo[f.sym]; ok {
				stack = stack[:len(stack)-1]
				continue
			}
			if entry, ok := x.Template.Dictionary.Lookup(f.sym); ok {
				x.memo[f.sym] = x.resolve(entry)
				stack = stack[:len(stack)-1]
				continue
			}
			if r, ok := x.Template.Rule(f.sym); ok {
				if expanding[f.sym] {
					return nil, fmt.Errorf("%w: cycle through %v", ErrMalformedGrammar, f.sym)
				}
				expanding[f.sym] = true
				f.rule = r
				f.stage = 1
				stack = append(stack, expandFrame{sym: r.Left})
				continue
			}
			if x.Strict {
				return nil, fmt.Errorf("%w: unknown symbol %v", ErrCorruptTemplate, f.sym)
			}
			x.memo[f.sym] = nil
			stack = stack[:len(stack)-1]
		case 1:
			f.stage = 2
			stack = append(stack, expandFrame{sym: f.rule.Right})
		case 2:
			left, right := x.memo[f.rule.Left], x.memo[f.rule.Right]
			b := make([]byte, 0, len(left)+len(right))
			b = append(append(b, left...), right...)
			x.memo[f.sym] = b
			delete(expanding, f.sym)
			stack = stack[:len(stack)-1]
		}
	}
	return x.memo[sym], nil
}

// resolve picks a terminal entry's bytes for the active context, walking
// the fallback chain: active context, DEFAULT, first stored context.
// An entry with no contexts resolves to nothing.
func (x *Expander) resolve(entry *Entry) []byte {
	context := x.Context
	if context == "" {
		context = DefaultContext
	}
	if b, ok := entry.Get(context); ok {
		return b
	}
	if b, ok := entry.Get(DefaultContext); ok {
		return b
	}
	if ctxs := entry.Contexts(); len(ctxs) > 0 {
		b, _ := entry.Get(ctxs[0])
		return b
	}
	return nil
}

// WriteTo expands the template's sequence in order and streams each
// symbol's bytes to w. Each symbol is fully materialized before being
// written, but the output as a whole is produced incrementally.
func (x *Expander) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, sym := range x.Template.Sequence {
		b, err := x.Expand(sym)
		if err != nil {
			return written, err
		}
		n, err := w.Write(b)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
