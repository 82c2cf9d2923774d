// The notepack package is a grammar-based, deduplicating compressor for
// byte streams.
//
// Encoding happens in three stages:
//   - The stream is cut into fixed-size chunks, and each chunk is reduced
//     to a fingerprint. Repeated chunks collapse to a single terminal
//     symbol, either a stable global symbol from a preloaded dictionary
//     built over a sample corpus, or a local symbol scoped to this one
//     encode.
//   - The resulting symbol sequence is compressed by Re-Pair style rule
//     induction: the most frequent adjacent pair of symbols is repeatedly
//     replaced by a fresh rule symbol.
//   - The metadata, terminal dictionary, rules, and final sequence are
//     serialized as a Template and wrapped in a compressed container
//     (see the container subpackage).
//
// Decoding walks the template's sequence and expands each symbol back to
// bytes, resolving terminals through a named context with a fallback
// chain, and rules by concatenating their operands' expansions.
package notepack

import "errors"

var (
	// ErrCorruptTemplate reports a template that cannot be parsed, or, in
	// strict mode, one that references symbols it does not define.
	ErrCorruptTemplate = errors.New("notepack: corrupt template")

	// ErrMalformedGrammar reports a cycle in a template's rule graph.
	// Encoding never produces one; a template carrying one cannot be
	// expanded.
	ErrMalformedGrammar = errors.New("notepack: malformed grammar")
)
