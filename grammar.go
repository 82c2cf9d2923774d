package notepack

// A Grammar performs Re-Pair style rule induction on a symbol sequence:
// the most frequent adjacent pair is repeatedly replaced by a fresh rule
// symbol until no pair is frequent enough or the rule budget is spent.
// The zero value uses the default budget and threshold.
type Grammar struct {
	// MaxRules caps the number of rules created. Zero means
	// DefaultMaxRules; negative means no new rules at all.
	MaxRules int

	// MinPairFreq is the lowest pair frequency still worth a rule. Zero
	// means DefaultMinPairFreq.
	MinPairFreq int
}

type pair struct {
	a, b Symbol
}

// Compress rewrites seq into a generally shorter sequence plus the rules
// created along the way, indexed by their rule number. Operands of later
// rules may themselves be rule symbols, forming a hierarchy. seq is left
// unmodified.
//
// Each pass recounts every adjacent pair from scratch. Counting is
// overlapping — in [a a a] the pair (a,a) has frequency 2 — but
// substitution is not: that sequence rewrites to [R a], not [R R].
// When two pairs have equal frequency, the one encountered first in the
// left-to-right scan wins, so identical input always produces identical
// rules and output.
func (g *Grammar) Compress(seq []Symbol) ([]Symbol, []Rule) {
	maxRules := g.MaxRules
	if maxRules == 0 {
		maxRules = DefaultMaxRules
	}
	minFreq := g.MinPairFreq
	if minFreq == 0 {
		minFreq = DefaultMinPairFreq
	}

	cur := append([]Symbol(nil), seq...)
	var rules []Rule
	counts := make(map[pair]int)
	var order []pair
	for len(rules) < maxRules {
		clear(counts)
		order = order[:0]
		for i := 0; i+1 < len(cur); i++ {
			p := pair{cur[i], cur[i+1]}
			if counts[p] == 0 {
				order = append(order, p)
			}
			counts[p]++
		}
		if len(order) == 0 {
			break
		}

		best := order[0]
		for _, p := range order[1:] {
			if counts[p] > counts[best] {
				best = p
			}
		}
		if counts[best] < minFreq {
			break
		}

		sym := RuleSym(len(rules))
		rules = append(rules, Rule{Left: best.a, Right: best.b})
		cur = substitute(cur, best, sym)
	}
	return cur, rules
}

// substitute rewrites src left to right, replacing each non-overlapping
// occurrence of p with sym. The rewrite happens in place: the write
// position never passes the read position.
func substitute(src []Symbol, p pair, sym Symbol) []Symbol {
	dst := src[:0]
	i := 0
	for i < len(src) {
		if i+1 < len(src) && src[i] == p.a && src[i+1] == p.b {
			dst = append(dst, sym)
			i += 2
		} else {
			dst = append(dst, src[i])
			i++
		}
	}
	return dst
}
