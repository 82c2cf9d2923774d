package notepack

import (
	"reflect"
	"testing"
)

var (
	symA = LocalSym("aaaaaaaaaaaa")
	symB = LocalSym("bbbbbbbbbbbb")
	symC = LocalSym("cccccccccccc")
	symD = LocalSym("dddddddddddd")
)

func TestGrammarCollapsesRepeatedPair(t *testing.T) {
	g := &Grammar{MinPairFreq: 2}
	seq, rules := g.Compress([]Symbol{symA, symB, symA, symB})
	if want := []Rule{{Left: symA, Right: symB}}; !reflect.DeepEqual(rules, want) {
		t.Fatalf("rules = %v, want %v", rules, want)
	}
	if want := []Symbol{RuleSym(0), RuleSym(0)}; !reflect.DeepEqual(seq, want) {
		t.Fatalf("sequence = %v, want %v", seq, want)
	}
}

func TestGrammarOverlappingCountNonOverlappingRewrite(t *testing.T) {
	// In [a a a] the pair (a,a) counts twice, which clears the threshold,
	// but the rewrite consumes both positions of each replaced pair.
	g := &Grammar{MinPairFreq: 2}
	seq, rules := g.Compress([]Symbol{symA, symA, symA})
	if len(rules) != 1 || rules[0] != (Rule{Left: symA, Right: symA}) {
		t.Fatalf("rules = %v", rules)
	}
	if want := []Symbol{RuleSym(0), symA}; !reflect.DeepEqual(seq, want) {
		t.Fatalf("sequence = %v, want %v", seq, want)
	}
}

func TestGrammarFirstSeenTieBreak(t *testing.T) {
	// All pairs occur once; the scan sees (a,b) first, so it wins, and the
	// collapse cascades deterministically down to a single symbol.
	g := &Grammar{MinPairFreq: 1}
	seq, rules := g.Compress([]Symbol{symA, symB, symC, symD})
	want := []Rule{
		{Left: symA, Right: symB},
		{Left: RuleSym(0), Right: symC},
		{Left: RuleSym(1), Right: symD},
	}
	if !reflect.DeepEqual(rules, want) {
		t.Fatalf("rules = %v, want %v", rules, want)
	}
	if !reflect.DeepEqual(seq, []Symbol{RuleSym(2)}) {
		t.Fatalf("sequence = %v", seq)
	}
}

func TestGrammarDeterminism(t *testing.T) {
	input := []Symbol{symA, symB, symA, symB, symC, symA, symB, symC, symD}
	g := &Grammar{MinPairFreq: 1}
	seq1, rules1 := g.Compress(input)
	seq2, rules2 := g.Compress(input)
	if !reflect.DeepEqual(seq1, seq2) || !reflect.DeepEqual(rules1, rules2) {
		t.Fatalf("two runs diverged: %v/%v vs %v/%v", seq1, rules1, seq2, rules2)
	}
}

func TestGrammarRuleBudget(t *testing.T) {
	input := []Symbol{symA, symB, symA, symB, symC, symD, symC, symD}
	g := &Grammar{MinPairFreq: 1, MaxRules: 1}
	seq, rules := g.Compress(input)
	if len(rules) != 1 {
		t.Fatalf("created %d rules, budget was 1", len(rules))
	}
	if want := []Symbol{RuleSym(0), RuleSym(0), symC, symD, symC, symD}; !reflect.DeepEqual(seq, want) {
		t.Fatalf("sequence = %v, want %v", seq, want)
	}
}

func TestGrammarZeroBudget(t *testing.T) {
	input := []Symbol{symA, symB, symA, symB}
	g := &Grammar{MinPairFreq: 1, MaxRules: -1}
	seq, rules := g.Compress(input)
	if len(rules) != 0 {
		t.Fatalf("created %d rules with a negative budget", len(rules))
	}
	if !reflect.DeepEqual(seq, input) {
		t.Fatalf("sequence changed without rules: %v", seq)
	}
}

func TestGrammarBelowThreshold(t *testing.T) {
	g := &Grammar{MinPairFreq: 3}
	seq, rules := g.Compress([]Symbol{symA, symB, symA, symB})
	if len(rules) != 0 {
		t.Fatalf("created rules below the frequency threshold: %v", rules)
	}
	if len(seq) != 4 {
		t.Fatalf("sequence length %d, want 4", len(seq))
	}
}

func TestGrammarShortSequences(t *testing.T) {
	g := &Grammar{MinPairFreq: 1}
	for _, input := range [][]Symbol{nil, {symA}} {
		seq, rules := g.Compress(input)
		if len(rules) != 0 || len(seq) != len(input) {
			t.Errorf("Compress(%v) = %v, %v", input, seq, rules)
		}
	}
}

func TestGrammarInputUnmodified(t *testing.T) {
	input := []Symbol{symA, symB, symA, symB}
	saved := append([]Symbol(nil), input...)
	g := &Grammar{MinPairFreq: 2}
	g.Compress(input)
	if !reflect.DeepEqual(input, saved) {
		t.Fatalf("input slice was modified: %v", input)
	}
}
