package notepack

import (
	"fmt"
	"strconv"
)

// A Kind says how a Symbol is resolved during expansion.
type Kind uint8

const (
	// KindGlobal marks a terminal resolved through the preloaded global
	// dictionary.
	KindGlobal Kind = iota

	// KindLocal marks a terminal captured from the encoded stream itself.
	KindLocal

	// KindRule marks a symbol that expands to the concatenation of a
	// rule's two operands.
	KindRule
)

// A Symbol identifies a terminal chunk or a grammar rule. Symbols are
// immutable values and valid map keys. The textual forms S<fingerprint>,
// L<fingerprint>, and R<index> exist only at the serialization boundary;
// in memory a Symbol carries its kind explicitly.
type Symbol struct {
	Kind Kind
	FP   Fingerprint // terminals only
	Rule int         // KindRule only
}

// GlobalSym returns the global terminal symbol for fp.
func GlobalSym(fp Fingerprint) Symbol { return Symbol{Kind: KindGlobal, FP: fp} }

// LocalSym returns the local terminal symbol for fp.
func LocalSym(fp Fingerprint) Symbol { return Symbol{Kind: KindLocal, FP: fp} }

// RuleSym returns the symbol for rule index i.
func RuleSym(i int) Symbol { return Symbol{Kind: KindRule, Rule: i} }

// String returns the symbol's wire name.
func (s Symbol) String() string {
	switch s.Kind {
	case KindGlobal:
		return "S" + string(s.FP)
	case KindLocal:
		return "L" + string(s.FP)
	default:
		return "R" + strconv.Itoa(s.Rule)
	}
}

// ParseSymbol parses a wire name back into a Symbol.
func ParseSymbol(name string) (Symbol, error) {
	if len(name) < 2 {
		return Symbol{}, fmt.Errorf("symbol name %q too short", name)
	}
	switch name[0] {
	case 'S':
		return GlobalSym(Fingerprint(name[1:])), nil
	case 'L':
		return LocalSym(Fingerprint(name[1:])), nil
	case 'R':
		i, err := strconv.Atoi(name[1:])
		if err != nil || i < 0 {
			return Symbol{}, fmt.Errorf("bad rule symbol %q", name)
		}
		return RuleSym(i), nil
	}
	return Symbol{}, fmt.Errorf("unknown symbol prefix in %q", name)
}

// A Rule rewrites its symbol into Left's expansion followed by Right's.
// Rules are created in increasing index order and never change afterward.
type Rule struct {
	Left, Right Symbol
}
