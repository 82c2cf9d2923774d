package notepack

import "testing"

func TestSymbolNames(t *testing.T) {
	tests := []struct {
		sym  Symbol
		name string
	}{
		{GlobalSym("deadbeef0123"), "Sdeadbeef0123"},
		{LocalSym("0123456789ab"), "L0123456789ab"},
		{RuleSym(0), "R0"},
		{RuleSym(137), "R137"},
	}
	for _, tt := range tests {
		if got := tt.sym.String(); got != tt.name {
			t.Errorf("%#v.String() = %q, want %q", tt.sym, got, tt.name)
		}
		parsed, err := ParseSymbol(tt.name)
		if err != nil {
			t.Errorf("ParseSymbol(%q): %v", tt.name, err)
			continue
		}
		if parsed != tt.sym {
			t.Errorf("ParseSymbol(%q) = %#v, want %#v", tt.name, parsed, tt.sym)
		}
	}
}

func TestParseSymbolErrors(t *testing.T) {
	for _, name := range []string{"", "S", "L", "R", "Rx", "R-1", "R1.5", "Xabc", "42"} {
		if _, err := ParseSymbol(name); err == nil {
			t.Errorf("ParseSymbol(%q) did not fail", name)
		}
	}
}
