package notepack

import (
	"bytes"
	"strings"
	"testing"
)

func TestDictBuilderThreshold(t *testing.T) {
	b := &DictBuilder{ChunkSize: 4, MinFreq: 2}
	if err := b.Scan(strings.NewReader("AAAABBBBAAAACCCC")); err != nil {
		t.Fatal(err)
	}
	if b.Chunks() != 4 {
		t.Fatalf("scanned %d chunks, want 4", b.Chunks())
	}
	if b.Unique() != 3 {
		t.Fatalf("%d unique fingerprints, want 3", b.Unique())
	}

	d := b.Dict()
	if d.Len() != 1 {
		t.Fatalf("dictionary has %d entries, want 1", d.Len())
	}
	fp := SHA256{}.Fingerprint([]byte("AAAA"))
	sym, entry, ok := d.Lookup(fp)
	if !ok {
		t.Fatalf("repeated chunk missing from dictionary")
	}
	if sym != GlobalSym(fp) {
		t.Fatalf("lookup returned %v", sym)
	}
	if entry.Freq != 2 {
		t.Fatalf("freq = %d, want 2", entry.Freq)
	}
	got, ok := entry.Get(DefaultContext)
	if !ok || !bytes.Equal(got, []byte("AAAA")) {
		t.Fatalf("DEFAULT bytes = %q", got)
	}
}

func TestDictBuilderAcrossSamples(t *testing.T) {
	// One occurrence per sample still counts toward the threshold.
	b := &DictBuilder{ChunkSize: 4, MinFreq: 2}
	for _, sample := range []string{"AAAAXXXX", "YYYYAAAA"} {
		if err := b.Scan(strings.NewReader(sample)); err != nil {
			t.Fatal(err)
		}
	}
	d := b.Dict()
	if d.Len() != 1 {
		t.Fatalf("dictionary has %d entries, want 1", d.Len())
	}
	if _, _, ok := d.Lookup(SHA256{}.Fingerprint([]byte("AAAA"))); !ok {
		t.Fatal("cross-sample repeat missing from dictionary")
	}
}

func TestGlobalDictRoundTrip(t *testing.T) {
	b := &DictBuilder{ChunkSize: 4, MinFreq: 2}
	if err := b.Scan(strings.NewReader("AAAABBBBAAAABBBBCCCC")); err != nil {
		t.Fatal(err)
	}
	d := b.Dict()

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadGlobalDict(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.ChunkSize != 4 || got.MinFreq != 2 {
		t.Fatalf("meta = %d/%d, want 4/2", got.ChunkSize, got.MinFreq)
	}
	if got.Len() != d.Len() {
		t.Fatalf("entries = %d, want %d", got.Len(), d.Len())
	}
	for i, fp := range d.order {
		if got.order[i] != fp {
			t.Fatalf("entry order changed: %v vs %v", got.order, d.order)
		}
		_, entry, ok := got.Lookup(fp)
		if !ok {
			t.Fatalf("entry %s lost in round trip", fp)
		}
		_, want, _ := d.Lookup(fp)
		if entry.Freq != want.Freq {
			t.Errorf("entry %s freq = %d, want %d", fp, entry.Freq, want.Freq)
		}
		gb, _ := entry.Get(DefaultContext)
		wb, _ := want.Get(DefaultContext)
		if !bytes.Equal(gb, wb) {
			t.Errorf("entry %s bytes = %q, want %q", fp, gb, wb)
		}
	}
}

func TestGlobalDictRejectsNonGlobalKeys(t *testing.T) {
	in := `{"meta":{"chunk_size":4,"min_freq":2},"entries":{"Labcdef":{"DEFAULT":"41"}}}`
	if _, err := ReadGlobalDict(strings.NewReader(in)); err == nil {
		t.Fatal("local symbol accepted as a global dictionary key")
	}
}

func TestGlobalDictNilLookup(t *testing.T) {
	var d *GlobalDict
	if _, _, ok := d.Lookup("abc"); ok {
		t.Fatal("nil dictionary matched a fingerprint")
	}
	if d.Len() != 0 {
		t.Fatal("nil dictionary has nonzero length")
	}
}
