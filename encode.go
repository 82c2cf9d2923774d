package notepack

import "io"

// An Encoder turns a byte stream into a Template. The zero value is ready
// to use; fields override chunking, grammar induction, dedup scope, and
// fingerprinting.
type Encoder struct {
	// ChunkSize is the chunk size in bytes. Zero means DefaultChunkSize.
	ChunkSize int

	// MinPairFreq and MaxRules configure the grammar pass; see Grammar.
	MinPairFreq int
	MaxRules    int

	// Contexts names the contexts captured for each local terminal. Local
	// terminals carry the same bytes under every context; the contexts
	// exist so a template can later be merged with context-varying global
	// entries. Nil means DEFAULT only.
	Contexts []string

	// Global is an optional cross-file dictionary. Chunks found in it are
	// emitted as global symbols and allocate no local entry.
	Global *GlobalDict

	// Fingerprint is the chunk fingerprinter. Nil means SHA256, the
	// interoperable default. It must match the fingerprinter the global
	// dictionary was built with.
	Fingerprint Fingerprinter
}

// Encode reads src twice: a first streaming pass maps each chunk to a
// symbol, and a second pass captures the bytes behind each local symbol,
// stopping early once every local symbol has been captured. name is
// recorded in the template's metadata. Chunks themselves are never
// retained beyond the pass that reads them.
func (e *Encoder) Encode(src io.ReadSeeker, name string) (*Template, error) {
	chunkSize := e.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	fper := e.Fingerprint
	if fper == nil {
		fper = SHA256{}
	}
	contexts := e.Contexts
	if len(contexts) == 0 {
		contexts = []string{DefaultContext}
	}

	// Pass one: one symbol per chunk, in stream order. A fingerprint
	// found in the global dictionary wins over any local allocation.
	local := make(map[Fingerprint]Symbol)
	var sequence []Symbol
	total := 0
	ch := NewChunker(src, chunkSize)
	for {
		chunk, err := ch.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		total++
		fp := fper.Fingerprint(chunk)
		if sym, _, ok := e.Global.Lookup(fp); ok {
			sequence = append(sequence, sym)
			continue
		}
		sym, ok := local[fp]
		if !ok {
			sym = LocalSym(fp)
			local[fp] = sym
		}
		sequence = append(sequence, sym)
	}

	// The template dictionary starts with every global entry, stripped of
	// its frequency count, so a decoder needs nothing but the template.
	dict := new(Dictionary)
	if e.Global != nil {
		for _, fp := range e.Global.order {
			ge := e.Global.entries[fp]
			entry := dict.Entry(GlobalSym(fp))
			for _, ctx := range ge.Contexts() {
				b, _ := ge.Get(ctx)
				entry.Set(ctx, b)
			}
		}
	}

	// Pass two: capture each local symbol's bytes once, under every
	// configured context, and stop as soon as all of them are captured.
	if len(local) > 0 {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		captured := 0
		ch = NewChunker(src, chunkSize)
		for captured < len(local) {
			chunk, err := ch.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			fp := fper.Fingerprint(chunk)
			sym, ok := local[fp]
			if !ok {
				continue
			}
			entry := dict.Entry(sym)
			if len(entry.Contexts()) > 0 {
				continue
			}
			data := append([]byte(nil), chunk...)
			for _, ctx := range contexts {
				entry.Set(ctx, data)
			}
			captured++
		}
	}

	g := &Grammar{MaxRules: e.MaxRules, MinPairFreq: e.MinPairFreq}
	seq, rules := g.Compress(sequence)
	ruleMap := make(map[int]Rule, len(rules))
	for i, r := range rules {
		ruleMap[i] = r
	}

	return &Template{
		Meta:       Meta{ChunkSize: chunkSize, OrigFile: name, TotalChunks: total},
		Dictionary: dict,
		Rules:      ruleMap,
		Sequence:   seq,
	}, nil
}
