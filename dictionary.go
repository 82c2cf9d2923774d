package notepack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// A GlobalDict is a cross-file terminal table built offline from a sample
// corpus and loaded read-only before encoding. Chunks whose fingerprints
// appear in it are emitted as stable global symbols shared by every
// template encoded against the same dictionary, instead of per-template
// local symbols.
type GlobalDict struct {
	ChunkSize int
	MinFreq   int

	order   []Fingerprint
	entries map[Fingerprint]*Entry
}

// Lookup returns the global symbol and entry for fp. A nil dictionary
// matches nothing.
func (d *GlobalDict) Lookup(fp Fingerprint) (Symbol, *Entry, bool) {
	if d == nil {
		return Symbol{}, nil, false
	}
	e, ok := d.entries[fp]
	if !ok {
		return Symbol{}, nil, false
	}
	return GlobalSym(fp), e, true
}

// Len returns the number of entries.
func (d *GlobalDict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

func (d *GlobalDict) add(fp Fingerprint, e *Entry) {
	if d.entries == nil {
		d.entries = make(map[Fingerprint]*Entry)
	}
	if _, dup := d.entries[fp]; !dup {
		d.order = append(d.order, fp)
	}
	d.entries[fp] = e
}

type globalDictMeta struct {
	ChunkSize int `json:"chunk_size"`
	MinFreq   int `json:"min_freq"`
}

// WriteTo writes the dictionary file: uncompressed JSON with a meta object
// and the entries keyed by global symbol name, in first-seen order.
func (d *GlobalDict) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"meta":`)
	meta, err := json.Marshal(globalDictMeta{ChunkSize: d.ChunkSize, MinFreq: d.MinFreq})
	if err != nil {
		return 0, err
	}
	buf.Write(meta)
	buf.WriteString(`,"entries":{`)
	for i, fp := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", GlobalSym(fp).String())
		v, err := json.Marshal(d.entries[fp])
		if err != nil {
			return 0, err
		}
		buf.Write(v)
	}
	buf.WriteString("}}")
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadGlobalDict parses a dictionary file written by WriteTo. Entry order
// is preserved as stored.
func ReadGlobalDict(r io.Reader) (*GlobalDict, error) {
	d := new(GlobalDict)
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok.(string) {
		case "meta":
			var meta globalDictMeta
			if err := dec.Decode(&meta); err != nil {
				return nil, err
			}
			d.ChunkSize = meta.ChunkSize
			d.MinFreq = meta.MinFreq
		case "entries":
			if err := expectDelim(dec, '{'); err != nil {
				return nil, err
			}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				sym, err := ParseSymbol(keyTok.(string))
				if err != nil {
					return nil, err
				}
				if sym.Kind != KindGlobal {
					return nil, fmt.Errorf("dictionary entry %q is not a global symbol", keyTok)
				}
				e := new(Entry)
				if err := dec.Decode(e); err != nil {
					return nil, err
				}
				d.add(sym.FP, e)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return d, nil
}

// A DictBuilder scans sample streams and collects every chunk whose
// fingerprint occurs at least MinFreq times across all of them, keeping
// the first-seen bytes as the sample payload. The zero value uses the
// default chunk size, threshold, and fingerprinter.
type DictBuilder struct {
	ChunkSize   int
	MinFreq     int
	Fingerprint Fingerprinter

	counts map[Fingerprint]int
	sample map[Fingerprint][]byte
	order  []Fingerprint
	chunks int
}

// Scan streams one sample through the builder.
func (b *DictBuilder) Scan(r io.Reader) error {
	if b.counts == nil {
		b.counts = make(map[Fingerprint]int)
		b.sample = make(map[Fingerprint][]byte)
	}
	fper := b.Fingerprint
	if fper == nil {
		fper = SHA256{}
	}
	ch := NewChunker(r, b.ChunkSize)
	for {
		chunk, err := ch.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		b.chunks++
		fp := fper.Fingerprint(chunk)
		if b.counts[fp] == 0 {
			b.sample[fp] = append([]byte(nil), chunk...)
			b.order = append(b.order, fp)
		}
		b.counts[fp]++
	}
}

// Chunks returns the number of chunks scanned so far.
func (b *DictBuilder) Chunks() int { return b.chunks }

// Unique returns the number of distinct fingerprints seen so far.
func (b *DictBuilder) Unique() int { return len(b.counts) }

// Dict returns the dictionary of every fingerprint that met the
// frequency threshold, each under the DEFAULT context with its count.
func (b *DictBuilder) Dict() *GlobalDict {
	chunkSize := b.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	minFreq := b.MinFreq
	if minFreq <= 0 {
		minFreq = DefaultMinFreq
	}
	d := &GlobalDict{ChunkSize: chunkSize, MinFreq: minFreq}
	for _, fp := range b.order {
		if b.counts[fp] < minFreq {
			continue
		}
		e := new(Entry)
		e.Set(DefaultContext, b.sample[fp])
		e.Freq = b.counts[fp]
		d.add(fp, e)
	}
	return d
}
