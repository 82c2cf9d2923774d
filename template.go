package notepack

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/notepack/notepack/container"
)

// Meta describes the stream a template was encoded from.
type Meta struct {
	ChunkSize   int    `json:"chunk_size"`
	OrigFile    string `json:"orig_file"`
	TotalChunks int    `json:"total_chunks"`
}

// An Entry holds one terminal's bytes keyed by context name. Context order
// is the insertion order and is preserved across serialization: the
// expander's last-resort fallback takes the first stored context, so the
// order is part of the format.
type Entry struct {
	contexts []string
	data     map[string][]byte

	// Freq is the informational occurrence count carried by global
	// dictionary entries. Decoders ignore it.
	Freq int
}

// Set stores b as the terminal's bytes under context, replacing any
// previous value without disturbing context order.
func (e *Entry) Set(context string, b []byte) {
	if e.data == nil {
		e.data = make(map[string][]byte)
	}
	if _, ok := e.data[context]; !ok {
		e.contexts = append(e.contexts, context)
	}
	e.data[context] = b
}

// Get returns the bytes stored under context.
func (e *Entry) Get(context string) ([]byte, bool) {
	b, ok := e.data[context]
	return b, ok
}

// Contexts returns the entry's context names in insertion order.
func (e *Entry) Contexts() []string { return e.contexts }

// MarshalJSON writes the entry as an object of context name to hex string,
// in insertion order, with a trailing "freq" member when Freq is set.
func (e *Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ctx := range e.contexts {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ctx)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteByte('"')
		buf.WriteString(hex.EncodeToString(e.data[ctx]))
		buf.WriteByte('"')
	}
	if e.Freq > 0 {
		if len(e.contexts) > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"freq":%d`, e.Freq)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form, keeping the context order in which
// members appear.
func (e *Entry) UnmarshalJSON(data []byte) error {
	*e = Entry{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		val, err := dec.Token()
		if err != nil {
			return err
		}
		if key == "freq" {
			num, ok := val.(json.Number)
			if !ok {
				return fmt.Errorf("entry freq is not a number")
			}
			n, err := num.Int64()
			if err != nil {
				return err
			}
			e.Freq = int(n)
			continue
		}
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("entry context %q is not a string", key)
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("entry context %q: %v", key, err)
		}
		e.Set(key, b)
	}
	_, err := dec.Token() // closing brace
	return err
}

// A Dictionary maps terminal symbols to their entries, preserving
// insertion order so serialization is deterministic.
type Dictionary struct {
	order   []Symbol
	entries map[Symbol]*Entry
}

// Entry returns the entry for sym, creating it if needed.
func (d *Dictionary) Entry(sym Symbol) *Entry {
	if e, ok := d.entries[sym]; ok {
		return e
	}
	if d.entries == nil {
		d.entries = make(map[Symbol]*Entry)
	}
	e := new(Entry)
	d.entries[sym] = e
	d.order = append(d.order, sym)
	return e
}

// Lookup returns the entry for sym, if present.
func (d *Dictionary) Lookup(sym Symbol) (*Entry, bool) {
	if d == nil {
		return nil, false
	}
	e, ok := d.entries[sym]
	return e, ok
}

// Symbols returns the dictionary's symbols in insertion order.
func (d *Dictionary) Symbols() []Symbol { return d.order }

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

func (d *Dictionary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sym := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", sym.String())
		v, err := json.Marshal(d.entries[sym])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Dictionary) UnmarshalJSON(data []byte) error {
	*d = Dictionary{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		sym, err := ParseSymbol(tok.(string))
		if err != nil {
			return err
		}
		e := new(Entry)
		if err := dec.Decode(e); err != nil {
			return err
		}
		d.entries = d.entriesOrNew()
		if _, dup := d.entries[sym]; !dup {
			d.order = append(d.order, sym)
		}
		d.entries[sym] = e
	}
	_, err := dec.Token()
	return err
}

func (d *Dictionary) entriesOrNew() map[Symbol]*Entry {
	if d.entries == nil {
		d.entries = make(map[Symbol]*Entry)
	}
	return d.entries
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// A Template is the aggregate produced by one encode and consumed by one
// decode: metadata, the terminal dictionary, the grammar rules, and the
// top-level symbol sequence.
type Template struct {
	Meta       Meta
	Dictionary *Dictionary
	Rules      map[int]Rule
	Sequence   []Symbol
}

// Rule returns the rule behind sym, if sym is a rule symbol the template
// defines.
func (t *Template) Rule(sym Symbol) (Rule, bool) {
	if sym.Kind != KindRule {
		return Rule{}, false
	}
	r, ok := t.Rules[sym.Rule]
	return r, ok
}

// MarshalJSON writes the template in its wire form: meta, dictionary,
// rules keyed by rule name in index order, and the sequence as one
// comma-joined string of symbol names.
func (t *Template) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"meta":`)
	meta, err := json.Marshal(t.Meta)
	if err != nil {
		return nil, err
	}
	buf.Write(meta)

	buf.WriteString(`,"dictionary":`)
	dict := t.Dictionary
	if dict == nil {
		dict = new(Dictionary)
	}
	dv, err := json.Marshal(dict)
	if err != nil {
		return nil, err
	}
	buf.Write(dv)

	buf.WriteString(`,"rules":{`)
	indices := make([]int, 0, len(t.Rules))
	for i := range t.Rules {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for n, i := range indices {
		if n > 0 {
			buf.WriteByte(',')
		}
		r := t.Rules[i]
		fmt.Fprintf(&buf, "%q:[%q,%q]", RuleSym(i).String(), r.Left.String(), r.Right.String())
	}
	buf.WriteByte('}')

	names := make([]string, len(t.Sequence))
	for i, sym := range t.Sequence {
		names[i] = sym.String()
	}
	buf.WriteString(`,"sequence":`)
	seq, err := json.Marshal(strings.Join(names, ","))
	if err != nil {
		return nil, err
	}
	buf.Write(seq)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *Template) UnmarshalJSON(data []byte) error {
	*t = Template{Dictionary: new(Dictionary), Rules: make(map[int]Rule)}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok.(string) {
		case "meta":
			if err := dec.Decode(&t.Meta); err != nil {
				return err
			}
		case "dictionary":
			if err := dec.Decode(t.Dictionary); err != nil {
				return err
			}
		case "rules":
			var raw map[string][]string
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			for name, ops := range raw {
				sym, err := ParseSymbol(name)
				if err != nil {
					return err
				}
				if sym.Kind != KindRule {
					return fmt.Errorf("rule key %q is not a rule symbol", name)
				}
				if len(ops) != 2 {
					return fmt.Errorf("rule %q has %d operands, want 2", name, len(ops))
				}
				left, err := ParseSymbol(ops[0])
				if err != nil {
					return err
				}
				right, err := ParseSymbol(ops[1])
				if err != nil {
					return err
				}
				t.Rules[sym.Rule] = Rule{Left: left, Right: right}
			}
		case "sequence":
			var joined string
			if err := dec.Decode(&joined); err != nil {
				return err
			}
			if joined == "" {
				t.Sequence = nil
				break
			}
			names := strings.Split(joined, ",")
			t.Sequence = make([]Symbol, len(names))
			for i, name := range names {
				sym, err := ParseSymbol(name)
				if err != nil {
					return err
				}
				t.Sequence[i] = sym
			}
		default:
			// Unknown members are skipped for forward compatibility.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
		}
	}
	_, err := dec.Token()
	return err
}

// Pack serializes the template and wraps it in a compressed container.
// An empty format means the default (zlib) envelope.
func (t *Template) Pack(format container.Format) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return container.Pack(format, data)
}

// UnpackTemplate reverses Pack. With an empty format the envelope is
// detected from the blob itself; see container.Unpack for the exception.
// Any decompression or parse failure reports ErrCorruptTemplate.
func UnpackTemplate(blob []byte, format container.Format) (*Template, error) {
	data, err := container.Unpack(format, blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTemplate, err)
	}
	t := new(Template)
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTemplate, err)
	}
	return t, nil
}
