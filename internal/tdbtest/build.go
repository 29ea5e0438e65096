// Package tdbtest builds small trail databases for tests.
//
// Databases are described logically, as trails of events with string field
// values, and encoded the way a production writer would: lexicons in first
// seen order, edge-encoded events, a Huffman codebook over frequent items and
// item pairs, and literals for everything else.
package tdbtest

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/arloliu/tdb/compress"
	"github.com/arloliu/tdb/filter"
	"github.com/arloliu/tdb/format"
	"github.com/arloliu/tdb/huffman"
	"github.com/arloliu/tdb/ident"
	"github.com/arloliu/tdb/internal/bits"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/section"
)

// maxCodedSymbols bounds the codebook so every code fits in CodeBits.
const maxCodedSymbols = 1 << 12

// Event is one event of a trail. Values holds the values of fields 1..n-1
// in field order; missing trailing values are empty.
type Event struct {
	Timestamp uint32
	// Far marks an event whose timestamp is not representable as a delta.
	// Timestamp is ignored for far events.
	Far    bool
	Values []string
}

// Trail is the event sequence of one entity.
type Trail struct {
	ID     uuid.UUID
	Events []Event
}

// DB describes a database. Timestamps within a trail must not decrease.
type DB struct {
	Fields []string
	Trails []Trail
}

// Options control the encoding.
type Options struct {
	// Codebook enables the Huffman codebook for frequent symbols. Without
	// it only far timestamp deltas are coded and everything else is
	// written as literals.
	Codebook bool
	// Index writes cookies.index.
	Index bool
	// Compress stores the named files as compressed sidecars instead of
	// plain files.
	Compress map[string]format.CompressionType
}

// Code is the stream form of a codebook code: Len bits, first bit lowest.
type Code struct {
	Bits uint64
	Len  uint
}

// Built is an encoded database together with the logical view needed to
// predict decoder output.
type Built struct {
	Info  section.Info
	Files map[string][]byte
	Codes map[huffman.Symbol]Code
	Stats *huffman.FieldStats

	fields   []string
	lexicons [][]string
	values   []map[string]item.Val
	trails   []builtTrail
}

type builtTrail struct {
	id     uuid.UUID
	events []builtEvent
}

type builtEvent struct {
	timestamp uint32
	delta     uint32
	changes   []item.Item
	vector    []item.Item
}

// Build encodes db.
func Build(db DB, opts Options) (*Built, error) {
	numFields := len(db.Fields) + 1
	if numFields > item.MaxFields {
		return nil, errors.Newf("tdbtest: %d fields", numFields)
	}

	b := &Built{
		Files:    make(map[string][]byte),
		Codes:    make(map[huffman.Symbol]Code),
		fields:   db.Fields,
		lexicons: make([][]string, numFields),
		values:   make([]map[string]item.Val, numFields),
	}
	for f := range b.values {
		b.values[f] = make(map[string]item.Val)
	}

	if err := b.collect(db, numFields); err != nil {
		return nil, err
	}

	sizes := make([]uint64, numFields-1)
	for f := 1; f < numFields; f++ {
		sizes[f-1] = uint64(len(b.lexicons[f]))
	}
	b.Stats = huffman.NewFieldStats(sizes, b.Info.MaxTimestampDelta)

	b.Codes = assignCodes(b.symbolCounts(opts.Codebook))
	b.Files[section.CodebookFile] = encodeCodebook(b.Codes)

	trails := make([][]byte, len(b.trails))
	for i := range b.trails {
		trails[i] = b.encodeTrail(&b.trails[i])
	}
	b.Files[section.TrailsFile] = section.EncodeTrails(trails)

	b.Files[section.InfoFile] = b.Info.Bytes()
	b.Files[section.FieldsFile] = section.FormatFields(db.Fields)
	for f, name := range db.Fields {
		b.Files[section.LexiconFile(name)] = section.EncodeLexicon(b.lexicons[f+1])
	}

	ids := make([]uuid.UUID, len(db.Trails))
	for i, t := range db.Trails {
		ids[i] = t.ID
	}
	b.Files[section.CookiesFile] = ident.EncodeTable(ids)

	if opts.Index {
		table, err := ident.NewTable(b.Files[section.CookiesFile], uint64(len(ids)))
		if err != nil {
			return nil, err
		}
		idx, err := ident.Build(table)
		if err != nil {
			return nil, err
		}
		b.Files[section.IndexFile] = idx
	}

	for name, typ := range opts.Compress {
		data, ok := b.Files[name]
		if !ok {
			return nil, errors.Newf("tdbtest: no file %q to compress", name)
		}
		codec, err := compress.GetCodec(typ)
		if err != nil {
			return nil, err
		}
		packed, err := codec.Compress(data)
		if err != nil {
			return nil, err
		}
		delete(b.Files, name)
		b.Files[name+typ.Extension()] = packed
	}

	return b, nil
}

// collect builds lexicons and the logical event vectors.
func (b *Built) collect(db DB, numFields int) error {
	first := true
	for _, t := range db.Trails {
		for _, ev := range t.Events {
			if len(ev.Values) >= numFields {
				return errors.Newf("tdbtest: event has %d values for %d fields", len(ev.Values), numFields-1)
			}
			for j, v := range ev.Values {
				f := j + 1
				if _, ok := b.values[f][v]; v != "" && !ok {
					b.lexicons[f] = append(b.lexicons[f], v)
					b.values[f][v] = item.Val(len(b.lexicons[f]))
				}
			}
			if ev.Far {
				continue
			}
			if first || ev.Timestamp < b.Info.MinTimestamp {
				b.Info.MinTimestamp = ev.Timestamp
			}
			if first || ev.Timestamp > b.Info.MaxTimestamp {
				b.Info.MaxTimestamp = ev.Timestamp
			}
			first = false
		}
	}

	b.Info.NumTrails = uint64(len(db.Trails))
	b.trails = make([]builtTrail, len(db.Trails))
	for i, t := range db.Trails {
		state := make([]item.Item, numFields)
		for f := range state {
			state[f] = item.Sentinel(item.Field(f))
		}

		prev := b.Info.MinTimestamp
		bt := builtTrail{id: t.ID}
		for _, ev := range t.Events {
			be := builtEvent{timestamp: item.FarTimestamp, delta: item.FarTimeDelta}
			if !ev.Far {
				if ev.Timestamp < prev {
					return errors.Newf("tdbtest: trail %d: timestamp %d before %d", i, ev.Timestamp, prev)
				}
				be.delta = ev.Timestamp - prev
				if be.delta >= item.FarTimeDelta {
					return errors.Newf("tdbtest: trail %d: delta %d too large", i, be.delta)
				}
				be.timestamp = ev.Timestamp
				prev = ev.Timestamp
				b.Info.MaxTimestampDelta = max(b.Info.MaxTimestampDelta, be.delta)
			}

			for f := 1; f < numFields; f++ {
				v := ""
				if f-1 < len(ev.Values) {
					v = ev.Values[f-1]
				}
				it := item.Make(item.Field(f), b.values[f][v])
				if state[f] != it {
					state[f] = it
					be.changes = append(be.changes, it)
				}
			}
			be.vector = slices.Clone(state)
			bt.events = append(bt.events, be)
			b.Info.NumEvents++
		}
		b.trails[i] = bt
	}

	return nil
}

// symbols returns the stream of items of one event: its timestamp delta
// followed by the changed fields.
func (e *builtEvent) symbols() []item.Item {
	out := make([]item.Item, 0, len(e.changes)+1)
	out = append(out, item.Make(item.TimestampField, item.Val(e.delta)))

	return append(out, e.changes...)
}

func (b *Built) symbolCounts(codebook bool) map[huffman.Symbol]uint64 {
	counts := make(map[huffman.Symbol]uint64)
	far := huffman.Symbol{First: item.Make(item.TimestampField, item.Val(item.FarTimeDelta))}
	for _, t := range b.trails {
		for i := range t.events {
			if t.events[i].delta == item.FarTimeDelta {
				// far deltas do not fit a literal
				counts[far]++
			}
			if !codebook {
				continue
			}
			seq := t.events[i].symbols()
			for k, it := range seq {
				counts[huffman.Symbol{First: it}]++
				if k%2 == 0 && k+1 < len(seq) {
					counts[huffman.Symbol{First: it, Second: seq[k+1]}]++
				}
			}
		}
	}

	type entry struct {
		sym   huffman.Symbol
		count uint64
	}
	var keep []entry
	for sym, n := range counts {
		if n >= 2 || sym == far {
			keep = append(keep, entry{sym, n})
		}
	}
	slices.SortFunc(keep, func(a, b entry) int {
		if a.count != b.count {
			if a.count > b.count {
				return -1
			}
			return 1
		}
		if a.sym.Pack() < b.sym.Pack() {
			return -1
		}
		return 1
	})
	if len(keep) > maxCodedSymbols {
		keep = keep[:maxCodedSymbols]
		isFar := func(e entry) bool { return e.sym == far }
		if n, ok := counts[far]; ok && !slices.ContainsFunc(keep, isFar) {
			keep[len(keep)-1] = entry{far, n}
		}
	}

	out := make(map[huffman.Symbol]uint64, len(keep))
	for _, e := range keep {
		out[e.sym] = e.count
	}

	return out
}

func (b *Built) encodeTrail(t *builtTrail) []byte {
	w := bits.NewWriter()
	w.Write(0, 3)

	for i := range t.events {
		seq := t.events[i].symbols()
		for k := 0; k < len(seq); {
			if k+1 < len(seq) {
				if c, ok := b.Codes[huffman.Symbol{First: seq[k], Second: seq[k+1]}]; ok {
					w.Write(1, 1)
					w.Write(c.Bits, c.Len)
					k += 2
					continue
				}
			}
			if c, ok := b.Codes[huffman.Symbol{First: seq[k]}]; ok {
				w.Write(1, 1)
				w.Write(c.Bits, c.Len)
			} else {
				f := seq[k].Field()
				w.Write(0, 1)
				w.Write(uint64(f), b.Stats.FieldIDBits)
				w.Write(uint64(seq[k].Val()), b.Stats.FieldBits[f])
			}
			k++
		}
	}

	pad := (8 - w.Len()%8) % 8
	w.SetAt(0, pad, 3)

	return w.Bytes()
}

func encodeCodebook(codes map[huffman.Symbol]Code) []byte {
	buf := make([]byte, huffman.CodebookSize)
	for sym, c := range codes {
		for hi := uint64(0); hi < 1<<(huffman.CodeBits-c.Len); hi++ {
			e := buf[(c.Bits|hi<<c.Len)*huffman.EntrySize:]
			binary.LittleEndian.PutUint64(e, sym.Pack())
			binary.LittleEndian.PutUint32(e[8:], uint32(c.Len))
		}
	}

	return buf
}

// Write stores the database files in dir.
func (b *Built) Write(dir string) error {
	for name, data := range b.Files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return errors.Wrapf(err, "tdbtest: write %s", name)
		}
	}

	return nil
}

// NumFields returns the number of fields including the timestamp.
func (b *Built) NumFields() int {
	return len(b.fields) + 1
}

// Lookup returns the item of value in the named field.
func (b *Built) Lookup(field, value string) (item.Item, error) {
	f := slices.Index(b.fields, field) + 1
	if f == 0 {
		return 0, errors.Newf("tdbtest: unknown field %q", field)
	}
	v, ok := b.values[f][value]
	if !ok && value != "" {
		return 0, errors.Newf("tdbtest: unknown value %q in %s", value, field)
	}

	return item.Make(item.Field(f), v), nil
}

// Item is Lookup for values known to exist.
func (b *Built) Item(field, value string) item.Item {
	it, err := b.Lookup(field, value)
	if err != nil {
		panic(err)
	}

	return it
}

// Format renders it as field=value.
func (b *Built) Format(it item.Item) string {
	f := int(it.Field())
	if f == 0 || f > len(b.fields) || int(it.Val()) > len(b.lexicons[f]) {
		return fmt.Sprintf("?%d", uint32(it))
	}
	v := ""
	if it.Val() > 0 {
		v = b.lexicons[f][it.Val()-1]
	}

	return b.fields[f-1] + "=" + v
}

// Lexicon returns the values of field f in id order.
func (b *Built) Lexicon(f int) []string {
	return b.lexicons[f]
}

// Want predicts the decoder output for trail id.
func (b *Built) Want(id uint64, edge bool, f filter.Filter) []item.Item {
	out := []item.Item{}
	if id >= uint64(len(b.trails)) {
		return out
	}

	first := true
	for _, ev := range b.trails[id].events {
		start := len(out)
		out = append(out, item.Item(ev.timestamp))
		if edge {
			out = append(out, ev.changes...)
		}
		if !f.Match(ev.vector) {
			out = out[:start]
			continue
		}
		if !edge || first {
			out = append(out, ev.vector[1:]...)
			first = false
		}
		out = append(out, 0)
	}

	return out
}

func mkdir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
