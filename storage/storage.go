// Package storage opens a database directory and exposes its sections as
// read-only views over mapped memory.
package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/arloliu/tdb/compress"
	"github.com/arloliu/tdb/format"
	"github.com/arloliu/tdb/huffman"
	"github.com/arloliu/tdb/ident"
	"github.com/arloliu/tdb/internal/mmap"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/section"
)

// Config controls how a directory is opened.
type Config struct {
	Logger log.Logger
	// SkipIndex ignores cookies.index even when present.
	SkipIndex bool
	// Sidecars allows compressed files (see package compress) to stand in
	// for missing plain files.
	Sidecars bool
}

// File describes one loaded file.
type File struct {
	Name        string
	Size        int
	Mapped      bool
	Compression format.CompressionType
}

// Handle owns every region of an open database. All views stay valid
// until Close.
type Handle struct {
	Dir  string
	Info section.Info
	// Fields holds the field names by id; Fields[0] is the timestamp.
	Fields []string
	// Lexicons holds the lexicon of each field by id; Lexicons[0] is empty.
	Lexicons    []section.Lexicon
	Identifiers ident.Table
	// Index is nil when the directory has no identifier index.
	Index    *ident.Index
	Codebook huffman.Codebook
	Trails   section.Offsets
	Stats    *huffman.FieldStats

	files     []File
	regions   []*mmap.Region
	closeOnce sync.Once
	closeErr  error
}

// Open opens the database in dir. On failure nothing stays mapped.
func Open(dir string, cfg Config) (*Handle, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}

	h := &Handle{Dir: dir}
	if err := h.load(cfg); err != nil {
		return nil, errors.CombineErrors(err, h.release())
	}

	level.Debug(cfg.Logger).Log("msg", "opened database", "dir", dir,
		"trails", h.Info.NumTrails, "events", h.Info.NumEvents,
		"fields", len(h.Fields), "index", h.Index != nil)

	return h, nil
}

func (h *Handle) load(cfg Config) error {
	data, err := h.open(section.InfoFile, cfg)
	if err != nil {
		return err
	}
	if h.Info, err = section.ParseInfo(data); err != nil {
		return err
	}

	if data, err = h.open(section.FieldsFile, cfg); err != nil {
		return err
	}
	names, err := section.ParseFields(data)
	if err != nil {
		return err
	}
	h.Fields = append([]string{item.TimestampFieldName}, names...)

	h.Lexicons = make([]section.Lexicon, len(h.Fields))
	sizes := make([]uint64, len(names))
	for i, name := range names {
		if data, err = h.open(section.LexiconFile(name), cfg); err != nil {
			return err
		}
		lex, err := section.NewLexicon(data)
		if err != nil {
			return errors.Wrapf(err, "field %s", name)
		}
		h.Lexicons[i+1] = lex
		sizes[i] = uint64(lex.Size())
	}
	h.Stats = huffman.NewFieldStats(sizes, h.Info.MaxTimestampDelta)

	if data, err = h.open(section.CookiesFile, cfg); err != nil {
		return err
	}
	if h.Identifiers, err = ident.NewTable(data, h.Info.NumTrails); err != nil {
		return err
	}

	if !cfg.SkipIndex {
		data, err = h.open(section.IndexFile, cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			level.Info(cfg.Logger).Log("msg", "no identifier index, using linear lookup", "dir", h.Dir)
		case err != nil:
			return err
		default:
			if h.Index, err = ident.NewIndex(data, h.Info.NumTrails); err != nil {
				return err
			}
		}
	}

	if data, err = h.open(section.CodebookFile, cfg); err != nil {
		return err
	}
	if h.Codebook, err = huffman.NewCodebook(data); err != nil {
		return err
	}

	if data, err = h.open(section.TrailsFile, cfg); err != nil {
		return err
	}
	h.Trails, err = section.NewOffsets(data, h.Info.NumTrails)

	return err
}

// open maps name, falling back to a compressed sidecar when allowed.
func (h *Handle) open(name string, cfg Config) ([]byte, error) {
	path := filepath.Join(h.Dir, name)

	r, err := mmap.Open(path)
	if err == nil {
		h.track(name, r, format.CompressionNone)
		level.Debug(cfg.Logger).Log("msg", "mapped file", "file", name, "bytes", len(r.Bytes()), "mapped", r.Mapped())

		return r.Bytes(), nil
	}
	if !errors.Is(err, fs.ErrNotExist) || !cfg.Sidecars {
		return nil, errors.Wrapf(err, "open %s", name)
	}

	for _, typ := range format.SidecarTypes {
		packed, rerr := os.ReadFile(path + typ.Extension())
		if errors.Is(rerr, fs.ErrNotExist) {
			continue
		}
		if rerr != nil {
			return nil, errors.Wrapf(rerr, "open %s", name+typ.Extension())
		}

		data, derr := compress.Decompress(typ, packed)
		if derr != nil {
			return nil, errors.Wrapf(derr, "open %s", name+typ.Extension())
		}
		h.track(name, mmap.FromBytes(data), typ)
		level.Debug(cfg.Logger).Log("msg", "loaded compressed file", "file", name+typ.Extension(),
			"packed", len(packed), "bytes", len(data))

		return data, nil
	}

	return nil, errors.Wrapf(err, "open %s", name)
}

func (h *Handle) track(name string, r *mmap.Region, typ format.CompressionType) {
	h.regions = append(h.regions, r)
	h.files = append(h.files, File{Name: name, Size: len(r.Bytes()), Mapped: r.Mapped(), Compression: typ})
}

// Files lists the loaded files in load order.
func (h *Handle) Files() []File {
	return h.files
}

// NumFields returns the number of fields including the timestamp.
func (h *Handle) NumFields() int {
	return len(h.Fields)
}

func (h *Handle) release() error {
	var err error
	for _, r := range h.regions {
		err = errors.CombineErrors(err, r.Close())
	}
	h.regions = nil

	return err
}

// Close unmaps every region. Only the first call has an effect.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closeErr = h.release()
	})

	return h.closeErr
}
