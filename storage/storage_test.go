package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tdb/format"
	"github.com/arloliu/tdb/huffman"
	"github.com/arloliu/tdb/internal/tdbtest"
	"github.com/arloliu/tdb/section"
	"github.com/arloliu/tdb/storage"
)

func TestOpen(t *testing.T) {
	dir, b := tdbtest.Write(t, tdbtest.Random(1, 20, 3), tdbtest.Options{Codebook: true, Index: true})

	h, err := storage.Open(dir, storage.Config{})
	require.NoError(t, err)
	defer h.Close()

	require.Equal(t, b.Info, h.Info)
	require.Equal(t, []string{"time", "field1", "field2", "field3"}, h.Fields)
	require.Equal(t, 4, h.NumFields())
	require.NotNil(t, h.Index)
	require.Equal(t, b.Info.NumTrails, h.Trails.Len())
	require.Equal(t, b.Info.NumTrails, h.Identifiers.Len())
	require.Equal(t, b.Stats, h.Stats)

	for f := 1; f < h.NumFields(); f++ {
		require.Equal(t, uint32(len(b.Lexicon(f))), h.Lexicons[f].Size())
	}
	for _, file := range h.Files() {
		require.Equal(t, format.CompressionNone, file.Compression)
	}
}

func TestOpenWithoutIndex(t *testing.T) {
	dir, _ := tdbtest.Write(t, tdbtest.Random(2, 5, 1), tdbtest.Options{})

	h, err := storage.Open(dir, storage.Config{})
	require.NoError(t, err)
	require.Nil(t, h.Index)
	require.NoError(t, h.Close())
}

func TestOpenSkipIndex(t *testing.T) {
	dir, _ := tdbtest.Write(t, tdbtest.Random(2, 5, 1), tdbtest.Options{Index: true})

	h, err := storage.Open(dir, storage.Config{SkipIndex: true})
	require.NoError(t, err)
	require.Nil(t, h.Index)
	require.NoError(t, h.Close())
}

func TestOpenMissingMandatory(t *testing.T) {
	mandatory := []string{
		section.InfoFile,
		section.FieldsFile,
		section.LexiconFile("field1"),
		section.CookiesFile,
		section.CodebookFile,
		section.TrailsFile,
	}

	for _, name := range mandatory {
		t.Run(name, func(t *testing.T) {
			dir, _ := tdbtest.Write(t, tdbtest.Random(3, 5, 2), tdbtest.Options{})
			require.NoError(t, os.Remove(filepath.Join(dir, name)))

			h, err := storage.Open(dir, storage.Config{})
			require.Error(t, err)
			require.ErrorIs(t, err, os.ErrNotExist)
			require.Nil(t, h)
		})
	}
}

func TestOpenMalformed(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want error
	}{
		{"info", section.InfoFile, []byte("1 2"), section.ErrInvalidInfo},
		{"codebook", section.CodebookFile, make([]byte, 10), huffman.ErrInvalidCodebook},
		{"trails", section.TrailsFile, []byte{1}, section.ErrInvalidOffsets},
		{"fields", section.FieldsFile, []byte("a\n\nb\n"), section.ErrInvalidFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, _ := tdbtest.Write(t, tdbtest.Random(4, 5, 2), tdbtest.Options{})
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), tt.data, 0o644))

			h, err := storage.Open(dir, storage.Config{})
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, h)
		})
	}
}

func TestOpenSidecars(t *testing.T) {
	opts := tdbtest.Options{
		Codebook: true,
		Index:    true,
		Compress: map[string]format.CompressionType{
			section.TrailsFile:            format.CompressionZstd,
			section.CodebookFile:          format.CompressionS2,
			section.LexiconFile("field1"): format.CompressionLZ4,
			section.CookiesFile:           format.CompressionSnappy,
		},
	}
	dir, b := tdbtest.Write(t, tdbtest.Random(5, 30, 2), opts)

	_, err := storage.Open(dir, storage.Config{})
	require.ErrorIs(t, err, os.ErrNotExist)

	h, err := storage.Open(dir, storage.Config{Sidecars: true})
	require.NoError(t, err)
	defer h.Close()

	require.Equal(t, b.Info.NumTrails, h.Trails.Len())
	got := map[string]format.CompressionType{}
	for _, f := range h.Files() {
		if f.Compression != format.CompressionNone {
			require.False(t, f.Mapped)
			got[f.Name] = f.Compression
		}
	}
	require.Equal(t, opts.Compress, got)
}

func TestCloseTwice(t *testing.T) {
	dir, _ := tdbtest.Write(t, tdbtest.FirstSatisfying(), tdbtest.Options{})

	h, err := storage.Open(dir, storage.Config{})
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}
