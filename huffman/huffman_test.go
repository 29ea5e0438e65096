package huffman_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tdb/huffman"
	"github.com/arloliu/tdb/internal/bits"
	"github.com/arloliu/tdb/internal/tdbtest"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/section"
)

func TestSymbolPacking(t *testing.T) {
	s := huffman.Symbol{First: item.Make(0, 17), Second: item.Make(3, 5)}
	require.True(t, s.HasSecond())
	require.Equal(t, s, huffman.Unpack(s.Pack()))

	single := huffman.Symbol{First: item.Make(2, 1)}
	require.False(t, single.HasSecond())
	require.Equal(t, uint64(single.First), single.Pack())
}

func TestNewCodebookSize(t *testing.T) {
	_, err := huffman.NewCodebook(make([]byte, huffman.CodebookSize-1))
	require.ErrorIs(t, err, huffman.ErrInvalidCodebook)

	_, err = huffman.NewCodebook(make([]byte, huffman.CodebookSize))
	require.NoError(t, err)
}

func TestNewFieldStats(t *testing.T) {
	fs := huffman.NewFieldStats([]uint64{0, 1, 255, 256}, 1000)
	require.Equal(t, uint(3), fs.FieldIDBits)
	require.Equal(t, []uint{10, 1, 1, 8, 9}, fs.FieldBits)
}

func TestDecodeLiteral(t *testing.T) {
	book, err := huffman.NewCodebook(make([]byte, huffman.CodebookSize))
	require.NoError(t, err)
	fs := huffman.NewFieldStats([]uint64{5, 300}, 90)

	w := bits.NewWriter()
	w.Write(0b101, 3) // unrelated prefix
	w.Write(0, 1)
	w.Write(2, fs.FieldIDBits)
	w.Write(299, fs.FieldBits[2])
	w.Write(0, 1)
	w.Write(0, fs.FieldIDBits)
	w.Write(77, fs.FieldBits[0])

	data := w.Bytes()
	sym, offs := huffman.Decode(book, data, 3, fs)
	require.Equal(t, huffman.Symbol{First: item.Make(2, 299)}, sym)
	require.Equal(t, uint64(3+1+fs.FieldIDBits+fs.FieldBits[2]), offs)

	sym, offs = huffman.Decode(book, data, offs, fs)
	require.Equal(t, huffman.Symbol{First: item.Make(0, 77)}, sym)
	require.Equal(t, w.Len(), offs)
}

func TestDecodeUnknownField(t *testing.T) {
	book, err := huffman.NewCodebook(make([]byte, huffman.CodebookSize))
	require.NoError(t, err)
	// two fields need 2 id bits, so id 3 names no field
	fs := huffman.NewFieldStats([]uint64{4}, 10)

	w := bits.NewWriter()
	w.Write(0, 1)
	w.Write(3, fs.FieldIDBits)

	sym, offs := huffman.Decode(book, w.Bytes(), 0, fs)
	require.Equal(t, huffman.Symbol{}, sym)
	require.Equal(t, huffman.EndOfStream, offs)
}

func TestDecodeCodes(t *testing.T) {
	b, err := tdbtest.Build(tdbtest.Random(17, 100, 3), tdbtest.Options{Codebook: true})
	require.NoError(t, err)
	require.NotEmpty(t, b.Codes)

	book, err := huffman.NewCodebook(b.Files[section.CodebookFile])
	require.NoError(t, err)

	for sym, c := range b.Codes {
		w := bits.NewWriter()
		w.Write(1, 1)
		w.Write(c.Bits, c.Len)

		got, offs := huffman.Decode(book, w.Bytes(), 0, b.Stats)
		require.Equal(t, sym, got)
		require.Equal(t, uint64(1+c.Len), offs)
	}
}

func BenchmarkDecode(b *testing.B) {
	built, err := tdbtest.Build(tdbtest.Random(17, 100, 3), tdbtest.Options{Codebook: true})
	require.NoError(b, err)
	book, err := huffman.NewCodebook(built.Files[section.CodebookFile])
	require.NoError(b, err)

	w := bits.NewWriter()
	for _, c := range built.Codes {
		w.Write(1, 1)
		w.Write(c.Bits, c.Len)
	}
	data, end := w.Bytes(), w.Len()

	for b.Loop() {
		for offs := uint64(0); offs < end; {
			_, offs = huffman.Decode(book, data, offs, built.Stats)
		}
	}
}
