package tdbtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tdb/huffman"
	"github.com/arloliu/tdb/item"
	"github.com/arloliu/tdb/section"
)

func TestCodeLengthsBounded(t *testing.T) {
	// Fibonacci frequencies produce the deepest possible tree.
	freqs := []uint64{1, 1}
	for len(freqs) < 40 {
		freqs = append(freqs, freqs[len(freqs)-1]+freqs[len(freqs)-2])
	}

	lens := codeLengths(freqs)
	kraft := 0.0
	for _, l := range lens {
		require.LessOrEqual(t, l, uint(huffman.CodeBits))
		require.Positive(t, l)
		kraft += 1 / float64(uint64(1)<<l)
	}
	require.LessOrEqual(t, kraft, 1.0)
}

func TestCodesArePrefixFree(t *testing.T) {
	counts := map[huffman.Symbol]uint64{}
	for v := range 300 {
		counts[huffman.Symbol{First: item.Make(1, item.Val(v+1))}] = uint64(v%17 + 1)
	}

	codes := assignCodes(counts)
	require.Len(t, codes, len(counts))

	book, err := huffman.NewCodebook(encodeCodebook(codes))
	require.NoError(t, err)
	for sym, c := range codes {
		got, n := book.Entry(c.Bits)
		require.Equal(t, sym, got)
		require.Equal(t, uint32(c.Len), n)
	}
}

func TestSingleCode(t *testing.T) {
	sym := huffman.Symbol{First: item.Make(0, item.Val(item.FarTimeDelta))}
	codes := assignCodes(map[huffman.Symbol]uint64{sym: 3})
	require.Equal(t, Code{Bits: 0, Len: 1}, codes[sym])
}

func TestBuildInfo(t *testing.T) {
	b, err := Build(FirstSatisfying(), Options{Codebook: true, Index: true})
	require.NoError(t, err)

	require.Equal(t, section.Info{
		NumTrails:         1,
		NumEvents:         5,
		MinTimestamp:      100,
		MaxTimestamp:      104,
		MaxTimestampDelta: 1,
	}, b.Info)
	require.Equal(t, []string{"A", "B"}, b.Lexicon(1))
	require.Equal(t, []string{"X", "Y"}, b.Lexicon(2))
	require.Contains(t, b.Files, section.IndexFile)
	require.Equal(t, "f2=Y", b.Format(b.Item("f2", "Y")))
}

func TestBuildErrors(t *testing.T) {
	db := DB{Fields: []string{"a"}, Trails: []Trail{{Events: []Event{
		{Timestamp: 10}, {Timestamp: 5},
	}}}}
	_, err := Build(db, Options{})
	require.ErrorContains(t, err, "before")

	db = DB{Fields: []string{"a"}, Trails: []Trail{{Events: []Event{
		{Timestamp: 10, Values: []string{"x", "y"}},
	}}}}
	_, err = Build(db, Options{})
	require.ErrorContains(t, err, "values")

	db = DB{Fields: []string{"a"}, Trails: []Trail{{ID: ID(1)}, {ID: ID(1)}}}
	_, err = Build(db, Options{Index: true})
	require.Error(t, err)
}

func TestWantFirstSatisfying(t *testing.T) {
	b, err := Build(FirstSatisfying(), Options{})
	require.NoError(t, err)

	a, bb := b.Item("f1", "A"), b.Item("f1", "B")
	x, y := b.Item("f2", "X"), b.Item("f2", "Y")

	require.Equal(t, []item.Item{
		100, a, x, a, x, 0,
		101, y, 0,
		102, bb, x, 0,
		103, y, 0,
		104, 0,
	}, b.Want(0, true, nil))
	require.Empty(t, b.Want(1, false, nil))
}
