package bits

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	data := []byte{0b1010_1101, 0b0000_0001, 0xFF}

	tests := []struct {
		name   string
		offset uint64
		n      uint
		want   uint64
	}{
		{"low three bits", 0, 3, 0b101},
		{"first byte", 0, 8, 0b1010_1101},
		{"straddles bytes", 4, 8, 0b0001_1010},
		{"tail zero filled", 16, 16, 0xFF},
		{"past end", 64, 8, 0},
		{"single bit", 2, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Read(data, tt.offset, tt.n))
		})
	}
}

func TestReadMatchesBitByBit(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := make([]byte, 64)
	rng.Read(data)

	ref := func(buf []byte, offset uint64, n uint) uint64 {
		var v uint64
		for i := uint(0); i < n; i++ {
			pos := offset + uint64(i)
			if pos/8 >= uint64(len(buf)) {
				break
			}
			v |= uint64(buf[pos/8]>>(pos%8)&1) << i
		}

		return v
	}

	for offset := uint64(0); offset < 8*64; offset += 5 {
		for _, n := range []uint{1, 3, 8, 16, 24, 32, MaxRead} {
			require.Equal(t, ref(data, offset, n), Read(data, offset, n), "offset %d n %d", offset, n)
		}
	}
}

func TestNeeded(t *testing.T) {
	require.Equal(t, uint(1), Needed(0))
	require.Equal(t, uint(1), Needed(1))
	require.Equal(t, uint(2), Needed(2))
	require.Equal(t, uint(2), Needed(3))
	require.Equal(t, uint(8), Needed(255))
	require.Equal(t, uint(9), Needed(256))
	require.Equal(t, uint(24), Needed(1<<24-1))
}

func TestWriterRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	type field struct {
		v uint64
		n uint
	}
	var fields []field
	w := NewWriter()
	for range 500 {
		n := uint(rng.Intn(32) + 1)
		v := rng.Uint64() & (1<<n - 1)
		fields = append(fields, field{v, n})
		w.Write(v, n)
	}

	data := w.Bytes()
	require.Equal(t, Len(w.Len()), uint64(len(data)))

	var offset uint64
	for _, f := range fields {
		require.Equal(t, f.v, Read(data, offset, f.n))
		offset += uint64(f.n)
	}
}

func TestWriterSetAt(t *testing.T) {
	w := NewWriter()
	w.Write(0, 3)
	w.Write(0xABC, 12)
	w.SetAt(0, 5, 3)

	require.Equal(t, uint64(5), Read(w.Bytes(), 0, 3))
	require.Equal(t, uint64(0xABC), Read(w.Bytes(), 3, 12))
}
