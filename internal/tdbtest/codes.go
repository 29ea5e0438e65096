package tdbtest

import (
	"container/heap"
	"slices"

	"github.com/arloliu/tdb/huffman"
)

type node struct {
	freq        uint64
	order       int
	leaf        int
	left, right *node
}

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].order < h[j].order
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// codeLengths returns Huffman code lengths no longer than CodeBits,
// flattening the frequencies until the tree is shallow enough.
func codeLengths(freqs []uint64) []uint {
	lens := make([]uint, len(freqs))
	if len(freqs) == 1 {
		lens[0] = 1
		return lens
	}

	freqs = slices.Clone(freqs)
	for {
		h := make(nodeHeap, 0, len(freqs))
		for i, f := range freqs {
			h = append(h, &node{freq: f, order: i, leaf: i})
		}
		heap.Init(&h)

		next := len(freqs)
		for h.Len() > 1 {
			a, _ := heap.Pop(&h).(*node)
			b, _ := heap.Pop(&h).(*node)
			heap.Push(&h, &node{freq: a.freq + b.freq, order: next, leaf: -1, left: a, right: b})
			next++
		}

		if depth(h[0], 0, lens) <= huffman.CodeBits {
			return lens
		}
		for i := range freqs {
			freqs[i] = freqs[i]/2 + 1
		}
	}
}

func depth(n *node, d uint, lens []uint) uint {
	if n.leaf >= 0 {
		lens[n.leaf] = d
		return d
	}

	return max(depth(n.left, d+1, lens), depth(n.right, d+1, lens))
}

// assignCodes builds canonical codes for the counted symbols and returns
// them bit-reversed into stream order.
func assignCodes(counts map[huffman.Symbol]uint64) map[huffman.Symbol]Code {
	codes := make(map[huffman.Symbol]Code, len(counts))
	if len(counts) == 0 {
		return codes
	}

	syms := make([]huffman.Symbol, 0, len(counts))
	for sym := range counts {
		syms = append(syms, sym)
	}
	slices.SortFunc(syms, func(a, b huffman.Symbol) int {
		switch {
		case a.Pack() < b.Pack():
			return -1
		case a.Pack() > b.Pack():
			return 1
		}
		return 0
	})

	freqs := make([]uint64, len(syms))
	for i, sym := range syms {
		freqs[i] = counts[sym]
	}
	lens := codeLengths(freqs)

	order := make([]int, len(syms))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return int(lens[a]) - int(lens[b])
	})

	var code uint64
	for k, s := range order {
		if k > 0 {
			code = (code + 1) << (lens[s] - lens[order[k-1]])
		}
		codes[syms[s]] = Code{Bits: reverse(code, lens[s]), Len: lens[s]}
	}

	return codes
}

func reverse(code uint64, n uint) uint64 {
	var r uint64
	for range n {
		r = r<<1 | code&1
		code >>= 1
	}

	return r
}
