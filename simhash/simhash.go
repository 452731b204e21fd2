// Package simhash computes 64-bit SimHash fingerprints, used to measure how
// far a page's mobile markup drifts from its desktop markup.
package simhash

import (
	"hash/fnv"
	"math/bits"
)

// fold hashes each token with FNV-64a and accumulates per-bit votes into a
// SimHash. No tokens yields 0.
func fold(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var votes [64]int
	h := fnv.New64a()
	for _, tok := range tokens {
		h.Reset()
		h.Write([]byte(tok))
		sum := h.Sum64()
		for i := range votes {
			if sum&(1<<uint(i)) != 0 {
				votes[i]++
			} else {
				votes[i]--
			}
		}
	}

	var fp uint64
	for i, v := range votes {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
