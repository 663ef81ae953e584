// Package hrw implements rendezvous (highest random weight) hashing.
package hrw

import (
	"encoding/binary"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// Best returns the index of the bucket with the highest score for key among
// n buckets, or -1 if n <= 0. Growing n only moves keys onto the new buckets.
func Best(key string, n int, seed string) int {
	if n <= 0 {
		return -1
	}
	keyB := []byte(key)
	best, bestScore := 0, uint64(0)
	for i := 0; i < n; i++ {
		if s := score(keyB, i, seed); i == 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

func score(key []byte, bucket int, seed string) uint64 {
	// 8-byte digest => uint64 score
	h, _ := blake2b.New(8, nil)

	if seed != "" {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}
	h.Write(key)
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, int64(bucket), 10))

	return binary.BigEndian.Uint64(h.Sum(nil))
}
