package common

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// BloomFilter is a space-efficient probabilistic set used as an optional
// per-segment pre-filter ahead of a term lookup (see SPEC_FULL.md §4.8).
// A negative answer is certain; a positive answer only means "maybe" and
// must still be followed by the real skip-file lookup. It implements a
// fixed-size bit array with k hash functions.
//
// Adapted from the teacher's internal/common/bloom.go: same double-hash
// construction (CRC32 of the key, CRC32 of the reversed key as a second
// hash), but keyed on index terms instead of CSV cell values.
type BloomFilter struct {
	bits      []byte
	size      int
	hashCount int
}

// NewBloomFilter sizes a filter for n expected elements at the given
// false-positive rate, using the standard m = -n*ln(p)/ln(2)^2,
// k = (m/n)*ln(2) formulas.
func NewBloomFilter(n int, fpRate float64) *BloomFilter {
	if n < 1 {
		n = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}

	m := int(-float64(n) * math.Log(fpRate) / (math.Ln2 * math.Ln2))
	if m < 64 {
		m = 64
	}
	m = ((m + 7) / 8) * 8

	k := int(float64(m) / float64(n) * math.Ln2)
	if k < 1 {
		k = 1
	}
	if k > 10 {
		k = 10
	}

	return &BloomFilter{
		bits:      make([]byte, m/8),
		size:      m,
		hashCount: k,
	}
}

func (bf *BloomFilter) positions(key string) (h1, h2 uint32) {
	keyBytes := []byte(key)
	h1 = crc32.ChecksumIEEE(keyBytes)

	reversed := make([]byte, len(keyBytes))
	for i, b := range keyBytes {
		reversed[len(keyBytes)-1-i] = b
	}
	h2 = crc32.ChecksumIEEE(append(reversed, "salt"...))
	return h1, h2
}

// Add inserts key into the filter.
func (bf *BloomFilter) Add(key string) {
	h1, h2 := bf.positions(key)
	for i := 0; i < bf.hashCount; i++ {
		pos := (int(h1) + i*int(h2)) % bf.size
		if pos < 0 {
			pos += bf.size
		}
		bf.bits[pos/8] |= 1 << uint(pos%8)
	}
}

// MightContain reports false only when key is definitely absent.
func (bf *BloomFilter) MightContain(key string) bool {
	h1, h2 := bf.positions(key)
	for i := 0; i < bf.hashCount; i++ {
		pos := (int(h1) + i*int(h2)) % bf.size
		if pos < 0 {
			pos += bf.size
		}
		if bf.bits[pos/8]&(1<<uint(pos%8)) == 0 {
			return false
		}
	}
	return true
}

// Serialize encodes the filter as a 16-byte header (size, hashCount) plus
// the raw bit array.
func (bf *BloomFilter) Serialize() []byte {
	header := make([]byte, 16)
	binary.BigEndian.PutUint64(header[0:8], uint64(bf.size))
	binary.BigEndian.PutUint64(header[8:16], uint64(bf.hashCount))
	return append(header, bf.bits...)
}

// DeserializeBloom reverses Serialize. It returns an error on a truncated
// or otherwise invalid buffer rather than panicking, since callers treat
// a bad sidecar as absent rather than fatal (SPEC_FULL.md §4.8).
func DeserializeBloom(data []byte) (*BloomFilter, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("common: bloom sidecar too short (%d bytes)", len(data))
	}
	size := int(binary.BigEndian.Uint64(data[0:8]))
	hashCount := int(binary.BigEndian.Uint64(data[8:16]))
	if size <= 0 || hashCount <= 0 || len(data[16:]) != size/8 {
		return nil, fmt.Errorf("common: bloom sidecar header inconsistent with payload")
	}
	return &BloomFilter{
		bits:      data[16:],
		size:      size,
		hashCount: hashCount,
	}, nil
}
