package join

import (
	"github.com/roach88/joinkit/internal/ir"
)

// keyIndex maps the hash of an encoded join key to the positions of the
// entries carrying that key. Lookups return candidates only: callers
// re-check every candidate against the links, which also settles hash
// collisions.
type keyIndex[E any] struct {
	entries []E
	buckets map[uint64][]int
}

// buildIndex indexes entries by key. Entries without a key (a Null key
// column) stay in entries but are not reachable through lookup.
func buildIndex[E any](entries []E, key func(buf []byte, e E) ([]byte, bool)) *keyIndex[E] {
	idx := &keyIndex[E]{
		entries: entries,
		buckets: make(map[uint64][]int, len(entries)),
	}
	var buf []byte
	for i, e := range entries {
		var ok bool
		buf, ok = key(buf[:0], e)
		if !ok {
			continue
		}
		h := ir.HashKey(buf)
		idx.buckets[h] = append(idx.buckets[h], i)
	}
	return idx
}

// lookup returns the positions of entries whose key hashes like key.
func (idx *keyIndex[E]) lookup(key []byte) []int {
	return idx.buckets[ir.HashKey(key)]
}

// appendKey encodes the composite key of links, reading each value with
// value. It fails when any component is Null or not encodable.
func appendKey(buf []byte, links []ResolvedLink, value func(l ResolvedLink) ir.Value) ([]byte, bool) {
	for _, l := range links {
		var ok bool
		buf, ok = ir.AppendKey(buf, l.Domain, value(l))
		if !ok {
			return buf, false
		}
	}
	return buf, true
}
