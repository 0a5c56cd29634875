package torus

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Configuration is a set of marked points. Its canonical form has the points
// sorted lexicographically, so two configurations holding the same points
// compare equal whatever order they were listed in.
type Configuration []Point

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return nil
	}
	out := make(Configuration, len(c))
	for i, p := range c {
		out[i] = p.Clone()
	}
	return out
}

// Canonical returns a sorted deep copy of c.
func (c Configuration) Canonical() Configuration {
	out := c.Clone()
	out.Sort()
	return out
}

// Sort orders the points of c in place. Use it only on configurations that
// nothing else references; Canonical is the copying variant.
func (c Configuration) Sort() {
	slices.SortFunc(c, func(a, b Point) int { return a.Compare(b) })
}

// IsCanonical reports whether the points of c are already in sorted order.
func (c Configuration) IsCanonical() bool {
	return slices.IsSortedFunc(c, func(a, b Point) int { return a.Compare(b) })
}

// Equal reports whether c and o hold the same points in the same order.
// Compare canonical forms to test set equality.
func (c Configuration) Equal(o Configuration) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Key encodes c into a compact byte string that is equal for two
// configurations exactly when they are Equal. Callers canonicalize first
// when order should not matter.
func (c Configuration) Key() string {
	if len(c) == 0 {
		return ""
	}
	buf := make([]byte, 0, len(c)*(len(c[0])+1)*2)
	for _, p := range c {
		buf = binary.AppendUvarint(buf, uint64(len(p)))
		for _, v := range p {
			buf = binary.AppendVarint(buf, int64(v))
		}
	}
	return string(buf)
}

// Fingerprint returns a 64-bit hash of the canonical form of c. It is meant
// for logs and API payloads; collisions are possible, so it is never used
// to decide whether two configurations are equal.
func (c Configuration) Fingerprint() uint64 {
	key := c
	if !c.IsCanonical() {
		key = c.Canonical()
	}
	return xxhash.Sum64String(key.Key())
}

// Points returns c as a plain integer matrix.
func (c Configuration) Points() [][]int {
	out := make([][]int, len(c))
	for i, p := range c {
		out[i] = []int(p.Clone())
	}
	return out
}

// FromPoints builds a configuration from an integer matrix, copying rows.
func FromPoints(points [][]int) Configuration {
	out := make(Configuration, len(points))
	for i, p := range points {
		out[i] = Point(p).Clone()
	}
	return out
}
