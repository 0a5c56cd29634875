package torus

import (
	"strconv"
	"strings"
)

// Point is an ordered tuple of grid coordinates.
type Point []int

// Clone returns a copy of p that shares no memory with it.
func (p Point) Clone() Point {
	if p == nil {
		return nil
	}
	return append(Point(nil), p...)
}

// Equal reports whether p and q have the same coordinates.
func (p Point) Equal(q Point) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Compare orders points lexicographically by coordinate. A shorter point
// that is a prefix of a longer one sorts first.
func (p Point) Compare(q Point) int {
	n := len(p)
	if len(q) < n {
		n = len(q)
	}
	for i := 0; i < n; i++ {
		switch {
		case p[i] < q[i]:
			return -1
		case p[i] > q[i]:
			return 1
		}
	}
	switch {
	case len(p) < len(q):
		return -1
	case len(p) > len(q):
		return 1
	}
	return 0
}

func (p Point) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = strconv.Itoa(c)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// AreNeighbors reports whether p1 and p2 differ in exactly one coordinate and
// that coordinate differs by exactly 1. Wraparound is not applied.
func AreNeighbors(p1, p2 Point) bool {
	if len(p1) != len(p2) {
		return false
	}
	byStep := false
	for i := range p1 {
		if p1[i] == p2[i] {
			continue
		}
		d := p1[i] - p2[i]
		if byStep || (d != 1 && d != -1) {
			return false
		}
		byStep = true
	}
	return byStep
}

// CountNeighborPairs counts ordered pairs of neighboring points in c, so every
// unordered neighbor pair contributes 2.
func CountNeighborPairs(c Configuration) int {
	n := 0
	for _, p1 := range c {
		for _, p2 := range c {
			if AreNeighbors(p1, p2) {
				n++
			}
		}
	}
	return n
}
