package torus

// RowKey drops the coordinate at axis and returns the rest in order.
func RowKey(p Point, axis int) Point {
	row := make(Point, 0, len(p)-1)
	row = append(row, p[:axis]...)
	return append(row, p[axis+1:]...)
}

// InRow reports whether p lies on row when the row runs along axis.
func InRow(p Point, row Point, axis int) bool {
	if len(p) != len(row)+1 {
		return false
	}
	for i, j := 0, 0; i < len(p); i++ {
		if i == axis {
			continue
		}
		if p[i] != row[j] {
			return false
		}
		j++
	}
	return true
}

// ShiftCoordinate moves value by a single step (+1 or -1) on a ring of
// axisSize cells. Larger steps are not supported.
func ShiftCoordinate(value, axisSize, step int) int {
	v := value + step
	if v < 0 {
		return axisSize - 1
	}
	if v == axisSize {
		return 0
	}
	return v
}

// ShiftRow returns a copy of c in which every point on row (along axis) has
// its axis coordinate moved by step. c is left untouched.
func ShiftRow(c Configuration, row Point, axis int, sizes []int, step int) Configuration {
	out := make(Configuration, len(c))
	for i, p := range c {
		q := p.Clone()
		if InRow(p, row, axis) {
			q[axis] = ShiftCoordinate(q[axis], sizes[axis], step)
		}
		out[i] = q
	}
	return out
}

// NextRow advances row as a mixed-radix counter over sizes, least
// significant position first, and returns it. The row is updated in place.
// Repeated calls starting from the zero row visit every row exactly once
// before returning to zero.
func NextRow(row Point, sizes []int) Point {
	for i := range sizes {
		if row[i]+1 == sizes[i] {
			row[i] = 0
			continue
		}
		row[i]++
		break
	}
	return row
}

// SizesWithout returns sizes with the entry at axis removed.
func SizesWithout(sizes []int, axis int) []int {
	out := make([]int, 0, len(sizes)-1)
	out = append(out, sizes[:axis]...)
	return append(out, sizes[axis+1:]...)
}

// RowCount returns the number of distinct rows running along axis.
func RowCount(sizes []int, axis int) int {
	n := 1
	for i, s := range sizes {
		if i != axis {
			n *= s
		}
	}
	return n
}
