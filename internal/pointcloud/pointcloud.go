// Package pointcloud reads and writes point files: whitespace-separated
// integer matrices with one point per line. A point file may carry a
// parameter column that marks which points take part in a search.
package pointcloud

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrEmptyInput is returned when a point file holds no points.
	ErrEmptyInput = errors.New("pointcloud: no points")
	// ErrRaggedRow is returned when rows have different lengths.
	ErrRaggedRow = errors.New("pointcloud: ragged row")
	// ErrBadValue is returned when a field is not an integer.
	ErrBadValue = errors.New("pointcloud: invalid value")
	// ErrColumnIndex is returned when a parameter column index is out of range.
	ErrColumnIndex = errors.New("pointcloud: column index out of range")
)

// Column identifies a parameter column and the value that marks a point.
type Column struct {
	Index int `json:"index" yaml:"index"`
	Value int `json:"value" yaml:"value"`
}

// Read parses a point matrix. Blank lines are skipped; every other line must
// have the same number of integer fields.
func Read(r io.Reader) ([][]int, error) {
	var points [][]int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		p := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d field %d: %q", ErrBadValue, line, i+1, f)
			}
			p[i] = v
		}
		if len(points) > 0 && len(p) != len(points[0]) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrRaggedRow, line, len(p), len(points[0]))
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	return points, nil
}

// ReadFile reads a point matrix from path.
func ReadFile(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Write writes one point per line. When col is not nil its value is inserted
// at col.Index in every written row; points is not modified.
func Write(w io.Writer, points [][]int, col *Column) error {
	bw := bufio.NewWriter(w)
	for _, p := range points {
		row := p
		if col != nil {
			var err error
			if row, err = InsertColumn(p, *col); err != nil {
				return err
			}
		}
		for i, v := range row {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.Itoa(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes a point matrix to path, replacing any existing file.
func WriteFile(path string, points [][]int, col *Column) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, points, col); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// InsertColumn returns a copy of p with col.Value inserted at col.Index.
func InsertColumn(p []int, col Column) ([]int, error) {
	if col.Index < 0 || col.Index > len(p) {
		return nil, fmt.Errorf("%w: %d for row of %d", ErrColumnIndex, col.Index, len(p))
	}
	out := make([]int, 0, len(p)+1)
	out = append(out, p[:col.Index]...)
	out = append(out, col.Value)
	return append(out, p[col.Index:]...), nil
}

// Dimensions returns the per-axis extent (maximum coordinate plus one) of
// points, leaving out the parameter column when paramIndex is not negative.
func Dimensions(points [][]int, paramIndex int) ([]int, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	width := len(points[0])
	if paramIndex >= width {
		return nil, fmt.Errorf("%w: %d for rows of %d", ErrColumnIndex, paramIndex, width)
	}
	maxes := append([]int(nil), points[0]...)
	for _, p := range points[1:] {
		if len(p) != width {
			return nil, fmt.Errorf("%w: %d fields, want %d", ErrRaggedRow, len(p), width)
		}
		for j, v := range p {
			maxes[j] = max(maxes[j], v)
		}
	}
	dims := make([]int, 0, width)
	for j, m := range maxes {
		if j != paramIndex {
			dims = append(dims, m+1)
		}
	}
	return dims, nil
}

// Filter returns copies of the points whose parameter column equals
// col.Value, with that column removed. The input is not modified.
func Filter(points [][]int, col Column) ([][]int, error) {
	var out [][]int
	for i, p := range points {
		if col.Index < 0 || col.Index >= len(p) {
			return nil, fmt.Errorf("%w: %d for row %d of %d fields", ErrColumnIndex, col.Index, i, len(p))
		}
		if p[col.Index] != col.Value {
			continue
		}
		q := make([]int, 0, len(p)-1)
		q = append(q, p[:col.Index]...)
		out = append(out, append(q, p[col.Index+1:]...))
	}
	return out, nil
}
