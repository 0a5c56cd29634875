package pointcloud

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRead(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [][]int
		err      error
	}{
		{
			name:     "simple",
			input:    "1 0 0\n0 1 0\n1 1 1\n",
			expected: [][]int{{1, 0, 0}, {0, 1, 0}, {1, 1, 1}},
		},
		{
			name:     "extra whitespace and blank lines",
			input:    "  1\t2 \n\n3   4\n\n",
			expected: [][]int{{1, 2}, {3, 4}},
		},
		{
			name:     "negative values",
			input:    "-1 2\n",
			expected: [][]int{{-1, 2}},
		},
		{
			name:     "no trailing newline",
			input:    "5 6",
			expected: [][]int{{5, 6}},
		},
		{name: "empty", input: "", err: ErrEmptyInput},
		{name: "only blank lines", input: "\n \n", err: ErrEmptyInput},
		{name: "ragged", input: "1 2\n3\n", err: ErrRaggedRow},
		{name: "not a number", input: "1 x\n", err: ErrBadValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWriteGolden(t *testing.T) {
	points := [][]int{{0, 0}, {1, 0}, {2, 1}}

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, points, nil))
		newGoldie(t).Assert(t, "plain", buf.Bytes())
	})

	t.Run("with parameter column", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, points, &Column{Index: 0, Value: 1}))
		newGoldie(t).Assert(t, "with_param", buf.Bytes())
	})

	t.Run("parameter column last", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, points, &Column{Index: 2, Value: 7}))
		newGoldie(t).Assert(t, "param_last", buf.Bytes())
	})

	assert.Equal(t, [][]int{{0, 0}, {1, 0}, {2, 1}}, points, "write must not modify points")
}

func TestWriteBadColumn(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, [][]int{{1, 2}}, &Column{Index: 3, Value: 1})
	assert.ErrorIs(t, err, ErrColumnIndex)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.txt")
	points := [][]int{{3, 1}, {0, 2}}

	require.NoError(t, WriteFile(path, points, &Column{Index: 1, Value: 9}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3 9 1\n0 9 2\n", string(raw))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{3, 9, 1}, {0, 9, 2}}, got)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDimensions(t *testing.T) {
	points := [][]int{
		{1, 0, 0},
		{0, 2, 1},
		{1, 1, 3},
	}

	dims, err := Dimensions(points, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, dims)

	dims, err = Dimensions(points, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, dims)

	_, err = Dimensions(points, 3)
	assert.ErrorIs(t, err, ErrColumnIndex)

	_, err = Dimensions(nil, 0)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Dimensions([][]int{{1, 2}, {1}}, 0)
	assert.ErrorIs(t, err, ErrRaggedRow)
}

func TestFilter(t *testing.T) {
	points := [][]int{
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 1},
	}

	got, err := Filter(points, Column{Index: 0, Value: 1})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 0}, {1, 1}}, got)
	assert.Equal(t, []int{1, 0, 0}, points[0], "input must not be modified")

	got, err = Filter(points, Column{Index: 2, Value: 5})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Filter(points, Column{Index: 3, Value: 1})
	assert.ErrorIs(t, err, ErrColumnIndex)
}

func TestInsertColumn(t *testing.T) {
	p := []int{4, 5}
	got, err := InsertColumn(p, Column{Index: 1, Value: 0})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0, 5}, got)
	assert.Equal(t, []int{4, 5}, p)

	_, err = InsertColumn(p, Column{Index: -1})
	assert.ErrorIs(t, err, ErrColumnIndex)
}
