package torus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	c := Configuration{{1, 0}, {0, 2}, {0, 1}}
	canon := c.Canonical()

	assert.Equal(t, Configuration{{0, 1}, {0, 2}, {1, 0}}, canon)
	assert.True(t, canon.IsCanonical())
	assert.False(t, c.IsCanonical())
	assert.Equal(t, Configuration{{1, 0}, {0, 2}, {0, 1}}, c, "input order must be preserved")

	canon[0][0] = 7
	assert.Equal(t, 0, c[2][0], "canonical form must not alias input")
}

func TestKey(t *testing.T) {
	a := Configuration{{0, 1}, {1, 0}}
	b := Configuration{{1, 0}, {0, 1}}

	assert.NotEqual(t, a.Key(), b.Key(), "key is order sensitive")
	assert.Equal(t, a.Canonical().Key(), b.Canonical().Key())
	assert.NotEqual(t, Configuration{{1, 2}}.Key(), Configuration{{1}, {2}}.Key())
	assert.NotEqual(t, Configuration{{-1}}.Key(), Configuration{{1}}.Key())
	assert.Equal(t, "", Configuration{}.Key())
}

func TestFingerprint(t *testing.T) {
	a := Configuration{{0, 1}, {1, 0}}
	b := Configuration{{1, 0}, {0, 1}}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), Configuration{{0, 0}, {1, 0}}.Fingerprint())
}

func TestPointsRoundTrip(t *testing.T) {
	m := [][]int{{1, 2}, {3, 4}}
	c := FromPoints(m)
	m[0][0] = 9
	assert.Equal(t, Configuration{{1, 2}, {3, 4}}, c)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, c.Points())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		config   Configuration
		sizes    []int
		expected error
	}{
		{"valid", Configuration{{0, 0}, {1, 1}}, []int{2, 2}, nil},
		{"empty", Configuration{}, []int{2, 2}, ErrEmptyConfiguration},
		{"no axes", Configuration{{}}, []int{}, ErrDimensionMismatch},
		{"zero size axis", Configuration{{0, 0}}, []int{2, 0}, ErrDegenerateAxis},
		{"negative size axis", Configuration{{0}}, []int{-1}, ErrDegenerateAxis},
		{"short point", Configuration{{0, 0}, {1}}, []int{2, 2}, ErrDimensionMismatch},
		{"long point", Configuration{{0, 0, 0}}, []int{2, 2}, ErrDimensionMismatch},
		{"coordinate too large", Configuration{{0, 2}}, []int{2, 2}, ErrOutOfBounds},
		{"negative coordinate", Configuration{{-1, 0}}, []int{2, 2}, ErrOutOfBounds},
		{"duplicate", Configuration{{1, 1}, {0, 0}, {1, 1}}, []int{2, 2}, ErrDuplicatePoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.config, tt.sizes)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
