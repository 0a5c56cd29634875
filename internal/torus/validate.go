package torus

import "fmt"

// Validate checks that c can be searched on a grid of the given sizes. It
// returns an error wrapping one of the package's sentinel errors.
func Validate(c Configuration, sizes []int) error {
	if len(c) == 0 {
		return ErrEmptyConfiguration
	}
	if len(sizes) == 0 {
		return fmt.Errorf("%w: grid has no axes", ErrDimensionMismatch)
	}
	for axis, s := range sizes {
		if s < 1 {
			return fmt.Errorf("%w: axis %d has size %d", ErrDegenerateAxis, axis, s)
		}
	}
	seen := make(map[string]struct{}, len(c))
	for i, p := range c {
		if len(p) != len(sizes) {
			return fmt.Errorf("%w: point %d has %d coordinates, grid has %d axes",
				ErrDimensionMismatch, i, len(p), len(sizes))
		}
		for axis, v := range p {
			if v < 0 || v >= sizes[axis] {
				return fmt.Errorf("%w: point %d coordinate %d is %d, want [0, %d)",
					ErrOutOfBounds, i, axis, v, sizes[axis])
			}
		}
		key := Configuration{p}.Key()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePoint, p)
		}
		seen[key] = struct{}{}
	}
	return nil
}
