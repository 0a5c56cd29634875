package optimization

import (
	"github.com/copyleftdev/torus/internal/errors"
)

// InvalidProblem reports a problem that failed validation. The torus
// sentinel stays reachable through errors.Is.
func InvalidProblem(err error) error {
	return errors.Wrap(err, "invalid problem").
		WithComponent("problem").
		WithOperation("validate").
		WithKind(errors.Invalid)
}

// Interrupted reports a search stopped by its context after visited
// states, with queued states still waiting.
func Interrupted(cause error, visited, queued int) error {
	return errors.Wrapf(cause, "search interrupted after %d states, %d queued", visited, queued).
		WithComponent("search").
		WithOperation("optimize").
		WithKind(errors.Cancelled)
}
