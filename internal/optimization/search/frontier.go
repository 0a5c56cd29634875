package search

import "github.com/copyleftdev/torus/internal/torus"

// frontier is the FIFO queue of discovered configurations together with the
// set of every configuration ever queued. A configuration leaves the queue
// only to be expanded, so the set covers both visited and queued states.
type frontier struct {
	queue []torus.Configuration
	seen  map[string]struct{}

	proposed   int
	duplicates int
}

func newFrontier() *frontier {
	return &frontier{
		seen: make(map[string]struct{}),
	}
}

// markSeen records c as known without queueing it. c must be canonical.
func (f *frontier) markSeen(c torus.Configuration) {
	f.seen[c.Key()] = struct{}{}
}

// propose canonicalizes c in place and queues it unless it is already
// visited or queued. The frontier takes ownership of c.
func (f *frontier) propose(c torus.Configuration) bool {
	f.proposed++
	c.Sort()
	key := c.Key()
	if _, ok := f.seen[key]; ok {
		f.duplicates++
		return false
	}
	f.seen[key] = struct{}{}
	f.queue = append(f.queue, c)
	return true
}

// pop removes and returns the oldest queued configuration.
func (f *frontier) pop() torus.Configuration {
	c := f.queue[0]
	f.queue[0] = nil
	f.queue = f.queue[1:]
	return c
}

func (f *frontier) len() int {
	return len(f.queue)
}
