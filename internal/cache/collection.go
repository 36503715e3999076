package cache

import "time"

// Collection is one snapshot assembled from several reference files, each
// tracked by its own modification time.
type Collection[T any] struct {
	modTimes map[string]time.Time
	items    []T
	loaded   bool
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{modTimes: make(map[string]time.Time)}
}

// NeedsReload reports whether the snapshot does not cover exactly paths at
// their current modification times.
func (c *Collection[T]) NeedsReload(paths []string) bool {
	if !c.loaded || len(paths) != len(c.modTimes) {
		return true
	}
	for _, path := range paths {
		cached, ok := c.modTimes[path]
		if !ok {
			return true
		}
		current, ok := ModTime(path)
		if !ok || !current.Equal(cached) {
			return true
		}
	}
	return false
}

// Reset drops the snapshot before a reload.
func (c *Collection[T]) Reset() {
	c.modTimes = make(map[string]time.Time)
	c.items = []T{}
	c.loaded = true
}

// Add appends the records parsed from path at modTime.
func (c *Collection[T]) Add(path string, modTime time.Time, items []T) {
	c.modTimes[path] = modTime
	c.items = append(c.items, items...)
}

// Items returns the current snapshot.
func (c *Collection[T]) Items() []T {
	return c.items
}
