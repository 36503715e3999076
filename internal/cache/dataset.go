package cache

import "time"

// Dataset is the parsed snapshot of a single reference file. The snapshot
// is only served while the file's modification time matches the one it
// was parsed from.
type Dataset[T any] struct {
	key      string
	path     string
	modTime  time.Time
	snapshot []T
	loaded   bool
}

func NewDataset[T any](key, path string) *Dataset[T] {
	return &Dataset[T]{key: key, path: path}
}

func (d *Dataset[T]) Key() string {
	return d.key
}

func (d *Dataset[T]) Path() string {
	return d.path
}

// Fresh returns the snapshot when it was parsed from the current file.
func (d *Dataset[T]) Fresh() ([]T, bool) {
	if !d.loaded {
		return nil, false
	}
	modTime, ok := ModTime(d.path)
	if !ok || !modTime.Equal(d.modTime) {
		return nil, false
	}
	return d.snapshot, true
}

// Store replaces the snapshot and the modification time it belongs to.
func (d *Dataset[T]) Store(snapshot []T, modTime time.Time) {
	d.snapshot = snapshot
	d.modTime = modTime
	d.loaded = true
}
