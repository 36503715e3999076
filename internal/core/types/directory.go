package types

import "strings"

// DirectoryEntry is a dataset published upstream, e.g. "de_asp.xml".
type DirectoryEntry struct {
	Key  string
	Size Bytes
}

// Country returns the country code the entry is published for.
func (e DirectoryEntry) Country() string {
	code, _, _ := strings.Cut(e.Key, "_")
	return code
}
