package models

import (
	"sort"
	"strings"
)

// Group is a set of files judged equivalent to its representative.
// Members always starts with the representative.
type Group struct {
	Representative string   `json:"representative"`
	Members        []string `json:"members"`
}

// DirKey is a sorted, deduplicated set of canonical directory paths
type DirKey []string

// NewDirKey builds a key from an arbitrary list of directories
func NewDirKey(dirs []string) DirKey {
	return DirKey(sortedSet(dirs))
}

// Key returns the newline-joined form used for map lookups and ordering
func (k DirKey) Key() string {
	return strings.Join(k, "\n")
}

// NameSet is a sorted, deduplicated set of base file names
type NameSet []string

// NewNameSet builds a name set from an arbitrary list of names
func NewNameSet(names []string) NameSet {
	return NameSet(sortedSet(names))
}

// Display returns the tab-prefixed "a == b" form
func (n NameSet) Display() string {
	return "\t" + strings.Join(n, " == ")
}

// DirectoryEntry collects every name set whose group spans Directories
type DirectoryEntry struct {
	Directories DirKey    `json:"directories"`
	Names       []NameSet `json:"names"`
}

// DisplayNames returns the rendered name entries, one per group
func (e *DirectoryEntry) DisplayNames() []string {
	out := make([]string, 0, len(e.Names))
	for _, n := range e.Names {
		out = append(out, n.Display())
	}
	return out
}

// DirectoryReport maps directory sets to the name entries found in them
type DirectoryReport struct {
	entries map[string]*DirectoryEntry
}

// NewDirectoryReport creates an empty report
func NewDirectoryReport() *DirectoryReport {
	return &DirectoryReport{entries: make(map[string]*DirectoryEntry)}
}

// Add merges names into the entry for dirs. Equal name sets collapse.
func (r *DirectoryReport) Add(dirs DirKey, names NameSet) {
	key := dirs.Key()
	entry, ok := r.entries[key]
	if !ok {
		entry = &DirectoryEntry{Directories: dirs}
		r.entries[key] = entry
	}

	display := names.Display()
	idx := sort.Search(len(entry.Names), func(i int) bool {
		return entry.Names[i].Display() >= display
	})
	if idx < len(entry.Names) && entry.Names[idx].Display() == display {
		return
	}
	entry.Names = append(entry.Names, nil)
	copy(entry.Names[idx+1:], entry.Names[idx:])
	entry.Names[idx] = names
}

// Len returns the number of directory entries
func (r *DirectoryReport) Len() int {
	return len(r.entries)
}

// Lookup returns the entry for a directory set, if any
func (r *DirectoryReport) Lookup(dirs DirKey) (*DirectoryEntry, bool) {
	entry, ok := r.entries[dirs.Key()]
	return entry, ok
}

// Entries returns all entries ordered by their joined directory key
func (r *DirectoryReport) Entries() []*DirectoryEntry {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*DirectoryEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.entries[k])
	}
	return out
}

func sortedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
