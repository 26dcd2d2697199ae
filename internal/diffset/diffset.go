// Package diffset partitions two scan snapshots into the operations that
// were added, modified, or removed, to scope incremental regeneration.
package diffset

import (
	"sort"

	"robogen/internal/model"
)

// Changes describes the delta between two scan snapshots. All slices are
// sorted by name.
type Changes struct {
	Added    []string
	Modified []string
	Removed  []string
}

// Regenerate returns the operation names requiring re-synthesis: the added
// and modified ones. Removed operations need no regeneration.
func (c Changes) Regenerate() []string {
	out := make([]string, 0, len(c.Added)+len(c.Modified))
	out = append(out, c.Added...)
	out = append(out, c.Modified...)
	sort.Strings(out)
	return out
}

// Empty reports whether nothing changed between the snapshots.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0
}

// Diff compares a previous snapshot (name -> source text) against the
// current scan. A name missing from previous is added; present in both with
// differing source text is modified; present only in previous is removed.
// A nil or empty previous snapshot marks every current operation as added,
// forcing full regeneration.
func Diff(previous map[string]string, current map[string]*model.OperationModel) Changes {
	var c Changes

	for name, op := range current {
		prevSource, known := previous[name]
		switch {
		case !known:
			c.Added = append(c.Added, name)
		case prevSource != op.SourceText:
			c.Modified = append(c.Modified, name)
		}
	}
	for name := range previous {
		if _, still := current[name]; !still {
			c.Removed = append(c.Removed, name)
		}
	}

	sort.Strings(c.Added)
	sort.Strings(c.Modified)
	sort.Strings(c.Removed)
	return c
}

// Sources projects a scan result down to the name -> source text mapping
// used as the previous snapshot of a later Diff.
func Sources(ops map[string]*model.OperationModel) map[string]string {
	out := make(map[string]string, len(ops))
	for name, op := range ops {
		out[name] = op.SourceText
	}
	return out
}
