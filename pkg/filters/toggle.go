package filters

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownPreset = errors.New("unknown preset filter")
	ErrGroupConflict = errors.New("conflicting preset filters")
)

// Toggle returns the active set after toggling id. An active id is removed.
// An inactive id is appended after removing any active member of its
// exclusive group. active is never modified.
func Toggle(active []string, id string) []string {
	if slices.Contains(active, id) {
		out := make([]string, 0, len(active))
		for _, f := range active {
			if f != id {
				out = append(out, f)
			}
		}
		return out
	}

	out := make([]string, 0, len(active)+1)
	g, ok := GroupOf(id)
	for _, f := range active {
		if ok && g.Exclusive && sameGroup(f, g.Name) {
			continue
		}
		out = append(out, f)
	}
	return append(out, id)
}

// Replaced reports which members of before are missing from after.
func Replaced(before, after []string) []string {
	var out []string
	for _, f := range before {
		if !slices.Contains(after, f) {
			out = append(out, f)
		}
	}
	return out
}

func sameGroup(id, group string) bool {
	p, ok := presetsByID[id]
	return ok && p.Group == group
}

// CheckExclusive verifies every id is in the catalog and that no exclusive
// group has more than one active member.
func CheckExclusive(active []string) error {
	seen := make(map[string]string)
	for _, id := range active {
		g, ok := GroupOf(id)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPreset, id)
		}
		if !g.Exclusive {
			continue
		}
		if prev, dup := seen[g.Name]; dup && prev != id {
			return fmt.Errorf("%w: %q and %q are both in %s", ErrGroupConflict, prev, id, g.Name)
		}
		seen[g.Name] = id
	}
	return nil
}
