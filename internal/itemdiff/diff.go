// Package itemdiff compares an order's edit snapshot with its current items.
package itemdiff

import "github.com/jairsl2206/restaurant-sub000/internal/itemcodec"

// Match is an original unit that is still present in the current list.
type Match struct {
	Current      itemcodec.Unit // matched current unit, including its current note
	OriginalNote string
}

// NoteChanged reports whether the note differs from the snapshot.
func (m Match) NoteChanged() bool {
	return m.Current.Note != m.OriginalNote
}

// Result partitions the units of an edited order.
type Result struct {
	Kept    []Match
	Removed []itemcodec.Unit // original units, in snapshot order
	Added   []itemcodec.Unit // current units left unmatched, in current order
}

// Changed reports whether anything was removed or added.
func (r Result) Changed() bool {
	return len(r.Removed) > 0 || len(r.Added) > 0
}

// Compute diffs two encoded item lists.
//
// Matching is greedy: every original unit, in snapshot order, takes the
// first unconsumed current unit with the same name. Notes are not part of
// the key. The result is stable and deterministic but not a globally optimal
// assignment; callers depend on the exact tie-breaking.
func Compute(original, current string) Result {
	return CompareUnits(itemcodec.ExplodeToUnits(original), itemcodec.ExplodeToUnits(current))
}

// CompareUnits runs the matching on already exploded units.
func CompareUnits(original, current []itemcodec.Unit) Result {
	var res Result
	consumed := make([]bool, len(current))

	for _, o := range original {
		matched := false
		for i, c := range current {
			if consumed[i] || c.Name != o.Name {
				continue
			}
			consumed[i] = true
			res.Kept = append(res.Kept, Match{Current: c, OriginalNote: o.Note})
			matched = true
			break
		}
		if !matched {
			res.Removed = append(res.Removed, o)
		}
	}

	for i, c := range current {
		if !consumed[i] {
			res.Added = append(res.Added, c)
		}
	}
	return res
}
