package itemcodec

import "github.com/shopspring/decimal"

// Unit is one quantity-1 instance of an item line, the row a cook or waiter
// ticks off on a checklist.
type Unit struct {
	Index    int
	Name     string
	Note     string
	Price    decimal.Decimal
	Quantity int
}

// Group is a (name, note) pair with its summed quantity.
type Group struct {
	Name     string
	Note     string
	Quantity int
}

// ExplodeToUnits decodes an item list and expands every "xN" line into N
// units. Indexes run from 0 across the whole list.
func ExplodeToUnits(encoded string) []Unit {
	return Explode(Parse(encoded))
}

// Explode expands decoded entries into units.
func Explode(entries []Entry) []Unit {
	var units []Unit
	for _, e := range entries {
		for i := 0; i < e.Quantity; i++ {
			units = append(units, Unit{
				Index:    len(units),
				Name:     e.Name,
				Note:     e.Note,
				Price:    e.Price,
				Quantity: 1,
			})
		}
	}
	return units
}

// GroupByNameNote decodes an item list and merges lines with the same name
// and note, keeping the order in which each pair first appears.
func GroupByNameNote(encoded string) []Group {
	return GroupEntries(Parse(encoded))
}

// GroupEntries merges decoded entries by name and note.
func GroupEntries(entries []Entry) []Group {
	var groups []Group
	seen := make(map[string]int)
	for _, e := range entries {
		key := e.Name + "\x00" + e.Note
		if i, ok := seen[key]; ok {
			groups[i].Quantity += e.Quantity
			continue
		}
		seen[key] = len(groups)
		groups = append(groups, Group{Name: e.Name, Note: e.Note, Quantity: e.Quantity})
	}
	return groups
}

// GroupUnits folds exploded units back into groups.
func GroupUnits(units []Unit) []Group {
	entries := make([]Entry, len(units))
	for i, u := range units {
		entries[i] = Entry{Name: u.Name, Note: u.Note, Quantity: u.Quantity, Price: u.Price, HasPrice: true}
	}
	return GroupEntries(entries)
}
