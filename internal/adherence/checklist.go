package adherence

// Checklist is the in-memory adherence state: date → item id → taken.
type Checklist map[string]map[string]bool

// FromProgress decodes the wire format, a map from ISO date to the list of
// CHECKED item ids. Unchecked items are implicit by absence; that encoding
// is frozen for compatibility and must not be widened to a boolean map.
func FromProgress(progress map[string][]string) Checklist {
	c := make(Checklist, len(progress))
	for date, ids := range progress {
		day := make(map[string]bool, len(ids))
		for _, id := range ids {
			day[id] = true
		}
		c[date] = day
	}
	return c
}

// Progress encodes the checklist back to the wire format. Checked ids are
// emitted in canonical slot order so the document is stable across saves;
// days with nothing checked are omitted entirely.
func (c Checklist) Progress() map[string][]string {
	canonical := []string{"morning", "noon", "afternoon", "evening", "bedtime"}
	out := make(map[string][]string, len(c))
	for date, day := range c {
		var ids []string
		for _, id := range canonical {
			if day[id] {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			out[date] = ids
		}
	}
	return out
}

// Taken reports whether an item is checked for a date.
func (c Checklist) Taken(date, itemID string) bool {
	return c[date][itemID]
}

// Toggle flips one item. Toggling twice restores the original state.
func (c Checklist) Toggle(date, itemID string) {
	day := c[date]
	if day == nil {
		day = make(map[string]bool)
		c[date] = day
	}
	day[itemID] = !day[itemID]
}

// SetAll marks every given item checked for a date in one update.
func (c Checklist) SetAll(date string, itemIDs []string) {
	day := c[date]
	if day == nil {
		day = make(map[string]bool, len(itemIDs))
		c[date] = day
	}
	for _, id := range itemIDs {
		day[id] = true
	}
}
