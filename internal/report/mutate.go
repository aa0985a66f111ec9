package report

import (
	"fmt"
	"strings"
)

// Direction moves an entry one place towards the start (Up) or end (Down).
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// NewEntry returns a blank, expanded entry of kind t stamped with the
// engine's clock. ok is false for unknown kinds.
func (en *Engine) NewEntry(t EntryType) (Entry, bool) {
	return en.entryFromMap(map[string]any{
		"type":      string(t),
		"createdAt": en.now(),
		"collapsed": false,
	})
}

// AddEntry appends e and returns the new document.
func (en *Engine) AddEntry(doc *DocData, e Entry) *DocData {
	doc = en.orEmpty(doc)
	entries := append(cloneEntries(doc.Entries), e)
	return en.rebuild(doc, entries, doc.Details)
}

// AddEntryWithEffects is AddEntry plus side effects on the details: adding a
// parts order also records it as a line in details.partsNeeded.
func (en *Engine) AddEntryWithEffects(doc *DocData, e Entry) *DocData {
	out := en.AddEntry(doc, e)
	if e.Type != TypeOrderParts || len(out.Entries) == 0 {
		return out
	}

	// a valid entry is never dropped, so the appended one is still last
	added := out.Entries[len(out.Entries)-1]
	order, ok := added.PartsOrder()
	if !ok {
		return out
	}
	if line := PartsNeededLine(order); line != "" {
		out.Details.PartsNeeded = append(out.Details.PartsNeeded, Item{ID: en.newID(), Text: line})
	}
	return out
}

// PartsNeededLine summarises an order as one line, e.g.
// "12-345 Bearing x2; 77-1 Seal kit". An order without parts falls back to
// its note.
func PartsNeededLine(o PartsOrder) string {
	lines := make([]string, 0, len(o.Parts))
	for _, p := range o.Parts {
		var fields []string
		for _, s := range []string{p.PartNo, p.Desc} {
			if s = strings.TrimSpace(s); s != "" {
				fields = append(fields, s)
			}
		}
		if q := strings.TrimSpace(p.Qty); q != "" {
			fields = append(fields, fmt.Sprintf("x%s", q))
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	if len(lines) == 0 {
		return strings.TrimSpace(o.Note)
	}
	return strings.Join(lines, "; ")
}

// UpdateEntry applies fn to the entry with the given id. If the updated
// entry no longer normalizes (for example its type became unknown) it is
// removed. An unknown id leaves the document unchanged apart from
// normalization.
func (en *Engine) UpdateEntry(doc *DocData, id string, fn func(Entry) Entry) *DocData {
	doc = en.orEmpty(doc)
	entries := make([]Entry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		if e.ID != id {
			entries = append(entries, e.clone())
			continue
		}
		updated := fn(e.clone())
		if n, ok := en.normalizeEntry(updated); ok {
			entries = append(entries, n)
		}
	}
	return en.rebuild(doc, entries, doc.Details)
}

// PatchEntry merges patch over the wire form of the entry with the given id,
// the same way UpdateEntry applies a function.
func (en *Engine) PatchEntry(doc *DocData, id string, patch map[string]any) *DocData {
	doc = en.orEmpty(doc)
	entries := make([]Entry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		if e.ID != id {
			entries = append(entries, e.clone())
			continue
		}
		m := e.toMap()
		for k, v := range patch {
			m[k] = deepCopy(v)
		}
		if n, ok := en.entryFromMap(m); ok {
			entries = append(entries, n)
		}
	}
	return en.rebuild(doc, entries, doc.Details)
}

func (en *Engine) RemoveEntry(doc *DocData, id string) *DocData {
	doc = en.orEmpty(doc)
	entries := make([]Entry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		if e.ID != id {
			entries = append(entries, e.clone())
		}
	}
	return en.rebuild(doc, entries, doc.Details)
}

// MoveEntry swaps the entry with its neighbour in direction dir. Moving the
// first entry up or the last one down is a no-op.
func (en *Engine) MoveEntry(doc *DocData, id string, dir Direction) *DocData {
	doc = en.orEmpty(doc)
	entries := cloneEntries(doc.Entries)

	idx := -1
	for i, e := range entries {
		if e.ID == id {
			idx = i
			break
		}
	}

	target := idx
	switch dir {
	case Up:
		target = idx - 1
	case Down:
		target = idx + 1
	}
	if idx >= 0 && target >= 0 && target < len(entries) && target != idx {
		entries[idx], entries[target] = entries[target], entries[idx]
	}
	return en.rebuild(doc, entries, doc.Details)
}

// SetEntriesCollapsed sets the collapsed flag on every entry.
func (en *Engine) SetEntriesCollapsed(doc *DocData, collapsed bool) *DocData {
	doc = en.orEmpty(doc)
	entries := cloneEntries(doc.Entries)
	for i := range entries {
		entries[i].Collapsed = collapsed
	}
	return en.rebuild(doc, entries, doc.Details)
}

// SetDetails replaces the details bag.
func (en *Engine) SetDetails(doc *DocData, d Details) *DocData {
	doc = en.orEmpty(doc)
	return en.rebuild(doc, doc.Entries, d)
}

func (en *Engine) orEmpty(doc *DocData) *DocData {
	if doc == nil {
		return en.EnsureDocData(nil)
	}
	return doc
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.clone()
	}
	return out
}
