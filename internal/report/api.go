package report

// Package-level wrappers around a default Engine that uses random UUIDs and
// the wall clock.

func EnsureDocData(raw map[string]any) *DocData { return defaultEngine.EnsureDocData(raw) }

func Clone(doc *DocData) *DocData { return defaultEngine.Clone(doc) }

func NewEntry(t EntryType) (Entry, bool) { return defaultEngine.NewEntry(t) }

func AddEntry(doc *DocData, e Entry) *DocData { return defaultEngine.AddEntry(doc, e) }

func AddEntryWithEffects(doc *DocData, e Entry) *DocData {
	return defaultEngine.AddEntryWithEffects(doc, e)
}

func UpdateEntry(doc *DocData, id string, fn func(Entry) Entry) *DocData {
	return defaultEngine.UpdateEntry(doc, id, fn)
}

func PatchEntry(doc *DocData, id string, patch map[string]any) *DocData {
	return defaultEngine.PatchEntry(doc, id, patch)
}

func RemoveEntry(doc *DocData, id string) *DocData { return defaultEngine.RemoveEntry(doc, id) }

func MoveEntry(doc *DocData, id string, dir Direction) *DocData {
	return defaultEngine.MoveEntry(doc, id, dir)
}

func SetEntriesCollapsed(doc *DocData, collapsed bool) *DocData {
	return defaultEngine.SetEntriesCollapsed(doc, collapsed)
}

func SetDetails(doc *DocData, d Details) *DocData { return defaultEngine.SetDetails(doc, d) }
