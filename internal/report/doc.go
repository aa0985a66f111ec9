package report

import (
	"encoding/json"
	"maps"
)

// Item is one row of the partsInstalled / partsNeeded lists.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Details is the free-form settings bag of a report. WorkSummary and the two
// parts lists are always present; any other keys survive in Extra.
type Details struct {
	WorkSummary    string
	PartsInstalled []Item
	PartsNeeded    []Item
	Extra          map[string]any
}

func (d Details) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Extra)+3)
	maps.Copy(m, d.Extra)
	m["workSummary"] = d.WorkSummary
	m["partsInstalled"] = nonNilItems(d.PartsInstalled)
	m["partsNeeded"] = nonNilItems(d.PartsNeeded)
	return json.Marshal(m)
}

func (d Details) clone() Details {
	d.PartsInstalled = append([]Item{}, d.PartsInstalled...)
	d.PartsNeeded = append([]Item{}, d.PartsNeeded...)
	d.Extra = deepCopyMap(d.Extra)
	return d
}

// DocData is the canonical report document.
type DocData struct {
	Details Details
	Entries []Entry
	// Unrecognized holds entries whose type this version does not know, as
	// they were found. They are written back on save so nothing is lost.
	Unrecognized []json.RawMessage
	// Extra carries unknown top-level keys.
	Extra map[string]any
}

// Issues is the legacy view: the issue entries, in entry order.
func (d *DocData) Issues() []Entry {
	issues := make([]Entry, 0)
	for _, e := range d.Entries {
		if e.Type == TypeIssue {
			issues = append(issues, e.clone())
		}
	}
	return issues
}

// Entry returns the entry with the given id.
func (d *DocData) Entry(id string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.ID == id {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

func (d DocData) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Extra)+4)
	maps.Copy(m, d.Extra)

	entries := d.Entries
	if entries == nil {
		entries = []Entry{}
	}
	m["details"] = d.Details
	m["entries"] = entries
	m["issues"] = d.Issues()
	if len(d.Unrecognized) > 0 {
		m["unrecognizedEntries"] = d.Unrecognized
	}
	return json.Marshal(m)
}

// UnmarshalJSON normalizes data with the default engine. Input that is valid
// JSON but not an object yields an empty document.
func (d *DocData) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m, _ := raw.(map[string]any)
	*d = *defaultEngine.EnsureDocData(m)
	return nil
}

// Decode parses and normalizes a stored document. Anything unparseable
// becomes an empty document.
func Decode(data []byte) *DocData {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return defaultEngine.EnsureDocData(nil)
	}
	m, _ := raw.(map[string]any)
	return defaultEngine.EnsureDocData(m)
}

func nonNilItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return deepCopyMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return v
	}
}
