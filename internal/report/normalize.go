package report

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/idgen"
)

// Engine normalizes documents. Its id generator and clock are injectable so
// tests can pin them; the package-level functions use a default Engine.
type Engine struct {
	newID idgen.Generator
	now   func() time.Time
}

type Option func(*Engine)

func WithIDGenerator(g idgen.Generator) Option {
	return func(e *Engine) { e.newID = g }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{newID: idgen.NewID, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

var defaultEngine = NewEngine()

// keys of the top-level document handled explicitly
const (
	keyDetails      = "details"
	keyEntries      = "entries"
	keyIssues       = "issues"
	keyUnrecognized = "unrecognizedEntries"
)

// EnsureDocData turns loosely typed document data (decoded JSON, possibly
// from an older client, possibly nil) into a canonical document.
//
// An "entries" array, even an empty one, is authoritative and any legacy
// "issues" are ignored. Without it, legacy issues are converted into issue
// entries.
func (en *Engine) EnsureDocData(raw map[string]any) *DocData {
	doc := &DocData{Entries: []Entry{}}

	details, _ := raw[keyDetails].(map[string]any)
	doc.Details = en.detailsFromMap(details)

	if list, ok := raw[keyEntries].([]any); ok {
		for _, v := range list {
			m, isMap := v.(map[string]any)
			if !isMap {
				doc.Unrecognized = appendRaw(doc.Unrecognized, v)
				continue
			}
			e, ok := en.entryFromMap(m)
			if !ok {
				doc.Unrecognized = appendRaw(doc.Unrecognized, m)
				continue
			}
			doc.Entries = append(doc.Entries, e)
		}
	} else if list, ok := raw[keyIssues].([]any); ok {
		for _, v := range list {
			if m, isMap := v.(map[string]any); isMap {
				doc.Entries = append(doc.Entries, en.entryFromLegacyIssue(m))
			}
		}
	}

	if list, ok := raw[keyUnrecognized].([]any); ok {
		for _, v := range list {
			doc.Unrecognized = appendRaw(doc.Unrecognized, v)
		}
	}

	for k, v := range raw {
		switch k {
		case keyDetails, keyEntries, keyIssues, keyUnrecognized:
			continue
		}
		if doc.Extra == nil {
			doc.Extra = make(map[string]any)
		}
		doc.Extra[k] = deepCopy(v)
	}

	en.uniqueIDs(doc.Entries)
	return doc
}

// Clone returns a normalized deep copy of doc. A nil doc gives an empty one.
func (en *Engine) Clone(doc *DocData) *DocData {
	if doc == nil {
		return en.EnsureDocData(nil)
	}
	return en.rebuild(doc, doc.Entries, doc.Details)
}

// rebuild assembles a new canonical document from doc's side data and the
// given entries and details, re-normalizing every entry.
func (en *Engine) rebuild(doc *DocData, entries []Entry, details Details) *DocData {
	out := &DocData{
		Details: en.normalizeDetails(details),
		Entries: make([]Entry, 0, len(entries)),
		Extra:   deepCopyMap(doc.Extra),
	}
	for _, e := range entries {
		if n, ok := en.normalizeEntry(e); ok {
			out.Entries = append(out.Entries, n)
		}
	}
	for _, r := range doc.Unrecognized {
		out.Unrecognized = append(out.Unrecognized, append(json.RawMessage{}, r...))
	}
	en.uniqueIDs(out.Entries)
	return out
}

func (en *Engine) normalizeEntry(e Entry) (Entry, bool) {
	return en.entryFromMap(e.toMap())
}

// entryFromMap is the single validation boundary for entries: the type is
// checked first, then the body is built by the constructor for that kind.
func (en *Engine) entryFromMap(m map[string]any) (Entry, bool) {
	t := EntryType(asString(m["type"]))
	if !t.Valid() {
		return Entry{}, false
	}

	e := Entry{
		ID:        en.idOr(m["id"]),
		Type:      t,
		CreatedAt: en.timeOr(m["createdAt"]),
		Collapsed: collapsedOr(m["collapsed"]),
	}

	switch t {
	case TypeIssue, TypeCorrection:
		e.Body = en.photoNoteFrom(m)
	case TypeOrderParts:
		e.Body = en.partsOrderFrom(m)
	case TypeDocRequest:
		e.Body = docRequestFrom(m)
	case TypeFollowUp:
		e.Body = followUpFrom(m)
	case TypeCommentary, TypeInternal:
		e.Body = Note{Note: asString(m["note"])}
	}
	return e, true
}

// entryFromLegacyIssue converts an element of the pre-entries "issues" list.
func (en *Engine) entryFromLegacyIssue(m map[string]any) Entry {
	note := asString(m["note"])
	if note == "" {
		note = firstString(m, "text", "description")
	}

	fields := map[string]any{
		"id":        m["id"],
		"type":      string(TypeIssue),
		"createdAt": m["createdAt"],
		"collapsed": m["collapsed"],
		"note":      note,
		"photos":    m["photos"],
	}
	e, _ := en.entryFromMap(fields)
	return e
}

func (en *Engine) photoNoteFrom(m map[string]any) PhotoNote {
	b := PhotoNote{Note: asString(m["note"]), Photos: []Photo{}}
	list, _ := m["photos"].([]any)
	for _, v := range list {
		pm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		url := strings.TrimSpace(asString(pm["imageUrl"]))
		if url == "" {
			continue
		}
		b.Photos = append(b.Photos, Photo{ID: en.idOr(pm["id"]), ImageURL: url})
	}
	return b
}

func (en *Engine) partsOrderFrom(m map[string]any) PartsOrder {
	b := PartsOrder{Note: asString(m["note"]), Parts: []Part{}}
	list, _ := m["parts"].([]any)
	for _, v := range list {
		pm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		p := Part{
			PartNo: asString(pm["partNo"]),
			Desc:   asString(pm["desc"]),
			Qty:    asString(pm["qty"]),
		}
		if p.blank() {
			continue
		}
		p.ID = en.idOr(pm["id"])
		b.Parts = append(b.Parts, p)
	}
	return b
}

func docRequestFrom(m map[string]any) DocRequest {
	return DocRequest{
		DocKind:  parseDocKind(asString(m["docKind"])),
		DocNotes: asString(m["docNotes"]),
	}
}

func followUpFrom(m map[string]any) FollowUp {
	fm, _ := m["followUp"].(map[string]any)
	return FollowUp{Title: asString(fm["title"]), Details: asString(fm["details"])}
}

func (en *Engine) detailsFromMap(m map[string]any) Details {
	d := Details{
		WorkSummary:    asString(m["workSummary"]),
		PartsInstalled: en.itemsFrom(m["partsInstalled"]),
		PartsNeeded:    en.itemsFrom(m["partsNeeded"]),
	}
	for k, v := range m {
		switch k {
		case "workSummary", "partsInstalled", "partsNeeded":
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]any)
		}
		d.Extra[k] = deepCopy(v)
	}
	return d
}

// itemsFrom accepts {id, text} objects and, from older data, bare strings.
func (en *Engine) itemsFrom(v any) []Item {
	items := []Item{}
	list, _ := v.([]any)
	for _, x := range list {
		switch it := x.(type) {
		case string:
			items = append(items, Item{ID: en.newID(), Text: it})
		case map[string]any:
			items = append(items, Item{ID: en.idOr(it["id"]), Text: asString(it["text"])})
		}
	}
	return items
}

func (en *Engine) normalizeDetails(d Details) Details {
	out := d.clone()
	for i := range out.PartsInstalled {
		if isBlank(out.PartsInstalled[i].ID) {
			out.PartsInstalled[i].ID = en.newID()
		}
	}
	for i := range out.PartsNeeded {
		if isBlank(out.PartsNeeded[i].ID) {
			out.PartsNeeded[i].ID = en.newID()
		}
	}
	return out
}

// uniqueIDs gives every entry after the first holder of an id a fresh one.
func (en *Engine) uniqueIDs(entries []Entry) {
	seen := make(map[string]struct{}, len(entries))
	for i := range entries {
		if _, dup := seen[entries[i].ID]; dup {
			entries[i].ID = en.newID()
		}
		seen[entries[i].ID] = struct{}{}
	}
}

func (en *Engine) idOr(v any) string {
	if id := asString(v); !isBlank(id) {
		return id
	}
	return en.newID()
}

// timeOr accepts RFC 3339 strings, plain dates, epoch milliseconds and
// time.Time values. Everything is stored in UTC at millisecond precision.
func (en *Engine) timeOr(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		if !x.IsZero() {
			return x.UTC().Truncate(time.Millisecond)
		}
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(x)); err == nil {
				return t.UTC().Truncate(time.Millisecond)
			}
		}
	case float64:
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return time.UnixMilli(int64(x)).UTC()
		}
	case int64:
		return time.UnixMilli(x).UTC()
	case int:
		return time.UnixMilli(int64(x)).UTC()
	}
	return en.now().UTC().Truncate(time.Millisecond)
}

func collapsedOr(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func appendRaw(list []json.RawMessage, v any) []json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return list
	}
	return append(list, b)
}
