package report

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fsrkeeper/internal/idgen"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)

func seqIDs() idgen.Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func newTestEngine() *Engine {
	return NewEngine(WithIDGenerator(seqIDs()), WithClock(func() time.Time { return fixedNow }))
}

func decodeMap(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func issueIDs(d *DocData) []string {
	var ids []string
	for _, e := range d.Issues() {
		ids = append(ids, e.ID)
	}
	return ids
}

func entryIDs(d *DocData) []string {
	ids := []string{}
	for _, e := range d.Entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestEnsureDocData_Empty(t *testing.T) {
	doc := newTestEngine().EnsureDocData(nil)

	assert.Equal(t, "", doc.Details.WorkSummary)
	assert.Equal(t, []Item{}, doc.Details.PartsInstalled)
	assert.Equal(t, []Item{}, doc.Details.PartsNeeded)
	assert.Equal(t, []Entry{}, doc.Entries)
	assert.Empty(t, doc.Issues())
	assert.Nil(t, doc.Unrecognized)

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"details": {"workSummary": "", "partsInstalled": [], "partsNeeded": []},
		"entries": [],
		"issues": []
	}`, string(b))
}

func TestEnsureDocData_EntriesWinOverLegacyIssues(t *testing.T) {
	raw := decodeMap(t, `{
		"entries": [
			{"id": "a", "type": "commentary", "note": "hello"},
			{"id": "b", "type": "issue", "note": "leak"},
			{"id": "c", "type": "hologram", "note": "from the future"},
			"garbage",
			{"id": "d", "type": "issue", "note": "noise"}
		],
		"issues": [{"id": "legacy", "note": "old"}]
	}`)

	doc := newTestEngine().EnsureDocData(raw)

	assert.Equal(t, []string{"a", "b", "d"}, entryIDs(doc))
	assert.Equal(t, []string{"b", "d"}, issueIDs(doc))
	require.Len(t, doc.Unrecognized, 2)
	assert.JSONEq(t, `{"id":"c","type":"hologram","note":"from the future"}`, string(doc.Unrecognized[0]))
	assert.JSONEq(t, `"garbage"`, string(doc.Unrecognized[1]), "non-object entries are kept aside too")
}

func TestEnsureDocData_EmptyEntriesIgnoresIssues(t *testing.T) {
	raw := decodeMap(t, `{"entries": [], "issues": [{"id": "x", "note": "old"}]}`)

	doc := newTestEngine().EnsureDocData(raw)

	assert.Empty(t, doc.Entries)
	assert.Empty(t, doc.Issues())
}

func TestEnsureDocData_LegacyIssuesConverted(t *testing.T) {
	raw := decodeMap(t, `{
		"issues": [
			{"id": "i1", "note": "cracked housing", "photos": [{"id": "p1", "imageUrl": "data:image/png;base64,AA"}, {"id": "p2"}]},
			{"text": "loose belt", "createdAt": "2023-01-02T03:04:05Z"}
		]
	}`)

	doc := newTestEngine().EnsureDocData(raw)

	require.Len(t, doc.Entries, 2)
	first, second := doc.Entries[0], doc.Entries[1]

	assert.Equal(t, "i1", first.ID)
	assert.Equal(t, TypeIssue, first.Type)
	assert.True(t, first.Collapsed)
	body, ok := first.PhotoNote()
	require.True(t, ok)
	assert.Equal(t, "cracked housing", body.Note)
	assert.Equal(t, []Photo{{ID: "p1", ImageURL: "data:image/png;base64,AA"}}, body.Photos)

	assert.Equal(t, "gen-1", second.ID)
	body, _ = second.PhotoNote()
	assert.Equal(t, "loose belt", body.Note)
	assert.Equal(t, time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), second.CreatedAt)

	assert.Equal(t, []string{"i1", "gen-1"}, issueIDs(doc))
}

func TestEnsureDocData_EntryDefaults(t *testing.T) {
	raw := decodeMap(t, `{"entries": [
		{"type": "internal", "note": "n"},
		{"id": "x", "type": "commentary", "createdAt": "not a date", "collapsed": false},
		{"id": "y", "type": "commentary", "createdAt": 1700000000000, "collapsed": "yes"},
		{"id": "  ", "type": "commentary", "createdAt": "2024-02-03"}
	]}`)

	doc := newTestEngine().EnsureDocData(raw)
	require.Len(t, doc.Entries, 4)

	e := doc.Entries[0]
	assert.Equal(t, "gen-1", e.ID)
	assert.Equal(t, fixedNow.Truncate(time.Millisecond), e.CreatedAt)
	assert.True(t, e.Collapsed)

	e = doc.Entries[1]
	assert.Equal(t, fixedNow.Truncate(time.Millisecond), e.CreatedAt)
	assert.False(t, e.Collapsed)

	e = doc.Entries[2]
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), e.CreatedAt)
	assert.True(t, e.Collapsed)

	e = doc.Entries[3]
	assert.Equal(t, "gen-2", e.ID)
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), e.CreatedAt)
}

func TestEnsureDocData_KindCoercion(t *testing.T) {
	raw := decodeMap(t, `{"entries": [
		{"id": "o", "type": "orderParts", "note": "rush", "parts": [
			{"partNo": "12-345", "desc": "Bearing", "qty": 2},
			{"partNo": " ", "desc": "", "qty": ""},
			{"id": "keep", "desc": "Seal kit"},
			42
		]},
		{"id": "d1", "type": "docRequest", "docKind": "electrical", "docNotes": "schematic"},
		{"id": "d2", "type": "docRequest", "docKind": "blueprints"},
		{"id": "f", "type": "followUp", "followUp": {"title": "Return visit", "details": "next week"}},
		{"id": "f2", "type": "followUp", "followUp": "oops"},
		{"id": "c", "type": "correction", "note": 7, "photos": [{"imageUrl": "u1"}, {"imageUrl": ""}, "x"]}
	]}`)

	doc := newTestEngine().EnsureDocData(raw)
	require.Len(t, doc.Entries, 6)

	order, ok := doc.Entries[0].PartsOrder()
	require.True(t, ok)
	assert.Equal(t, "rush", order.Note)
	assert.Equal(t, []Part{
		{ID: "gen-1", PartNo: "12-345", Desc: "Bearing", Qty: "2"},
		{ID: "keep", Desc: "Seal kit"},
	}, order.Parts)

	req, ok := doc.Entries[1].DocRequest()
	require.True(t, ok)
	assert.Equal(t, DocRequest{DocKind: DocElectrical, DocNotes: "schematic"}, req)

	req, _ = doc.Entries[2].DocRequest()
	assert.Equal(t, DocInstallation, req.DocKind)

	fu, ok := doc.Entries[3].FollowUp()
	require.True(t, ok)
	assert.Equal(t, FollowUp{Title: "Return visit", Details: "next week"}, fu)

	fu, _ = doc.Entries[4].FollowUp()
	assert.Equal(t, FollowUp{}, fu)

	pn, ok := doc.Entries[5].PhotoNote()
	require.True(t, ok)
	assert.Equal(t, "7", pn.Note)
	assert.Equal(t, []Photo{{ID: "gen-2", ImageURL: "u1"}}, pn.Photos)
}

func TestEnsureDocData_DetailsAndExtras(t *testing.T) {
	raw := decodeMap(t, `{
		"details": {
			"workSummary": "Replaced motor",
			"partsInstalled": ["Motor 5HP", {"id": "i2", "text": "Belt"}, 3],
			"tripType": "warranty",
			"hours": 4.5
		},
		"reportVersion": 2
	}`)

	doc := newTestEngine().EnsureDocData(raw)

	assert.Equal(t, "Replaced motor", doc.Details.WorkSummary)
	assert.Equal(t, []Item{{ID: "gen-1", Text: "Motor 5HP"}, {ID: "i2", Text: "Belt"}}, doc.Details.PartsInstalled)
	assert.Equal(t, []Item{}, doc.Details.PartsNeeded)
	assert.Equal(t, map[string]any{"tripType": "warranty", "hours": 4.5}, doc.Details.Extra)
	assert.Equal(t, map[string]any{"reportVersion": float64(2)}, doc.Extra)

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	out := decodeMap(t, string(b))
	assert.Equal(t, float64(2), out["reportVersion"])
	assert.Equal(t, "warranty", out["details"].(map[string]any)["tripType"])
}

func TestEnsureDocData_DuplicateIDsMadeUnique(t *testing.T) {
	raw := decodeMap(t, `{"entries": [
		{"id": "same", "type": "commentary"},
		{"id": "same", "type": "internal"},
		{"id": "other", "type": "issue"}
	]}`)

	doc := newTestEngine().EnsureDocData(raw)

	assert.Equal(t, []string{"same", "gen-1", "other"}, entryIDs(doc))
}

func TestEnsureDocData_IssuesMirrorEntries(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"issues": [{"note": "a"}, {"note": "b"}]}`,
		`{"entries": [{"type": "issue"}, {"type": "correction"}, {"type": "issue"}], "issues": [{"note": "stale"}]}`,
		`{"entries": "not a list", "issues": [{"id": "z"}]}`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			doc := EnsureDocData(decodeMap(t, in))

			var want []string
			for _, e := range doc.Entries {
				if e.Type == TypeIssue {
					want = append(want, e.ID)
				}
			}
			assert.Equal(t, want, issueIDs(doc))

			b, err := json.Marshal(doc)
			require.NoError(t, err)
			out := decodeMap(t, string(b))
			assert.Len(t, out["issues"], len(want))
		})
	}
}

func TestNormalization_Idempotent(t *testing.T) {
	raw := decodeMap(t, `{
		"details": {"workSummary": "w", "partsNeeded": ["a"], "custom": {"nested": [1, "two"]}},
		"entries": [
			{"type": "issue", "note": "n", "photos": [{"imageUrl": "u"}]},
			{"type": "orderParts", "parts": [{"partNo": "p", "qty": 1.5}]},
			{"type": "docRequest"},
			{"type": "followUp", "followUp": {"title": "t"}},
			{"type": "internal", "collapsed": false},
			{"type": "mystery", "payload": {"x": 1}}
		],
		"extra": true
	}`)

	first := EnsureDocData(raw)

	b, err := json.Marshal(first)
	require.NoError(t, err)
	second := Decode(b)
	assert.Empty(t, cmp.Diff(first, second), "decode of encoded output must be a no-op")

	third := Clone(first)
	assert.Empty(t, cmp.Diff(first, third), "clone must preserve content")

	ids := entryIDs(first)
	assert.Equal(t, ids, entryIDs(second))
	for _, id := range ids {
		assert.NotEmpty(t, id)
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, in := range []string{``, `{`, `[]`, `"x"`, `null`} {
		doc := Decode([]byte(in))
		require.NotNil(t, doc, in)
		assert.Empty(t, doc.Entries, in)
		assert.Equal(t, []Item{}, doc.Details.PartsNeeded, in)
	}
}

func TestDocData_UnmarshalJSON(t *testing.T) {
	var wrapper struct {
		Data DocData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data": {"issues": [{"id": "i", "note": "x"}]}}`), &wrapper))

	require.Len(t, wrapper.Data.Entries, 1)
	assert.Equal(t, "i", wrapper.Data.Entries[0].ID)
	assert.Equal(t, TypeIssue, wrapper.Data.Entries[0].Type)
}

func TestEntry_JSON(t *testing.T) {
	e := Entry{
		ID:        "f",
		Type:      TypeFollowUp,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Collapsed: true,
		Body:      FollowUp{Title: "t", Details: "d"},
	}

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "f", "type": "followUp", "createdAt": "2024-01-01T12:00:00.000Z",
		"collapsed": true, "followUp": {"title": "t", "details": "d"}
	}`, string(b))

	var back Entry
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Empty(t, cmp.Diff(e, back))

	err = json.Unmarshal([]byte(`{"type": "nope"}`), &back)
	assert.ErrorIs(t, err, ErrUnknownEntryType)
}
