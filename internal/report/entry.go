// Package report normalizes field-service-report document data.
//
// Documents arrive from storage or from edits in whatever shape an older
// client left them. Every function here returns a fresh, canonical document:
// unique entry ids, typed entry bodies, and an issues list derived from the
// entries. Nothing in this package returns an error; data that cannot be
// interpreted is dropped or, for entries of an unknown type, set aside in
// DocData.Unrecognized.
package report

import (
	"encoding/json"
	"errors"
	"time"
)

// EntryType classifies a report entry.
type EntryType string

const (
	TypeIssue      EntryType = "issue"
	TypeCorrection EntryType = "correction"
	TypeOrderParts EntryType = "orderParts"
	TypeDocRequest EntryType = "docRequest"
	TypeFollowUp   EntryType = "followUp"
	TypeCommentary EntryType = "commentary"
	TypeInternal   EntryType = "internal"
)

// EntryTypes lists the recognized kinds in display order.
var EntryTypes = []EntryType{
	TypeIssue, TypeCorrection, TypeOrderParts, TypeDocRequest,
	TypeFollowUp, TypeCommentary, TypeInternal,
}

func (t EntryType) Valid() bool {
	for _, k := range EntryTypes {
		if t == k {
			return true
		}
	}
	return false
}

// DocKind is the kind of document a docRequest entry asks for.
type DocKind string

const (
	DocInstallation DocKind = "installation"
	DocOperation    DocKind = "operation"
	DocMaintenance  DocKind = "maintenance"
	DocParts        DocKind = "parts"
	DocElectrical   DocKind = "electrical"
	DocOther        DocKind = "other"
)

var DocKinds = []DocKind{DocInstallation, DocOperation, DocMaintenance, DocParts, DocElectrical, DocOther}

func parseDocKind(s string) DocKind {
	for _, k := range DocKinds {
		if DocKind(s) == k {
			return k
		}
	}
	return DocInstallation
}

var ErrUnknownEntryType = errors.New("unknown entry type")

// Body is the kind-specific payload of an Entry. The concrete types are
// PhotoNote, PartsOrder, DocRequest, FollowUp and Note.
type Body interface {
	fields() map[string]any
	clone() Body
}

type Photo struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// PhotoNote is the body of issue and correction entries.
type PhotoNote struct {
	Note   string
	Photos []Photo
}

func (b PhotoNote) fields() map[string]any {
	photos := make([]any, 0, len(b.Photos))
	for _, p := range b.Photos {
		photos = append(photos, map[string]any{"id": p.ID, "imageUrl": p.ImageURL})
	}
	return map[string]any{"note": b.Note, "photos": photos}
}

func (b PhotoNote) clone() Body {
	b.Photos = append([]Photo{}, b.Photos...)
	return b
}

type Part struct {
	ID     string `json:"id"`
	PartNo string `json:"partNo"`
	Desc   string `json:"desc"`
	Qty    string `json:"qty"`
}

func (p Part) blank() bool {
	return isBlank(p.PartNo) && isBlank(p.Desc) && isBlank(p.Qty)
}

// PartsOrder is the body of orderParts entries.
type PartsOrder struct {
	Parts []Part
	Note  string
}

func (b PartsOrder) fields() map[string]any {
	parts := make([]any, 0, len(b.Parts))
	for _, p := range b.Parts {
		parts = append(parts, map[string]any{"id": p.ID, "partNo": p.PartNo, "desc": p.Desc, "qty": p.Qty})
	}
	return map[string]any{"parts": parts, "note": b.Note}
}

func (b PartsOrder) clone() Body {
	b.Parts = append([]Part{}, b.Parts...)
	return b
}

// DocRequest is the body of docRequest entries.
type DocRequest struct {
	DocKind  DocKind
	DocNotes string
}

func (b DocRequest) fields() map[string]any {
	return map[string]any{"docKind": string(b.DocKind), "docNotes": b.DocNotes}
}

func (b DocRequest) clone() Body { return b }

// FollowUp is the body of followUp entries.
type FollowUp struct {
	Title   string
	Details string
}

func (b FollowUp) fields() map[string]any {
	return map[string]any{"followUp": map[string]any{"title": b.Title, "details": b.Details}}
}

func (b FollowUp) clone() Body { return b }

// Note is the body of commentary and internal entries.
type Note struct {
	Note string
}

func (b Note) fields() map[string]any { return map[string]any{"note": b.Note} }

func (b Note) clone() Body { return b }

// Entry is one typed unit of report content.
type Entry struct {
	ID        string
	Type      EntryType
	CreatedAt time.Time
	Collapsed bool
	Body      Body
}

func (e Entry) clone() Entry {
	if e.Body != nil {
		e.Body = e.Body.clone()
	}
	return e
}

// toMap flattens e into its loose wire form.
func (e Entry) toMap() map[string]any {
	m := map[string]any{}
	if e.Body != nil {
		m = e.Body.fields()
	}
	m["id"] = e.ID
	m["type"] = string(e.Type)
	m["collapsed"] = e.Collapsed
	if !e.CreatedAt.IsZero() {
		m["createdAt"] = formatTime(e.CreatedAt)
	}
	return m
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toMap())
}

// UnmarshalJSON normalizes the entry with the default engine. Entries of an
// unknown type yield ErrUnknownEntryType.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out, ok := defaultEngine.entryFromMap(m)
	if !ok {
		return ErrUnknownEntryType
	}
	*e = out
	return nil
}

// PhotoNote returns the body as a PhotoNote, if it is one.
func (e Entry) PhotoNote() (PhotoNote, bool) {
	b, ok := e.Body.(PhotoNote)
	return b, ok
}

func (e Entry) PartsOrder() (PartsOrder, bool) {
	b, ok := e.Body.(PartsOrder)
	return b, ok
}

func (e Entry) DocRequest() (DocRequest, bool) {
	b, ok := e.Body.(DocRequest)
	return b, ok
}

func (e Entry) FollowUp() (FollowUp, bool) {
	b, ok := e.Body.(FollowUp)
	return b, ok
}

func (e Entry) Note() (Note, bool) {
	b, ok := e.Body.(Note)
	return b, ok
}

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
