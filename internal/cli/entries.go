package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fsrkeeper/internal/filex"
	"github.com/dmitrijs2005/fsrkeeper/internal/report"
)

// Add prompts for a new entry of the given kind and appends it to the open
// report.
func (a *App) Add(ctx context.Context, args []string) error {
	if err := a.requireReport(); err != nil {
		return a.report(ctx, err)
	}
	if len(args) != 1 {
		return a.report(ctx, usage("add <kind>"))
	}
	e, ok := report.NewEntry(report.EntryType(args[0]))
	if !ok {
		return a.report(ctx, usage("add <"+joinTypes()+">"))
	}

	body, err := a.promptBody(e.Type)
	if err != nil {
		return a.report(ctx, err)
	}
	e.Body = body

	a.current.Data = report.AddEntryWithEffects(a.current.Data, e)
	if err := a.saveCurrent(ctx); err != nil {
		return a.report(ctx, err)
	}
	a.printf("Added %s entry %s.\n", e.Type, e.ID)
	return nil
}

func (a *App) promptBody(t report.EntryType) (report.Body, error) {
	switch t {
	case report.TypeIssue, report.TypeCorrection:
		note, err := GetMultiline(a.reader, "Note", a.out)
		if err != nil {
			return nil, err
		}
		urls, err := GetLines(a.reader, "Photo URLs, one per line", a.out)
		if err != nil {
			return nil, err
		}
		b := report.PhotoNote{Note: note}
		for _, u := range urls {
			b.Photos = append(b.Photos, report.Photo{ImageURL: strings.TrimSpace(u)})
		}
		return b, nil

	case report.TypeOrderParts:
		rows, err := GetLines(a.reader, "Parts as partNo;description;qty, one per line", a.out)
		if err != nil {
			return nil, err
		}
		note, err := GetSimpleText(a.reader, "Note", a.out)
		if err != nil {
			return nil, err
		}
		return report.PartsOrder{Parts: parseParts(rows), Note: note}, nil

	case report.TypeDocRequest:
		kinds := make([]string, 0, len(report.DocKinds))
		for _, k := range report.DocKinds {
			kinds = append(kinds, string(k))
		}
		kind, err := GetSimpleText(a.reader, "Document kind ("+strings.Join(kinds, ", ")+")", a.out)
		if err != nil {
			return nil, err
		}
		notes, err := GetMultiline(a.reader, "Notes", a.out)
		if err != nil {
			return nil, err
		}
		return report.DocRequest{DocKind: report.DocKind(kind), DocNotes: notes}, nil

	case report.TypeFollowUp:
		title, err := GetSimpleText(a.reader, "Follow-up title", a.out)
		if err != nil {
			return nil, err
		}
		details, err := GetMultiline(a.reader, "Details", a.out)
		if err != nil {
			return nil, err
		}
		return report.FollowUp{Title: title, Details: details}, nil
	}

	note, err := GetMultiline(a.reader, "Note", a.out)
	if err != nil {
		return nil, err
	}
	return report.Note{Note: note}, nil
}

func parseParts(rows []string) []report.Part {
	parts := make([]report.Part, 0, len(rows))
	for _, row := range rows {
		f := strings.SplitN(row, ";", 3)
		for len(f) < 3 {
			f = append(f, "")
		}
		parts = append(parts, report.Part{
			PartNo: strings.TrimSpace(f[0]),
			Desc:   strings.TrimSpace(f[1]),
			Qty:    strings.TrimSpace(f[2]),
		})
	}
	return parts
}

func joinTypes() string {
	names := make([]string, 0, len(report.EntryTypes))
	for _, t := range report.EntryTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, "|")
}

func (a *App) Entries(ctx context.Context) error {
	if err := a.requireReport(); err != nil {
		return a.report(ctx, err)
	}
	if len(a.current.Data.Entries) == 0 {
		a.printf("No entries. Use 'add <kind>'.\n")
		return nil
	}
	for i, e := range a.current.Data.Entries {
		a.printf("%s", formatEntry(i+1, e))
	}
	return nil
}

// Collapse folds or unfolds one entry, or all of them without an id.
func (a *App) Collapse(ctx context.Context, args []string, collapsed bool) error {
	if err := a.requireReport(); err != nil {
		return a.report(ctx, err)
	}
	switch len(args) {
	case 0:
		a.current.Data = report.SetEntriesCollapsed(a.current.Data, collapsed)
	case 1:
		if _, ok := a.current.Data.Entry(args[0]); !ok {
			return a.report(ctx, fmt.Errorf("no entry %s", args[0]))
		}
		a.current.Data = report.UpdateEntry(a.current.Data, args[0], func(e report.Entry) report.Entry {
			e.Collapsed = collapsed
			return e
		})
	default:
		return a.report(ctx, usage("collapse|expand [id]"))
	}
	if err := a.saveCurrent(ctx); err != nil {
		return a.report(ctx, err)
	}
	return a.Entries(ctx)
}

func (a *App) Move(ctx context.Context, args []string) error {
	if err := a.requireReport(); err != nil {
		return a.report(ctx, err)
	}
	if len(args) != 2 || (args[1] != string(report.Up) && args[1] != string(report.Down)) {
		return a.report(ctx, usage("move <id> up|down"))
	}
	a.current.Data = report.MoveEntry(a.current.Data, args[0], report.Direction(args[1]))
	if err := a.saveCurrent(ctx); err != nil {
		return a.report(ctx, err)
	}
	return a.Entries(ctx)
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if err := a.requireReport(); err != nil {
		return a.report(ctx, err)
	}
	if len(args) != 1 {
		return a.report(ctx, usage("remove <id>"))
	}
	if _, ok := a.current.Data.Entry(args[0]); !ok {
		return a.report(ctx, fmt.Errorf("no entry %s", args[0]))
	}
	a.current.Data = report.RemoveEntry(a.current.Data, args[0])
	if err := a.saveCurrent(ctx); err != nil {
		return a.report(ctx, err)
	}
	a.printf("Removed %s.\n", args[0])
	return nil
}

// Details edits the work summary and the installed parts of the open report.
func (a *App) Details(ctx context.Context) error {
	if err := a.requireReport(); err != nil {
		return a.report(ctx, err)
	}
	d := a.current.Data.Details

	summary, err := GetMultiline(a.reader, "Work summary (empty keeps the current one)", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	if summary != "" {
		d.WorkSummary = summary
	}
	installed, err := GetLines(a.reader, "Parts installed, one per line (empty keeps the current list)", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	if len(installed) > 0 {
		d.PartsInstalled = make([]report.Item, 0, len(installed))
		for _, text := range installed {
			d.PartsInstalled = append(d.PartsInstalled, report.Item{Text: strings.TrimSpace(text)})
		}
	}

	a.current.Data = report.SetDetails(a.current.Data, d)
	if err := a.saveCurrent(ctx); err != nil {
		return a.report(ctx, err)
	}
	return a.Summary(ctx)
}

func (a *App) Summary(ctx context.Context) error {
	if err := a.requireReport(); err != nil {
		return a.report(ctx, err)
	}
	a.printf("%s", formatSummary(*a.current))
	return nil
}

// Export prints the open report as JSON, or writes it to the given file.
func (a *App) Export(ctx context.Context, args []string) error {
	if err := a.requireReport(); err != nil {
		return a.report(ctx, err)
	}
	data, err := json.MarshalIndent(a.current, "", "  ")
	if err != nil {
		return a.report(ctx, err)
	}
	if len(args) == 0 {
		a.printf("%s\n", data)
		return nil
	}
	if err := filex.WriteFile(args[0], append(data, '\n')); err != nil {
		return a.report(ctx, err)
	}
	a.printf("Exported to %s.\n", args[0])
	return nil
}
