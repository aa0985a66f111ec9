package cli

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/reports"
)

// usageError is returned for malformed command arguments.
type usageError string

func (e usageError) Error() string { return "Usage: " + string(e) }

func usage(text string) error { return usageError(text) }

func (a *App) Reports(ctx context.Context) error {
	if err := a.requireSignedIn(); err != nil {
		return a.report(ctx, err)
	}
	list, err := a.repo.List(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	if len(list) == 0 {
		a.printf("No reports yet. Use 'newreport'.\n")
		return nil
	}
	for _, r := range list {
		a.printf("  %s  %-30s %-20s %2d entries  updated %s\n",
			r.ID, r.Title, r.Customer, len(r.Data.Entries), r.UpdatedAt.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) NewReport(ctx context.Context) error {
	if err := a.requireSignedIn(); err != nil {
		return a.report(ctx, err)
	}
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	customer, err := GetSimpleText(a.reader, "Customer", a.out)
	if err != nil {
		return a.report(ctx, err)
	}

	r, err := a.repo.Save(ctx, reports.Report{Title: title, Customer: customer})
	if err != nil {
		return a.report(ctx, err)
	}
	a.current = &r
	a.printf("Created report %s.\n", r.ID)
	return nil
}

func (a *App) Open(ctx context.Context, args []string) error {
	if err := a.requireSignedIn(); err != nil {
		return a.report(ctx, err)
	}
	if len(args) != 1 {
		return a.report(ctx, usage("open <id>"))
	}
	r, err := a.repo.Get(ctx, args[0])
	if err != nil {
		return a.report(ctx, err)
	}
	a.current = &r
	a.printf("Opened %q (%d entries).\n", r.Title, len(r.Data.Entries))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if err := a.requireSignedIn(); err != nil {
		return a.report(ctx, err)
	}
	if len(args) != 1 {
		return a.report(ctx, usage("delete <id>"))
	}
	if !Confirm(a.reader, "Delete report "+args[0]+"?", a.out) {
		return nil
	}
	if err := a.repo.Delete(ctx, args[0]); err != nil {
		return a.report(ctx, err)
	}
	if a.current != nil && a.current.ID == args[0] {
		a.current = nil
	}
	a.printf("Deleted.\n")
	return nil
}

// TripTypes prints the trip types, or replaces them with "trips set a,b,c".
func (a *App) TripTypes(ctx context.Context, args []string) error {
	if err := a.requireSignedIn(); err != nil {
		return a.report(ctx, err)
	}
	if len(args) > 0 {
		if args[0] != "set" {
			return a.report(ctx, usage("trips [set a,b,...]"))
		}
		types := strings.Split(strings.Join(args[1:], " "), ",")
		if err := a.repo.SetTripTypes(ctx, types); err != nil {
			return a.report(ctx, err)
		}
	}

	types, err := a.repo.TripTypes(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	if len(types) == 0 {
		a.printf("No trip types.\n")
		return nil
	}
	a.printf("Trip types: %s\n", strings.Join(types, ", "))
	return nil
}

// saveCurrent stores the open report after an edit.
func (a *App) saveCurrent(ctx context.Context) error {
	r, err := a.repo.Save(ctx, *a.current)
	if err != nil {
		return err
	}
	a.current = &r
	return nil
}
