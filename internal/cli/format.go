package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/report"
	"github.com/dmitrijs2005/fsrkeeper/internal/reports"
)

const headlineWidth = 60

// formatEntry renders one entry: a headline when collapsed, every field when
// expanded.
func formatEntry(n int, e report.Entry) string {
	var b strings.Builder
	marker := "-"
	if e.Collapsed {
		marker = "+"
	}
	fmt.Fprintf(&b, "%s %2d. [%s] %s  %s  %s\n", marker, n, e.Type, e.ID,
		e.CreatedAt.Local().Format(time.DateTime), headline(e))
	if e.Collapsed {
		return b.String()
	}

	switch body := e.Body.(type) {
	case report.PhotoNote:
		writeBlock(&b, body.Note)
		for _, p := range body.Photos {
			fmt.Fprintf(&b, "      photo: %s\n", p.ImageURL)
		}
	case report.PartsOrder:
		for _, p := range body.Parts {
			fmt.Fprintf(&b, "      %-12s %-30s x%s\n", p.PartNo, p.Desc, p.Qty)
		}
		writeBlock(&b, body.Note)
	case report.DocRequest:
		fmt.Fprintf(&b, "      kind: %s\n", body.DocKind)
		writeBlock(&b, body.DocNotes)
	case report.FollowUp:
		fmt.Fprintf(&b, "      %s\n", body.Title)
		writeBlock(&b, body.Details)
	case report.Note:
		writeBlock(&b, body.Note)
	}
	return b.String()
}

func headline(e report.Entry) string {
	var s string
	switch body := e.Body.(type) {
	case report.PhotoNote:
		s = body.Note
		if len(body.Photos) > 0 {
			s = fmt.Sprintf("%s (%d photos)", s, len(body.Photos))
		}
	case report.PartsOrder:
		s = report.PartsNeededLine(body)
	case report.DocRequest:
		s = string(body.DocKind)
	case report.FollowUp:
		s = body.Title
	case report.Note:
		s = body.Note
	}
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > headlineWidth {
		s = string(r[:headlineWidth-1]) + "…"
	}
	return s
}

func writeBlock(b *strings.Builder, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(b, "      %s\n", line)
	}
}

// formatSummary renders the report header, the details and entry counts.
func formatSummary(r reports.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", r.Title, r.Customer)
	fmt.Fprintf(&b, "created %s, updated %s\n",
		r.CreatedAt.Local().Format(time.DateTime), r.UpdatedAt.Local().Format(time.DateTime))

	d := r.Data.Details
	b.WriteString("Work summary:\n")
	if d.WorkSummary == "" {
		b.WriteString("      (none)\n")
	}
	writeBlock(&b, d.WorkSummary)
	writeItems(&b, "Parts installed", d.PartsInstalled)
	writeItems(&b, "Parts needed", d.PartsNeeded)

	counts := make(map[report.EntryType]int)
	for _, e := range r.Data.Entries {
		counts[e.Type]++
	}
	b.WriteString("Entries:")
	for _, t := range report.EntryTypes {
		if counts[t] > 0 {
			fmt.Fprintf(&b, " %s=%d", t, counts[t])
		}
	}
	fmt.Fprintf(&b, " (issues: %d)\n", len(r.Data.Issues()))
	return b.String()
}

func writeItems(b *strings.Builder, title string, items []report.Item) {
	fmt.Fprintf(b, "%s:\n", title)
	if len(items) == 0 {
		b.WriteString("      (none)\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "      - %s\n", it.Text)
	}
}
