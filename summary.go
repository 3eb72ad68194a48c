package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// summaryPreviewRows is how many dataset rows the summary prints.
const summaryPreviewRows = 5

// PrintSummary writes the run counters, a preview of the dataset and a
// breakdown by primary type.
func PrintSummary(w io.Writer, snap RunSnapshot, ds *Dataset) {
	if len(ds.Records) == 0 {
		fmt.Fprintln(w, "No Pokémon were collected. The site structure might have changed.")
	}

	counts := table.NewWriter()
	counts.SetOutputMirror(w)
	counts.SetTitle("Run " + snap.RunID)
	counts.AppendHeader(table.Row{"Metric", "Count"})
	counts.AppendRow(table.Row{"Listed", snap.Total})
	counts.AppendRow(table.Row{"Processed", snap.Processed})
	counts.AppendRow(table.Row{"Written", len(ds.Records)})
	counts.AppendRow(table.Row{"Skipped", len(snap.Skipped)})
	fields := make([]string, 0, len(snap.FieldProblems))
	for f := range snap.FieldProblems {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	if len(fields) > 0 {
		counts.AppendSeparator()
		for _, f := range fields {
			counts.AppendRow(table.Row{"Problems: " + f, snap.FieldProblems[f]})
		}
	}
	if snap.ImagesSaved+snap.ImagesExisting+len(snap.ImageFailures) > 0 {
		counts.AppendSeparator()
		counts.AppendRow(table.Row{"Images saved", snap.ImagesSaved})
		counts.AppendRow(table.Row{"Images already present", snap.ImagesExisting})
		counts.AppendRow(table.Row{"Image failures", len(snap.ImageFailures)})
	}
	counts.Render()

	if len(snap.Skipped) > 0 {
		skipped := table.NewWriter()
		skipped.SetOutputMirror(w)
		skipped.SetTitle("Skipped")
		skipped.AppendHeader(table.Row{"Name", "URL", "Reason"})
		for _, s := range snap.Skipped {
			skipped.AppendRow(table.Row{s.Reference.Name, s.Reference.URL, s.Reason})
		}
		skipped.Render()
	}

	if len(snap.ImageFailures) > 0 {
		failures := table.NewWriter()
		failures.SetOutputMirror(w)
		failures.SetTitle("Image failures")
		failures.AppendHeader(table.Row{"Name", "Reason"})
		for _, f := range snap.ImageFailures {
			failures.AppendRow(table.Row{f.Reference.Name, f.Reason})
		}
		failures.Render()
	}

	if len(ds.Records) == 0 {
		return
	}

	preview := table.NewWriter()
	preview.SetOutputMirror(w)
	preview.SetTitle("First rows")
	preview.AppendHeader(table.Row{"#", "Name", "Type", "Species", "Total"})
	for i, r := range ds.Records {
		if i >= summaryPreviewRows {
			break
		}
		typ := r.PrimaryType
		if r.SecondaryType != nil {
			typ += "/" + *r.SecondaryType
		}
		preview.AppendRow(table.Row{r.CatalogNumber, r.Name, typ, formatString(r.Species), formatInt(r.StatTotal)})
	}
	preview.Render()

	byType := make(map[string]int)
	for _, r := range ds.Records {
		byType[r.PrimaryType]++
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if byType[types[i]] != byType[types[j]] {
			return byType[types[i]] > byType[types[j]]
		}
		return types[i] < types[j]
	})

	breakdown := table.NewWriter()
	breakdown.SetOutputMirror(w)
	breakdown.SetTitle("By primary type")
	breakdown.AppendHeader(table.Row{"Type", "Count"})
	for _, t := range types {
		breakdown.AppendRow(table.Row{t, byType[t]})
	}
	breakdown.Render()
}
