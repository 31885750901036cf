package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"testcat/internal/domain"
)

// viewFilter selects which entries the catalog viewer lists
type viewFilter int

const (
	showAll viewFilter = iota
	showDisruptive
	showNonDisruptive
	showFailures
)

var filterNames = map[viewFilter]string{
	showAll:           "all",
	showDisruptive:    string(domain.Disruptive),
	showNonDisruptive: string(domain.NonDisruptive),
	showFailures:      "unclassified",
}

// viewEntry is one line of the viewer list: a record or a failure
type viewEntry struct {
	record  *domain.TestRecord
	failure *domain.FileFailure
}

// CatalogViewer browses a catalog document in an interactive TUI
type CatalogViewer struct{}

// NewCatalogViewer creates a new CatalogViewer
func NewCatalogViewer() *CatalogViewer {
	return &CatalogViewer{}
}

// catalogEntries lists the entries matching filter: records in partition and
// index order, then failures.
func catalogEntries(output *domain.CatalogOutput, filter viewFilter) []viewEntry {
	var records []domain.TestRecord
	if output.Catalog != nil {
		switch filter {
		case showAll:
			records = output.Catalog.All()
		case showDisruptive:
			records = output.Catalog.Records(domain.Disruptive)
		case showNonDisruptive:
			records = output.Catalog.Records(domain.NonDisruptive)
		}
	}

	var entries []viewEntry
	for i := range records {
		entries = append(entries, viewEntry{record: &records[i]})
	}
	if filter == showAll || filter == showFailures {
		for i := range output.Failures {
			entries = append(entries, viewEntry{failure: &output.Failures[i]})
		}
	}
	return entries
}

// View displays the catalog in an interactive TUI
func (cv *CatalogViewer) View(output *domain.CatalogOutput) error {
	if output.Catalog == nil || (output.Catalog.Len() == 0 && output.Complete()) {
		color.Yellow("Catalog is empty, nothing to view")
		return nil
	}

	filter := showAll
	entries := catalogEntries(output, filter)

	// Create the application
	app := tview.NewApplication()

	// Create list of entries (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Create stats header view (shows path and class)
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	// Create text view for entry details (right side)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	// Create a container with right padding for the details view
	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	// Create right side layout: stats on top, details below
	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// list on left (1/3), details on right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(" Test Catalog (%d disruptive, %d nonDisruptive, %d unclassified) | showing [yellow]%s[white] | ↑↓ navigate, [yellow]F[white] filter, → details, ← back, Ctrl+C exit ",
			output.Catalog.Count(domain.Disruptive),
			output.Catalog.Count(domain.NonDisruptive),
			len(output.Failures),
			filterNames[filter]))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(entries) {
			statsView.SetText("")
			detailsView.SetText("")
			return
		}
		statsView.SetText(formatEntryStats(entries[index]))
		detailsView.SetText(formatEntryDetails(entries[index]))
	}

	fillList := func() {
		list.Clear()
		for i, e := range entries {
			list.AddItem(formatEntryTitle(e, i+1), "", 0, nil)
		}
		updateHeader()
		updateDetails()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'f', 'F':
				filter = (filter + 1) % viewFilter(len(filterNames))
				entries = catalogEntries(output, filter)
				fillList()
				return nil
			case 'q':
				app.Stop()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	fillList()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// formatEntryTitle formats a list line using tview color tags
func formatEntryTitle(e viewEntry, number int) string {
	if e.failure != nil {
		return fmt.Sprintf("[red]✗ %d.[white] %s", number, e.failure.ModulePath)
	}
	tag := "[green]"
	if e.record.Nature == domain.Disruptive {
		tag = "[yellow]"
	}
	return fmt.Sprintf("%s%d.[white] %s/%s", tag, number, e.record.ComponentName, e.record.ModuleName)
}

func formatEntryStats(e viewEntry) string {
	if e.failure != nil {
		return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]\n[cyan]kind:[white] [red]%s[white]\n", e.failure.ModulePath, e.failure.Kind)
	}
	r := e.record
	return fmt.Sprintf("[cyan]%s[white] #%d  [cyan]class:[white] [yellow]%s[white]\n", r.Nature, r.Index, r.ImplementationClass.String())
}

// formatEntryDetails formats the details pane using tview color tags
func formatEntryDetails(e viewEntry) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if f := e.failure; f != nil {
		fmt.Fprintf(w, "[red]✗ %s[white]\n\n", f.Kind)
		fmt.Fprintf(w, "[cyan]File:[white]\t%s\n\n", f.ModulePath)
		fmt.Fprintf(w, "[yellow]Message:[white]\n%s\n", f.Message)
		if len(f.Candidates) > 0 {
			fmt.Fprintf(w, "\n[yellow]Candidates:[white]\n")
			for _, c := range f.Candidates {
				fmt.Fprintf(w, "  %s\n", c)
			}
		}
		w.Flush()
		return builder.String()
	}

	r := e.record
	fmt.Fprintf(w, "[green]✓ %s[white]\n\n", r.ModuleName)
	fmt.Fprintf(w, "[cyan]File:[white]\t%s\n", r.ModulePath)
	fmt.Fprintf(w, "[cyan]Component:[white]\t%s\n", r.ComponentName)
	fmt.Fprintf(w, "[cyan]Nature:[white]\t%s\n", r.Nature)
	fmt.Fprintf(w, "[cyan]Index:[white]\t%d\n", r.Index)
	fmt.Fprintf(w, "[cyan]Volume types:[white]\t%s\n\n", strings.Join(r.VolumeTopologies, ", "))
	fmt.Fprintf(w, "[yellow]Implementation:[white]\n")
	fmt.Fprintf(w, "  module\t%s\n", r.ImplementationClass.Module)
	fmt.Fprintf(w, "  class\t%s (line %d)\n", r.ImplementationClass.Class, r.ImplementationClass.Line)
	fmt.Fprintf(w, "  entry point\t%s\n", r.ImplementationClass.EntryPoint)
	if len(r.ImplementationClass.Bases) > 0 {
		fmt.Fprintf(w, "  bases\t%s\n", strings.Join(r.ImplementationClass.Bases, ", "))
	}

	w.Flush()
	return builder.String()
}
