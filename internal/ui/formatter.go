package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"testcat/internal/config"
	"testcat/internal/discovery"
	"testcat/internal/domain"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// Formatter formats and displays output
type Formatter struct {
	config   *config.Config
	metadata *discovery.MetadataExtractor
	out      io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config, metadata *discovery.MetadataExtractor) *Formatter {
	return &Formatter{
		config:   cfg,
		metadata: metadata,
		out:      os.Stdout,
	}
}

// SetOutput redirects the formatter
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

// PrintCatalogStats displays the statistics of a catalog document, the
// component tree of each partition and the files that failed.
func (f *Formatter) PrintCatalogStats(output *domain.CatalogOutput) {
	meta := output.Meta

	// Print header
	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                     Test Catalog Statistics                   ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	// Print table
	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	f.row("Test Files", white, fmt.Sprintf("%d", meta.TotalTestFiles))
	f.separator()
	f.row("Disruptive Tests", yellow, fmt.Sprintf("%d", meta.DisruptiveTests))
	f.separator()
	f.row("Non-Disruptive Tests", green, fmt.Sprintf("%d", meta.NonDisruptiveTests))
	f.separator()
	f.row("Unclassified Files", red, fmt.Sprintf("%d", meta.FailedTestFiles))
	f.separator()
	f.row("Components", white, fmt.Sprintf("%d", meta.Components))
	f.separator()
	f.row("Duration", white, fmt.Sprintf("%.2fs", meta.DurationSeconds))
	f.separator()
	f.row("Timestamp", white, meta.Timestamp)
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	if output.Catalog != nil {
		for _, nature := range domain.Natures {
			records := output.Catalog.Records(nature)
			if len(records) == 0 {
				continue
			}
			fmt.Fprintln(f.out)
			cyan.Fprintf(f.out, "%s (%d):\n", nature, len(records))
			f.printComponentTree(records)
		}
	}

	// Print summary line
	fmt.Fprintln(f.out)
	if meta.FailedTestFiles == 0 {
		green.Fprintln(f.out, "✓ All test files classified!")
		return
	}
	red.Fprintf(f.out, "✗ %d test file(s) could not be classified\n", meta.FailedTestFiles)
	fmt.Fprintln(f.out)
	f.PrintFailures(output.Failures)
}

func (f *Formatter) row(label string, c *color.Color, value string) {
	fmt.Fprintf(f.out, "│ %-31s │ ", label)
	c.Fprintf(f.out, "%-27s", value)
	fmt.Fprintln(f.out, " │")
}

func (f *Formatter) separator() {
	fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
}

// printComponentTree prints records grouped by component, in index order
// within each component.
func (f *Formatter) printComponentTree(records []domain.TestRecord) {
	byComponent := make(map[string][]domain.TestRecord)
	for _, r := range records {
		byComponent[r.ComponentName] = append(byComponent[r.ComponentName], r)
	}
	components := make([]string, 0, len(byComponent))
	for name := range byComponent {
		components = append(components, name)
	}
	sort.Strings(components)

	for i, name := range components {
		isLastComponent := i == len(components)-1
		branch, indent := "├── ", "│   "
		if isLastComponent {
			branch, indent = "└── ", "    "
		}
		cyan.Fprintf(f.out, "%s%s\n", branch, name)

		entries := byComponent[name]
		for j, r := range entries {
			leaf := "├── "
			if j == len(entries)-1 {
				leaf = "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s %s %s\n", indent, leaf,
				yellow.Sprintf("[%d]", r.Index),
				r.ModuleName,
				white.Sprintf("(%s) -> %s", strings.Join(r.VolumeTopologies, ", "), r.ImplementationClass.Class))
		}
	}
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.FileFailure
	IsFile   bool
}

// PrintFailures prints a tree of the files that could not be classified
func (f *Formatter) PrintFailures(failures []domain.FileFailure) {
	if len(failures) == 0 {
		return
	}

	root := &TreeNode{
		Children: make(map[string]*TreeNode),
	}

	for _, failure := range failures {
		parts := strings.Split(strings.TrimPrefix(f.relative(failure.ModulePath), "./"), "/")
		current := root

		// Navigate/create tree nodes for each path part
		for i, part := range parts {
			if part == "" {
				continue
			}
			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
					IsFile:   i == len(parts)-1,
				}
			}
			current = current.Children[part]
			if i == len(parts)-1 {
				current.Failures = append(current.Failures, failure)
			}
		}
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	// Sort children for consistent output
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		isLastChild := i == len(keys)-1

		connector, childPrefix := "├── ", "│   "
		if isLastChild {
			connector, childPrefix = "└── ", "    "
		}

		if child.IsFile {
			yellow.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
			for j, failure := range child.Failures {
				leaf := "├── "
				if j == len(child.Failures)-1 {
					leaf = "└── "
				}
				fmt.Fprintf(f.out, "%s%s%s%s %s\n", prefix, childPrefix, leaf, red.Sprint(failure.Kind), failure.Message)
				if len(failure.Candidates) > 0 {
					fmt.Fprintf(f.out, "%s%s    candidates: %s\n", prefix, childPrefix, strings.Join(failure.Candidates, ", "))
				}
			}
		} else {
			cyan.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
		}

		f.printTreeNode(child, prefix+childPrefix)
	}
}

// relative returns path relative to the project path when possible
func (f *Formatter) relative(path string) string {
	if f.config == nil {
		return path
	}
	rel, err := filepath.Rel(f.config.ProjectPath, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return path
	}
	return filepath.ToSlash(rel)
}

// PrintTestList prints a list of candidate test files, optionally with the
// metadata each one declares.
func (f *Formatter) PrintTestList(tests []string, showMetadata bool) {
	green.Fprintf(f.out, "Found %d test file(s):\n\n", len(tests))

	for i, test := range tests {
		isLastFile := i == len(tests)-1
		branch, indent := "├── ", "│   "
		if isLastFile {
			branch, indent = "└── ", "    "
		}
		cyan.Fprintf(f.out, "%s%s\n", branch, f.relative(test))

		if !showMetadata || f.metadata == nil {
			continue
		}

		meta, err := f.metadata.Extract(test)
		if err != nil {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprint(err))
		} else {
			fmt.Fprintf(f.out, "%s├── %s\n", indent, yellow.Sprint(meta.Nature))
			fmt.Fprintf(f.out, "%s└── %s\n", indent, strings.Join(meta.Topologies, ", "))
		}

		// Add spacing between files (except for the last one)
		if !isLastFile {
			fmt.Fprintln(f.out)
		}
	}
}
