package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/linkgraph/pkg/docgraph"
	"github.com/matzehuels/linkgraph/pkg/graph"
	"github.com/matzehuels/linkgraph/pkg/layout"
	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, tails
	colorYellow = lipgloss.Color("220") // Amber - warnings, edited documents
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorPurple = lipgloss.Color("141") // Lavender - lanes
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// laneColors cycles through the lanes of a diagram.
var laneColors = []lipgloss.Color{colorCyan, colorPurple, colorBlue, colorYellow, colorGreen, colorRed}

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleTail   = lipgloss.NewStyle().Foreground(colorGreen)
	styleEdited = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+msg)
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints thread statistics on a single line.
func printStats(nodeCount, edgeCount int, cached bool) {
	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)),
		statusStyle.Render(status),
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// =============================================================================
// Thread Output
// =============================================================================

// shortList abbreviates and joins shas, or returns a dash for none.
func shortList(shas []linkage.Sha) string {
	if len(shas) == 0 {
		return "—"
	}
	out := make([]string, len(shas))
	for i, s := range shas {
		out[i] = s.Short()
	}
	return strings.Join(out, ", ")
}

// threadTable lays out the live nodes of t with their children, in row order.
func threadTable(t graph.Thread) *table.Table {
	children := t.Adjacency()
	rows := make([][]string, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		original := ""
		if n.Original != "" {
			original = n.Original.Short()
		}
		rows = append(rows, []string{
			fmt.Sprint(n.Row), fmt.Sprint(n.Column), n.Sha.Short(), original, shortList(children[n.Sha]),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Row", "Lane", "Sha", "Edit of", "Children").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			n := t.Nodes[row]
			switch {
			case col != 2:
				return lipgloss.NewStyle().Foreground(colorGray)
			case n.Tail:
				return styleTail
			case n.Original != "":
				return styleEdited
			}
			return StyleValue
		})
}

// nodeTable shows how a single document was resolved.
func nodeTable(n docgraph.Node) *table.Table {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(
			[]string{"Sha", string(n.Sha)},
			[]string{"Original", string(n.Original)},
			[]string{"Current", yesNo(n.Current)},
			[]string{"Deleted", yesNo(n.Deleted)},
			[]string{"Tail", yesNo(n.Tail)},
			[]string{"Versions", shortList(n.Versions)},
			[]string{"Children", shortList(n.Children)},
			[]string{"Parents", shortList(n.Parents)},
			[]string{"Links", shortList(n.Links)},
			[]string{"Updates", shortList(n.Updates)},
		).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return styleHeader
			}
			return StyleValue
		})
}

// colorDiagram renders rows like [layout.Draw] with each lane in its own
// color. Tails are green and edited documents amber.
func colorDiagram(t graph.Thread, rows []layout.Row) string {
	width := layout.Width(rows)
	var b strings.Builder
	for _, r := range rows {
		for x, cell := range layout.Glyphs(r, width) {
			s := string(cell)
			switch {
			case cell == ' ':
				b.WriteString(s)
			case x%2 == 1:
				b.WriteString(StyleDim.Render(s))
			default:
				lane := laneColors[(x/2)%len(laneColors)]
				st := lipgloss.NewStyle().Foreground(lane)
				if x/2 == r.Column {
					st = st.Bold(true)
				}
				b.WriteString(st.Render(s))
			}
		}
		b.WriteByte(' ')

		label := r.Sha.Short()
		if n, ok := t.Lookup(r.Sha); ok {
			switch {
			case n.Tail:
				label = styleTail.Render(label)
			case n.Original != "":
				label = styleEdited.Render(label)
			}
		}
		b.WriteString(label)
		b.WriteByte('\n')
	}
	return b.String()
}
