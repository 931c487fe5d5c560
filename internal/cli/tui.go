package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/linkgraph/pkg/docgraph"
	"github.com/matzehuels/linkgraph/pkg/graph"
	"github.com/matzehuels/linkgraph/pkg/layout"
	"github.com/matzehuels/linkgraph/pkg/linkage"
	"github.com/matzehuels/linkgraph/pkg/pipeline"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command for walking a thread interactively.
func (c *CLI) browseCommand() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "browse [sha]",
		Short: "Walk the thread around a document interactively",
		Long: `Walk the thread around a document in the terminal.

The lane diagram is shown on the left. Moving the cursor shows how the
selected document was resolved: its original, versions, children and parents.
Press enter to re-root the view on the selected document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), q.options(args[0]))
		},
	}
	q.register(cmd)
	return cmd
}

// threadLoader resolves the thread around origin with node details.
type threadLoader func(ctx context.Context, origin linkage.Sha) (ThreadModel, error)

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	load := func(ctx context.Context, origin linkage.Sha) (ThreadModel, error) {
		o := opts
		o.Origin = string(origin)
		o.Logger = c.Logger
		g, err := s.runner.Graph(ctx, o)
		if err != nil {
			return ThreadModel{}, err
		}
		t, err := graph.FromGraph(ctx, g)
		if err != nil {
			return ThreadModel{}, err
		}
		nodes, err := g.Nodes(ctx)
		if err != nil {
			return ThreadModel{}, err
		}
		return NewThreadModel(t, nodes), nil
	}

	m, err := load(ctx, linkage.Sha(opts.Origin))
	if err != nil {
		return err
	}
	m.load = load
	m.ctx = ctx

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// ThreadModel - Interactive thread browser
// =============================================================================

// ThreadModel is the bubbletea model for browsing a resolved thread.
type ThreadModel struct {
	Thread graph.Thread
	Rows   []layout.Row
	Nodes  map[linkage.Sha]docgraph.Node
	Cursor int
	Offset int
	Height int
	Err    error

	ctx  context.Context
	load threadLoader
}

// NewThreadModel creates a browser over t. nodes supplies the details panel.
func NewThreadModel(t graph.Thread, nodes []docgraph.Node) ThreadModel {
	byS := make(map[linkage.Sha]docgraph.Node, len(nodes))
	for _, n := range nodes {
		byS[n.Sha] = n
	}
	return ThreadModel{
		Thread: t,
		Rows:   t.Rows(),
		Nodes:  byS,
		Height: 15,
	}
}

// Selected returns the sha under the cursor.
func (m ThreadModel) Selected() (linkage.Sha, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return "", false
	}
	return m.Rows[m.Cursor].Sha, true
}

func (m ThreadModel) Init() tea.Cmd {
	return nil
}

func (m ThreadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "enter":
			sha, ok := m.Selected()
			if !ok || m.load == nil {
				return m, nil
			}
			next, err := m.load(m.ctx, sha)
			if err != nil {
				m.Err = err
				return m, nil
			}
			next.load, next.ctx, next.Height = m.load, m.ctx, m.Height
			return next, nil
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ThreadModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Thread " + m.Thread.Origin.Short()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ re-root  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  no live documents"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	lines := strings.Split(strings.TrimSuffix(colorDiagram(m.Thread, m.Rows[m.Offset:end]), "\n"), "\n")
	for i := range lines {
		cursor := "  "
		if m.Offset+i == m.Cursor {
			cursor = listSelectedStyle.Render("▸ ")
		}
		lines[i] = cursor + lines[i]
	}
	diagram := strings.Join(lines, "\n")

	details := ""
	if sha, ok := m.Selected(); ok {
		if n, ok := m.Nodes[sha]; ok {
			details = nodeTable(n).Render()
		}
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, diagram, "   ", details))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorRed).Render(m.Err.Error()))
	}
	return b.String()
}
