package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/linkgraph/pkg/docgraph"
	"github.com/matzehuels/linkgraph/pkg/graph"
	"github.com/matzehuels/linkgraph/pkg/linkage"
)

func fixtureModel(t *testing.T, origin string) ThreadModel {
	t.Helper()
	ctx := context.Background()
	g := docgraph.New(fixtureStore(t), linkage.Sha(origin))
	thread, err := graph.FromGraph(ctx, g)
	if err != nil {
		t.Fatalf("FromGraph() error: %v", err)
	}
	nodes, err := g.Nodes(ctx)
	if err != nil {
		t.Fatalf("Nodes() error: %v", err)
	}
	return NewThreadModel(thread, nodes)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m ThreadModel, msg tea.Msg) (ThreadModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(ThreadModel), cmd
}

func TestThreadModelNavigation(t *testing.T) {
	m := fixtureModel(t, shaA)
	if len(m.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.Rows))
	}

	m, _ = update(m, key("up"))
	if m.Cursor != 0 {
		t.Errorf("up at top: Cursor = %d, want 0", m.Cursor)
	}
	m, _ = update(m, key("j"))
	m, _ = update(m, key("down"))
	if m.Cursor != 1 {
		t.Errorf("down past end: Cursor = %d, want 1", m.Cursor)
	}
	if sha, _ := m.Selected(); sha != m.Rows[1].Sha {
		t.Errorf("Selected() = %s, want %s", sha, m.Rows[1].Sha)
	}
	m, _ = update(m, key("g"))
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("home: Cursor, Offset = %d, %d, want 0, 0", m.Cursor, m.Offset)
	}
}

func TestThreadModelScrolls(t *testing.T) {
	m := fixtureModel(t, shaA)
	m.Height = 1

	m, _ = update(m, key("down"))
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}
	m, _ = update(m, key("k"))
	if m.Offset != 0 {
		t.Errorf("Offset = %d, want 0", m.Offset)
	}
}

func TestThreadModelWindowSize(t *testing.T) {
	m := fixtureModel(t, shaA)
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 30})
	if m.Height != 24 {
		t.Errorf("Height = %d, want 24", m.Height)
	}
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 3})
	if m.Height != 5 {
		t.Errorf("Height = %d, want minimum 5", m.Height)
	}
}

func TestThreadModelQuit(t *testing.T) {
	m := fixtureModel(t, shaA)
	_, cmd := update(m, key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestThreadModelReroot(t *testing.T) {
	m := fixtureModel(t, shaA)
	var loaded linkage.Sha
	m.ctx = context.Background()
	m.load = func(_ context.Context, origin linkage.Sha) (ThreadModel, error) {
		loaded = origin
		return fixtureModel(t, string(origin)), nil
	}

	m, _ = update(m, key("down"))
	want := m.Rows[1].Sha
	m, _ = update(m, key("enter"))

	if loaded != want {
		t.Errorf("loaded %s, want %s", loaded, want)
	}
	if m.Thread.Origin != want {
		t.Errorf("Thread.Origin = %s, want %s", m.Thread.Origin, want)
	}
	if m.load == nil {
		t.Error("re-rooted model should keep its loader")
	}
}

func TestThreadModelView(t *testing.T) {
	m := fixtureModel(t, shaA)
	view := m.View()
	for _, want := range []string{linkage.Sha(shaA).Short(), linkage.Sha(shaC).Short(), "[1/2]", "Original"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}
