package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/linkage"
	"github.com/matzehuels/linkgraph/pkg/pipeline"
)

// queryFlags are the flags shared by commands that resolve a thread.
type queryFlags struct {
	sort    string
	refresh bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.sort, "sort", pipeline.DefaultSort, "sibling order: store, sha")
	cmd.Flags().BoolVar(&q.refresh, "refresh", false, "ignore cached results")
}

func (q *queryFlags) options(origin string, formats ...string) pipeline.Options {
	return pipeline.Options{
		Origin:  origin,
		Sort:    q.sort,
		Formats: formats,
		Refresh: q.refresh,
	}
}

// treeCommand creates the tree command for printing the live adjacency.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		q      queryFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "tree [sha]",
		Short: "Print the resolved thread around a document",
		Long: `Print the resolved thread around a document.

The text format lists every live document in diagram order with the lane it
is drawn in, the document it is an edit of, and its children. The json format
prints the full thread, which the render command can also produce.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, pipeline.FormatText, pipeline.FormatJSON); err != nil {
				return err
			}
			return c.runTree(cmd.Context(), q.options(args[0], format))
		},
	}

	q.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatText, "output format: text, json")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, opts pipeline.Options) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	opts.Logger = c.Logger
	if opts.Formats[0] == pipeline.FormatJSON {
		res, err := s.runner.Execute(ctx, opts)
		if err != nil {
			return err
		}
		_, err = stdout.Write(res.Artifacts[pipeline.FormatJSON])
		return err
	}

	t, hit, err := s.runner.ThreadWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, threadTable(t).Render())
	if len(t.Tails) > 0 {
		printKeyValue("Tails", shortList(t.Tails))
	}
	printStats(len(t.Nodes), len(t.Edges), hit)
	return nil
}

// drawCommand creates the draw command for the ASCII lane diagram.
func (c *CLI) drawCommand() *cobra.Command {
	var (
		q     queryFlags
		color bool
	)

	cmd := &cobra.Command{
		Use:   "draw [sha]",
		Short: "Draw the thread around a document as a lane diagram",
		Long: `Draw the thread around a document as an ASCII lane diagram.

Each row is one live document: '*' marks its lane, '|' other open lanes, and
'-' and '+' join lanes where a document has several children or parents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDraw(cmd.Context(), q.options(args[0], pipeline.FormatText), color)
		},
	}

	q.register(cmd)
	cmd.Flags().BoolVar(&color, "color", false, "color lanes, tails and edited documents")

	return cmd
}

func (c *CLI) runDraw(ctx context.Context, opts pipeline.Options, color bool) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	opts.Logger = c.Logger
	if color {
		t, err := s.runner.Thread(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, colorDiagram(t, t.Rows()))
		return nil
	}

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	_, err = stdout.Write(res.Artifacts[pipeline.FormatText])
	return err
}

// nodeCommand creates the node command for inspecting one document.
func (c *CLI) nodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "node [origin] [sha]",
		Short: "Show how one document of a thread was resolved",
		Long: `Show how one document of the thread around origin was resolved: its
original, whether it is current, deleted or a tail, its live versions, and the
live documents it links to and is linked from.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNode(cmd.Context(), args[0], args[1])
		},
	}
}

func (c *CLI) runNode(ctx context.Context, origin, sha string) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.runner.Node(ctx, origin, sha)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, StyleTitle.Render(linkage.Sha(sha).Short()))
	fmt.Fprintln(stdout, nodeTable(n).Render())
	return nil
}
