package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkgraph/pkg/errors"
	pkgio "github.com/matzehuels/linkgraph/pkg/io"
)

// loadCommand creates the load command for importing fixture edges.
func (c *CLI) loadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load [edges.json|yaml|toml]...",
		Short: "Import raw edges into the store",
		Long: `Import raw edges from fixture files into the configured store.

Each file holds a list of edges with a source sha, a target sha and a kind
(link, update or delete). The format is picked from the file extension. A file
that fails validation is rejected as a whole; files before it stay loaded.

Putting an edge that already exists replaces its kind and keeps its position.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLoad(cmd.Context(), args)
		},
	}
}

func (c *CLI) runLoad(ctx context.Context, files []string) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	total := 0
	for _, path := range files {
		prog := newProgress(c.Logger)
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", filepath.Base(path)))
		spinner.Start()

		n, err := pkgio.Load(ctx, store, path)
		if err != nil {
			spinner.StopWithError("Load failed: " + filepath.Base(path))
			return err
		}
		spinner.Stop()
		prog.done(fmt.Sprintf("Loaded %d edges from %s", n, path))
		total += n
	}

	rev, err := store.Revision(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "read store revision")
	}

	printSuccess("Loaded %d edges", total)
	printKeyValue("Store", store.Driver())
	if rev != "" {
		printKeyValue("Revision", rev)
	}
	return nil
}

// dumpCommand creates the dump command for exporting every stored edge.
func (c *CLI) dumpCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export every stored edge as a fixture",
		Long: `Export every stored edge in a format the load command accepts.

Without --output the edges are written to stdout in --format (json by
default). With --output the format is picked from the file extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDump(cmd.Context(), output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", pkgio.FormatJSON, "stdout format: "+strings.Join(pkgio.Formats, ", "))

	return cmd
}

func (c *CLI) runDump(ctx context.Context, output, format string) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	edges, err := store.Edges(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "list edges")
	}
	c.Logger.Debug("listed edges", "count", len(edges))

	if output != "" {
		if err := pkgio.ExportFile(edges, output); err != nil {
			return err
		}
		printSuccess("Exported %d edges", len(edges))
		printFile(output)
		return nil
	}
	return pkgio.WriteEdges(edges, format, stdout)
}
