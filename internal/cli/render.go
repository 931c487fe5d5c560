package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkgraph/pkg/linkage"
	"github.com/matzehuels/linkgraph/pkg/pipeline"
)

// renderCommand creates the render command for writing thread artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		q          queryFlags
		formatsStr string
		output     string
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "render [sha]",
		Short: "Render the thread around a document to files",
		Long: `Render the thread around a document as Graphviz DOT, SVG, JSON or text.

A single format without --output is written to stdout. Otherwise one file is
written per format, named <output>.<format> (default: the short origin sha).

Results are cached by thread content, so rendering the same thread again is
fast even after unrelated writes to the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := q.options(args[0], parseFormats(formatsStr, pipeline.FormatSVG)...)
			opts.Detailed = detailed
			return c.runRender(cmd.Context(), opts, output)
		},
	}

	q.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, text (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with full shas and diagram positions (dot, svg)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	opts.Logger = c.Logger
	spinner := newSpinnerWithContext(ctx, "Resolving "+linkage.Sha(opts.Origin).Short()+"...")
	spinner.Start()

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		origin:    linkage.Sha(opts.Origin),
		output:    output,
		cacheHit:  res.CacheInfo.RenderHit,
		nodes:     res.Stats.NodeCount,
		edges:     res.Stats.EdgeCount,
	})
}

// artifactWriteParams describes a set of rendered artifacts to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	origin    linkage.Sha
	output    string
	cacheHit  bool
	nodes     int
	edges     int
}

// writeArtifacts writes a single artifact to stdout when no output is given,
// and otherwise one file per format.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 && p.output == "" {
		_, err := stdout.Write(p.artifacts[p.formats[0]])
		return err
	}

	base := basePath(p.output, p.origin)
	var paths []string
	for _, format := range p.formats {
		path := base + "." + format
		if len(p.formats) == 1 {
			path = p.output
		}
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", p.origin.Short())
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.nodes, p.edges, p.cacheHit)
	return nil
}

// basePath strips a known format extension from output, or falls back to
// the short origin sha.
func basePath(output string, origin linkage.Sha) string {
	if output == "" {
		return origin.Short()
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or stdout if path is empty or "-".
// An existing file is overwritten.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
