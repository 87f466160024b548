package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/convgraph/internal/engine"
	"github.com/matzehuels/convgraph/pkg/buildinfo"
	"github.com/matzehuels/convgraph/pkg/cache"
	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"

	// renderTTL bounds how long rendered graphs stay in the cache.
	renderTTL = 7 * 24 * time.Hour
)

// graphOpts holds the options of the graph command.
type graphOpts struct {
	format   string
	output   string
	detailed bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "graph FROM TO",
		Short: "Render the conversion tree for a pair of types",
		Long: `Resolve FROM to TO and render the conversion tree of TO with Graphviz.

The DOT format is written as is; SVG is rendered in-process and cached, so
rendering the same tree again is instant. Use --no-cache to skip the cache.`,
		Example: `  convgraph graph int string --out int-string.svg
  convgraph graph '[]string' '[]int' --format dot --detailed`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot or svg")
	cmd.Flags().StringVar(&opts.output, "out", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their converters")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, from, to string, opts graphOpts) error {
	if err := errors.ValidateFormat(opts.format, formatDOT, formatSVG); err != nil {
		return err
	}

	e, err := c.newEngine()
	if err != nil {
		return err
	}
	dot, err := buildDOT(e, from, to, opts.detailed)
	if err != nil {
		return err
	}

	data := []byte(dot)
	cached := false
	if opts.format == formatSVG {
		data, cached, err = c.renderSVG(cmd.Context(), dot)
		if err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printFile(cmd.ErrOrStderr(), opts.output, cached)
	return nil
}

// buildDOT resolves the pair and converts its conversion tree to DOT.
func buildDOT(e *engine.Engine, from, to string, detailed bool) (string, error) {
	in, out, err := e.ParsePair(from, to)
	if err != nil {
		return "", err
	}
	snap := e.Registry.Snapshot(in, out)
	return nodelink.ToDOT(snap, nodelink.Options{Detailed: detailed}), nil
}

// renderSVG renders dot through the render cache. The boolean reports
// whether the result came from the cache.
func (c *CLI) renderSVG(ctx context.Context, dot string) ([]byte, bool, error) {
	store, err := c.newCache()
	if err != nil {
		return nil, false, err
	}
	defer store.Close()
	store = cache.Observed(store, "render")

	key := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":").RenderKey(dot, formatSVG)
	if svg, hit, err := store.Get(ctx, key); err != nil {
		c.Logger.Warn("render cache read failed", "err", err)
	} else if hit {
		c.Logger.Debug("render cache hit", "key", key)
		return svg, true, nil
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering graph...")
	spinner.Start()
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	spinner.Stop()
	prog.done("Rendered graph")

	if err := store.Set(ctx, key, svg, renderTTL); err != nil {
		c.Logger.Warn("render cache write failed", "err", err)
	}
	return svg, false, nil
}
