package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/graph"
	"github.com/persistorai/degrees/internal/logging"
	"github.com/persistorai/degrees/internal/output"
	"github.com/persistorai/degrees/internal/palette"
	"github.com/persistorai/degrees/internal/provider"
	"github.com/persistorai/degrees/internal/service"
)

type crawlFlags struct {
	opts    config.CrawlOptions
	legend  bool
	seed    uint64
	timeout time.Duration
}

func newCrawlCmd() *cobra.Command {
	var f crawlFlags

	cmd := &cobra.Command{
		Use:   "crawl <reference>",
		Short: "Crawl outward from a reference and write the association graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.opts.Reference = args[0]
			return runCrawl(cmd, &f)
		},
	}

	cmd.Flags().StringVarP(&f.opts.Name, "name", "n", "", "Display name of the seed (resolved from the provider when empty)")
	cmd.Flags().IntVarP(&f.opts.Degree, "degree", "d", 1, "Maximum degree of separation")
	cmd.Flags().StringVarP(&f.opts.Format, "format", "o", string(output.FormatGraphML), "Output format: graphml|text|json|yaml")
	cmd.Flags().StringVarP(&f.opts.Filename, "file", "f", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&f.opts.Verbosity, "verbosity", "v", 1, "Log detail, 0 (silent) to 4 (trace)")
	cmd.Flags().BoolVar(&f.legend, "legend", false, "Colour nodes by degree and print the legend to stderr")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Palette random seed (default: time based)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Abort the crawl after this long (0 disables)")

	return cmd
}

func runCrawl(cmd *cobra.Command, f *crawlFlags) error {
	if err := f.opts.Validate(0); err != nil {
		return err
	}

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	log := logging.New(f.opts.Verbosity, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	p, release, err := provider.Open(ctx, cfg)
	defer release()
	if err != nil {
		return fmt.Errorf("open provider: %w", err)
	}

	run, err := service.NewCrawlService(p, log, 0).Crawl(ctx, service.CrawlRequest{
		Reference: f.opts.Reference,
		Name:      f.opts.Name,
		Degree:    f.opts.Degree,
	})
	if err != nil {
		return err
	}

	g := run.Graph

	if f.legend {
		colors, err := palette.Colors(g.MaxDegree(), paletteRand(f.seed))
		if err != nil {
			return err
		}

		g = colourGraph(g, colors)
		printLegend(cmd.ErrOrStderr(), g, colors)
	}

	format, _ := output.ParseFormat(f.opts.Format)

	return writeArtifact(cmd.OutOrStdout(), f.opts.Filename, g, format)
}

// colourGraph returns a copy of g with a colour attribute on every node.
func colourGraph(g *graph.Graph, colors []string) *graph.Graph {
	legend := palette.Legend(g, colors)
	out := graph.New(g.ID, g.Directed)

	for _, n := range g.Nodes() {
		attrs := n.Attrs.Clone()
		if c, ok := legend[n.ID]; ok {
			attrs.Set("colour", c)
		}
		out.AddNode(n.ID, attrs)
	}

	for _, e := range g.Edges() {
		_, _ = out.AddEdge(e.Source, e.Target, e.Attrs.Clone())
	}

	return out
}

func printLegend(w io.Writer, g *graph.Graph, colors []string) {
	counts := make(map[int]int)
	for _, dc := range g.DegreeHistogram() {
		counts[dc.Degree] = dc.Count
	}

	for d, c := range colors {
		fmt.Fprintf(w, "%d\t%s\t%d\n", d, c, counts[d])
	}
}

func paletteRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return rand.New(rand.NewPCG(seed, seed))
}

// writeArtifact encodes g to path, or to stdout when path is empty or "-".
// A path without an extension gets the format's.
func writeArtifact(stdout io.Writer, path string, g *graph.Graph, format output.Format) error {
	if path == "" || path == "-" {
		return output.Write(stdout, g, format)
	}

	if filepath.Ext(path) == "" {
		path += format.Extension()
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := output.Write(file, g, format); err != nil {
		_ = file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	return nil
}
