package main

import (
	"fmt"
	"log/slog"
	"slices"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-morph/engine"
	"github.com/Carmen-Shannon/oxy-morph/engine/camera"
	"github.com/Carmen-Shannon/oxy-morph/engine/loader"
	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
	"github.com/Carmen-Shannon/oxy-morph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-morph/engine/window"
	"github.com/spf13/cobra"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "oxy-morph",
		Short: "Morph between gridded datasets on a globe.",
		Long: `oxy-morph shows each cell of a set of gridded datasets as a box on a globe,
extruded and coloured by the cell's value. The datasets (variants) are listed in a
TOML manifest; pressing 1-9 morphs the globe to the corresponding variant.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}
	root.AddCommand(newViewCmd(logger), newInspectCmd(logger))
	return root
}

func newViewCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "view <manifest.toml>",
		Short: "Open a window and display the manifest's variants.",
		Long: `view loads every variant in the manifest and displays the first.
Keys 1-9 and 0 select variants, dragging or the arrow keys orbit the globe,
and the scroll wheel or -/= zoom. Escape closes the window.`,
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loader.LoadManifest(args[0])
			if err != nil {
				return err
			}
			return view(cmd, m, logger)
		},
	}
}

func view(cmd *cobra.Command, m *loader.Manifest, logger *slog.Logger) error {
	win, err := window.NewWindow(
		window.WithTitle(m.DisplayTitle()),
		window.WithSize(1280, 800),
		window.WithMinSize(320, 240),
	)
	if err != nil {
		return err
	}
	// Close reports an error once the window is already gone.
	defer func() { _ = win.Close() }()

	r, err := renderer.NewRenderer(win.SurfaceDescriptor(), win.Width(), win.Height(),
		renderer.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Release()

	cam := camera.NewCamera()
	cam.SetViewport(win.Width(), win.Height())

	var loadErr error
	eng := engine.NewEngine(win, r,
		engine.WithCamera(cam),
		engine.WithLogger(logger),
		engine.WithProfiling(logger.Enabled(cmd.Context(), slog.LevelDebug)),
		engine.WithReadyCallback(func(err error) {
			if err != nil {
				loadErr = err
				_ = win.Close()
			}
		}),
	)
	defer eng.Close()

	eng.Load(cmd.Context(), m)
	eng.RequestRender()
	win.ProcessMessages()
	return loadErr
}

func newInspectCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <manifest.toml>",
		Short: "Load and build the manifest's variants without a window.",
		Long: `inspect runs the full load and mesh-build pipeline headlessly and prints,
per variant, the grid shape and the number of cells and vertices emitted.`,
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loader.LoadManifest(args[0])
			if err != nil {
				return err
			}
			p, err := engine.LoadAndPrepare(cmd.Context(),
				loader.NewLoader(loader.WithLogger(logger)),
				mesh.NewBuilder(mesh.WithLogger(logger)),
				m)
			if err != nil {
				return err
			}
			return report(cmd, p)
		},
	}
}

// report prints one row per surviving variant and one per dropped variant.
func report(cmd *cobra.Command, p *engine.Prepared) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVARIANT\tSHAPE\tRANGE\tCELLS\tVERTICES")
	for i, v := range p.Variants {
		g := p.Grids[i]
		shape := g.Shape()
		valueRange := "-"
		if g.HasRange() {
			valueRange = fmt.Sprintf("%g..%g", g.Min, g.Max)
		}
		fmt.Fprintf(tw, "%d\t%s\t%dx%d\t%s\t%d\t%d\n",
			v.Index, v.Name, shape.Rows, shape.Cols, valueRange,
			len(p.Surfaces[i].Cells), p.Surfaces[i].VertexCount())
	}

	names := make([]string, 0, len(p.Failures))
	for name := range p.Failures {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(tw, "-\t%s\tdropped: %v\t\t\t\n", name, p.Failures[name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	shape := p.Mask.Shape()
	total := shape.Rows * shape.Cols
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "\nmissing cells: %d of %d\n", total-p.Mask.Present(), total)
	return err
}
