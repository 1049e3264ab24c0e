package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwire/pkg/pipeline"
)

// diagramOpts holds the command-line flags for the diagram command.
type diagramOpts struct {
	loadFlags
	output   string // output file; stdout for "-"
	format   string // svg or dot; from the output extension when empty
	detailed bool   // wattage and patch lines in node labels
	pinned   bool   // place nodes at their stage positions
	status   string // power or patch status colouring
	kinds    string // comma-separated wire kinds to draw
}

// diagramCommand creates the network diagram command.
func (c *CLI) diagramCommand() *cobra.Command {
	var opts diagramOpts

	cmd := &cobra.Command{
		Use:   "diagram <layout>",
		Short: "Draw the cable network as a Graphviz diagram",
		Example: `  rigwire diagram stage.json -o stage.svg --status patch
  rigwire diagram stage.json --format dot --kinds power -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiagram(cmd.Context(), args[0], opts)
		},
	}

	opts.loadFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default <layout>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show wattage and DMX patch in node labels")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "place nodes at their stage positions")
	cmd.Flags().StringVar(&opts.status, "status", "", "colour nodes by analysis: power, patch")
	cmd.Flags().StringVar(&opts.kinds, "kinds", "", "wire kinds to draw: power, dmx (comma-separated, default all)")

	return cmd
}

func (c *CLI) runDiagram(ctx context.Context, path string, opts diagramOpts) error {
	popts, err := c.pipelineOptions(path, opts.loadFlags)
	if err != nil {
		return err
	}
	popts.Format = diagramFormat(opts.format, opts.output)
	popts.Detailed = opts.detailed
	popts.Pinned = opts.pinned
	popts.Status = opts.status
	if opts.kinds != "" {
		popts.Kinds = strings.Split(opts.kinds, ",")
	}
	if err := popts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	in, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()
	data, hit, err := runner.Diagram(ctx, in, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + popts.Format
	}
	if out == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess("Diagram rendered (%s)", popts.Format)
	printStats(len(in.Snapshot.Connectables), len(in.Snapshot.Edges), hit)
	printFile(out)
	return nil
}

// diagramFormat picks the explicit format, else the output extension, else
// SVG.
func diagramFormat(format, output string) string {
	if format != "" {
		return format
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); pipeline.ValidFormats[ext] {
		return ext
	}
	return pipeline.FormatSVG
}
