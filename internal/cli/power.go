package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/export"
)

// reportFlags holds the flags of the power and patch commands.
type reportFlags struct {
	loadFlags
	csv    string // CSV export path
	html   string // HTML export path
	json   bool   // print the raw report as JSON
	strict bool   // fail when problems are found
}

func (f *reportFlags) register(cmd *cobra.Command) {
	f.loadFlags.register(cmd)
	cmd.Flags().StringVar(&f.csv, "csv", "", "export the table as CSV to this file")
	cmd.Flags().StringVar(&f.html, "html", "", "export the table as an HTML fragment to this file")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the report as JSON instead of a table")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "exit with an error when problems are found")
}

// powerCommand creates the power report command.
func (c *CLI) powerCommand() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "power <layout>",
		Short: "Report the load on every power circuit",
		Long: `Power walks the power wires from every outlet and totals the wattage of
the equipment each outlet feeds. Circuits and outlets over their limit are
flagged, as is powered equipment that no outlet reaches.`,
		Example: `  rigwire power stage.json --catalog library.json
  rigwire power stage.json --csv power.csv --html power.html
  rigwire power stage.json --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPower(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runPower(ctx context.Context, path string, flags reportFlags) error {
	opts, err := c.pipelineOptions(path, flags.loadFlags)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	in, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	report, hit, err := runner.Power(ctx, in, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analysed %s", filepath.Base(path)))

	if flags.json {
		return writeJSON(os.Stdout, report)
	}

	t := export.NewPowerTable(in.Snapshot, report)
	printStats(len(in.Snapshot.Connectables), len(in.Snapshot.Edges), hit)
	fmt.Println(renderPowerTable(t))

	if flags.csv != "" {
		if err := writeFile(flags.csv, func(w io.Writer) error { return export.PowerCSV(w, t) }); err != nil {
			return err
		}
	}
	if flags.html != "" {
		if err := writeFile(flags.html, func(w io.Writer) error { return export.PowerHTML(w, t) }); err != nil {
			return err
		}
	}

	overloads := report.Overloads()
	switch {
	case len(overloads) > 0:
		printWarning("%d overloaded (total %s)", len(overloads), watts(report.TotalWatts()))
		for _, o := range overloads {
			where := "circuit " + o.CircuitID
			if o.OutletID != "" {
				where = "outlet " + o.OutletID
			}
			printDetail("%s: %s", where, load(o.TotalWatts, o.LimitWatts))
		}
	case len(report.Unpowered) > 0:
		printWarning("%d unpowered", len(report.Unpowered))
	default:
		printSuccess("All circuits within limits (total %s)", watts(report.TotalWatts()))
	}

	if flags.strict && len(overloads) > 0 {
		return errors.New(errors.ErrCodeInvalidCapacity, "%d circuits or outlets over their limit", len(overloads))
	}
	return nil
}
