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
	"github.com/matzehuels/rigwire/pkg/patch"
)

// patchCommand creates the DMX patch validation command.
func (c *CLI) patchCommand() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "patch <layout>",
		Short: "Validate the DMX patch",
		Long: `Patch checks every DMX fixture for a data path from a controller,
for a channel range that runs past address 512 and for ranges that
overlap another fixture on the same universe.`,
		Example: `  rigwire patch stage.json --catalog library.json
  rigwire patch stage.json --csv dmx.csv --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPatch(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runPatch(ctx context.Context, path string, flags reportFlags) error {
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
	res, hit, err := runner.Patch(ctx, in, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Validated %s", filepath.Base(path)))

	if flags.json {
		return writeJSON(os.Stdout, res)
	}

	printStats(len(in.Snapshot.Connectables), len(in.Snapshot.Edges), hit)
	fmt.Println(renderPatchTable(res))

	if flags.csv != "" {
		if err := writeFile(flags.csv, func(w io.Writer) error { return export.PatchCSV(w, res) }); err != nil {
			return err
		}
	}
	if flags.html != "" {
		if err := writeFile(flags.html, func(w io.Writer) error { return export.PatchHTML(w, res) }); err != nil {
			return err
		}
	}

	sum := res.Summary
	if sum.OK() {
		printSuccess("Patch is clean (%d fixtures)", len(res.Flags))
		return nil
	}
	printWarning("%d overlaps, %d overflows, %d unreachable", sum.Overlaps, sum.Overflows, sum.Unreachable)
	if flags.strict && sum.Severity > patch.SeverityUnreachable {
		return errors.New(errors.ErrCodeInvalidPatch, "patch has %s problems", sum.Severity)
	}
	return nil
}
