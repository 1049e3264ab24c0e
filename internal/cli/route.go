package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/observability"
	"github.com/matzehuels/rigwire/pkg/route"
)

// routeOpts holds the command-line flags for the route command.
type routeOpts struct {
	loadFlags
	output string // layout to write; the input layout when empty
	events string // recorded gesture file for headless replay
	axis   string // initial corner axis, overrides the config
	dryRun bool   // report wires without writing the layout
}

// routeCommand creates the cable routing command.
func (c *CLI) routeCommand() *cobra.Command {
	var opts routeOpts

	cmd := &cobra.Command{
		Use:   "route <layout>",
		Short: "Route new power and DMX cables",
		Long: `Route opens a terminal session over the stage plan. Move the cursor
with the arrow keys or tab, press enter on an item to start a wire, enter
again to place bends and on the target item to finish. Space flips the
corner, backspace removes the last bend and esc cancels.

With --events the gestures are read from a JSON file instead and replayed
without a terminal.`,
		Example: `  rigwire route stage.json --catalog library.json
  rigwire route stage.json --events gestures.json -o routed.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd.Context(), args[0], opts)
		},
	}

	opts.loadFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the routed layout here (default: overwrite the input)")
	cmd.Flags().StringVar(&opts.events, "events", "", "replay recorded gestures from a JSON file")
	cmd.Flags().StringVar(&opts.axis, "axis", "", "initial corner axis: horizontal, vertical (default from config)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the new wires without writing the layout")

	return cmd
}

func (c *CLI) runRoute(ctx context.Context, path string, opts routeOpts) error {
	popts, err := c.pipelineOptions(path, opts.loadFlags)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	in, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}

	ropts := append(c.Config.RouterOptions(), route.WithLogger(c.Logger))
	if opts.axis != "" {
		axis, err := route.ParseAxis(opts.axis)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "--axis")
		}
		ropts = append(ropts, route.WithAxis(axis))
	}

	var added []network.Edge
	if opts.events != "" {
		added, err = c.replay(ctx, in.Snapshot, opts.events, ropts)
	} else {
		added, err = c.interactive(ctx, in.Snapshot, ropts)
	}
	if err != nil {
		return err
	}

	if len(added) == 0 {
		printInfo("No wires added")
		return nil
	}
	for _, e := range added {
		printDetail("%s %s: %s → %s (%d bends)", e.Kind, e.ID, e.From, e.To, len(e.Via))
		in.Document.AddEdge(e)
	}
	if opts.dryRun {
		printSuccess("Routed %d wires (dry run)", len(added))
		return nil
	}

	out := opts.output
	if out == "" {
		out = path
	}
	if err := in.Document.Save(out); err != nil {
		return err
	}
	printSuccess("Routed %d wires", len(added))
	printFile(out)
	printNextStep("Check the new load", "rigwire power "+out)
	return nil
}

// replay runs the gestures recorded in file and returns the accepted
// wires.
func (c *CLI) replay(ctx context.Context, s network.Snapshot, file string, opts []route.Option) ([]network.Edge, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "events %s", file)
	}
	var events []route.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "events %s", file)
	}

	trace, err := route.Replay(route.New(route.SnapshotSource(&s), opts...), events)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "replay %s", file)
	}
	for _, k := range trace.Cancelled {
		observability.Route().OnRouteCancel(ctx, k.String())
	}
	if trace.State == route.Routing {
		c.Logger.Warn("last gesture left unfinished")
	}

	var added []network.Edge
	for _, e := range trace.Edges {
		next, err := s.WithEdge(e)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidWire, err, "wire %s", e.ID)
		}
		s = next
		added = append(added, e)
		observability.Route().OnRouteComplete(ctx, e.Kind.String(), len(e.Via))
	}
	c.Logger.Info("replayed gestures", "events", len(events), "wires", len(added), "cancelled", len(trace.Cancelled))
	return added, nil
}

// interactive runs the terminal session and returns its wires when the
// user saved.
func (c *CLI) interactive(ctx context.Context, s network.Snapshot, opts []route.Option) ([]network.Edge, error) {
	m := newSession(ctx, s, c.Config.Router.SnapRadius, opts...)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return nil, fmt.Errorf("routing session: %w", err)
	}
	if !m.Saved() {
		if n := len(m.Added()); n > 0 {
			printWarning("Discarded %d unsaved wires", n)
		}
		return nil, nil
	}
	return m.Added(), nil
}
