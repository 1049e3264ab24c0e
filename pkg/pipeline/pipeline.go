// Package pipeline runs the rigwire analyses over a layout file.
//
// This package implements the load → analyse → render sequence shared by
// the CLI and the HTTP API, so both entry points build snapshots the same
// way and share one cache.
//
// # Architecture
//
// A run has three stages:
//
//  1. Load: decode the layout and catalog and build a [network.Snapshot]
//  2. Analyse: power aggregation and DMX patch validation
//  3. Render: optional Graphviz diagram (DOT or SVG)
//
// Stage outputs are cached under the SHA-256 of the snapshot, so an
// unchanged layout never recomputes a report or re-renders a diagram.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    LayoutPath:  "stage.json",
//	    CatalogPath: "library",
//	    Format:      pipeline.FormatSVG,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Patch.Summary.Severity)
//
// Run individual stages:
//
//	in, err := runner.Load(ctx, opts)
//	report, hit, err := runner.Power(ctx, in, opts)
//	svg, hit, err := runner.Diagram(ctx, in, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwire/pkg/cache"
	"github.com/matzehuels/rigwire/pkg/catalog"
	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/layout"
	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/patch"
	"github.com/matzehuels/rigwire/pkg/power"
)

// Diagram formats.
const (
	FormatSVG = "svg"
	FormatDOT = "dot"
)

// Diagram status overlays.
const (
	StatusNone  = ""
	StatusPower = "power"
	StatusPatch = "patch"
)

// ValidFormats is the set of supported diagram formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatDOT: true,
}

// ValidStatuses is the set of supported status overlays.
var ValidStatuses = map[string]bool{
	StatusNone:  true,
	StatusPower: true,
	StatusPatch: true,
}

// Options configures a pipeline run.
type Options struct {
	// Load options
	LayoutPath  string          `json:"-"`
	CatalogPath string          `json:"-"`
	Defaults    layout.Defaults `json:"-"`
	Refresh     bool            `json:"refresh,omitempty"`

	// Diagram options. An empty Format skips the render stage.
	Format   string   `json:"format,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Pinned   bool     `json:"pinned,omitempty"`
	Kinds    []string `json:"kinds,omitempty"`
	Status   string   `json:"status,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Input is a loaded layout ready for analysis.
type Input struct {
	Document *layout.Document
	Catalog  *catalog.Catalog
	Snapshot network.Snapshot

	// Hash is the content hash of Snapshot and the base of every cache key.
	Hash string
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Input *Input
	Power power.Report
	Patch patch.Result

	// Diagram is the rendered diagram, nil when no format was requested.
	Diagram []byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Connectables int
	Edges        int
	LoadTime     time.Duration
	PowerTime    time.Duration
	PatchTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	PowerHit   bool
	PatchHit   bool
	DiagramHit bool
}

// ValidateFormat checks that a diagram format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, dot)", format)
	}
	return nil
}

// ValidateStatus checks that a status overlay is valid.
func ValidateStatus(status string) error {
	if !ValidStatuses[status] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid status: %q (must be one of: power, patch)", status)
	}
	return nil
}

// ValidateForLoad checks the fields required by [Runner.Load] and applies
// defaults.
func (o *Options) ValidateForLoad() error {
	if o.LayoutPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "layout path is required")
	}
	if o.CatalogPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "catalog path is required")
	}
	o.SetDefaults()
	return nil
}

// ValidateForRender checks the diagram options.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if err := ValidateStatus(o.Status); err != nil {
		return err
	}
	_, err := o.ParsedKinds()
	return err
}

// SetDefaults fills zero values. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Defaults == (layout.Defaults{}) {
		o.Defaults = layout.EditorDefaults()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ParsedKinds converts Kinds to wire kinds.
func (o *Options) ParsedKinds() ([]network.Kind, error) {
	var kinds []network.Kind
	for _, s := range o.Kinds {
		k, err := network.ParseKind(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "kinds")
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// DiagramKeyOpts returns the cache key options for the diagram stage.
func (o *Options) DiagramKeyOpts() cache.DiagramKeyOpts {
	kinds := slices.Clone(o.Kinds)
	slices.Sort(kinds)
	return cache.DiagramKeyOpts{
		Format:   o.Format,
		Detailed: o.Detailed,
		Pinned:   o.Pinned,
		Kinds:    slices.Compact(kinds),
		Status:   o.Status,
	}
}
