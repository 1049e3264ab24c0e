package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwire/pkg/cache"
	"github.com/matzehuels/rigwire/pkg/catalog"
	"github.com/matzehuels/rigwire/pkg/layout"
	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/observability"
	"github.com/matzehuels/rigwire/pkg/patch"
	"github.com/matzehuels/rigwire/pkg/power"
	"github.com/matzehuels/rigwire/pkg/render/dot"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner holds no per-run state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-kind cache lifetimes when non-zero.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute loads the layout, runs both analyses and renders the diagram
// when opts.Format is set.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)

	loadStart := time.Now()
	in, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Input: in}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Connectables = len(in.Snapshot.Connectables)
	result.Stats.Edges = len(in.Snapshot.Edges)

	r.Logger.Info("loaded layout",
		"connectables", result.Stats.Connectables,
		"edges", result.Stats.Edges,
		"duration", result.Stats.LoadTime)

	if err := r.analyze(ctx, in, opts, result); err != nil {
		return nil, err
	}

	if opts.Format != "" {
		renderStart := time.Now()
		data, hit, err := r.Diagram(ctx, in, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Diagram = data
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.DiagramHit = hit
		r.Logger.Info("rendered diagram", "format", opts.Format, "bytes", len(data), "duration", result.Stats.RenderTime)
	}
	return result, nil
}

// Analyze runs both analyses on an already loaded input.
func (r *Runner) Analyze(ctx context.Context, in *Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	result := &Result{Input: in}
	result.Stats.Connectables = len(in.Snapshot.Connectables)
	result.Stats.Edges = len(in.Snapshot.Edges)
	if err := r.analyze(ctx, in, opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) analyze(ctx context.Context, in *Input, opts Options, result *Result) error {
	start := time.Now()
	report, hit, err := r.Power(ctx, in, opts)
	if err != nil {
		return fmt.Errorf("power: %w", err)
	}
	result.Power = report
	result.Stats.PowerTime = time.Since(start)
	result.CacheInfo.PowerHit = hit

	start = time.Now()
	res, hit, err := r.Patch(ctx, in, opts)
	if err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	result.Patch = res
	result.Stats.PatchTime = time.Since(start)
	result.CacheInfo.PatchHit = hit

	r.Logger.Info("analysed network",
		"circuits", len(report.Circuits),
		"overloads", len(report.Overloads()),
		"patch", res.Summary.Severity)
	return nil
}

// Load reads the layout and catalog named in opts and builds the snapshot.
func (r *Runner) Load(ctx context.Context, opts Options) (*Input, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	observability.Pipeline().OnLoadStart(ctx, opts.LayoutPath)
	start := time.Now()
	in, err := r.load(opts)
	connectables, edges := 0, 0
	if in != nil {
		connectables, edges = len(in.Snapshot.Connectables), len(in.Snapshot.Edges)
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.LayoutPath, connectables, edges, time.Since(start), err)
	return in, err
}

func (r *Runner) load(opts Options) (*Input, error) {
	cat, err := catalog.Load(opts.CatalogPath)
	if err != nil {
		return nil, err
	}
	doc, err := layout.Load(opts.LayoutPath)
	if err != nil {
		return nil, err
	}
	return NewInput(doc, cat, opts)
}

// NewInput builds the snapshot of doc against cat. It is the entry point
// for callers that already hold decoded documents, such as the HTTP API.
func NewInput(doc *layout.Document, cat *catalog.Catalog, opts Options) (*Input, error) {
	opts.SetDefaults()
	s, err := doc.Snapshot(cat, layout.WithDefaults(opts.Defaults), layout.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	hash, err := SnapshotHash(s)
	if err != nil {
		return nil, err
	}
	return &Input{Document: doc, Catalog: cat, Snapshot: s, Hash: hash}, nil
}

// SnapshotHash returns the SHA-256 of the JSON encoding of s. Connectable
// and edge order are part of the hash.
func SnapshotHash(s network.Snapshot) (string, error) {
	data, err := json.Marshal(struct {
		Connectables []network.Connectable `json:"connectables"`
		Edges        []network.Edge        `json:"edges"`
	}{s.Connectables, s.Edges})
	if err != nil {
		return "", fmt.Errorf("hash snapshot: %w", err)
	}
	return cache.Hash(data), nil
}

// Power returns the power report of in, from cache when possible.
func (r *Runner) Power(ctx context.Context, in *Input, opts Options) (power.Report, bool, error) {
	key := r.Keyer.ReportKey(StatusPower, in.Hash)
	var report power.Report
	if r.lookup(ctx, "report", key, opts, &report) {
		return report, true, nil
	}

	start := time.Now()
	report = power.Compute(in.Snapshot)
	observability.Pipeline().OnPowerReport(ctx, len(report.Circuits), len(report.Overloads()), len(report.Unpowered), time.Since(start))

	r.store(ctx, "report", key, report, r.ttl(cache.TTLReport))
	return report, false, nil
}

// Patch returns the patch validation of in, from cache when possible.
func (r *Runner) Patch(ctx context.Context, in *Input, opts Options) (patch.Result, bool, error) {
	r.applyLogger(&opts)
	key := r.Keyer.ReportKey(StatusPatch, in.Hash)
	var res patch.Result
	if r.lookup(ctx, "report", key, opts, &res) {
		return res, true, nil
	}

	start := time.Now()
	res = patch.Validate(in.Snapshot, patch.WithLogger(opts.Logger))
	sum := res.Summary
	observability.Pipeline().OnPatchResult(ctx, sum.Overlaps, sum.Overflows, sum.Unreachable, time.Since(start))

	r.store(ctx, "report", key, res, r.ttl(cache.TTLReport))
	return res, false, nil
}

// Diagram renders in as DOT or SVG, from cache when possible.
func (r *Runner) Diagram(ctx context.Context, in *Input, opts Options) ([]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	kinds, _ := opts.ParsedKinds()

	key := r.Keyer.DiagramKey(in.Hash, opts.DiagramKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "diagram")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "diagram")
	}

	dopts := dot.Options{Detailed: opts.Detailed, Pinned: opts.Pinned, Kinds: kinds}
	switch opts.Status {
	case StatusPower:
		report, _, err := r.Power(ctx, in, opts)
		if err != nil {
			return nil, false, err
		}
		dopts.Status = dot.PowerStatus(report)
	case StatusPatch:
		res, _, err := r.Patch(ctx, in, opts)
		if err != nil {
			return nil, false, err
		}
		dopts.Status = dot.PatchStatus(res)
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Format)
	start := time.Now()
	data, err := renderDiagram(ctx, in.Snapshot, dopts, opts.Format)
	observability.Pipeline().OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLDiagram)); err == nil {
		observability.Cache().OnCacheSet(ctx, "diagram", len(data))
	} else {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
	return data, false, nil
}

func renderDiagram(ctx context.Context, s network.Snapshot, dopts dot.Options, format string) ([]byte, error) {
	src := dot.ToDOT(s, dopts)
	if format == FormatDOT {
		return []byte(src), nil
	}
	return dot.RenderSVG(ctx, src)
}

// lookup decodes a cached JSON value into v and reports whether it hit.
// Undecodable entries count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string, opts Options, v any) bool {
	if opts.Refresh {
		return false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err == nil && hit && json.Unmarshal(data, v) == nil {
		observability.Cache().OnCacheHit(ctx, keyType)
		return true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return false
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
