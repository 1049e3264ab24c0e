package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/rigwire/pkg/catalog"
	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/layout"
	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/observability"
	"github.com/matzehuels/rigwire/pkg/patch"
	"github.com/matzehuels/rigwire/pkg/pipeline"
	"github.com/matzehuels/rigwire/pkg/power"
	"github.com/matzehuels/rigwire/pkg/route"
)

// analysisRequest is the body of the analysis endpoints.
type analysisRequest struct {
	Layout  json.RawMessage `json:"layout"`
	Catalog json.RawMessage `json:"catalog,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`
}

// routeRequest is the body of /v1/route.
type routeRequest struct {
	analysisRequest
	Axis       string        `json:"axis,omitempty"`
	SnapRadius *float64      `json:"snap_radius,omitempty"`
	Events     []route.Event `json:"events"`
}

// PowerResponse is the body returned by /v1/power.
type PowerResponse struct {
	Hash       string           `json:"hash"`
	Cached     bool             `json:"cached"`
	TotalWatts float64          `json:"total_watts"`
	Overloads  []power.Overload `json:"overloads"`
	Report     power.Report     `json:"report"`
}

// PatchResponse is the body returned by /v1/patch.
type PatchResponse struct {
	Hash   string       `json:"hash"`
	Cached bool         `json:"cached"`
	Result patch.Result `json:"result"`
}

// RouteResponse is the body returned by /v1/route. Layout is the request
// layout with the completed wires appended.
type RouteResponse struct {
	Trace  route.Trace     `json:"trace"`
	Layout json.RawMessage `json:"layout"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, opts, err := s.input(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, hit, err := s.runner.Power(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PowerResponse{
		Hash:       in.Hash,
		Cached:     hit,
		TotalWatts: report.TotalWatts(),
		Overloads:  nonNil(report.Overloads()),
		Report:     report,
	})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, opts, err := s.input(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, hit, err := s.runner.Patch(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PatchResponse{Hash: in.Hash, Cached: hit, Result: res})
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, opts, err := s.input(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := diagramOptions(r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, hit, err := s.runner.Diagram(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contentType := "image/svg+xml"
	if opts.Format == pipeline.FormatDOT {
		contentType = "text/vnd.graphviz; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, _, err := s.input(r, req.analysisRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := append([]route.Option{route.WithLogger(s.logger)}, s.router...)
	if req.Axis != "" {
		axis, err := route.ParseAxis(req.Axis)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "axis"))
			return
		}
		opts = append(opts, route.WithAxis(axis))
	}
	if req.SnapRadius != nil {
		if *req.SnapRadius <= 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "snap_radius must be positive"))
			return
		}
		opts = append(opts, route.WithSnapRadius(*req.SnapRadius))
	}

	snapshot := in.Snapshot
	trace, err := route.Replay(route.New(route.SnapshotSource(&snapshot), opts...), req.Events)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "replay"))
		return
	}

	ctx := r.Context()
	for _, e := range trace.Edges {
		if snapshot, err = snapshot.WithEdge(e); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidWire, err, "wire %s", e.ID))
			return
		}
		in.Document.AddEdge(e)
		observability.Route().OnRouteComplete(ctx, e.Kind.String(), len(e.Via))
	}
	for _, k := range trace.Cancelled {
		observability.Route().OnRouteCancel(ctx, k.String())
	}

	var buf strings.Builder
	if err := in.Document.Write(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	if trace.Edges == nil {
		trace.Edges = []network.Edge{}
	}
	writeJSON(w, http.StatusOK, RouteResponse{Trace: trace, Layout: json.RawMessage(buf.String())})
}

// input decodes the layout and catalog of req and builds the snapshot.
func (s *Server) input(r *http.Request, req analysisRequest) (*pipeline.Input, pipeline.Options, error) {
	opts := pipeline.Options{Defaults: s.defaults, Refresh: req.Refresh, Logger: s.logger}
	if len(req.Layout) == 0 {
		return nil, opts, errors.New(errors.ErrCodeInvalidInput, "layout is required")
	}

	ctx := r.Context()
	observability.Pipeline().OnLoadStart(ctx, "request")
	start := time.Now()
	in, err := s.load(req, opts)
	connectables, edges := 0, 0
	if in != nil {
		connectables, edges = len(in.Snapshot.Connectables), len(in.Snapshot.Edges)
	}
	observability.Pipeline().OnLoadComplete(ctx, "request", connectables, edges, time.Since(start), err)
	return in, opts, err
}

func (s *Server) load(req analysisRequest, opts pipeline.Options) (*pipeline.Input, error) {
	cat := s.catalog
	if len(req.Catalog) > 0 {
		c, err := catalog.Parse(req.Catalog, catalog.FormatJSON)
		if err != nil {
			return nil, err
		}
		cat = c
	}
	if cat == nil {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog is required")
	}
	doc, err := layout.Parse(req.Layout)
	if err != nil {
		return nil, err
	}
	return pipeline.NewInput(doc, cat, opts)
}

// diagramOptions reads the diagram query parameters into opts.
func diagramOptions(r *http.Request, opts *pipeline.Options) error {
	q := r.URL.Query()
	opts.Format = q.Get("format")
	if opts.Format == "" {
		opts.Format = pipeline.FormatSVG
	}
	opts.Status = q.Get("status")
	if k := q.Get("kinds"); k != "" {
		opts.Kinds = strings.Split(k, ",")
	}
	for name, dst := range map[string]*bool{"detailed": &opts.Detailed, "pinned": &opts.Pinned} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s: invalid boolean %q", name, v)
		}
		*dst = b
	}
	return opts.ValidateForRender()
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
