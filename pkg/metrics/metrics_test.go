package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/rigwire/pkg/observability"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.LoadsTotal == nil || r.RoutesTotal == nil || r.CacheRequestsTotal == nil || r.HTTPRequestsTotal == nil {
		t.Fatal("metrics not initialized")
	}
	if r.PrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestPipelineHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.OnLoadComplete(ctx, "stage.json", 12, 9, time.Millisecond, nil)
	r.OnLoadComplete(ctx, "broken.json", 0, 0, time.Millisecond, errors.New("bad"))
	r.OnPowerReport(ctx, 3, 1, 2, time.Microsecond)
	r.OnPatchResult(ctx, 4, 0, 1, time.Microsecond)
	r.OnRenderComplete(ctx, "svg", time.Millisecond, nil)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"loads ok", testutil.ToFloat64(r.LoadsTotal.WithLabelValues("ok")), 1},
		{"loads error", testutil.ToFloat64(r.LoadsTotal.WithLabelValues("error")), 1},
		{"connectables", testutil.ToFloat64(r.NetworkSize.WithLabelValues("connectables")), 12},
		{"overloads", testutil.ToFloat64(r.PowerOverloads), 1},
		{"unpowered", testutil.ToFloat64(r.Unpowered), 2},
		{"overlaps", testutil.ToFloat64(r.PatchProblems.WithLabelValues("overlap")), 4},
		{"renders", testutil.ToFloat64(r.RendersTotal.WithLabelValues("svg", "ok")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestRouteAndCacheHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.OnRouteComplete(ctx, "dmx", 2)
	r.OnRouteComplete(ctx, "dmx", 0)
	r.OnRouteCancel(ctx, "power")
	r.OnCacheHit(ctx, "report")
	r.OnCacheMiss(ctx, "report")
	r.OnCacheMiss(ctx, "report")
	r.OnCacheSet(ctx, "diagram", 512)

	if got := testutil.ToFloat64(r.RoutesTotal.WithLabelValues("dmx", "committed")); got != 2 {
		t.Errorf("committed routes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RoutesTotal.WithLabelValues("power", "cancelled")); got != 1 {
		t.Errorf("cancelled routes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.CacheRequestsTotal.WithLabelValues("report", "miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.CacheWrittenBytes.WithLabelValues("diagram")); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}
}

func TestServerHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.OnRequest(ctx, "POST", "/v1/power")
	if got := testutil.ToFloat64(r.HTTPRequestsInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	r.OnResponse(ctx, "POST", "/v1/power", 200, 10*time.Millisecond)
	if got := testutil.ToFloat64(r.HTTPRequestsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("POST", "/v1/power", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestInstall(t *testing.T) {
	r := NewRegistry()
	r.Install()
	defer observability.Reset()

	observability.Cache().OnCacheHit(context.Background(), "diagram")
	if got := testutil.ToFloat64(r.CacheRequestsTotal.WithLabelValues("diagram", "hit")); got != 1 {
		t.Errorf("hit through installed hooks = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.OnPowerReport(context.Background(), 1, 0, 0, time.Microsecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "rigwire_power_circuits 1") {
		t.Errorf("exposition missing gauge:\n%s", body)
	}
}
