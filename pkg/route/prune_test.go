package route

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/rigwire/pkg/network"
)

func TestPrune(t *testing.T) {
	p := network.Pt
	tests := []struct {
		name string
		in   []network.Point
		want []network.Point
	}{
		{"empty", nil, []network.Point{}},
		{"single", []network.Point{p(1, 1)}, []network.Point{p(1, 1)}},
		{"bend kept", []network.Point{p(0, 0), p(10, 0), p(10, 10)}, []network.Point{p(0, 0), p(10, 0), p(10, 10)}},
		{"straight run", []network.Point{p(0, 0), p(10, 0), p(20, 0), p(30, 0)}, []network.Point{p(0, 0), p(30, 0)}},
		{"duplicates", []network.Point{p(0, 0), p(0, 0), p(0, 5), p(0, 5)}, []network.Point{p(0, 0), p(0, 5)}},
		{"fold back", []network.Point{p(0, 0), p(10, 0), p(0, 0)}, []network.Point{p(0, 0)}},
		{"cascade", []network.Point{p(0, 0), p(10, 0), p(10, 10), p(10, 0), p(20, 0)}, []network.Point{p(0, 0), p(20, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prune(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Prune() (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(got, Prune(got)); diff != "" {
				t.Errorf("Prune() not idempotent (-once +twice):\n%s", diff)
			}
		})
	}
}
