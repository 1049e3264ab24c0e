package route

import (
	"fmt"
	"strings"

	"github.com/matzehuels/rigwire/pkg/network"
)

// Axis selects which leg of a bent segment comes first.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Toggle returns the other axis.
func (a Axis) Toggle() Axis {
	if a == Vertical {
		return Horizontal
	}
	return Vertical
}

// ParseAxis parses "horizontal" or "vertical" (case-insensitive).
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("invalid axis %q: want horizontal or vertical", s)
}

// Corner returns the bend point of the segment from last to end. Horizontal
// travels along x first, Vertical along y first.
func (a Axis) Corner(last, end network.Point) network.Point {
	if a == Vertical {
		return network.Pt(last.X, end.Y)
	}
	return network.Pt(end.X, last.Y)
}
