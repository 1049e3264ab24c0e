package network

import (
	"strings"

	"github.com/google/uuid"
)

// Id prefixes used by the layout editor.
const (
	PrefixEquipment = "inst_"
	PrefixOutlet    = "outlet_"
	PrefixWire      = "wire_"
)

// NewID returns prefix followed by 8 random hex characters.
func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
