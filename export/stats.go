package export

import (
	"fmt"
	"strings"

	"github.com/breez/hyperlattice/routing"
)

// StatsBlock renders one network's aggregate routing.Stats as the
// human-readable, no-guaranteed-key-names "stats block" text named in
// §1/§6: the plain-text formatting of results is an external
// collaborator's concern, not the core's — routing.Stats() computes every
// aggregate figure, including MinOnChainBytes's sum-and-mean pair, and
// StatsBlock only labels and prints them.
type StatsBlock struct {
	Label string
	Stats routing.Stats
}

// NewStatsBlock packages a labelled routing.Stats for rendering.
func NewStatsBlock(label string, s routing.Stats) StatsBlock {
	return StatsBlock{Label: label, Stats: s}
}

// String renders the labelled block. Like routing.Stats.String, this is
// formatting, not a machine contract: callers should read Stats' fields
// directly rather than parse this text.
func (b StatsBlock) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s network ===\n", b.Label)
	sb.WriteString(b.Stats.String())
	return sb.String()
}
