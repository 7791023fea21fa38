package export

import (
	"strings"
	"testing"

	"github.com/breez/hyperlattice/hypergraph"
	"github.com/breez/hyperlattice/routing"
)

func buildTestNetwork(t *testing.T) *routing.HyperNetwork {
	t.Helper()
	n := routing.NewHyperNetwork()

	ch1, err := hypergraph.NewHyperChannel(
		[]hypergraph.ParticipantID{0, 1},
		[]int64{70_000_000, 30_000_000},
	)
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	n.AddChannel(ch1)

	ch2, err := hypergraph.NewHyperChannel(
		[]hypergraph.ParticipantID{1, 2, 3},
		[]int64{50_000_000, 20_000_000, 30_000_000},
	)
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	n.AddChannel(ch2)

	return n
}

func TestWriteHyperedgeForm(t *testing.T) {
	n := buildTestNetwork(t)
	var b strings.Builder
	if err := WriteHyperedgeForm(&b, n); err != nil {
		t.Fatalf("WriteHyperedgeForm: %v", err)
	}
	out := b.String()

	if strings.Count(out, "<node ") != 4 {
		t.Fatalf("expected 4 nodes, got:\n%s", out)
	}
	if strings.Count(out, "<hyperedge ") != 2 {
		t.Fatalf("expected 2 hyperedges, got:\n%s", out)
	}
	if strings.Count(out, "<endpoint ") != 5 {
		t.Fatalf("expected 5 endpoints (2+3), got:\n%s", out)
	}
	if !strings.Contains(out, `edgedefault="undirected"`) {
		t.Fatalf("expected undirected graph header, got:\n%s", out)
	}
}

func TestWriteCliqueForm(t *testing.T) {
	n := buildTestNetwork(t)
	var b strings.Builder
	if err := WriteCliqueForm(&b, n); err != nil {
		t.Fatalf("WriteCliqueForm: %v", err)
	}
	out := b.String()

	// ch1 contributes C(2,2)=1 edge, ch2 contributes C(3,2)=3 edges.
	if strings.Count(out, "<edge ") != 4 {
		t.Fatalf("expected 4 clique edges, got:\n%s", out)
	}
	if strings.Count(out, "<node ") != 4 {
		t.Fatalf("expected 4 nodes, got:\n%s", out)
	}
}

func TestStatsBlockRendersLabelAndOnChainMean(t *testing.T) {
	n := buildTestNetwork(t)
	block := NewStatsBlock("classic", n.Stats())
	out := block.String()

	if !strings.Contains(out, "=== classic network ===") {
		t.Fatalf("expected label header, got:\n%s", out)
	}
	if !strings.Contains(out, "on-chain bytes (sum/mean)") {
		t.Fatalf("expected on-chain bytes sum/mean line, got:\n%s", out)
	}
}
