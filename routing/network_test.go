package routing

import (
	"math"
	"testing"

	"github.com/breez/hyperlattice/hypergraph"
)

func mustChannel(t *testing.T, members []hypergraph.ParticipantID, deposits []int64) *hypergraph.HyperChannel {
	t.Helper()
	ch, err := hypergraph.NewHyperChannel(members, deposits)
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	return ch
}

// TestCheapestRouteTrivial is spec scenario S1: a single two-member
// channel between m0 and m1 yields the one-hop route between them.
func TestCheapestRouteTrivial(t *testing.T) {
	n := NewHyperNetwork()
	for i := hypergraph.ParticipantID(0); i < 10; i++ {
		n.AddMember(i)
	}

	c1 := mustChannel(t, []hypergraph.ParticipantID{0, 1}, []int64{70_000_000, 30_000_000})
	id1 := n.AddChannel(c1)

	route, ok := n.CheapestRoute(0, 1, 10_000_000)
	if !ok {
		t.Fatal("expected a route between m0 and m1")
	}
	if len(route.Hops) != 2 || route.Hops[0] != 0 || route.Hops[1] != 1 {
		t.Fatalf("unexpected hops: %v", route.Hops)
	}
	if len(route.Channels) != 1 || route.Channels[0] != id1 {
		t.Fatalf("unexpected channels: %v", route.Channels)
	}
}

// TestCheapestRouteDisconnected is spec scenario S2: m4 shares no channel
// with anyone, so no route to it exists.
func TestCheapestRouteDisconnected(t *testing.T) {
	n := NewHyperNetwork()
	for i := hypergraph.ParticipantID(0); i < 10; i++ {
		n.AddMember(i)
	}
	n.AddChannel(mustChannel(t, []hypergraph.ParticipantID{0, 1}, []int64{70_000_000, 30_000_000}))

	if _, ok := n.CheapestRoute(0, 4, 10_000_000); ok {
		t.Fatal("expected no route to an isolated participant")
	}
}

// TestCheapestRouteMultiHopHyper is spec scenario S3: a five-channel
// hyper network where the cheapest route from m8 to m6 must cross every
// channel, each exactly once, in a specific order.
func TestCheapestRouteMultiHopHyper(t *testing.T) {
	n := NewHyperNetwork()
	for i := hypergraph.ParticipantID(0); i < 10; i++ {
		n.AddMember(i)
	}

	m := func(i int) hypergraph.ParticipantID { return hypergraph.ParticipantID(i) }

	h2 := mustChannel(t, []hypergraph.ParticipantID{m(9), m(1), m(0)}, []int64{70_000_000, 30_000_000, 11_000_000})
	idH2 := n.AddChannel(h2)

	h4 := mustChannel(t, []hypergraph.ParticipantID{m(2), m(3), m(4)}, []int64{220_000_000, 80_000_000, 110_000_000})
	idH4 := n.AddChannel(h4)

	h5 := mustChannel(t, []hypergraph.ParticipantID{m(7), m(6), m(2), m(5)}, []int64{380_000_000, 370_000_000, 130_000_000, 120_000_000})
	idH5 := n.AddChannel(h5)

	h3 := mustChannel(t, []hypergraph.ParticipantID{m(1), m(3), m(4)}, []int64{90_000_000, 30_000_000, 60_000_000})
	idH3 := n.AddChannel(h3)

	h1 := mustChannel(t, []hypergraph.ParticipantID{m(0), m(8)}, []int64{70_000_000, 30_000_000})
	idH1 := n.AddChannel(h1)

	route, ok := n.CheapestRoute(m(8), m(6), 10_000_000)
	if !ok {
		t.Fatal("expected a route from m8 to m6")
	}

	wantChannels := []hypergraph.ChannelID{idH1, idH2, idH3, idH4, idH5}
	if len(route.Channels) != len(wantChannels) {
		t.Fatalf("route has %d channels, want %d: %v", len(route.Channels), len(wantChannels), route.Channels)
	}
	for i, cid := range wantChannels {
		if route.Channels[i] != cid {
			t.Fatalf("channel %d = %v, want %v (route: %v)", i, route.Channels[i], cid, route.Channels)
		}
	}

	if route.Hops[0] != m(8) {
		t.Fatalf("hops[0] = %v, want m8", route.Hops[0])
	}
	if route.Hops[len(route.Hops)-1] != m(6) {
		t.Fatalf("last hop = %v, want m6", route.Hops[len(route.Hops)-1])
	}
	if route.Hops[1] != m(0) {
		t.Fatalf("hops[1] = %v, want m0", route.Hops[1])
	}
	if route.Hops[2] != m(1) {
		t.Fatalf("hops[2] = %v, want m1", route.Hops[2])
	}
	if route.Hops[3] != m(3) && route.Hops[3] != m(4) {
		t.Fatalf("hops[3] = %v, want m3 or m4", route.Hops[3])
	}
	if route.Hops[4] != m(2) {
		t.Fatalf("hops[4] = %v, want m2", route.Hops[4])
	}
}

// TestCheapestRouteNoDuplicateChannels is spec testable property 5: the
// channel sequence on any returned route never repeats a channel.
func TestCheapestRouteNoDuplicateChannels(t *testing.T) {
	n := NewHyperNetwork()
	for i := hypergraph.ParticipantID(0); i < 4; i++ {
		n.AddMember(i)
	}
	n.AddChannel(mustChannel(t, []hypergraph.ParticipantID{0, 1}, []int64{1_000_000_000, 1_000_000_000}))
	n.AddChannel(mustChannel(t, []hypergraph.ParticipantID{1, 2}, []int64{1_000_000_000, 1_000_000_000}))
	n.AddChannel(mustChannel(t, []hypergraph.ParticipantID{2, 3}, []int64{1_000_000_000, 1_000_000_000}))
	n.AddChannel(mustChannel(t, []hypergraph.ParticipantID{0, 3}, []int64{1_000_000_000, 1_000_000_000}))

	route, ok := n.CheapestRoute(0, 2, 10_000_000)
	if !ok {
		t.Fatal("expected a route")
	}
	seen := make(map[hypergraph.ChannelID]bool)
	for _, cid := range route.Channels {
		if seen[cid] {
			t.Fatalf("channel %v repeats on route %v", cid, route.Channels)
		}
		seen[cid] = true
	}
}

// TestPerformPaymentSettlesRouteAndConservesWealth is spec testable
// property 2/7: a successful multi-hop PerformPayment settles every
// channel on the route, leaves no negative balance, and the sender pays
// exactly the amount it reports.
func TestPerformPaymentSettlesRouteAndConservesWealth(t *testing.T) {
	n := NewHyperNetwork()
	for i := hypergraph.ParticipantID(0); i < 4; i++ {
		n.AddMember(i)
	}
	c1 := mustChannel(t, []hypergraph.ParticipantID{0, 1}, []int64{1_000_000_000, 1_000_000_000})
	c2 := mustChannel(t, []hypergraph.ParticipantID{1, 2}, []int64{1_000_000_000, 1_000_000_000})
	n.AddChannel(c1)
	n.AddChannel(c2)

	senderWealthBefore := n.Wealth(0)
	payeeWealthBefore := n.Wealth(2)

	fee, ok := n.PerformPayment(0, 2, 10_000_000)
	if !ok {
		t.Fatal("expected PerformPayment to succeed")
	}
	if fee < 0 {
		t.Fatalf("fee must be non-negative, got %d", fee)
	}

	for _, cid := range n.Channels() {
		ch, _ := n.Channel(cid)
		for _, m := range ch.Members() {
			if ch.BalanceOf(m) < 0 {
				t.Fatalf("channel %v member %v has negative balance after settlement", cid, m)
			}
		}
	}

	if got := senderWealthBefore - n.Wealth(0); got != 10_000_000 {
		t.Fatalf("sender wealth decreased by %d, want 10000000 (payment amount)", got)
	}
	if got := n.Wealth(2) - payeeWealthBefore; got != 10_000_000-fee {
		t.Fatalf("payee wealth increased by %d, want %d (amount - fee)", got, 10_000_000-fee)
	}
}

func TestPerformPaymentUnroutableReturnsSentinel(t *testing.T) {
	n := NewHyperNetwork()
	n.AddMember(0)
	n.AddMember(1)

	fee, ok := n.PerformPayment(0, 1, 10_000_000)
	if ok {
		t.Fatal("expected PerformPayment to report unroutable")
	}
	if fee != -1 {
		t.Fatalf("unroutable fee sentinel = %d, want -1", fee)
	}
}

func TestStatsMultiPartyProportion(t *testing.T) {
	n := NewHyperNetwork()
	for i := hypergraph.ParticipantID(0); i < 5; i++ {
		n.AddMember(i)
	}
	n.AddChannel(mustChannel(t, []hypergraph.ParticipantID{0, 1}, []int64{10, 10}))
	n.AddChannel(mustChannel(t, []hypergraph.ParticipantID{1, 2, 3}, []int64{10, 10, 10}))

	s := n.Stats()
	if s.ChannelCount != 2 {
		t.Fatalf("channel count = %d, want 2", s.ChannelCount)
	}
	if s.MultiPartyProportion != 0.5 {
		t.Fatalf("multi-party proportion = %f, want 0.5", s.MultiPartyProportion)
	}
	if s.MembershipSum != 5 {
		t.Fatalf("membership sum = %d, want 5", s.MembershipSum)
	}
	wantMean := float64(s.OnChainByteTotal) / float64(s.ChannelCount)
	if s.MeanOnChainBytes != wantMean {
		t.Fatalf("mean on-chain bytes = %f, want %f", s.MeanOnChainBytes, wantMean)
	}
}

func TestDiameterDisconnectedIsInfinite(t *testing.T) {
	n := NewHyperNetwork()
	n.AddMember(0)
	n.AddMember(1)
	n.AddMember(2)
	n.AddChannel(mustChannel(t, []hypergraph.ParticipantID{0, 1}, []int64{10, 10}))

	s := n.Stats()
	if !math.IsInf(s.Diameter, 1) {
		t.Fatalf("diameter = %v, want +Inf for a disconnected network", s.Diameter)
	}
}
