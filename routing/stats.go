package routing

import (
	"fmt"
	"math"
	"strings"

	"github.com/breez/hyperlattice/hypergraph"
)

// Stats is the aggregate report described in §4.2's Observability section.
// Field names here are an implementation detail — per §6 the rendered
// block has no guaranteed key names and callers should not parse it; use
// the struct fields directly instead.
type Stats struct {
	ChannelCount           int
	MembershipSum          int
	Diameter               float64
	ChannelsPerMember      float64
	MembershipsPerMember   float64
	OnChainByteTotal       int64
	MeanOnChainBytes       float64
	MeanWealth             float64
	MinWealth              int64
	MeanMaxReceiptCapacity float64
	MinMaxReceiptCapacity  int64
	MultiPartyProportion   float64
}

// maxReceiptCapacity returns the amount p could receive right now without
// pushing any channel it belongs to past its funding pool: the sum, over
// every channel containing p, of the room left between p's balance and
// that channel's funding amount.
func (n *HyperNetwork) maxReceiptCapacity(p hypergraph.ParticipantID) int64 {
	var capacity int64
	for _, cid := range n.adjacency[p] {
		ch := n.channelByID[cid]
		capacity += ch.FundingAmount() - ch.BalanceOf(p)
	}
	return capacity
}

// cliqueAdjacency builds the 2-section of the hypergraph: an ordinary
// graph where two participants are adjacent iff they share at least one
// channel. Each channel of size k contributes the clique on its k
// members.
func (n *HyperNetwork) cliqueAdjacency() map[hypergraph.ParticipantID][]hypergraph.ParticipantID {
	adj := make(map[hypergraph.ParticipantID][]hypergraph.ParticipantID, len(n.participants))
	seen := make(map[hypergraph.ParticipantID]map[hypergraph.ParticipantID]bool, len(n.participants))
	for _, p := range n.participants {
		adj[p] = nil
		seen[p] = make(map[hypergraph.ParticipantID]bool)
	}

	for _, cid := range n.channels {
		members := n.channelByID[cid].Members()
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				if !seen[a][b] {
					seen[a][b] = true
					seen[b][a] = true
					adj[a] = append(adj[a], b)
					adj[b] = append(adj[b], a)
				}
			}
		}
	}

	return adj
}

// diameter returns the maximum finite eccentricity over the 2-section,
// using unweighted BFS from every participant, or +Inf if the network is
// disconnected.
func (n *HyperNetwork) diameter() float64 {
	if len(n.participants) == 0 {
		return 0
	}

	adj := n.cliqueAdjacency()
	maxEcc := 0.0

	for _, source := range n.participants {
		dist := map[hypergraph.ParticipantID]int{source: 0}
		queue := []hypergraph.ParticipantID{source}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range adj[u] {
				if _, ok := dist[v]; ok {
					continue
				}
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}

		if len(dist) < len(n.participants) {
			return math.Inf(1)
		}

		for _, d := range dist {
			if float64(d) > maxEcc {
				maxEcc = float64(d)
			}
		}
	}

	return maxEcc
}

// Stats computes the aggregate report over the network's current state.
func (n *HyperNetwork) Stats() Stats {
	s := Stats{
		ChannelCount: len(n.channels),
	}

	var multiParty int
	for _, cid := range n.channels {
		ch := n.channelByID[cid]
		s.MembershipSum += ch.NumMembers()
		s.OnChainByteTotal += ch.MinOnChainBytes()
		if ch.NumMembers() > 2 {
			multiParty++
		}
	}
	if s.ChannelCount > 0 {
		s.MultiPartyProportion = float64(multiParty) / float64(s.ChannelCount)
		s.MeanOnChainBytes = float64(s.OnChainByteTotal) / float64(s.ChannelCount)
	}

	if len(n.participants) > 0 {
		s.ChannelsPerMember = float64(s.ChannelCount) / float64(len(n.participants))
		s.MembershipsPerMember = float64(s.MembershipSum) / float64(len(n.participants))

		var wealthSum float64
		minWealth := int64(math.MaxInt64)
		var capacitySum float64
		minCapacity := int64(math.MaxInt64)
		for _, p := range n.participants {
			w := n.Wealth(p)
			wealthSum += float64(w)
			if w < minWealth {
				minWealth = w
			}
			c := n.maxReceiptCapacity(p)
			capacitySum += float64(c)
			if c < minCapacity {
				minCapacity = c
			}
		}
		s.MeanWealth = wealthSum / float64(len(n.participants))
		s.MinWealth = minWealth
		s.MeanMaxReceiptCapacity = capacitySum / float64(len(n.participants))
		s.MinMaxReceiptCapacity = minCapacity
	}

	s.Diameter = n.diameter()

	return s
}

// String renders the human-readable multi-line report described in §6.
// No guaranteed key names: this is formatting, not a machine contract.
func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "channels:                 %d\n", s.ChannelCount)
	fmt.Fprintf(&b, "channel memberships:      %d\n", s.MembershipSum)
	fmt.Fprintf(&b, "diameter:                 %v\n", s.Diameter)
	fmt.Fprintf(&b, "channels/member:          %.4f\n", s.ChannelsPerMember)
	fmt.Fprintf(&b, "memberships/member:       %.4f\n", s.MembershipsPerMember)
	fmt.Fprintf(&b, "on-chain bytes (sum/mean): %d / %.2f\n", s.OnChainByteTotal, s.MeanOnChainBytes)
	fmt.Fprintf(&b, "wealth (mean/min):        %.2f / %d\n", s.MeanWealth, s.MinWealth)
	fmt.Fprintf(&b, "max receipt (mean/min):   %.2f / %d\n", s.MeanMaxReceiptCapacity, s.MinMaxReceiptCapacity)
	fmt.Fprintf(&b, "multi-party proportion:   %.4f\n", s.MultiPartyProportion)
	return b.String()
}
