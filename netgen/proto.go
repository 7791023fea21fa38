package netgen

import (
	"sort"

	"github.com/breez/hyperlattice/hypergraph"
)

// protoChannel is a not-yet-built hyper channel: a member list plus each
// member's would-be deposit, assembled during the hyper transform before
// being handed to hypergraph.NewHyperChannel.
type protoChannel struct {
	members  []hypergraph.ParticipantID
	balances map[hypergraph.ParticipantID]int64
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// mergeProto folds b into a: members unique to b are appended (in b's
// order) after a's existing members, and a member present in both has
// its balances summed.
func mergeProto(a, b protoChannel) protoChannel {
	members := append([]hypergraph.ParticipantID(nil), a.members...)
	balances := make(map[hypergraph.ParticipantID]int64, len(a.balances)+len(b.balances))
	for k, v := range a.balances {
		balances[k] = v
	}
	for _, m := range b.members {
		if bal, ok := balances[m]; ok {
			balances[m] = bal + b.balances[m]
		} else {
			members = append(members, m)
			balances[m] = b.balances[m]
		}
	}
	return protoChannel{members: members, balances: balances}
}

// unifyProtoChannels runs the best-fit greedy unification pass described
// in spec §4.3: repeatedly take the smallest proto-channel and merge it
// into the largest proto-channel it still fits inside (member count
// after merge <= maxSize), stopping as soon as the current smallest
// cannot merge with anything larger than itself. This is explicitly not
// a global optimum.
func unifyProtoChannels(protos []protoChannel, maxSize int) []protoChannel {
	working := append([]protoChannel(nil), protos...)

	for {
		if len(working) <= 1 {
			break
		}
		sort.SliceStable(working, func(i, j int) bool {
			return len(working[i].members) < len(working[j].members)
		})

		smallest := working[0]
		merged := false
		for idx := len(working) - 1; idx >= 1; idx-- {
			candidate := working[idx]
			if len(candidate.members)+len(smallest.members) <= maxSize {
				working[idx] = mergeProto(candidate, smallest)
				working = append(working[:0], working[1:]...)
				merged = true
				break
			}
		}
		if !merged {
			break
		}
	}

	return working
}
