package netgen

import (
	"github.com/breez/hyperlattice/config"
	"github.com/breez/hyperlattice/hypergraph"
	"github.com/breez/hyperlattice/routing"
)

// deadEndEntry ties a dead-end participant to the single classic channel
// that connects it to its connector.
type deadEndEntry struct {
	deadEnd hypergraph.ParticipantID
	channel hypergraph.ChannelID
}

// stageA fuses dead-ends (degree-1 participants) into their connector,
// per spec §4.3 Stage A. Channels it consumes are marked in consumed so
// later stages skip them. The rare degenerate case of an isolated pair
// — a classic channel whose both endpoints have degree 1, i.e. the
// channel is its own connected component — has no well-defined single
// connector to fuse around; it is carried straight through as its own
// proto-channel instead, a case the spec leaves unaddressed.
func stageA(
	classic *routing.HyperNetwork,
	classicChannels []hypergraph.ChannelID,
	degree map[hypergraph.ParticipantID]int,
	maxHyperChannelSize int,
	consumed map[hypergraph.ChannelID]bool,
) []protoChannel {
	var connectorOrder []hypergraph.ParticipantID
	grouped := make(map[hypergraph.ParticipantID][]deadEndEntry)

	for _, cid := range classicChannels {
		ch, _ := classic.Channel(cid)
		members := ch.Members()

		deadEndCount := 0
		deadEndIdx := -1
		for i, m := range members {
			if degree[m] == 1 {
				deadEndCount++
				deadEndIdx = i
			}
		}
		if deadEndCount != 1 {
			continue
		}

		deadEnd := members[deadEndIdx]
		connector := members[1-deadEndIdx]
		if _, seen := grouped[connector]; !seen {
			connectorOrder = append(connectorOrder, connector)
		}
		grouped[connector] = append(grouped[connector], deadEndEntry{deadEnd: deadEnd, channel: cid})
		consumed[cid] = true
	}

	var protoChannels []protoChannel
	for _, connector := range connectorOrder {
		entries := grouped[connector]
		k := len(entries)
		f := ceilDiv(k, maxHyperChannelSize-1)
		idealSize := 1 + ceilDiv(k, f)
		groupSize := idealSize - 1

		for start := 0; start < k; start += groupSize {
			end := start + groupSize
			if end > k {
				end = k
			}
			group := entries[start:end]

			members := make([]hypergraph.ParticipantID, 0, len(group)+1)
			balances := make(map[hypergraph.ParticipantID]int64, len(group)+1)
			members = append(members, connector)

			var connectorBalance int64
			for _, e := range group {
				ch, _ := classic.Channel(e.channel)
				connectorBalance += ch.BalanceOf(connector)
				members = append(members, e.deadEnd)
				balances[e.deadEnd] = ch.BalanceOf(e.deadEnd)
			}
			balances[connector] = connectorBalance

			protoChannels = append(protoChannels, protoChannel{members: members, balances: balances})
		}
	}

	for _, cid := range classicChannels {
		if consumed[cid] {
			continue
		}
		ch, _ := classic.Channel(cid)
		members := ch.Members()
		if degree[members[0]] == 1 && degree[members[1]] == 1 {
			consumed[cid] = true
			protoChannels = append(protoChannels, protoChannel{
				members:  append([]hypergraph.ParticipantID(nil), members...),
				balances: ch.Balances(),
			})
		}
	}

	return protoChannels
}

// stageB contracts every remaining classic channel whose endpoint degree
// (in the untouched classic network) falls below minConnectivity on
// either side, per spec §4.3 Stage B.
func stageB(
	classic *routing.HyperNetwork,
	classicChannels []hypergraph.ChannelID,
	degree map[hypergraph.ParticipantID]int,
	minConnectivity int,
	consumed map[hypergraph.ChannelID]bool,
) []protoChannel {
	var protoChannels []protoChannel
	for _, cid := range classicChannels {
		if consumed[cid] {
			continue
		}
		ch, _ := classic.Channel(cid)
		members := ch.Members()
		if degree[members[0]] < minConnectivity || degree[members[1]] < minConnectivity {
			consumed[cid] = true
			protoChannels = append(protoChannels, protoChannel{
				members:  append([]hypergraph.ParticipantID(nil), members...),
				balances: ch.Balances(),
			})
		}
	}
	return protoChannels
}

// stageC carries every classic channel neither stage touched straight
// through, unmodified and unmerged, per spec §4.3 Stage C.
func stageC(
	classic *routing.HyperNetwork,
	classicChannels []hypergraph.ChannelID,
	consumed map[hypergraph.ChannelID]bool,
) []protoChannel {
	var protoChannels []protoChannel
	for _, cid := range classicChannels {
		if consumed[cid] {
			continue
		}
		ch, _ := classic.Channel(cid)
		protoChannels = append(protoChannels, protoChannel{
			members:  ch.Members(),
			balances: ch.Balances(),
		})
	}
	return protoChannels
}

// buildHyper derives the hyper network from the already-built classic
// network by running Stage A, a unification pass, optionally Stage B
// and a second unification pass, then Stage C. No randomness is
// consumed here: the transform is a deterministic function of the
// classic network and the configured parameters.
func buildHyper(classic *routing.HyperNetwork, cfg config.NetworkPairConfig) (*routing.HyperNetwork, error) {
	classicChannels := classic.Channels()

	degree := make(map[hypergraph.ParticipantID]int, len(classic.Participants()))
	for _, p := range classic.Participants() {
		degree[p] = len(classic.ChannelsOf(p))
	}

	consumed := make(map[hypergraph.ChannelID]bool)

	protoList := stageA(classic, classicChannels, degree, cfg.MaxHyperChannelSize, consumed)
	protoList = unifyProtoChannels(protoList, cfg.MaxHyperChannelSize)

	if !cfg.HPCParsimony {
		bList := stageB(classic, classicChannels, degree, cfg.HPCAvoidanceMinConnectivity, consumed)
		protoList = append(protoList, bList...)
		protoList = unifyProtoChannels(protoList, cfg.MaxHyperChannelSize)
	}

	protoList = append(protoList, stageC(classic, classicChannels, consumed)...)

	hyper := routing.NewHyperNetwork()
	for _, p := range classic.Participants() {
		hyper.AddMember(p)
	}
	for _, proto := range protoList {
		deposits := make([]int64, len(proto.members))
		for i, m := range proto.members {
			deposits[i] = proto.balances[m]
		}
		ch, err := hypergraph.NewHyperChannel(proto.members, deposits)
		if err != nil {
			return nil, err
		}
		hyper.AddChannel(ch)
	}

	return hyper, nil
}
