package netgen

import (
	"github.com/breez/hyperlattice/config"
	"github.com/breez/hyperlattice/hypergraph"
	"github.com/breez/hyperlattice/prng"
	"github.com/breez/hyperlattice/routing"
)

// buildClassic synthesizes the classic (two-party-only) network by
// preferential attachment, per spec §4.3. Participants are created with
// ids 0..num_members-1 and pushed into a FIFO queue; the first channel
// opens between the first two entries popped from that queue, and every
// later channel opens between the next popped participant and a partner
// sampled uniformly from the attachment multiset (every participant
// that is an endpoint of a channel, once per channel it belongs to). Whenever
// the queue runs dry it is refilled with the full participant list in
// its original order.
func buildClassic(cfg config.NetworkPairConfig, src *prng.Source) (*routing.HyperNetwork, error) {
	net := routing.NewHyperNetwork()

	participants := make([]hypergraph.ParticipantID, cfg.NumMembers)
	for i := 0; i < cfg.NumMembers; i++ {
		participants[i] = hypergraph.ParticipantID(i)
		net.AddMember(participants[i])
	}

	queue := append([]hypergraph.ParticipantID(nil), participants...)
	var attachment []hypergraph.ParticipantID

	popFront := func() hypergraph.ParticipantID {
		if len(queue) == 0 {
			queue = append(queue, participants...)
		}
		p := queue[0]
		queue = queue[1:]
		return p
	}

	openChannel := func(a, b hypergraph.ParticipantID) error {
		depositA := src.LogUniformDeposit(cfg.FundingContributionMin, cfg.FundingContributionMax)
		depositB := src.LogUniformDeposit(cfg.FundingContributionMin, cfg.FundingContributionMax)
		ch, err := hypergraph.NewHyperChannel(
			[]hypergraph.ParticipantID{a, b},
			[]int64{depositA, depositB},
		)
		if err != nil {
			return err
		}
		net.AddChannel(ch)
		attachment = append(attachment, a, b)
		return nil
	}

	first := popFront()
	second := popFront()
	if err := openChannel(first, second); err != nil {
		return nil, err
	}

	for i := 1; i < cfg.NumClassicChannels; i++ {
		member := popFront()

		var partner hypergraph.ParticipantID
		for {
			partner = attachment[src.NextInt(len(attachment))]
			if partner != member {
				break
			}
		}

		if err := openChannel(member, partner); err != nil {
			return nil, err
		}
	}

	return net, nil
}
