package hypergraph

import (
	"math"

	"github.com/go-errors/errors"
)

// Fee model constants, per the channel's fee decomposition.
const (
	// PerTxPerMember is the flat intake each member earns per transaction
	// that crosses the channel.
	PerTxPerMember int64 = 40

	// SenderBonus is added to the fee quoted to the payment's origin.
	SenderBonus int64 = 10_000

	// AvailabilityPerMember is the per-member component of the funds
	// time-value term.
	AvailabilityPerMember int64 = 10

	// InvInterestPerTxTimeUnit divides a member's balance to derive its
	// contribution to the time-value term.
	InvInterestPerTxTimeUnit int64 = 12_000_000

	// DeviationPenalty weights the change in balance standard deviation
	// between the channel's state before and after the proposed
	// zero-fee transfer.
	DeviationPenalty float64 = 1e-5
)

// ChannelID is an opaque arena handle for a HyperChannel, scoped to the
// routing.HyperNetwork that owns it.
type ChannelID uint64

// HyperChannel holds the shared funding pool and per-member balances for a
// channel of two or more participants. A HyperChannel with exactly two
// members is what the spec calls a "classic channel"; the same type
// models both variants, since the fee and settlement logic is identical
// for k=2 and k>2.
type HyperChannel struct {
	members  []ParticipantID
	position map[ParticipantID]int
	balances map[ParticipantID]int64
	funding  int64
}

// NewHyperChannel constructs a channel over members with the matching
// deposits vector. Per §7, a mismatched-length or negative deposit is a
// configuration error: the channel is simply not built, and the caller
// (the network-pair generator) is expected to treat this as fatal.
func NewHyperChannel(members []ParticipantID, deposits []int64) (*HyperChannel, error) {
	if len(members) < 2 {
		return nil, errors.Errorf("hyperchannel requires at least 2 members, got %d", len(members))
	}
	if len(members) != len(deposits) {
		return nil, errors.Errorf("hyperchannel members (%d) and deposits (%d) length mismatch",
			len(members), len(deposits))
	}

	position := make(map[ParticipantID]int, len(members))
	balances := make(map[ParticipantID]int64, len(members))
	var funding int64
	for i, m := range members {
		if _, dup := position[m]; dup {
			return nil, errors.Errorf("hyperchannel member %s appears more than once", Participant{ID: m}.DisplayID())
		}
		if deposits[i] < 0 {
			return nil, errors.Errorf("hyperchannel deposit for member %s is negative: %d", Participant{ID: m}.DisplayID(), deposits[i])
		}
		position[m] = i
		balances[m] = deposits[i]
		funding += deposits[i]
	}

	return &HyperChannel{
		members:  append([]ParticipantID(nil), members...),
		position: position,
		balances: balances,
		funding:  funding,
	}, nil
}

// IsMember reports whether p belongs to the channel.
func (c *HyperChannel) IsMember(p ParticipantID) bool {
	_, ok := c.position[p]
	return ok
}

// Members returns the channel's members in their original, fixed
// insertion order.
func (c *HyperChannel) Members() []ParticipantID {
	return append([]ParticipantID(nil), c.members...)
}

// NumMembers returns the member count.
func (c *HyperChannel) NumMembers() int {
	return len(c.members)
}

// FundingAmount returns the immutable sum of initial deposits.
func (c *HyperChannel) FundingAmount() int64 {
	return c.funding
}

// BalanceOf returns p's current balance. Calling this for a participant
// that is not a member is API misuse — a fatal programmer error, not a
// recoverable condition — and panics, matching §7's classification.
func (c *HyperChannel) BalanceOf(p ParticipantID) int64 {
	bal, ok := c.balances[p]
	if !ok {
		panic(errors.Errorf("hyperchannel: %s is not a member", Participant{ID: p}.DisplayID()))
	}
	return bal
}

// Balances returns a snapshot of every member's balance, keyed by
// ParticipantID. Mutating the returned map has no effect on the channel.
func (c *HyperChannel) Balances() map[ParticipantID]int64 {
	out := make(map[ParticipantID]int64, len(c.balances))
	for k, v := range c.balances {
		out[k] = v
	}
	return out
}

// RestoreBalances overwrites the channel's balances with snapshot, a map
// previously obtained from Balances. It exists solely to support the
// defensive rollback described in DESIGN.md for routing.HyperNetwork's
// multi-channel settlement; ordinary callers should never need it.
func (c *HyperChannel) RestoreBalances(snapshot map[ParticipantID]int64) {
	for k, v := range snapshot {
		c.balances[k] = v
	}
}

// MinOnChainBytes returns the synthetic on-chain footprint estimate used
// only by reporting: a base transaction overhead plus a per-member
// signature-and-pubkey cost.
func (c *HyperChannel) MinOnChainBytes() int64 {
	return 10 + 180 + int64(len(c.members))*(73+34)
}

// stddev returns the population standard deviation of the values in bal.
func stddev(bal map[ParticipantID]int64) float64 {
	n := float64(len(bal))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range bal {
		sum += float64(v)
	}
	mean := sum / n

	var sqDiff float64
	for _, v := range bal {
		d := float64(v) - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff / n)
}

// computeDelta runs the fee decomposition for a proposed payment of amount
// from origin to destination at hopIndex, returning the per-member delta
// vector. ok is false if origin/destination are not both members, the
// amount is negative, origin equals destination, or the payment would
// leave a member's balance negative after applying delta and the
// origin/destination transfer.
func (c *HyperChannel) computeDelta(origin, destination ParticipantID, amount int64, hopIndex int) (map[ParticipantID]int64, bool) {
	if amount < 0 || origin == destination {
		return nil, false
	}
	if !c.IsMember(origin) || !c.IsMember(destination) {
		return nil, false
	}

	after := make(map[ParticipantID]int64, len(c.balances))
	for m, bal := range c.balances {
		after[m] = bal
	}
	after[origin] -= amount
	after[destination] += amount

	sigmaBefore := stddev(c.balances)
	sigmaAfter := stddev(after)
	imbalance := int64(math.Round((sigmaAfter - sigmaBefore) * DeviationPenalty))

	n := int64(len(c.members))
	delta := make(map[ParticipantID]int64, len(c.members))
	var sum int64
	weight := int64(1 + 2*hopIndex)
	for _, m := range c.members {
		bal := c.balances[m]
		d := PerTxPerMember + weight*(bal/InvInterestPerTxTimeUnit+AvailabilityPerMember) + imbalance/n
		delta[m] = d
		sum += d
	}
	delta[origin] -= sum

	for _, m := range c.members {
		final := c.balances[m] + delta[m]
		if m == origin {
			final -= amount
		}
		if m == destination {
			final += amount
		}
		if final < 0 {
			return nil, false
		}
	}

	return delta, true
}

// FeeFor quotes the fee the origin would pay to move amount across the
// channel to destination, at the given hop index, without mutating any
// state. The second return value is false if the payment is infeasible at
// this channel/hop/amount.
func (c *HyperChannel) FeeFor(origin, destination ParticipantID, amount int64, hopIndex int) (int64, bool) {
	delta, ok := c.computeDelta(origin, destination, amount, hopIndex)
	if !ok {
		return 0, false
	}
	fee := -delta[origin] + SenderBonus
	if fee < 0 {
		fee = 0
	}
	return fee, true
}

// PerformPayment settles a transfer of amount from origin to destination
// at hopIndex, mutating balances in place. It returns the per-member delta
// that was applied (so the owning network can credit its fee-intake
// ledger) and whether settlement happened; on failure, channel state is
// unchanged.
func (c *HyperChannel) PerformPayment(origin, destination ParticipantID, amount int64, hopIndex int) (map[ParticipantID]int64, bool) {
	delta, ok := c.computeDelta(origin, destination, amount, hopIndex)
	if !ok {
		return nil, false
	}

	for m, d := range delta {
		c.balances[m] += d
	}
	c.balances[origin] -= amount
	c.balances[destination] += amount

	return delta, true
}
