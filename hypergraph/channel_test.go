package hypergraph

import "testing"

func sumBalances(bal map[ParticipantID]int64) int64 {
	var total int64
	for _, v := range bal {
		total += v
	}
	return total
}

func TestNewHyperChannelRejectsShortMemberList(t *testing.T) {
	if _, err := NewHyperChannel([]ParticipantID{0}, []int64{10}); err == nil {
		t.Fatal("expected error for single-member channel")
	}
}

func TestNewHyperChannelRejectsLengthMismatch(t *testing.T) {
	if _, err := NewHyperChannel([]ParticipantID{0, 1}, []int64{10}); err == nil {
		t.Fatal("expected error for mismatched members/deposits length")
	}
}

func TestNewHyperChannelRejectsDuplicateMember(t *testing.T) {
	if _, err := NewHyperChannel([]ParticipantID{0, 1, 0}, []int64{10, 10, 10}); err == nil {
		t.Fatal("expected error for duplicate member")
	}
}

func TestNewHyperChannelRejectsNegativeDeposit(t *testing.T) {
	if _, err := NewHyperChannel([]ParticipantID{0, 1}, []int64{10, -1}); err == nil {
		t.Fatal("expected error for negative deposit")
	}
}

func TestNewHyperChannelFundingIsDepositSum(t *testing.T) {
	ch, err := NewHyperChannel([]ParticipantID{0, 1, 2}, []int64{70_000_000, 30_000_000, 11_000_000})
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	if ch.FundingAmount() != 111_000_000 {
		t.Fatalf("funding amount = %d, want 111000000", ch.FundingAmount())
	}
	if ch.NumMembers() != 3 {
		t.Fatalf("num members = %d, want 3", ch.NumMembers())
	}
}

// TestPerformPaymentConservesFunds is spec testable property 1: for any
// sequence of PerformPayment calls on a single HyperChannel, the balance
// sum is invariant and equals FundingAmount.
func TestPerformPaymentConservesFunds(t *testing.T) {
	ch, err := NewHyperChannel(
		[]ParticipantID{0, 1, 2},
		[]int64{70_000_000, 30_000_000, 11_000_000},
	)
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}

	payments := []struct {
		origin, destination ParticipantID
		amount              int64
		hopIndex            int
	}{
		{0, 1, 10_000_000, 0},
		{1, 2, 5_000_000, 1},
		{2, 0, 2_000_000, 0},
	}

	for i, p := range payments {
		_, ok := ch.PerformPayment(p.origin, p.destination, p.amount, p.hopIndex)
		if !ok {
			t.Fatalf("payment %d (%v->%v, %d) rejected unexpectedly", i, p.origin, p.destination, p.amount)
		}
		if sum := sumBalances(ch.Balances()); sum != ch.FundingAmount() {
			t.Fatalf("after payment %d: balance sum %d != funding amount %d", i, sum, ch.FundingAmount())
		}
		for _, m := range ch.Members() {
			if ch.BalanceOf(m) < 0 {
				t.Fatalf("after payment %d: member %v has negative balance %d", i, m, ch.BalanceOf(m))
			}
		}
	}
}

func TestPerformPaymentRejectsNonMember(t *testing.T) {
	ch, err := NewHyperChannel([]ParticipantID{0, 1}, []int64{70_000_000, 30_000_000})
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	if _, ok := ch.PerformPayment(0, 99, 10_000_000, 0); ok {
		t.Fatal("expected PerformPayment to reject a non-member destination")
	}
}

func TestPerformPaymentRejectsSameOriginDestination(t *testing.T) {
	ch, err := NewHyperChannel([]ParticipantID{0, 1}, []int64{70_000_000, 30_000_000})
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	if _, ok := ch.PerformPayment(0, 0, 10_000_000, 0); ok {
		t.Fatal("expected PerformPayment to reject origin == destination")
	}
}

func TestPerformPaymentRejectsInfeasibleAmount(t *testing.T) {
	ch, err := NewHyperChannel([]ParticipantID{0, 1}, []int64{1_000, 1_000})
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	before := ch.Balances()
	if _, ok := ch.PerformPayment(0, 1, 10_000_000_000, 0); ok {
		t.Fatal("expected PerformPayment to reject an amount that overdraws the origin")
	}
	for m, bal := range before {
		if ch.BalanceOf(m) != bal {
			t.Fatalf("channel state mutated by a rejected payment: member %v was %d, now %d", m, bal, ch.BalanceOf(m))
		}
	}
}

func TestFeeForMatchesPerformPaymentQuote(t *testing.T) {
	ch, err := NewHyperChannel([]ParticipantID{0, 1}, []int64{70_000_000, 30_000_000})
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}

	fee, ok := ch.FeeFor(0, 1, 10_000_000, 0)
	if !ok {
		t.Fatal("expected FeeFor to report feasible")
	}
	if fee < 0 {
		t.Fatalf("fee must be non-negative, got %d", fee)
	}

	delta, ok := ch.PerformPayment(0, 1, 10_000_000-fee, 0)
	if !ok {
		t.Fatal("expected PerformPayment at the quoted net amount to succeed")
	}
	if sum := sumBalances(ch.Balances()); sum != ch.FundingAmount() {
		t.Fatalf("balance sum %d != funding amount %d after settlement", sum, ch.FundingAmount())
	}
	var deltaSum int64
	for _, d := range delta {
		deltaSum += d
	}
	if deltaSum != 0 {
		t.Fatalf("delta vector must sum to zero, got %d", deltaSum)
	}
}

func TestMinOnChainBytesGrowsWithMembership(t *testing.T) {
	two, err := NewHyperChannel([]ParticipantID{0, 1}, []int64{10, 10})
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	four, err := NewHyperChannel([]ParticipantID{0, 1, 2, 3}, []int64{10, 10, 10, 10})
	if err != nil {
		t.Fatalf("NewHyperChannel: %v", err)
	}
	if two.MinOnChainBytes() != 10+180+2*(73+34) {
		t.Fatalf("two-member on-chain bytes = %d, want %d", two.MinOnChainBytes(), 10+180+2*(73+34))
	}
	if four.MinOnChainBytes() <= two.MinOnChainBytes() {
		t.Fatal("expected a four-member channel to have a larger on-chain footprint than a two-member one")
	}
}
