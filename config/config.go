// Package config defines the flag-taggable option structs that both the
// library builders (netgen.Builder, workload.Builder) and an embedding
// CLI (cmd/hyperlatticectl) share, in the same style as the teacher's
// lnrpc/routerrpc.Config: fields carry `long`/`description` struct tags
// consumable by github.com/jessevdk/go-flags, while also serving as plain
// Go values for library callers that never touch a flag parser.
package config

// NetworkPairConfig holds every option recognised by the network-pair
// builder (spec §6's option table). Zero-value NumClassicChannels means
// "use the spec default of floor(1.2 * NumMembers)"; netgen.Builder
// resolves that at Build time, not here, since the default depends on
// NumMembers which may be set after this struct is constructed.
type NetworkPairConfig struct {
	Seed uint64 `long:"seed" description:"seed for deterministic network generation"`

	FundingContributionMin int64 `long:"funding-contribution-min" default:"10000000" description:"minimum per-deposit amount"`
	FundingContributionMax int64 `long:"funding-contribution-max" default:"10000000000" description:"maximum per-deposit amount"`

	NumMembers          int `long:"num-members" default:"1000" description:"participant count"`
	NumClassicChannels  int `long:"num-classic-channels" description:"channel count in the classic network (default floor(1.2*num-members))"`
	MaxHyperChannelSize int `long:"max-hyper-channel-size" default:"30" description:"hard cap on hyper channel size"`

	HPCAvoidanceMinConnectivity int  `long:"hpc-avoidance-min-connectivity" default:"5" description:"stage B connectivity threshold"`
	HPCParsimony                bool `long:"hpc-parsimony" description:"disable stage B path contraction"`
}

// DefaultNetworkPairConfig returns the parameter defaults enumerated in
// spec §4.3.
func DefaultNetworkPairConfig() NetworkPairConfig {
	return NetworkPairConfig{
		FundingContributionMin:      10_000_000,
		FundingContributionMax:      10_000_000_000,
		NumMembers:                  1000,
		MaxHyperChannelSize:         30,
		HPCAvoidanceMinConnectivity: 5,
	}
}

// WorkloadConfig holds every option recognised by the workload driver
// (spec §4.4).
type WorkloadConfig struct {
	Seed uint64 `long:"workload-seed" description:"seed for deterministic payment generation"`

	PaymentSizeMin int64 `long:"payment-size-min" default:"2000000" description:"minimum payment amount"`
	PaymentSizeMax int64 `long:"payment-size-max" default:"10000000000" description:"maximum payment amount"`

	MinMonthlyPay         int64   `long:"min-monthly-pay" default:"1500000000" description:"minimum amount for a monthly-pay event"`
	CompanyWealthMin      int64   `long:"company-wealth-min" default:"20000000000" description:"initial wealth threshold to be considered a company"`
	NumPayments           int     `long:"num-payments" default:"1000" description:"number of payments to generate and execute"`
	MonthlyPayProbability float64 `long:"monthly-pay-probability" default:"0.02" description:"probability a generated payment is a monthly-pay event"`
}

// DefaultWorkloadConfig returns the parameter defaults enumerated in spec
// §4.4.
func DefaultWorkloadConfig() WorkloadConfig {
	return WorkloadConfig{
		PaymentSizeMin:        2_000_000,
		PaymentSizeMax:        10_000_000_000,
		MinMonthlyPay:         1_500_000_000,
		CompanyWealthMin:      20_000_000_000,
		NumPayments:           1000,
		MonthlyPayProbability: 0.02,
	}
}
