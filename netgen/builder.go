// Package netgen synthesizes the paired classic/hyper networks described
// in spec §4.3: a scale-free classic network built by preferential
// attachment, and the hyper network derived from it by dead-end fusion,
// path contraction, and carry-over. Network construction is
// deterministic in the configured seed; no wall-clock time, concurrency,
// or external randomness enters the picture.
package netgen

import (
	"math"

	"github.com/go-errors/errors"

	"github.com/breez/hyperlattice/config"
	"github.com/breez/hyperlattice/hlog"
	"github.com/breez/hyperlattice/prng"
	"github.com/breez/hyperlattice/routing"
)

// Builder accumulates NetworkPairConfig options. Options may be set
// freely up to the first call to Build; mutating a Builder afterward is
// a fatal programmer error (spec §7 API misuse), not a recoverable
// condition, so it panics.
type Builder struct {
	cfg   config.NetworkPairConfig
	built bool
}

// NewBuilder returns a Builder preloaded with the defaults from spec
// §4.3.
func NewBuilder() *Builder {
	return &Builder{cfg: config.DefaultNetworkPairConfig()}
}

func (b *Builder) mustBeMutable() {
	if b.built {
		panic(errors.Errorf("netgen: builder option set after Build"))
	}
}

// WithSeed sets the seed consumed by every random draw in classic
// network construction.
func (b *Builder) WithSeed(seed uint64) *Builder {
	b.mustBeMutable()
	b.cfg.Seed = seed
	return b
}

// WithFundingContributionRange sets the inclusive log-uniform range each
// deposit is drawn from.
func (b *Builder) WithFundingContributionRange(min, max int64) *Builder {
	b.mustBeMutable()
	b.cfg.FundingContributionMin = min
	b.cfg.FundingContributionMax = max
	return b
}

// WithNumMembers sets the participant count.
func (b *Builder) WithNumMembers(n int) *Builder {
	b.mustBeMutable()
	b.cfg.NumMembers = n
	return b
}

// WithNumClassicChannels sets the classic channel count. Passing 0
// requests the spec default of floor(1.2 * num_members).
func (b *Builder) WithNumClassicChannels(n int) *Builder {
	b.mustBeMutable()
	b.cfg.NumClassicChannels = n
	return b
}

// WithMaxHyperChannelSize sets the hard cap on hyper channel size.
func (b *Builder) WithMaxHyperChannelSize(n int) *Builder {
	b.mustBeMutable()
	b.cfg.MaxHyperChannelSize = n
	return b
}

// WithHPCAvoidanceMinConnectivity sets the Stage B connectivity
// threshold.
func (b *Builder) WithHPCAvoidanceMinConnectivity(n int) *Builder {
	b.mustBeMutable()
	b.cfg.HPCAvoidanceMinConnectivity = n
	return b
}

// WithHPCParsimony toggles Stage B (path contraction) off when true.
func (b *Builder) WithHPCParsimony(p bool) *Builder {
	b.mustBeMutable()
	b.cfg.HPCParsimony = p
	return b
}

// WithConfig replaces the builder's entire option set, for callers that
// assembled a config.NetworkPairConfig directly (e.g. from flag
// parsing).
func (b *Builder) WithConfig(cfg config.NetworkPairConfig) *Builder {
	b.mustBeMutable()
	b.cfg = cfg
	return b
}

// Build validates the accumulated options and returns an un-initialized
// NetworkPair. Build may only be called once per Builder; a second call
// panics.
func (b *Builder) Build() (*NetworkPair, error) {
	b.mustBeMutable()
	b.built = true

	cfg := b.cfg
	if cfg.NumMembers < 2 {
		return nil, errors.Errorf("netgen: num_members must be >= 2, got %d", cfg.NumMembers)
	}
	if cfg.MaxHyperChannelSize < 2 {
		return nil, errors.Errorf("netgen: max_hyper_channel_size must be >= 2, got %d", cfg.MaxHyperChannelSize)
	}
	if cfg.FundingContributionMin <= 0 || cfg.FundingContributionMax < cfg.FundingContributionMin {
		return nil, errors.Errorf("netgen: invalid funding contribution range [%d, %d]",
			cfg.FundingContributionMin, cfg.FundingContributionMax)
	}
	if cfg.NumClassicChannels == 0 {
		cfg.NumClassicChannels = int(math.Floor(1.2 * float64(cfg.NumMembers)))
	}
	if cfg.NumClassicChannels < cfg.NumMembers-1 {
		return nil, errors.Errorf("netgen: num_classic_channels (%d) must be >= num_members-1 (%d)",
			cfg.NumClassicChannels, cfg.NumMembers-1)
	}

	return &NetworkPair{cfg: cfg}, nil
}

// NetworkPair holds the paired classic and hyper networks for one
// generation run. A freshly built NetworkPair is inert until Init is
// called; reading ClassicNetwork or HyperNetwork before that is API
// misuse and panics.
type NetworkPair struct {
	cfg         config.NetworkPairConfig
	initialized bool
	classic     *routing.HyperNetwork
	hyper       *routing.HyperNetwork
}

// Init runs the classic network synthesis followed by the hyper
// transform. It may only be called once; a second call panics.
func (np *NetworkPair) Init() error {
	if np.initialized {
		panic(errors.Errorf("netgen: NetworkPair.Init called more than once"))
	}

	hlog.Netgen.Infof("generating classic network: %d members, %d channels, seed %d",
		np.cfg.NumMembers, np.cfg.NumClassicChannels, np.cfg.Seed)

	src := prng.New(np.cfg.Seed)
	classic, err := buildClassic(np.cfg, src)
	if err != nil {
		return err
	}

	hlog.Netgen.Infof("deriving hyper network (max size %d, hpc_parsimony=%v)",
		np.cfg.MaxHyperChannelSize, np.cfg.HPCParsimony)

	hyper, err := buildHyper(classic, np.cfg)
	if err != nil {
		return err
	}

	np.classic = classic
	np.hyper = hyper
	np.initialized = true
	return nil
}

// ClassicNetwork returns the synthesized two-party-only network. Calling
// this before Init panics.
func (np *NetworkPair) ClassicNetwork() *routing.HyperNetwork {
	if !np.initialized {
		panic(errors.Errorf("netgen: ClassicNetwork called before Init"))
	}
	return np.classic
}

// HyperNetwork returns the derived k-party network. Calling this before
// Init panics.
func (np *NetworkPair) HyperNetwork() *routing.HyperNetwork {
	if !np.initialized {
		panic(errors.Errorf("netgen: HyperNetwork called before Init"))
	}
	return np.hyper
}
