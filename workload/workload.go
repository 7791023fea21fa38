// Package workload drives synthetic payment traffic against a
// routing.HyperNetwork: it identifies companies by initial wealth,
// generates a shadow-ledger-gated list of candidate payments, then
// executes the accepted list in generation order and tallies fees paid
// and failures, per spec §4.4.
package workload

import (
	"github.com/go-errors/errors"

	"github.com/breez/hyperlattice/config"
	"github.com/breez/hyperlattice/hlog"
	"github.com/breez/hyperlattice/hypergraph"
	"github.com/breez/hyperlattice/prng"
	"github.com/breez/hyperlattice/routing"
)

// Payment is one accepted, not-yet-executed candidate from the shadow
// ledger pass.
type Payment struct {
	Origin          hypergraph.ParticipantID
	Destination     hypergraph.ParticipantID
	Amount          int64
	OriginIsCompany bool
}

// Builder accumulates WorkloadConfig options. Mutating a Builder after
// Build is a fatal programmer error and panics, matching netgen.Builder.
type Builder struct {
	cfg   config.WorkloadConfig
	built bool
}

// NewBuilder returns a Builder preloaded with the defaults from spec
// §4.4.
func NewBuilder() *Builder {
	return &Builder{cfg: config.DefaultWorkloadConfig()}
}

func (b *Builder) mustBeMutable() {
	if b.built {
		panic(errors.Errorf("workload: builder option set after Build"))
	}
}

// WithSeed sets the seed consumed by every random draw in payment
// generation.
func (b *Builder) WithSeed(seed uint64) *Builder {
	b.mustBeMutable()
	b.cfg.Seed = seed
	return b
}

// WithPaymentSizeRange sets the log-uniform range ordinary payment
// amounts are drawn from.
func (b *Builder) WithPaymentSizeRange(min, max int64) *Builder {
	b.mustBeMutable()
	b.cfg.PaymentSizeMin = min
	b.cfg.PaymentSizeMax = max
	return b
}

// WithMinMonthlyPay sets the floor a monthly-pay draw must clear.
func (b *Builder) WithMinMonthlyPay(min int64) *Builder {
	b.mustBeMutable()
	b.cfg.MinMonthlyPay = min
	return b
}

// WithCompanyWealthMin sets the initial-wealth threshold for company
// identification.
func (b *Builder) WithCompanyWealthMin(min int64) *Builder {
	b.mustBeMutable()
	b.cfg.CompanyWealthMin = min
	return b
}

// WithNumPayments sets how many payments to generate and execute.
func (b *Builder) WithNumPayments(n int) *Builder {
	b.mustBeMutable()
	b.cfg.NumPayments = n
	return b
}

// WithMonthlyPayProbability sets the per-candidate probability of
// drawing a monthly-pay event instead of an ordinary payment.
func (b *Builder) WithMonthlyPayProbability(p float64) *Builder {
	b.mustBeMutable()
	b.cfg.MonthlyPayProbability = p
	return b
}

// WithConfig replaces the builder's entire option set.
func (b *Builder) WithConfig(cfg config.WorkloadConfig) *Builder {
	b.mustBeMutable()
	b.cfg = cfg
	return b
}

// Build validates the accumulated options and returns an un-initialized
// Workload bound to network. Build may only be called once per Builder.
func (b *Builder) Build(network *routing.HyperNetwork) (*Workload, error) {
	b.mustBeMutable()
	b.built = true

	if network == nil {
		return nil, errors.Errorf("workload: network must not be nil")
	}
	if len(network.Participants()) < 2 {
		return nil, errors.Errorf("workload: network must have at least 2 participants")
	}
	if b.cfg.NumPayments <= 0 {
		return nil, errors.Errorf("workload: num_payments must be > 0, got %d", b.cfg.NumPayments)
	}
	if b.cfg.PaymentSizeMin <= 0 || b.cfg.PaymentSizeMax < b.cfg.PaymentSizeMin {
		return nil, errors.Errorf("workload: invalid payment size range [%d, %d]",
			b.cfg.PaymentSizeMin, b.cfg.PaymentSizeMax)
	}
	if b.cfg.MonthlyPayProbability < 0 || b.cfg.MonthlyPayProbability > 1 {
		return nil, errors.Errorf("workload: monthly_pay_probability must be in [0,1], got %f",
			b.cfg.MonthlyPayProbability)
	}

	return &Workload{cfg: b.cfg, network: network}, nil
}

// Workload holds one generation/execution run bound to a single
// routing.HyperNetwork.
type Workload struct {
	cfg     config.WorkloadConfig
	network *routing.HyperNetwork

	initialized bool

	companies []hypergraph.ParticipantID
	isCompany map[hypergraph.ParticipantID]bool

	accepted []Payment

	totalFeePaid   int64
	succeededCount int
	failedCount    int

	companyAttempted int
	companyAccepted  int
	companySucceeded int
	companyFailed    int
	companyFeePaid   int64

	nonCompanyAttempted int
	nonCompanyAccepted  int
	nonCompanySucceeded int
	nonCompanyFailed    int
	nonCompanyFeePaid   int64
}

// Init identifies companies, generates the accepted payment list via
// the shadow ledger, and executes it against the bound network. It may
// only be called once; a second call panics.
func (w *Workload) Init() error {
	if w.initialized {
		panic(errors.Errorf("workload: Init called more than once"))
	}

	participants := w.network.Participants()
	shadow := make(map[hypergraph.ParticipantID]int64, len(participants))
	w.isCompany = make(map[hypergraph.ParticipantID]bool, len(participants))

	for _, p := range participants {
		wealth := w.network.Wealth(p)
		shadow[p] = wealth
		if wealth >= w.cfg.CompanyWealthMin {
			w.isCompany[p] = true
			w.companies = append(w.companies, p)
		}
	}

	hlog.Workload.Infof("generating %d payments (seed %d, %d companies of %d participants)",
		w.cfg.NumPayments, w.cfg.Seed, len(w.companies), len(participants))

	src := prng.New(w.cfg.Seed)

	for len(w.accepted) < w.cfg.NumPayments {
		isMonthly := src.NextUniformDouble() < w.cfg.MonthlyPayProbability

		var amount int64
		var origin hypergraph.ParticipantID

		if isMonthly {
			for {
				amount = src.LogUniformDeposit(w.cfg.PaymentSizeMin, w.cfg.PaymentSizeMax)
				if amount >= w.cfg.MinMonthlyPay {
					break
				}
			}
			pool := w.companies
			if len(pool) == 0 {
				pool = participants
			}
			origin = pool[src.NextInt(len(pool))]
		} else {
			amount = src.LogUniformDeposit(w.cfg.PaymentSizeMin, w.cfg.PaymentSizeMax)
			origin = participants[src.NextInt(len(participants))]
		}

		var destination hypergraph.ParticipantID
		for {
			destination = participants[src.NextInt(len(participants))]
			if destination != origin {
				break
			}
		}

		originIsCompany := w.isCompany[origin]
		if originIsCompany {
			w.companyAttempted++
		} else {
			w.nonCompanyAttempted++
		}

		if shadow[origin] < amount {
			continue
		}
		shadow[origin] -= amount
		shadow[destination] -= amount

		if originIsCompany {
			w.companyAccepted++
		} else {
			w.nonCompanyAccepted++
		}

		w.accepted = append(w.accepted, Payment{
			Origin:          origin,
			Destination:     destination,
			Amount:          amount,
			OriginIsCompany: originIsCompany,
		})
	}

	hlog.Workload.Infof("executing %d accepted payments", len(w.accepted))

	for _, p := range w.accepted {
		fee, ok := w.network.PerformPayment(p.Origin, p.Destination, p.Amount)
		if ok {
			w.totalFeePaid += fee
			w.succeededCount++
			if p.OriginIsCompany {
				w.companySucceeded++
				w.companyFeePaid += fee
			} else {
				w.nonCompanySucceeded++
				w.nonCompanyFeePaid += fee
			}
			continue
		}

		w.failedCount++
		if p.OriginIsCompany {
			w.companyFailed++
		} else {
			w.nonCompanyFailed++
		}
	}

	w.initialized = true
	return nil
}

func (w *Workload) mustBeInitialized() {
	if !w.initialized {
		panic(errors.Errorf("workload: accessor called before Init"))
	}
}

// Companies returns the participants identified as companies, in
// network participant order. Calling this before Init panics.
func (w *Workload) Companies() []hypergraph.ParticipantID {
	w.mustBeInitialized()
	return append([]hypergraph.ParticipantID(nil), w.companies...)
}

// Accepted returns the generated payment list in generation (and
// execution) order. Calling this before Init panics.
func (w *Workload) Accepted() []Payment {
	w.mustBeInitialized()
	return append([]Payment(nil), w.accepted...)
}

// TotalFeePaid returns the sum of fees paid by every successfully
// executed payment. Calling this before Init panics.
func (w *Workload) TotalFeePaid() int64 {
	w.mustBeInitialized()
	return w.totalFeePaid
}

// SucceededCount and FailedCount return the split of the accepted list
// by execution outcome. Calling either before Init panics.
func (w *Workload) SucceededCount() int {
	w.mustBeInitialized()
	return w.succeededCount
}

func (w *Workload) FailedCount() int {
	w.mustBeInitialized()
	return w.failedCount
}
