package domain

import "github.com/shopspring/decimal"

// DefaultHistoryDepth is the number of prior allocation-list snapshots kept
// for undo before the oldest is dropped.
const DefaultHistoryDepth = 100

// Rules is the configuration surface for the behaviors that differ between
// deployments of the planner. The lightweight and full estate products share
// this engine and vary only in these knobs.
type Rules struct {
	Classifier Classifier

	// SoleBeneficiaryShare is the percentage granted by quick allocation
	// when exactly one beneficiary exists.
	SoleBeneficiaryShare decimal.Decimal

	// HistoryDepth caps the undo history. Zero or negative falls back to
	// DefaultHistoryDepth.
	HistoryDepth int
}

// DefaultRules returns the full estate product defaults: ethscriptions and
// ordinals indivisible, a sole beneficiary receives 100%, history capped at
// DefaultHistoryDepth.
func DefaultRules() Rules {
	return Rules{
		SoleBeneficiaryShare: decimal.NewFromInt(100),
		HistoryDepth:         DefaultHistoryDepth,
	}
}
