package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// AllocationKind represents how an allocation's share is expressed
type AllocationKind string

const (
	AllocationKindPercentage AllocationKind = "PERCENTAGE"
	AllocationKindAmount     AllocationKind = "AMOUNT"
)

// Allocation binds one asset to one beneficiary with a share.
// The pair (AssetID, BeneficiaryID) is unique within an allocation list.
// Exactly one of Percentage or Amount is meaningful, selected by Kind.
type Allocation struct {
	AssetID       string
	BeneficiaryID string
	Kind          AllocationKind
	Percentage    decimal.Decimal // 0 < p <= 100 when Kind is PERCENTAGE
	Amount        decimal.Decimal // 0 < amount <= human balance when Kind is AMOUNT
}

// Validate ensures the allocation adheres to domain rules
// Returns an error if validation fails
func (a *Allocation) Validate() error {
	if a.AssetID == "" {
		return errors.New("allocation asset ID cannot be empty")
	}

	if a.BeneficiaryID == "" {
		return errors.New("allocation beneficiary ID cannot be empty")
	}

	switch a.Kind {
	case AllocationKindPercentage:
		if a.Percentage.LessThanOrEqual(decimal.Zero) {
			return errors.New("allocation percentage must be positive")
		}
		if a.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return errors.New("allocation percentage cannot exceed 100")
		}
	case AllocationKindAmount:
		if a.Amount.LessThanOrEqual(decimal.Zero) {
			return errors.New("allocation amount must be positive")
		}
	default:
		return errors.New("allocation kind must be PERCENTAGE or AMOUNT")
	}

	return nil
}

// CloneList returns a copy of the allocation list so that callers can
// build the next state without mutating the current one. Every mutation in
// the engine replaces the list wholesale; prior snapshots stay intact for
// undo.
func CloneList(allocations []Allocation) []Allocation {
	if allocations == nil {
		return nil
	}

	out := make([]Allocation, len(allocations))
	copy(out, allocations)
	return out
}
