package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNothingToUndo is returned when undo is requested with an empty history
var ErrNothingToUndo = errors.New("nothing to undo")

// OverAllocationError rejects a candidate whose share exceeds the asset's
// remaining allocatable capacity. Remaining is expressed in the candidate's
// unit (percent for percentage allocations, human quantity for amount
// allocations) so callers can surface an actionable message.
type OverAllocationError struct {
	AssetID   string
	Kind      AllocationKind
	Remaining decimal.Decimal
}

func (e *OverAllocationError) Error() string {
	if e.Kind == AllocationKindPercentage {
		return fmt.Sprintf("allocation exceeds remaining capacity for asset %s: %s%% available", e.AssetID, e.Remaining.String())
	}
	return fmt.Sprintf("allocation exceeds remaining capacity for asset %s: %s available", e.AssetID, e.Remaining.String())
}

// IndivisibleConflictError rejects any attempt to give a second beneficiary
// a share of an indivisible asset.
type IndivisibleConflictError struct {
	AssetID         string
	BeneficiaryID   string // current holder
	BeneficiaryName string // display name of the current holder, if known
}

func (e *IndivisibleConflictError) Error() string {
	holder := e.BeneficiaryName
	if holder == "" {
		holder = e.BeneficiaryID
	}
	return fmt.Sprintf("asset %s is already allocated to %s", e.AssetID, holder)
}
