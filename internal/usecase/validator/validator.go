package validator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/legacyvault-backend/internal/domain"
	"github.com/simaogato/legacyvault-backend/internal/usecase/allocator"
)

var hundred = decimal.NewFromInt(100)

// Validate decides whether a candidate allocation can be applied on top of
// the current allocation list.
// Rules, in order:
//  1. The candidate itself must be well-formed (positive share, valid kind)
//  2. The beneficiary must exist in the current collection
//  3. Indivisible assets reject any second beneficiary; the mutator forces
//     the share to 100%
//  4. Divisible assets reject shares that exceed the remaining capacity.
//     Percentage-kind and amount-kind allocations draw from one pool: the
//     amount total is converted to percentage terms (and vice versa) before
//     the check, and the reported remaining capacity is expressed in the
//     candidate's unit
//
// Side-effect-free: a rejection leaves no trace, and the returned
// OverAllocationError carries the remaining capacity for user feedback.
func Validate(current []domain.Allocation, asset domain.Asset, candidate domain.Allocation, beneficiaries []domain.Beneficiary, classifier domain.Classifier) error {
	if candidate.AssetID != asset.ID {
		return errors.New("candidate allocation does not reference the given asset")
	}

	if err := candidate.Validate(); err != nil {
		return err
	}

	if _, ok := domain.FindBeneficiary(beneficiaries, candidate.BeneficiaryID); !ok {
		return fmt.Errorf("beneficiary %s not found", candidate.BeneficiaryID)
	}

	if classifier.Classify(asset.Type) == domain.AssetClassIndivisible {
		return validateIndivisible(current, asset, candidate, beneficiaries)
	}

	balance, err := asset.HumanBalance()
	if err != nil {
		return err
	}

	switch candidate.Kind {
	case domain.AllocationKindPercentage:
		remaining := hundred.Sub(usedPercentage(current, asset.ID, balance, candidate.BeneficiaryID))
		if candidate.Percentage.GreaterThan(remaining) {
			return &domain.OverAllocationError{
				AssetID:   asset.ID,
				Kind:      domain.AllocationKindPercentage,
				Remaining: remaining,
			}
		}
	case domain.AllocationKindAmount:
		// remaining is never above balance, so this covers the plain
		// amount-exceeds-balance case too
		remaining := remainingAmount(current, asset.ID, balance, candidate.BeneficiaryID)
		if candidate.Amount.GreaterThan(remaining) {
			return &domain.OverAllocationError{
				AssetID:   asset.ID,
				Kind:      domain.AllocationKindAmount,
				Remaining: remaining,
			}
		}
	}

	return nil
}

// validateIndivisible rejects the candidate when the asset already belongs
// to a different beneficiary. Re-adding for the same beneficiary is allowed
// (it replaces the record).
func validateIndivisible(current []domain.Allocation, asset domain.Asset, candidate domain.Allocation, beneficiaries []domain.Beneficiary) error {
	for _, a := range allocator.ForAsset(current, asset.ID) {
		if a.BeneficiaryID != candidate.BeneficiaryID {
			holder, _ := domain.FindBeneficiary(beneficiaries, a.BeneficiaryID)
			return &domain.IndivisibleConflictError{
				AssetID:         asset.ID,
				BeneficiaryID:   a.BeneficiaryID,
				BeneficiaryName: holder.Name,
			}
		}
	}
	return nil
}

// usedPercentage expresses everything already allocated for the asset as a
// percentage, folding amount-kind allocations into the same pool
func usedPercentage(current []domain.Allocation, assetID string, balance decimal.Decimal, excludeBeneficiaryID string) decimal.Decimal {
	used := allocator.PercentageTotal(current, assetID, excludeBeneficiaryID)

	if balance.IsPositive() {
		amounts := allocator.AmountTotal(current, assetID, excludeBeneficiaryID)
		used = used.Add(amounts.Div(balance).Mul(hundred))
	}

	return used
}

// remainingAmount expresses the asset's unallocated capacity as a human
// quantity, folding percentage-kind allocations into the same pool
func remainingAmount(current []domain.Allocation, assetID string, balance decimal.Decimal, excludeBeneficiaryID string) decimal.Decimal {
	used := allocator.AmountTotal(current, assetID, excludeBeneficiaryID)
	used = used.Add(allocator.PercentageTotal(current, assetID, excludeBeneficiaryID).Div(hundred).Mul(balance))
	return balance.Sub(used)
}
