package allocator

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/legacyvault-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ForAsset returns the allocations that belong to the given asset
func ForAsset(allocations []domain.Allocation, assetID string) []domain.Allocation {
	var out []domain.Allocation
	for _, a := range allocations {
		if a.AssetID == assetID {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the allocation for the (assetID, beneficiaryID) pair and its
// index in the list, or -1 if none exists
func Find(allocations []domain.Allocation, assetID, beneficiaryID string) (domain.Allocation, int) {
	for i, a := range allocations {
		if a.AssetID == assetID && a.BeneficiaryID == beneficiaryID {
			return a, i
		}
	}
	return domain.Allocation{}, -1
}

// PercentageTotal sums the percentage-kind allocations for an asset,
// excluding any allocation held by excludeBeneficiaryID (pass "" to exclude
// nothing). The exclusion matters when a beneficiary's existing allocation
// is being replaced: its old share must not count against the new one.
func PercentageTotal(allocations []domain.Allocation, assetID, excludeBeneficiaryID string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		if a.AssetID != assetID || a.Kind != domain.AllocationKindPercentage {
			continue
		}
		if excludeBeneficiaryID != "" && a.BeneficiaryID == excludeBeneficiaryID {
			continue
		}
		total = total.Add(a.Percentage)
	}
	return total
}

// AmountTotal sums the amount-kind allocations for an asset, excluding any
// allocation held by excludeBeneficiaryID (pass "" to exclude nothing)
func AmountTotal(allocations []domain.Allocation, assetID, excludeBeneficiaryID string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		if a.AssetID != assetID || a.Kind != domain.AllocationKindAmount {
			continue
		}
		if excludeBeneficiaryID != "" && a.BeneficiaryID == excludeBeneficiaryID {
			continue
		}
		total = total.Add(a.Amount)
	}
	return total
}

// EvenSplit builds one percentage allocation per beneficiary for the given
// asset, splitting 100% evenly at full decimal precision
func EvenSplit(assetID string, beneficiaries []domain.Beneficiary) []domain.Allocation {
	if len(beneficiaries) == 0 {
		return nil
	}

	share := hundred.Div(decimal.NewFromInt(int64(len(beneficiaries))))

	out := make([]domain.Allocation, 0, len(beneficiaries))
	for _, b := range beneficiaries {
		out = append(out, domain.Allocation{
			AssetID:       assetID,
			BeneficiaryID: b.ID,
			Kind:          domain.AllocationKindPercentage,
			Percentage:    share,
		})
	}
	return out
}

// RedistributeFreed spreads a freed percentage share evenly across the
// asset's remaining percentage-kind allocations.
// Logic:
//  1. Each remaining allocation grows by freed/N rounded down to two
//     decimal places
//  2. The last remaining allocation absorbs the rounding residual, so the
//     asset's total share changes by exactly the freed amount
//
// Safety: Rounding down keeps the residual non-negative, so no allocation
// can shrink to zero or below, and the per-asset total never drifts above
// 100 through cumulative rounding error
func RedistributeFreed(allocations []domain.Allocation, assetID string, freed decimal.Decimal) []domain.Allocation {
	if freed.LessThanOrEqual(decimal.Zero) {
		return allocations
	}

	var targets []int
	for i, a := range allocations {
		if a.AssetID == assetID && a.Kind == domain.AllocationKindPercentage {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return allocations
	}

	out := domain.CloneList(allocations)

	increment := freed.Div(decimal.NewFromInt(int64(len(targets)))).RoundDown(2)
	distributed := decimal.Zero

	for _, idx := range targets[:len(targets)-1] {
		out[idx].Percentage = out[idx].Percentage.Add(increment)
		distributed = distributed.Add(increment)
	}

	last := targets[len(targets)-1]
	out[last].Percentage = out[last].Percentage.Add(freed.Sub(distributed))

	return out
}
