package quickalloc

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/legacyvault-backend/internal/domain"
	"github.com/simaogato/legacyvault-backend/internal/usecase/allocator"
	"github.com/simaogato/legacyvault-backend/internal/usecase/store"
)

// Service performs the bulk "quick allocate" operation: every unallocated
// divisible asset is split evenly across all beneficiaries, every
// unallocated indivisible asset goes wholly to the first beneficiary.
// Assets that already carry at least one allocation are never touched, so
// quick allocation cannot overwrite manual work.
type Service struct {
	Store        *store.Store
	Rules        domain.Rules
	SnapshotRepo domain.SnapshotRepository // optional
}

// NewService creates a new quickalloc Service instance
func NewService(st *store.Store, rules domain.Rules, snapshots domain.SnapshotRepository) *Service {
	return &Service{
		Store:        st,
		Rules:        rules,
		SnapshotRepo: snapshots,
	}
}

// QuickAllocate fills in allocations for every asset that has none.
// The whole batch is recorded as a single history entry so it can be undone
// as a unit. When every asset is already allocated, the list is returned
// unchanged and no history entry is pushed.
func (s *Service) QuickAllocate(ctx context.Context, assets []domain.Asset, beneficiaries []domain.Beneficiary) ([]domain.Allocation, error) {
	if len(beneficiaries) == 0 {
		return nil, errors.New("quick allocate requires at least one beneficiary")
	}

	if len(assets) == 0 {
		return nil, errors.New("quick allocate requires at least one asset")
	}

	current := s.Store.Current()
	next := domain.CloneList(current)
	changed := false

	for _, asset := range assets {
		if len(allocator.ForAsset(next, asset.ID)) > 0 {
			continue
		}

		if s.Rules.Classifier.Classify(asset.Type) == domain.AssetClassDivisible {
			next = append(next, s.splitEvenly(asset.ID, beneficiaries)...)
		} else {
			// first-added beneficiary is the default owner for
			// unsplittable assets
			next = append(next, domain.Allocation{
				AssetID:       asset.ID,
				BeneficiaryID: beneficiaries[0].ID,
				Kind:          domain.AllocationKindPercentage,
				Percentage:    decimal.NewFromInt(100),
			})
		}

		changed = true
	}

	if !changed {
		return current, nil
	}

	if s.SnapshotRepo != nil {
		if err := s.SnapshotRepo.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to save allocation snapshot: %w", err)
		}
	}

	s.Store.Replace(next, true)

	return next, nil
}

// splitEvenly builds the per-beneficiary percentage allocations for one
// divisible asset. With a single beneficiary the configured sole share
// applies instead of the even split.
func (s *Service) splitEvenly(assetID string, beneficiaries []domain.Beneficiary) []domain.Allocation {
	if len(beneficiaries) == 1 {
		return []domain.Allocation{{
			AssetID:       assetID,
			BeneficiaryID: beneficiaries[0].ID,
			Kind:          domain.AllocationKindPercentage,
			Percentage:    s.Rules.SoleBeneficiaryShare,
		}}
	}

	return allocator.EvenSplit(assetID, beneficiaries)
}
