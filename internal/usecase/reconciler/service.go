package reconciler

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/legacyvault-backend/internal/domain"
	"github.com/simaogato/legacyvault-backend/internal/usecase/allocator"
	"github.com/simaogato/legacyvault-backend/internal/usecase/store"
)

// Service reacts to collaborator list changes. Beneficiary removals purge
// orphaned allocations and redistribute or reassign the freed shares; asset
// removals purge orphaned allocations outright. Neither pass goes through
// the undo history: the upstream deletion is its own reportable event.
type Service struct {
	Store        *store.Store
	Rules        domain.Rules
	SnapshotRepo domain.SnapshotRepository // optional
}

// NewService creates a new reconciler Service instance
func NewService(st *store.Store, rules domain.Rules, snapshots domain.SnapshotRepository) *Service {
	return &Service{
		Store:        st,
		Rules:        rules,
		SnapshotRepo: snapshots,
	}
}

// SyncBeneficiaries reconciles the allocation list with the current
// beneficiary collection.
// Logic:
//  1. Drop every allocation whose beneficiary no longer exists
//  2. Divisible assets with remaining allocations absorb the freed
//     percentage evenly; with none remaining they are re-split across all
//     current beneficiaries
//  3. Indivisible assets that lost their sole allocation are reassigned
//     wholly to the first remaining beneficiary
//
// The new list is committed as one atomic replacement.
func (s *Service) SyncBeneficiaries(ctx context.Context, assets []domain.Asset, beneficiaries []domain.Beneficiary) ([]domain.Allocation, error) {
	current := s.Store.Current()

	known := make(map[string]bool, len(beneficiaries))
	for _, b := range beneficiaries {
		known[b.ID] = true
	}

	next := make([]domain.Allocation, 0, len(current))
	freed := make(map[string]decimal.Decimal)
	lost := make(map[string]bool)

	for _, a := range current {
		if known[a.BeneficiaryID] {
			next = append(next, a)
			continue
		}

		lost[a.AssetID] = true
		if a.Kind == domain.AllocationKindPercentage {
			freed[a.AssetID] = freed[a.AssetID].Add(a.Percentage)
		}
	}

	if len(lost) == 0 {
		return current, nil
	}

	// iterate the asset list, not the map, so reassignment order is
	// deterministic
	for _, asset := range assets {
		if !lost[asset.ID] {
			continue
		}

		if s.Rules.Classifier.Classify(asset.Type) == domain.AssetClassDivisible {
			if len(allocator.ForAsset(next, asset.ID)) > 0 {
				next = allocator.RedistributeFreed(next, asset.ID, freed[asset.ID])
			} else if len(beneficiaries) > 0 {
				next = append(next, allocator.EvenSplit(asset.ID, beneficiaries)...)
			}
			continue
		}

		if len(beneficiaries) > 0 {
			next = append(next, domain.Allocation{
				AssetID:       asset.ID,
				BeneficiaryID: beneficiaries[0].ID,
				Kind:          domain.AllocationKindPercentage,
				Percentage:    decimal.NewFromInt(100),
			})
		}
	}

	return s.commit(ctx, next)
}

// SyncAssets reconciles the allocation list with the current asset list,
// dropping allocations whose asset is no longer loaded. No redistribution
// happens: the asset itself is gone.
func (s *Service) SyncAssets(ctx context.Context, assets []domain.Asset) ([]domain.Allocation, error) {
	current := s.Store.Current()

	known := make(map[string]bool, len(assets))
	for _, a := range assets {
		known[a.ID] = true
	}

	next := make([]domain.Allocation, 0, len(current))
	for _, a := range current {
		if known[a.AssetID] {
			next = append(next, a)
		}
	}

	if len(next) == len(current) {
		return current, nil
	}

	return s.commit(ctx, next)
}

// commit replaces the list without recording undo history and persists the
// result when a repository is configured. The replacement happens first:
// dangling beneficiary references must not survive a persistence failure.
func (s *Service) commit(ctx context.Context, next []domain.Allocation) ([]domain.Allocation, error) {
	s.Store.Replace(next, false)

	if s.SnapshotRepo != nil {
		if err := s.SnapshotRepo.Save(ctx, next); err != nil {
			return next, fmt.Errorf("failed to save allocation snapshot: %w", err)
		}
	}

	return next, nil
}
