package allocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/legacyvault-backend/internal/domain"
	"github.com/simaogato/legacyvault-backend/internal/usecase/allocator"
	"github.com/simaogato/legacyvault-backend/internal/usecase/store"
	"github.com/simaogato/legacyvault-backend/internal/usecase/validator"
)

// Service applies user-driven changes to the allocation list. Every
// successful mutation pushes the prior list onto the undo history and, when
// a snapshot repository is configured, persists the new list before
// committing it.
type Service struct {
	Store        *store.Store
	Rules        domain.Rules
	SnapshotRepo domain.SnapshotRepository // optional
}

// NewService creates a new allocation Service instance
func NewService(st *store.Store, rules domain.Rules, snapshots domain.SnapshotRepository) *Service {
	return &Service{
		Store:        st,
		Rules:        rules,
		SnapshotRepo: snapshots,
	}
}

// AddAllocations assigns a share of each selected asset to one beneficiary.
// Logic:
//  1. Validate every candidate against the accruing list; abort the whole
//     batch on the first rejection (no partial application)
//  2. Indivisible assets get a forced 100% share regardless of input
//  3. An existing (asset, beneficiary) allocation is replaced in place,
//     otherwise the new one is appended
//
// Returns the new allocation list on success.
func (s *Service) AddAllocations(ctx context.Context, assets []domain.Asset, beneficiaries []domain.Beneficiary, beneficiaryID string, kind domain.AllocationKind, value decimal.Decimal) ([]domain.Allocation, error) {
	if len(assets) == 0 {
		return nil, errors.New("at least one asset must be selected")
	}

	next := s.Store.Current()

	for _, asset := range assets {
		candidate := s.buildCandidate(asset, beneficiaryID, kind, value)

		if err := validator.Validate(next, asset, candidate, beneficiaries, s.Rules.Classifier); err != nil {
			return nil, err
		}

		next = upsert(next, candidate)
	}

	return s.commit(ctx, next)
}

// RemoveAllocation deletes the allocation for the (asset, beneficiary)
// pair. When the asset is divisible and the removed record was
// percentage-typed, the freed share is redistributed evenly across the
// asset's remaining percentage allocations. Freed amount-kind capacity
// simply becomes available again.
func (s *Service) RemoveAllocation(ctx context.Context, asset domain.Asset, beneficiaryID string) ([]domain.Allocation, error) {
	current := s.Store.Current()

	removed, idx := allocator.Find(current, asset.ID, beneficiaryID)
	if idx < 0 {
		return nil, fmt.Errorf("no allocation exists for asset %s and beneficiary %s", asset.ID, beneficiaryID)
	}

	next := append(current[:idx], current[idx+1:]...)

	if s.Rules.Classifier.Classify(asset.Type) == domain.AssetClassDivisible && removed.Kind == domain.AllocationKindPercentage {
		next = allocator.RedistributeFreed(next, asset.ID, removed.Percentage)
	}

	return s.commit(ctx, next)
}

// Reassign moves an allocation to a different beneficiary, leaving its
// share unchanged. Rejected when the new beneficiary already holds an
// allocation for the asset: for indivisible assets that is a conflict, for
// divisible assets it would break (asset, beneficiary) uniqueness.
func (s *Service) Reassign(ctx context.Context, asset domain.Asset, oldBeneficiaryID, newBeneficiaryID string, beneficiaries []domain.Beneficiary) ([]domain.Allocation, error) {
	if _, ok := domain.FindBeneficiary(beneficiaries, newBeneficiaryID); !ok {
		return nil, fmt.Errorf("beneficiary %s not found", newBeneficiaryID)
	}

	current := s.Store.Current()

	_, idx := allocator.Find(current, asset.ID, oldBeneficiaryID)
	if idx < 0 {
		return nil, fmt.Errorf("no allocation exists for asset %s and beneficiary %s", asset.ID, oldBeneficiaryID)
	}

	if existing, found := allocator.Find(current, asset.ID, newBeneficiaryID); found >= 0 {
		if s.Rules.Classifier.Classify(asset.Type) == domain.AssetClassIndivisible {
			holder, _ := domain.FindBeneficiary(beneficiaries, existing.BeneficiaryID)
			return nil, &domain.IndivisibleConflictError{
				AssetID:         asset.ID,
				BeneficiaryID:   existing.BeneficiaryID,
				BeneficiaryName: holder.Name,
			}
		}
		return nil, fmt.Errorf("beneficiary %s already holds an allocation for asset %s", newBeneficiaryID, asset.ID)
	}

	next := domain.CloneList(current)
	next[idx].BeneficiaryID = newBeneficiaryID

	return s.commit(ctx, next)
}

// Undo pops the most recent history entry and makes it the current
// allocation list. Returns domain.ErrNothingToUndo when the history is
// empty; the list is left untouched in that case.
func (s *Service) Undo(ctx context.Context) ([]domain.Allocation, error) {
	restored, ok := s.Store.Undo()
	if !ok {
		return restored, domain.ErrNothingToUndo
	}

	if s.SnapshotRepo != nil {
		if err := s.SnapshotRepo.Save(ctx, restored); err != nil {
			return restored, fmt.Errorf("failed to save allocation snapshot: %w", err)
		}
	}

	return restored, nil
}

// Restore rehydrates the engine from the latest persisted snapshot,
// clearing the undo history. A missing snapshot leaves the store empty.
func (s *Service) Restore(ctx context.Context) ([]domain.Allocation, error) {
	if s.SnapshotRepo == nil {
		return nil, errors.New("no snapshot repository configured")
	}

	allocations, err := s.SnapshotRepo.LoadLatest(ctx)
	if err != nil {
		return nil, err
	}

	s.Store.Reset(allocations)

	return s.Store.Current(), nil
}

// buildCandidate shapes the caller's input into an allocation record.
// Indivisible assets always receive a full 100% percentage share.
func (s *Service) buildCandidate(asset domain.Asset, beneficiaryID string, kind domain.AllocationKind, value decimal.Decimal) domain.Allocation {
	if s.Rules.Classifier.Classify(asset.Type) == domain.AssetClassIndivisible {
		return domain.Allocation{
			AssetID:       asset.ID,
			BeneficiaryID: beneficiaryID,
			Kind:          domain.AllocationKindPercentage,
			Percentage:    decimal.NewFromInt(100),
		}
	}

	candidate := domain.Allocation{
		AssetID:       asset.ID,
		BeneficiaryID: beneficiaryID,
		Kind:          kind,
	}

	if kind == domain.AllocationKindAmount {
		candidate.Amount = value
	} else {
		candidate.Percentage = value
	}

	return candidate
}

// commit persists the new list (when a repository is configured) and then
// replaces the store contents, recording the prior list for undo. Saving
// first keeps a failed persistence from leaving the store and the snapshot
// out of sync.
func (s *Service) commit(ctx context.Context, next []domain.Allocation) ([]domain.Allocation, error) {
	if s.SnapshotRepo != nil {
		if err := s.SnapshotRepo.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to save allocation snapshot: %w", err)
		}
	}

	s.Store.Replace(next, true)

	return next, nil
}

// upsert replaces an existing (asset, beneficiary) record in place or
// appends the candidate
func upsert(list []domain.Allocation, candidate domain.Allocation) []domain.Allocation {
	if _, idx := allocator.Find(list, candidate.AssetID, candidate.BeneficiaryID); idx >= 0 {
		list[idx] = candidate
		return list
	}
	return append(list, candidate)
}
