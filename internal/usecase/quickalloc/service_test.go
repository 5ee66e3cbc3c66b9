package quickalloc

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/legacyvault-backend/internal/domain"
	"github.com/simaogato/legacyvault-backend/internal/usecase/allocator"
	"github.com/simaogato/legacyvault-backend/internal/usecase/store"
)

var (
	usdc = domain.Asset{
		ID:       "usdc-eth",
		Symbol:   "USDC",
		Type:     domain.AssetTypeERC20,
		Balance:  "1000000000", // 1000 USDC
		Decimals: 6,
		Chain:    "ethereum",
	}
	nft = domain.Asset{
		ID:       "nft-7",
		Symbol:   "NFT #7",
		Type:     domain.AssetTypeERC721,
		Balance:  "1",
		Decimals: 0,
		Chain:    "ethereum",
	}
	alice = domain.Beneficiary{ID: "ben-alice", Name: "Alice"}
	bob   = domain.Beneficiary{ID: "ben-bob", Name: "Bob"}
	carol = domain.Beneficiary{ID: "ben-carol", Name: "Carol"}
)

func newService() *Service {
	return NewService(store.New(0), domain.DefaultRules(), nil)
}

func TestQuickAllocate_EvenSplitAcrossTwoBeneficiaries(t *testing.T) {
	ctx := context.Background()
	service := newService()

	list, err := service.QuickAllocate(ctx, []domain.Asset{usdc}, []domain.Beneficiary{alice, bob})

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ben-alice", list[0].BeneficiaryID)
	assert.True(t, list[0].Percentage.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "ben-bob", list[1].BeneficiaryID)
	assert.True(t, list[1].Percentage.Equal(decimal.NewFromInt(50)))
}

func TestQuickAllocate_ThreeBeneficiaries_SumWithinTolerance(t *testing.T) {
	ctx := context.Background()
	service := newService()

	list, err := service.QuickAllocate(ctx, []domain.Asset{usdc}, []domain.Beneficiary{alice, bob, carol})

	require.NoError(t, err)
	require.Len(t, list, 3)

	total := allocator.PercentageTotal(list, usdc.ID, "")
	diff := decimal.NewFromInt(100).Sub(total).Abs()
	assert.True(t, diff.LessThan(decimal.RequireFromString("0.000001")), "shares should sum to 100 within rounding tolerance, got %s", total)
}

func TestQuickAllocate_IndivisibleGoesToFirstBeneficiary(t *testing.T) {
	ctx := context.Background()
	service := newService()

	list, err := service.QuickAllocate(ctx, []domain.Asset{nft}, []domain.Beneficiary{alice, bob})

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ben-alice", list[0].BeneficiaryID, "first-added beneficiary is the default owner")
	assert.True(t, list[0].Percentage.Equal(decimal.NewFromInt(100)))
}

func TestQuickAllocate_SkipsAllocatedAssets(t *testing.T) {
	ctx := context.Background()
	service := newService()

	// manual work: Alice already holds 70% of USDC
	manual := []domain.Allocation{{
		AssetID:       usdc.ID,
		BeneficiaryID: alice.ID,
		Kind:          domain.AllocationKindPercentage,
		Percentage:    decimal.NewFromInt(70),
	}}
	service.Store.Replace(manual, false)

	list, err := service.QuickAllocate(ctx, []domain.Asset{usdc, nft}, []domain.Beneficiary{alice, bob})

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Percentage.Equal(decimal.NewFromInt(70)), "quick allocate never overwrites manual work")
	assert.Equal(t, nft.ID, list[1].AssetID)
}

func TestQuickAllocate_NothingToDo(t *testing.T) {
	ctx := context.Background()
	service := newService()

	first, err := service.QuickAllocate(ctx, []domain.Asset{usdc}, []domain.Beneficiary{alice, bob})
	require.NoError(t, err)
	require.Equal(t, 1, service.Store.HistoryLen())

	second, err := service.QuickAllocate(ctx, []domain.Asset{usdc}, []domain.Beneficiary{alice, bob})

	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, service.Store.HistoryLen(), "a no-op run must not push a history entry")
}

func TestQuickAllocate_UndoneAsASingleUnit(t *testing.T) {
	ctx := context.Background()
	service := newService()

	_, err := service.QuickAllocate(ctx, []domain.Asset{usdc, nft}, []domain.Beneficiary{alice, bob})
	require.NoError(t, err)

	restored, ok := service.Store.Undo()
	require.True(t, ok)
	assert.Empty(t, restored, "one undo reverts the whole batch")
}

func TestQuickAllocate_RequiresBeneficiariesAndAssets(t *testing.T) {
	ctx := context.Background()
	service := newService()

	_, err := service.QuickAllocate(ctx, []domain.Asset{usdc}, nil)
	assert.EqualError(t, err, "quick allocate requires at least one beneficiary")

	_, err = service.QuickAllocate(ctx, nil, []domain.Beneficiary{alice})
	assert.EqualError(t, err, "quick allocate requires at least one asset")
}

func TestQuickAllocate_SoleBeneficiaryShare(t *testing.T) {
	ctx := context.Background()

	rules := domain.DefaultRules()
	rules.SoleBeneficiaryShare = decimal.NewFromInt(95) // lightweight product reserves 5%
	service := NewService(store.New(0), rules, nil)

	list, err := service.QuickAllocate(ctx, []domain.Asset{usdc}, []domain.Beneficiary{alice})

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Percentage.Equal(decimal.NewFromInt(95)))
}
