//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/legacyvault-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/legacyvault-backend/internal/domain"
	"github.com/simaogato/legacyvault-backend/internal/usecase/allocation"
	"github.com/simaogato/legacyvault-backend/internal/usecase/quickalloc"
	"github.com/simaogato/legacyvault-backend/internal/usecase/reconciler"
	"github.com/simaogato/legacyvault-backend/internal/usecase/store"
)

var db *postgres.DB

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	ctx := context.Background()

	dbConnStr := getDBConnectionString()
	var err error
	db, err = postgres.NewDB(dbConnStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	// Self-Healing Setup: create the snapshot tables if they don't exist
	if err := setupSchema(ctx, db); err != nil {
		panic(fmt.Sprintf("Failed to setup schema: %v", err))
	}

	code := m.Run()

	os.Exit(code)
}

func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := envOr("DB_PASSWORD", "postgres")
	dbname := envOr("DB_NAME", "legacyvault")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupSchema(ctx context.Context, db *postgres.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS allocation_snapshots (
			id UUID PRIMARY KEY,
			taken_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS allocation_snapshot_items (
			id UUID PRIMARY KEY,
			snapshot_id UUID NOT NULL REFERENCES allocation_snapshots(id) ON DELETE CASCADE,
			position INT NOT NULL,
			asset_id TEXT NOT NULL,
			beneficiary_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			percentage TEXT NOT NULL,
			amount TEXT NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

func TestE2E_PlanningFlowWithPersistence(t *testing.T) {
	ctx := context.Background()

	snapshots := postgres.NewSnapshotRepository(db)
	rules := domain.DefaultRules()
	st := store.New(rules.HistoryDepth)

	mutator := allocation.NewService(st, rules, snapshots)
	quick := quickalloc.NewService(st, rules, snapshots)
	reactor := reconciler.NewService(st, rules, snapshots)

	usdc := domain.Asset{
		ID:       "usdc-eth",
		Symbol:   "USDC",
		Type:     domain.AssetTypeERC20,
		Balance:  "1000000000",
		Decimals: 6,
		Chain:    "ethereum",
	}
	nft := domain.Asset{
		ID:       "nft-7",
		Symbol:   "NFT #7",
		Type:     domain.AssetTypeERC721,
		Balance:  "1",
		Decimals: 0,
		Chain:    "ethereum",
	}
	assets := []domain.Asset{usdc, nft}
	alice := domain.Beneficiary{ID: "ben-alice", Name: "Alice"}
	bob := domain.Beneficiary{ID: "ben-bob", Name: "Bob"}

	// 1. Quick allocate across Alice and Bob
	list, err := quick.QuickAllocate(ctx, assets, []domain.Beneficiary{alice, bob})
	require.NoError(t, err)
	require.Len(t, list, 3) // USDC split 50/50, NFT to Alice

	// 2. Bob is removed as a beneficiary
	list, err = reactor.SyncBeneficiaries(ctx, assets, []domain.Beneficiary{alice})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, a := range list {
		assert.Equal(t, "ben-alice", a.BeneficiaryID)
		assert.True(t, a.Percentage.Equal(decimal.NewFromInt(100)))
	}

	// 3. Manual edit plus undo
	_, err = mutator.AddAllocations(ctx, []domain.Asset{usdc}, []domain.Beneficiary{alice}, alice.ID, domain.AllocationKindPercentage, decimal.NewFromInt(80))
	require.NoError(t, err)
	list, err = mutator.Undo(ctx)
	require.NoError(t, err)

	// 4. Rehydrate from the persisted snapshot and compare
	restored, err := mutator.Restore(ctx)
	require.NoError(t, err)
	require.Len(t, restored, len(list), "the persisted snapshot must reproduce the exact allocation list")
	for i := range list {
		assert.Equal(t, list[i].AssetID, restored[i].AssetID)
		assert.Equal(t, list[i].BeneficiaryID, restored[i].BeneficiaryID)
		assert.Equal(t, list[i].Kind, restored[i].Kind)
		assert.True(t, list[i].Percentage.Equal(restored[i].Percentage))
		assert.True(t, list[i].Amount.Equal(restored[i].Amount))
	}
}

func TestE2E_SnapshotRoundTripPreservesPrecision(t *testing.T) {
	ctx := context.Background()
	snapshots := postgres.NewSnapshotRepository(db)

	saved := []domain.Allocation{
		{
			AssetID:       "eth",
			BeneficiaryID: "ben-alice",
			Kind:          domain.AllocationKindPercentage,
			Percentage:    decimal.RequireFromString("33.3333333333333333"),
			Amount:        decimal.Zero,
		},
		{
			AssetID:       "eth",
			BeneficiaryID: "ben-bob",
			Kind:          domain.AllocationKindAmount,
			Percentage:    decimal.Zero,
			Amount:        decimal.RequireFromString("1.234567890123456789"),
		},
	}

	require.NoError(t, snapshots.Save(ctx, saved))

	loaded, err := snapshots.LoadLatest(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	for i := range saved {
		assert.Equal(t, saved[i].AssetID, loaded[i].AssetID)
		assert.Equal(t, saved[i].BeneficiaryID, loaded[i].BeneficiaryID)
		assert.Equal(t, saved[i].Kind, loaded[i].Kind)
		assert.True(t, saved[i].Percentage.Equal(loaded[i].Percentage))
		assert.True(t, saved[i].Amount.Equal(loaded[i].Amount))
	}
}
