package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/legacyvault-backend/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
//
// Schema:
//
//	allocation_snapshots(id UUID PK, taken_at TIMESTAMPTZ)
//	allocation_snapshot_items(id UUID PK, snapshot_id UUID FK, position INT,
//	    asset_id TEXT, beneficiary_id TEXT, kind TEXT,
//	    percentage TEXT, amount TEXT)
//
// Shares are stored as text and parsed back through decimal so no precision
// is lost; a restored snapshot is byte-for-byte the list that was saved.
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new allocation snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Save persists the allocation list as a new snapshot.
// The header row and all item rows are written in one transaction.
func (r *snapshotRepository) Save(ctx context.Context, allocations []domain.Allocation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	snapshotID := uuid.New()

	headerQuery := `
		INSERT INTO allocation_snapshots (id, taken_at)
		VALUES ($1, $2)
	`
	if _, err := tx.ExecContext(ctx, headerQuery, snapshotID, time.Now()); err != nil {
		return fmt.Errorf("failed to insert snapshot header: %w", err)
	}

	itemQuery := `
		INSERT INTO allocation_snapshot_items
			(id, snapshot_id, position, asset_id, beneficiary_id, kind, percentage, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, a := range allocations {
		_, err := tx.ExecContext(ctx, itemQuery,
			uuid.New(),
			snapshotID,
			i,
			a.AssetID,
			a.BeneficiaryID,
			string(a.Kind),
			a.Percentage.String(),
			a.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// LoadLatest retrieves the most recently saved allocation list.
// Returns nil, nil when no snapshot has been saved yet.
func (r *snapshotRepository) LoadLatest(ctx context.Context) ([]domain.Allocation, error) {
	headerQuery := `
		SELECT id
		FROM allocation_snapshots
		ORDER BY taken_at DESC, id DESC
		LIMIT 1
	`

	var snapshotID uuid.UUID
	err := r.db.QueryRowContext(ctx, headerQuery).Scan(&snapshotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	itemsQuery := `
		SELECT asset_id, beneficiary_id, kind, percentage, amount
		FROM allocation_snapshot_items
		WHERE snapshot_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, itemsQuery, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot items: %w", err)
	}
	defer rows.Close()

	var allocations []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		var kind, percentageStr, amountStr string

		err := rows.Scan(
			&a.AssetID,
			&a.BeneficiaryID,
			&kind,
			&percentageStr,
			&amountStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot item: %w", err)
		}

		a.Kind = domain.AllocationKind(kind)

		percentage, err := decimal.NewFromString(percentageStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse snapshot item percentage: %w", err)
		}
		a.Percentage = percentage

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse snapshot item amount: %w", err)
		}
		a.Amount = amount

		allocations = append(allocations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot items: %w", err)
	}

	return allocations, nil
}
