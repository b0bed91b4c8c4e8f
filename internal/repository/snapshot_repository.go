package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// unknownCategory labels positions recorded without a category.
const unknownCategory = "unknown"

// SnapshotRepository provides read access to nav_snapshot and position_snapshot,
// plus the atomic write used by the snapshot producer.
// Every lookup orders by (ts, id) so that "latest" has exactly one meaning.
type SnapshotRepository struct {
	db *database.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *database.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Latest returns the snapshot with the greatest (timestamp, id).
// Returns ErrSnapshotNotFound when the table is empty.
func (r *SnapshotRepository) Latest(ctx context.Context) (*model.NavSnapshot, error) {
	query := `
		SELECT id, ts, total_nav
		FROM nav_snapshot
		ORDER BY ts DESC, id DESC
		LIMIT 1
	`
	return r.scanOne(ctx, query)
}

// Previous returns the snapshot with the largest id strictly less than id.
// Stepping by id keeps the order strict even when timestamps collide.
func (r *SnapshotRepository) Previous(ctx context.Context, id int64) (*model.NavSnapshot, error) {
	query := `
		SELECT id, ts, total_nav
		FROM nav_snapshot
		WHERE id < ?
		ORDER BY id DESC
		LIMIT 1
	`
	return r.scanOne(ctx, query, id)
}

// AtOrBefore returns the latest snapshot whose timestamp is not after t.
func (r *SnapshotRepository) AtOrBefore(ctx context.Context, t time.Time) (*model.NavSnapshot, error) {
	query := `
		SELECT id, ts, total_nav
		FROM nav_snapshot
		WHERE ts <= ?
		ORDER BY ts DESC, id DESC
		LIMIT 1
	`
	return r.scanOne(ctx, query, r.db.Dialect.TimeArg(t))
}

func (r *SnapshotRepository) scanOne(ctx context.Context, query string, args ...any) (*model.NavSnapshot, error) {
	var (
		s   model.NavSnapshot
		ts  dbTime
		nav sql.NullString
	)

	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), args...).Scan(&s.ID, &ts, &nav)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query nav_snapshot: %w", err)
	}

	s.Timestamp = ts.Time
	s.TotalNAV = coerceDecimal(nav)
	return &s, nil
}

// CategoryTotals sums position values per category for one snapshot.
// Missing categories are reported as "unknown"; NULL or non-numeric values count as zero.
func (r *SnapshotRepository) CategoryTotals(ctx context.Context, snapshotID int64) (model.CategoryTotals, error) {
	query := `
		SELECT category, value
		FROM position_snapshot
		WHERE nav_snapshot_id = ?
	`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position_snapshot table: %w", err)
	}
	defer rows.Close()

	totals := model.CategoryTotals{}
	for rows.Next() {
		var category, value sql.NullString
		if err := rows.Scan(&category, &value); err != nil {
			return nil, fmt.Errorf("failed to scan position_snapshot results: %w", err)
		}
		label := normalizeCategory(category)
		totals[label] = totals[label].Add(coerceDecimal(value))
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position_snapshot table: %w", err)
	}

	return totals, nil
}

// Positions returns the raw position rows of one snapshot in insertion order.
func (r *SnapshotRepository) Positions(ctx context.Context, snapshotID int64) ([]model.PositionSnapshot, error) {
	query := `
		SELECT id, nav_snapshot_id, category, source, asset, chain, amount, value
		FROM position_snapshot
		WHERE nav_snapshot_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position_snapshot table: %w", err)
	}
	defer rows.Close()

	positions := []model.PositionSnapshot{}
	for rows.Next() {
		var (
			p                       model.PositionSnapshot
			category, source, asset sql.NullString
			chain, amount, value    sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.NavSnapshotID, &category, &source, &asset, &chain, &amount, &value); err != nil {
			return nil, fmt.Errorf("failed to scan position_snapshot results: %w", err)
		}
		p.Category = normalizeCategory(category)
		p.Source = source.String
		p.Asset = asset.String
		p.Chain = chain.String
		p.Amount = nullableDecimal(amount)
		p.Value = coerceDecimal(value)
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position_snapshot table: %w", err)
	}

	return positions, nil
}

// NavHistory returns up to limit points in ascending (timestamp, id) order.
// When more points exist the most recent ones are kept.
func (r *SnapshotRepository) NavHistory(ctx context.Context, limit int) ([]model.NavPoint, error) {
	query := `
		SELECT ts, total_nav FROM (
			SELECT id, ts, total_nav
			FROM nav_snapshot
			ORDER BY ts DESC, id DESC
			LIMIT ?
		) recent
		ORDER BY ts ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nav_snapshot table: %w", err)
	}
	defer rows.Close()

	points := []model.NavPoint{}
	for rows.Next() {
		var (
			ts  dbTime
			nav sql.NullString
		)
		if err := rows.Scan(&ts, &nav); err != nil {
			return nil, fmt.Errorf("failed to scan nav_snapshot results: %w", err)
		}
		points = append(points, model.NavPoint{Timestamp: ts.Time, TotalNAV: coerceDecimal(nav)})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nav_snapshot table: %w", err)
	}

	return points, nil
}

// RecordSnapshot inserts one NAV snapshot together with its positions in a
// single transaction and returns the new snapshot id.
func (r *SnapshotRepository) RecordSnapshot(ctx context.Context, ts time.Time, totalNAV decimal.Decimal, positions []model.PositionSnapshot) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id int64
	insertNav := `INSERT INTO nav_snapshot (ts, total_nav) VALUES (?, ?) RETURNING id`
	if err := tx.QueryRowContext(ctx, r.db.Rebind(insertNav), r.db.Dialect.TimeArg(ts), decimalArg(totalNAV)).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert nav_snapshot: %w", err)
	}

	insertPosition := r.db.Rebind(`
		INSERT INTO position_snapshot (nav_snapshot_id, category, source, asset, chain, amount, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for _, p := range positions {
		var amount any
		if p.Amount.Valid {
			amount = decimalArg(p.Amount.Decimal)
		}
		_, err := tx.ExecContext(ctx, insertPosition,
			id,
			nullString(p.Category),
			nullString(p.Source),
			nullString(p.Asset),
			nullString(p.Chain),
			amount,
			decimalArg(p.Value),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert position_snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return id, nil
}

func normalizeCategory(s sql.NullString) string {
	label := strings.TrimSpace(s.String)
	if !s.Valid || label == "" {
		return unknownCategory
	}
	return label
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
