package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/tier_table/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tier_tables (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			symbol TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tier_records (
			table_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			percent_position TEXT NOT NULL,
			exit_type TEXT NOT NULL,
			option_pft_offset TEXT NOT NULL,
			option_stop_offset TEXT NOT NULL,
			stock_pft_offset TEXT NOT NULL,
			stock_stop_offset TEXT NOT NULL,
			PRIMARY KEY (table_id, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tier_records_table_position ON tier_records(table_id, position);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// TierTableRepository Implementation

// SaveTierTable upserts the table row and replaces its tiers.
func (s *SQLiteStore) SaveTierTable(ctx context.Context, table *domain.TierTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO tier_tables (id, name, symbol, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET
			  name=excluded.name,
			  symbol=excluded.symbol,
			  updated_at=excluded.updated_at`
	if _, err := tx.ExecContext(ctx, query, table.ID, table.Name, table.Symbol, table.CreatedAt, table.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM tier_records WHERE table_id = ?", table.ID); err != nil {
		return err
	}

	insert := `INSERT INTO tier_records (table_id, position, id, percent_position, exit_type, option_pft_offset, option_stop_offset, stock_pft_offset, stock_stop_offset)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, r := range table.Tiers {
		if _, err := tx.ExecContext(ctx, insert,
			table.ID, i, r.ID, r.PercentPosition.String(), string(r.ExitType),
			r.OptionProfitOffset, r.OptionStopOffset, r.StockProfitOffset, r.StockStopOffset); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetTierTable(ctx context.Context, id string) (*domain.TierTable, error) {
	query := `SELECT id, name, symbol, created_at, updated_at FROM tier_tables WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	var t domain.TierTable
	err := row.Scan(&t.ID, &t.Name, &t.Symbol, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if t.Tiers, err = s.listTiers(ctx, t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) ListTierTables(ctx context.Context) ([]*domain.TierTable, error) {
	query := `SELECT id, name, symbol, created_at, updated_at FROM tier_tables ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	var tables []*domain.TierTable
	for rows.Next() {
		var t domain.TierTable
		if err := rows.Scan(&t.ID, &t.Name, &t.Symbol, &t.CreatedAt, &t.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		tables = append(tables, &t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Single connection: release it before querying the tiers.
	rows.Close()

	for _, t := range tables {
		if t.Tiers, err = s.listTiers(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func (s *SQLiteStore) DeleteTierTable(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tier_records WHERE table_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tier_tables WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) listTiers(ctx context.Context, tableID string) ([]domain.TierRecord, error) {
	query := `SELECT position, id, percent_position, exit_type, option_pft_offset, option_stop_offset, stock_pft_offset, stock_stop_offset
			  FROM tier_records WHERE table_id = ? ORDER BY position`
	rows, err := s.db.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []domain.TierRecord
	for rows.Next() {
		var (
			r        domain.TierRecord
			position int
			exitType string
		)
		if err := rows.Scan(&position, &r.ID, &r.PercentPosition, &exitType,
			&r.OptionProfitOffset, &r.OptionStopOffset, &r.StockProfitOffset, &r.StockStopOffset); err != nil {
			return nil, err
		}
		r.ExitType = domain.ExitType(exitType)
		r.ExitTierNumber = position + 1
		tiers = append(tiers, r)
	}
	return tiers, rows.Err()
}
