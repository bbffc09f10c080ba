package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taxiluck/tli-backend-go/internal/database"
	"github.com/taxiluck/tli-backend-go/internal/models"
)

// SQLiteStore reads and replaces both datasets in a SQLite database
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a store over an open database
func NewSQLiteStore(db *sql.DB, path string) *SQLiteStore {
	return &SQLiteStore{db: db, path: path}
}

// Name identifies the source in logs
func (s *SQLiteStore) Name() string {
	return "sqlite:" + s.path
}

// TripStats reads all trip statistics rows in insertion order
func (s *SQLiteStore) TripStats(ctx context.Context) ([]models.TripStatRow, error) {
	query := `SELECT pu_borough, do_borough, pickup_hour, pickup_min_block, pickup_ampm,
		tli, avg_duration, var_duration, avg_distance, avg_cost
		FROM trip_stats ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip stats: %w", err)
	}
	defer rows.Close()

	var result []models.TripStatRow
	for rows.Next() {
		var r models.TripStatRow
		var hour, minBlock, ampm sql.NullString
		err := rows.Scan(
			&r.PickupBorough, &r.DropoffBorough, &hour, &minBlock, &ampm,
			&r.TLI, &r.AvgDuration, &r.VarDuration, &r.AvgDistance, &r.AvgCost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip stats: %w", err)
		}
		r.Hour, r.MinBlock, r.AMPM = hour.String, minBlock.String, ampm.String
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trip stats: %w", err)
	}
	return result, nil
}

// Congestion reads all congestion index rows in insertion order
func (s *SQLiteStore) Congestion(ctx context.Context) ([]models.CongestionRow, error) {
	query := `SELECT borough, hour, min_block, ampm, ci FROM congestion_index ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query congestion index: %w", err)
	}
	defer rows.Close()

	var result []models.CongestionRow
	for rows.Next() {
		var r models.CongestionRow
		var hour, minBlock, ampm sql.NullString
		if err := rows.Scan(&r.Borough, &hour, &minBlock, &ampm, &r.CI); err != nil {
			return nil, fmt.Errorf("failed to scan congestion index: %w", err)
		}
		r.Hour, r.MinBlock, r.AMPM = hour.String, minBlock.String, ampm.String
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate congestion index: %w", err)
	}
	return result, nil
}

// ReplaceTripStats swaps the trip_stats table contents for rows
func (s *SQLiteStore) ReplaceTripStats(ctx context.Context, rows []models.TripStatRow) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM trip_stats"); err != nil {
			return fmt.Errorf("failed to clear trip stats: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO trip_stats
			(pu_borough, do_borough, pickup_hour, pickup_min_block, pickup_ampm,
			tli, avg_duration, var_duration, avg_distance, avg_cost)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare trip stats insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			_, err := stmt.ExecContext(ctx,
				r.PickupBorough, r.DropoffBorough, r.Hour, r.MinBlock, r.AMPM,
				r.TLI, r.AvgDuration, r.VarDuration, r.AvgDistance, r.AvgCost,
			)
			if err != nil {
				return fmt.Errorf("failed to insert trip stats row: %w", err)
			}
		}
		return nil
	})
}

// ReplaceCongestion swaps the congestion_index table contents for rows
func (s *SQLiteStore) ReplaceCongestion(ctx context.Context, rows []models.CongestionRow) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM congestion_index"); err != nil {
			return fmt.Errorf("failed to clear congestion index: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO congestion_index
			(borough, hour, min_block, ampm, ci) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare congestion insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.Borough, r.Hour, r.MinBlock, r.AMPM, r.CI); err != nil {
				return fmt.Errorf("failed to insert congestion row: %w", err)
			}
		}
		return nil
	})
}
