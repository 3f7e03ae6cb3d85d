package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/raidloot/internal/raid"
)

// ErrReportNotFound is returned when a report lookup yields no results.
var ErrReportNotFound = errors.New("report not found")

// ErrReportExists is returned when a report id is recorded twice.
var ErrReportExists = errors.New("report already exists")

// DefaultListLimit caps ListByMap when the caller passes a non-positive limit.
const DefaultListLimit = 50

// ReportRepository stores static-container generation reports.
// It satisfies raid.ReportSink.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Record inserts r. A zero ID is replaced with a fresh one.
//
// Precondition: r.MapID must be non-empty.
// Postcondition: Returns ErrReportExists if r.ID was already recorded.
func (r *ReportRepository) Record(ctx context.Context, rep raid.Report) error {
	if rep.MapID == "" {
		return errors.New("recording report: map id must not be empty")
	}
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO raid_loot_reports (id, map_id, container_count, item_count, randomised, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rep.ID, rep.MapID, rep.ContainerCount, rep.ItemCount, rep.Randomised, rep.GeneratedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrReportExists
		}
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}

// Get retrieves a report by id.
//
// Postcondition: Returns the Report or ErrReportNotFound.
func (r *ReportRepository) Get(ctx context.Context, id uuid.UUID) (raid.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, map_id, container_count, item_count, randomised, generated_at
		 FROM raid_loot_reports WHERE id = $1`,
		id,
	)
	if err != nil {
		return raid.Report{}, fmt.Errorf("querying report: %w", err)
	}
	rep, err := pgx.CollectExactlyOneRow(rows, scanReport)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return raid.Report{}, ErrReportNotFound
		}
		return raid.Report{}, fmt.Errorf("scanning report: %w", err)
	}
	return rep, nil
}

// ListByMap returns up to limit reports for mapID, newest first.
//
// Postcondition: Returns an empty slice, not an error, when none exist.
func (r *ReportRepository) ListByMap(ctx context.Context, mapID string, limit int) ([]raid.Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, map_id, container_count, item_count, randomised, generated_at
		 FROM raid_loot_reports WHERE map_id = $1
		 ORDER BY generated_at DESC, id
		 LIMIT $2`,
		mapID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	reports, err := pgx.CollectRows(rows, scanReport)
	if err != nil {
		return nil, fmt.Errorf("scanning reports: %w", err)
	}
	if reports == nil {
		reports = []raid.Report{}
	}
	return reports, nil
}

func scanReport(row pgx.CollectableRow) (raid.Report, error) {
	var rep raid.Report
	err := row.Scan(&rep.ID, &rep.MapID, &rep.ContainerCount, &rep.ItemCount, &rep.Randomised, &rep.GeneratedAt)
	return rep, err
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// SQLSTATE 23505 is unique_violation.
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
