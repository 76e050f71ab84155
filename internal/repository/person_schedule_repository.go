package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/tutor-timetable-api/internal/models"
)

type personScheduleRow struct {
	Name             string         `db:"name"`
	BlockedIntervals types.JSONText `db:"blocked_intervals"`
	CompatibleWith   types.JSONText `db:"compatible_with"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type deletionRow struct {
	Name      string         `db:"name"`
	Schedule  types.JSONText `db:"schedule"`
	DeletedBy string         `db:"deleted_by"`
	DeletedAt time.Time      `db:"deleted_at"`
}

// PersonScheduleRepository stores schedules in PostgreSQL.
type PersonScheduleRepository struct {
	db *sqlx.DB
}

// NewPersonScheduleRepository constructs the repository.
func NewPersonScheduleRepository(db *sqlx.DB) *PersonScheduleRepository {
	return &PersonScheduleRepository{db: db}
}

// List returns stored schedule names with their update time.
func (r *PersonScheduleRepository) List(ctx context.Context) ([]models.ScheduleFile, error) {
	const query = `SELECT name, updated_at FROM person_schedules ORDER BY name`
	var rows []struct {
		Name      string    `db:"name"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list person schedules: %w", err)
	}
	out := make([]models.ScheduleFile, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ScheduleFile{Name: row.Name, ModifiedAt: row.UpdatedAt.UTC()})
	}
	return out, nil
}

// LoadAll returns every stored schedule.
func (r *PersonScheduleRepository) LoadAll(ctx context.Context) ([]models.PersonSchedule, error) {
	const query = `SELECT name, blocked_intervals, compatible_with, updated_at FROM person_schedules ORDER BY name`
	var rows []personScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load person schedules: %w", err)
	}
	out := make([]models.PersonSchedule, 0, len(rows))
	for _, row := range rows {
		schedule, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *schedule)
	}
	return out, nil
}

// Get returns a schedule by name.
func (r *PersonScheduleRepository) Get(ctx context.Context, name string) (*models.PersonSchedule, error) {
	const query = `SELECT name, blocked_intervals, compatible_with, updated_at FROM person_schedules WHERE name = $1`
	var row personScheduleRow
	if err := r.db.GetContext(ctx, &row, query, SanitizeName(name)); err != nil {
		return nil, err
	}
	return row.toModel()
}

// Save upserts a schedule.
func (r *PersonScheduleRepository) Save(ctx context.Context, schedule models.PersonSchedule) (*models.PersonSchedule, error) {
	key := SanitizeName(schedule.Name)
	if key == "" {
		return nil, fmt.Errorf("schedule name %q is empty after sanitising", schedule.Name)
	}
	row, err := newPersonScheduleRow(key, normalizeDocument(schedule.ScheduleDocument))
	if err != nil {
		return nil, err
	}
	row.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO person_schedules (name, blocked_intervals, compatible_with, updated_at)
		VALUES (:name, :blocked_intervals, :compatible_with, :updated_at)
		ON CONFLICT (name) DO UPDATE
		SET blocked_intervals = EXCLUDED.blocked_intervals,
		    compatible_with = EXCLUDED.compatible_with,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return nil, fmt.Errorf("upsert person schedule: %w", err)
	}
	return row.toModel()
}

// Delete moves a schedule into the deletion table inside one transaction.
func (r *PersonScheduleRepository) Delete(ctx context.Context, name, deletedBy string) error {
	key := SanitizeName(name)
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		const selectQuery = `SELECT name, blocked_intervals, compatible_with, updated_at FROM person_schedules WHERE name = $1 FOR UPDATE`
		var row personScheduleRow
		if err := tx.GetContext(ctx, &row, selectQuery, key); err != nil {
			return err
		}
		schedule, err := row.toModel()
		if err != nil {
			return err
		}
		doc, err := json.Marshal(schedule.ScheduleDocument)
		if err != nil {
			return fmt.Errorf("marshal deleted schedule: %w", err)
		}

		const logQuery = `INSERT INTO person_schedule_deletions (name, schedule, deleted_by, deleted_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE
			SET schedule = EXCLUDED.schedule, deleted_by = EXCLUDED.deleted_by, deleted_at = EXCLUDED.deleted_at`
		if _, err := tx.ExecContext(ctx, logQuery, key, types.JSONText(doc), deletedBy, time.Now().UTC()); err != nil {
			return fmt.Errorf("log deletion: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM person_schedules WHERE name = $1`, key); err != nil {
			return fmt.Errorf("delete person schedule: %w", err)
		}
		return nil
	})
}

// Deletions returns the deletion log, most recent first.
func (r *PersonScheduleRepository) Deletions(ctx context.Context) ([]models.DeletionEntry, error) {
	const query = `SELECT name, schedule, deleted_by, deleted_at FROM person_schedule_deletions ORDER BY deleted_at DESC, name`
	var rows []deletionRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list deletions: %w", err)
	}
	out := make([]models.DeletionEntry, 0, len(rows))
	for _, row := range rows {
		var doc models.ScheduleDocument
		if err := json.Unmarshal(row.Schedule, &doc); err != nil {
			return nil, fmt.Errorf("decode deletion %q: %w", row.Name, err)
		}
		out = append(out, models.DeletionEntry{
			Name:      row.Name,
			DeletedAt: row.DeletedAt.UTC(),
			DeletedBy: row.DeletedBy,
			Schedule:  normalizeDocument(doc),
		})
	}
	return out, nil
}

// Restore re-inserts a deleted schedule and drops its log entry in one transaction.
func (r *PersonScheduleRepository) Restore(ctx context.Context, name string) (*models.PersonSchedule, error) {
	key := SanitizeName(name)
	var restored *models.PersonSchedule
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var row deletionRow
		const selectQuery = `SELECT name, schedule, deleted_by, deleted_at FROM person_schedule_deletions WHERE name = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &row, selectQuery, key); err != nil {
			return err
		}
		var doc models.ScheduleDocument
		if err := json.Unmarshal(row.Schedule, &doc); err != nil {
			return fmt.Errorf("decode deletion %q: %w", key, err)
		}
		scheduleRow, err := newPersonScheduleRow(key, normalizeDocument(doc))
		if err != nil {
			return err
		}
		scheduleRow.UpdatedAt = time.Now().UTC()

		const insertQuery = `INSERT INTO person_schedules (name, blocked_intervals, compatible_with, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE
			SET blocked_intervals = EXCLUDED.blocked_intervals,
			    compatible_with = EXCLUDED.compatible_with,
			    updated_at = EXCLUDED.updated_at`
		if _, err := tx.ExecContext(ctx, insertQuery, key, scheduleRow.BlockedIntervals, scheduleRow.CompatibleWith, scheduleRow.UpdatedAt); err != nil {
			return fmt.Errorf("restore person schedule: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM person_schedule_deletions WHERE name = $1`, key); err != nil {
			return fmt.Errorf("clear deletion record: %w", err)
		}
		restored, err = scheduleRow.toModel()
		return err
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// Purge permanently removes a deletion record.
func (r *PersonScheduleRepository) Purge(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM person_schedule_deletions WHERE name = $1`, SanitizeName(name))
	if err != nil {
		return fmt.Errorf("purge deletion record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("purge deletion record: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PersonScheduleRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func newPersonScheduleRow(key string, doc models.ScheduleDocument) (personScheduleRow, error) {
	blocked, err := json.Marshal(doc.BlockedIntervals)
	if err != nil {
		return personScheduleRow{}, fmt.Errorf("marshal blocked intervals: %w", err)
	}
	compat, err := json.Marshal(doc.CompatibleWith)
	if err != nil {
		return personScheduleRow{}, fmt.Errorf("marshal compatible names: %w", err)
	}
	return personScheduleRow{Name: key, BlockedIntervals: blocked, CompatibleWith: compat}, nil
}

func (row personScheduleRow) toModel() (*models.PersonSchedule, error) {
	var doc models.ScheduleDocument
	if len(row.BlockedIntervals) > 0 {
		if err := json.Unmarshal(row.BlockedIntervals, &doc.BlockedIntervals); err != nil {
			return nil, fmt.Errorf("decode blocked intervals for %q: %w", row.Name, err)
		}
	}
	if len(row.CompatibleWith) > 0 {
		if err := json.Unmarshal(row.CompatibleWith, &doc.CompatibleWith); err != nil {
			return nil, fmt.Errorf("decode compatible names for %q: %w", row.Name, err)
		}
	}
	return &models.PersonSchedule{
		Name:             row.Name,
		ScheduleDocument: normalizeDocument(doc),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}, nil
}
