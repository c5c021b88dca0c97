package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Repository defines the data access contract for audit log operations.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type Repository interface {
	// Log inserts a new audit entry into the database.
	Log(ctx context.Context, entry *Entry) error

	// ListByProject returns paginated audit entries for a project, most
	// recent first, plus the total count for pagination.
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]Entry, int, error)

	// ListByTarget returns the most recent entries for one target in a
	// project, e.g. every change to a single date.
	ListByTarget(ctx context.Context, projectID, target string, limit int) ([]Entry, error)

	// ListMovesOnto returns the most recent day.moved entries whose
	// destination is date. Those entries are keyed by their source date.
	ListMovesOnto(ctx context.Context, projectID, date string, limit int) ([]Entry, error)

	// GetStats returns aggregate statistics for a project.
	GetStats(ctx context.Context, projectID string) (*Stats, error)
}

// repository implements Repository with MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a new repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Log inserts a new audit entry. Nil details are stored as SQL NULL.
func (r *repository) Log(ctx context.Context, entry *Entry) error {
	query := `INSERT INTO audit_log (project_id, client_id, action, target, details, remote_ip, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	var detailsJSON []byte
	if entry.Details != nil {
		var err error
		detailsJSON, err = sonic.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshaling audit details: %w", err)
		}
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, query,
		entry.ProjectID, entry.ClientID, entry.Action, entry.Target,
		detailsJSON, entry.RemoteIP, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting audit entry id: %w", err)
	}
	entry.ID = id

	return nil
}

func (r *repository) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]Entry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE project_id = ?`, projectID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting audit entries: %w", err)
	}

	query := `SELECT id, project_id, client_id, action, target, details, remote_ip, created_at
	          FROM audit_log
	          WHERE project_id = ?
	          ORDER BY created_at DESC, id DESC
	          LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repository) ListByTarget(ctx context.Context, projectID, target string, limit int) ([]Entry, error) {
	query := `SELECT id, project_id, client_id, action, target, details, remote_ip, created_at
	          FROM audit_log
	          WHERE project_id = ? AND target = ?
	          ORDER BY created_at DESC, id DESC
	          LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, projectID, target, limit)
	if err != nil {
		return nil, fmt.Errorf("listing target audit entries: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (r *repository) ListMovesOnto(ctx context.Context, projectID, date string, limit int) ([]Entry, error) {
	query := `SELECT id, project_id, client_id, action, target, details, remote_ip, created_at
	          FROM audit_log
	          WHERE project_id = ? AND action = ? AND JSON_VALUE(details, '$.to') = ?
	          ORDER BY created_at DESC, id DESC
	          LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, projectID, ActionDayMoved, date, limit)
	if err != nil {
		return nil, fmt.Errorf("listing moves onto date: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (r *repository) GetStats(ctx context.Context, projectID string) (*Stats, error) {
	stats := &Stats{}

	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM audit_log WHERE project_id = ?`, projectID,
	).Scan(&stats.TotalEntries, &last); err != nil {
		return nil, fmt.Errorf("querying audit totals: %w", err)
	}
	if last.Valid {
		stats.LastActivityAt = &last.Time
	}

	clientsQuery := `SELECT COUNT(DISTINCT client_id) FROM audit_log
	                 WHERE project_id = ? AND created_at >= DATE_SUB(NOW(), INTERVAL 30 DAY)`
	if err := r.db.QueryRowContext(ctx, clientsQuery, projectID).Scan(&stats.ActiveClients); err != nil {
		return nil, fmt.Errorf("querying active clients: %w", err)
	}

	return stats, nil
}

// scanRows scans audit_log rows. Expects columns: id, project_id,
// client_id, action, target, details, remote_ip, created_at.
func scanRows(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var detailsJSON sql.NullString
		if err := rows.Scan(
			&e.ID, &e.ProjectID, &e.ClientID, &e.Action, &e.Target,
			&detailsJSON, &e.RemoteIP, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		if detailsJSON.Valid && detailsJSON.String != "" {
			if err := sonic.UnmarshalString(detailsJSON.String, &e.Details); err != nil {
				// Non-fatal: a bad row must not break the feed.
				e.Details = map[string]any{"_parse_error": "invalid JSON"}
			}
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}
	return entries, nil
}
