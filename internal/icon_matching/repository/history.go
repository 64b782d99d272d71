package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/metrics"
)

// CommitWithHistory replaces the attributes, filters, icons and (when
// non-empty) name of p, snapshotting the pre-update state first. At most
// domain.MaxSnapshotsPerProject snapshots are kept.
func (r *ProjectRepository) CommitWithHistory(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if !validID(p.ID) {
		return nil, domain.NotFound("project not found")
	}
	next, err := encodeState(p.Attributes, p.Filters, p.Icons)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const selectQ = `
SELECT name, attributes, filters, icons
FROM projects
WHERE id = $1 AND owner_uid = $2
FOR UPDATE;
`
	var (
		prevName string
		prev     state
	)
	err = tx.QueryRowContext(ctx, selectQ, p.ID, p.Owner).Scan(&prevName, &prev.attributes, &prev.filters, &prev.icons)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	evicted, err := evictOldestSnapshots(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}

	const insertQ = `
INSERT INTO project_history (id, project_id, name, attributes, filters, icons)
VALUES ($1, $2, $3, $4, $5, $6);
`
	if _, err := tx.ExecContext(ctx, insertQ, uuid.NewString(), p.ID, prevName,
		prev.attributes, prev.filters, prev.icons); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = prevName
	}
	updateQ := `
UPDATE projects
SET name = $3, attributes = $4, filters = $5, icons = $6, updated_at = clock_timestamp()
WHERE id = $1 AND owner_uid = $2
RETURNING ` + projectColumns + `;`
	out, err := scanProject(tx.QueryRowContext(ctx, updateQ, p.ID, p.Owner, name, next.attributes, next.filters, next.icons))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.NotFound("project not found")
	case isUniqueViolation(err):
		return nil, domain.InvalidInput("project name already exists")
	case err != nil:
		return nil, fmt.Errorf("update project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if evicted > 0 {
		metrics.Evictions.WithLabelValues("history").Add(float64(evicted))
		logger.FromContext(ctx).Info("evicted oldest snapshots", "project_id", p.ID, "count", evicted)
	}
	return out, nil
}

func evictOldestSnapshots(ctx context.Context, tx *sql.Tx, projectID string) (int64, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM project_history WHERE project_id = $1`, projectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	if count < domain.MaxSnapshotsPerProject {
		return 0, nil
	}

	const q = `
DELETE FROM project_history WHERE id IN (
	SELECT id FROM project_history WHERE project_id = $1 ORDER BY captured_at ASC, id ASC LIMIT $2
);
`
	res, err := tx.ExecContext(ctx, q, projectID, count-domain.MaxSnapshotsPerProject+1)
	if err != nil {
		return 0, fmt.Errorf("evict snapshots: %w", err)
	}
	return res.RowsAffected()
}

// ListHistory returns the project's snapshots, newest first.
func (r *ProjectRepository) ListHistory(ctx context.Context, owner, projectID string) ([]domain.HistorySnapshot, error) {
	if !validID(projectID) {
		return nil, domain.NotFound("project not found")
	}
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1 AND owner_uid = $2);`, projectID, owner).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("project not found")
	}

	q := `
SELECT ` + historyColumns + `
FROM project_history h
WHERE h.project_id = $1
ORDER BY h.captured_at DESC, h.id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.HistorySnapshot, 0, domain.MaxSnapshotsPerProject)
	for rows.Next() {
		h, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetHistory returns one snapshot of a project owned by owner.
func (r *ProjectRepository) GetHistory(ctx context.Context, owner, historyID string) (*domain.HistorySnapshot, error) {
	if !validID(historyID) {
		return nil, domain.NotFound("history not found")
	}
	q := `
SELECT ` + historyColumns + `
FROM project_history h
JOIN projects p ON p.id = h.project_id
WHERE h.id = $1 AND p.owner_uid = $2;
`
	h, err := scanSnapshot(r.db.QueryRowContext(ctx, q, historyID, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("history not found")
	}
	return h, err
}
