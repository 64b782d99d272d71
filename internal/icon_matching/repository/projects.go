// Package repository persists projects and their history in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/metrics"
)

const maxInsertAttempts = 5

// ProjectRepository enforces the per-owner project bound and the
// per-project history bound inside the transaction of each write.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// CreateProject inserts p for p.Owner, evicting the owner's oldest projects
// first so that at most domain.MaxProjectsPerOwner remain. An empty name is
// replaced by the first free "Untitled", "Untitled 1", ... of the owner.
func (r *ProjectRepository) CreateProject(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if strings.TrimSpace(p.Owner) == "" {
		return nil, domain.InvalidInput("owner required")
	}
	p.Name = strings.TrimSpace(p.Name)
	autoName := p.Name == ""

	for i := 0; i < maxInsertAttempts; i++ {
		out, err := r.createOnce(ctx, p, autoName)
		if err == nil {
			return out, nil
		}
		// unique violation on (owner_uid, name) → a concurrent insert took the name
		if isUniqueViolation(err) {
			if !autoName {
				return nil, domain.InvalidInput("project name already exists")
			}
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to generate unique project name")
}

func (r *ProjectRepository) createOnce(ctx context.Context, p domain.Project, autoName bool) (*domain.Project, error) {
	s, err := encodeState(p.Attributes, p.Filters, p.Icons)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, p.Owner); err != nil {
		return nil, fmt.Errorf("lock owner: %w", err)
	}

	evicted, err := evictOldestProjects(ctx, tx, p.Owner)
	if err != nil {
		return nil, err
	}

	if autoName {
		if p.Name, err = nextName(ctx, tx, p.Owner); err != nil {
			return nil, err
		}
	}

	const q = `
INSERT INTO projects (id, owner_uid, name, attributes, filters, icons, screen_link)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at;
`
	p.ID = uuid.NewString()
	if err := tx.QueryRowContext(ctx, q, p.ID, p.Owner, p.Name, s.attributes, s.filters, s.icons, p.ScreenLink).
		Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if evicted > 0 {
		metrics.Evictions.WithLabelValues("project").Add(float64(evicted))
		logger.FromContext(ctx).Info("evicted oldest projects", "owner", p.Owner, "count", evicted)
	}
	if p.Icons == nil {
		p.Icons = []domain.IconResult{}
	}
	return &p, nil
}

// evictOldestProjects makes room for one more project. Rows already removed
// by a concurrent transaction simply do not count.
func evictOldestProjects(ctx context.Context, tx *sql.Tx, owner string) (int64, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM projects WHERE owner_uid = $1`, owner).Scan(&count); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	if count < domain.MaxProjectsPerOwner {
		return 0, nil
	}

	const q = `
DELETE FROM projects WHERE id IN (
	SELECT id FROM projects WHERE owner_uid = $1 ORDER BY created_at ASC, id ASC LIMIT $2
);
`
	res, err := tx.ExecContext(ctx, q, owner, count-domain.MaxProjectsPerOwner+1)
	if err != nil {
		return 0, fmt.Errorf("evict projects: %w", err)
	}
	return res.RowsAffected()
}

func nextName(ctx context.Context, tx *sql.Tx, owner string) (string, error) {
	const q = `SELECT name FROM projects WHERE owner_uid = $1 AND (name = $2 OR name LIKE $3);`
	rows, err := tx.QueryContext(ctx, q, owner, domain.DefaultProjectName, domain.DefaultProjectName+" %")
	if err != nil {
		return "", fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	taken := map[string]bool{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return "", err
		}
		taken[n] = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	name := domain.DefaultProjectName
	for i := 1; taken[name]; i++ {
		name = domain.DefaultProjectName + " " + strconv.Itoa(i)
	}
	return name, nil
}

// Get returns the owner's project.
func (r *ProjectRepository) Get(ctx context.Context, owner, id string) (*domain.Project, error) {
	if !validID(id) {
		return nil, domain.NotFound("project not found")
	}
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND owner_uid = $2;`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("project not found")
	}
	return p, err
}

// List returns the owner's projects, newest first.
func (r *ProjectRepository) List(ctx context.Context, owner string) ([]domain.ProjectSummary, error) {
	const q = `
SELECT id, name, created_at
FROM projects
WHERE owner_uid = $1
ORDER BY created_at DESC, id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProjectSummary, 0, domain.MaxProjectsPerOwner)
	for rows.Next() {
		var p domain.ProjectSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename changes the project's name without touching its history.
func (r *ProjectRepository) Rename(ctx context.Context, owner, id, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.InvalidInput("name required")
	}
	if !validID(id) {
		return nil, domain.NotFound("project not found")
	}
	q := `
UPDATE projects
SET name = $3, updated_at = clock_timestamp()
WHERE id = $1 AND owner_uid = $2
RETURNING ` + projectColumns + `;`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id, owner, name))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.NotFound("project not found")
	case isUniqueViolation(err):
		return nil, domain.InvalidInput("project name already exists")
	}
	return p, err
}
