//go:build integration

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/storage/postgres"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("iconsmith"),
		tcpostgres.WithUsername("iconsmith"),
		tcpostgres.WithPassword("iconsmith"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.MigrateUp(url))

	db, err := sql.Open("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `INSERT INTO users (firebase_uid) VALUES ($1)`, owner)
	require.NoError(t, err)
	return db
}

func TestIntegration_ProjectBound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	var created []string
	for i := 0; i < 7; i++ {
		p, err := repo.CreateProject(ctx, sampleProject())
		require.NoError(t, err)
		created = append(created, p.ID)
	}

	list, err := repo.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, domain.MaxProjectsPerOwner)

	var ids []string
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, created[2:], ids, "the five most recent projects survive")
	assert.Equal(t, created[6], list[0].ID)

	_, err = repo.Get(ctx, owner, created[0])
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestIntegration_HistoryBound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleProject())
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		next := *p
		next.Icons = []domain.IconResult{{ID: fmt.Sprint(i), URL: fmt.Sprintf("https://cdn/%d.png", i)}}
		p, err = repo.CommitWithHistory(ctx, next)
		require.NoError(t, err)
	}

	history, err := repo.ListHistory(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Len(t, history, domain.MaxSnapshotsPerProject)

	// newest snapshot holds the state before the last commit
	assert.Equal(t, "5", history[0].Icons[0].ID)
	assert.Equal(t, "1", history[4].Icons[0].ID)

	h, err := repo.GetHistory(ctx, owner, history[0].ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, h.ProjectID)

	_, err = repo.GetHistory(ctx, "someone-else", history[0].ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
