package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcircle/subcircle/internal/domain/model"
)

func TestPartnerRepo_CreateDefaultsToPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepo(db)
	ctx := context.Background()

	conn, err := repo.Create(ctx, model.PartnerConnection{
		UserID:    "alice",
		PartnerID: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PartnerStatusPending, conn.Status)
}

func TestPartnerRepo_GetBetweenEitherDirection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepo(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.PartnerConnection{UserID: "alice", PartnerID: "bob"})
	require.NoError(t, err)

	forward, err := repo.GetBetween(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, forward)
	assert.Equal(t, created.ID, forward.ID)

	reverse, err := repo.GetBetween(ctx, "bob", "alice")
	require.NoError(t, err)
	require.NotNil(t, reverse)
	assert.Equal(t, created.ID, reverse.ID)

	none, err := repo.GetBetween(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPartnerRepo_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.PartnerConnection{UserID: "alice", PartnerID: "bob"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.PartnerConnection{UserID: "carol", PartnerID: "alice"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.PartnerConnection{UserID: "carol", PartnerID: "dave"})
	require.NoError(t, err)

	conns, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, conns, 2)
}

func TestPartnerRepo_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepo(db)
	ctx := context.Background()

	conn, err := repo.Create(ctx, model.PartnerConnection{UserID: "alice", PartnerID: "bob"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, conn.ID, model.PartnerStatusAccepted))

	got, err := repo.Get(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PartnerStatusAccepted, got.Status)
}

func TestPartnerRepo_UpdateStatusMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepo(db)

	err := repo.UpdateStatus(context.Background(), "no-such-id", model.PartnerStatusAccepted)
	assert.Error(t, err)
}

func TestPartnerRepo_DeleteIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepo(db)
	ctx := context.Background()

	conn, err := repo.Create(ctx, model.PartnerConnection{UserID: "alice", PartnerID: "bob"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, conn.ID))

	got, err := repo.Get(ctx, conn.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Delete(ctx, conn.ID))
}

func TestPartnerRepo_GetBetweenNewestWins(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepo(db)
	ctx := context.Background()

	// A stale declined row alongside a fresh one must never shadow it, in
	// either lookup direction.
	stale, err := repo.Create(ctx, model.PartnerConnection{UserID: "alice", PartnerID: "bob"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, stale.ID, model.PartnerStatusDeclined))

	fresh, err := repo.Create(ctx, model.PartnerConnection{UserID: "bob", PartnerID: "alice"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, fresh.ID, model.PartnerStatusAccepted))

	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		got, err := repo.GetBetween(ctx, pair[0], pair[1])
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, fresh.ID, got.ID)
		assert.Equal(t, model.PartnerStatusAccepted, got.Status)
	}
}
