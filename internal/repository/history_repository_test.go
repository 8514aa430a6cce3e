package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/tdee-service/internal/db"
	"github.com/oggyb/tdee-service/internal/repository"
	"github.com/oggyb/tdee-service/internal/utils/pagination"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	require.NoError(t, err)
	// every pooled connection to ":memory:" would get its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func entry(user string, weight float64) *db.UserHistory {
	return &db.UserHistory{
		UserName:      user,
		Age:           28,
		Weight:        weight,
		Height:        169.5,
		ActivityLevel: "moderate_active",
		Macros:        `{"maintenance":{"moderate_carb":{"calories":2774,"protein":208.05,"fats":107.88,"carbs":242.72}}}`,
	}
}

func TestCreate_AssignsID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewHistoryRepository(setupTestDB(t))

	first := entry("bob", 86.5)
	second := entry("bob", 85.0)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestListByUserName_ExactMatchInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewHistoryRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, entry("bob", 86.5)))
	require.NoError(t, repo.Create(ctx, entry("bobby", 70)))
	require.NoError(t, repo.Create(ctx, entry("Bob", 90)))
	require.NoError(t, repo.Create(ctx, entry("bob", 85.0)))

	rows, next, err := repo.ListByUserName(ctx, "bob", nil, 0)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, rows, 2)
	assert.Equal(t, 86.5, rows[0].Weight)
	assert.Equal(t, 85.0, rows[1].Weight)
}

func TestListByUserName_NoMatchIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewHistoryRepository(setupTestDB(t))

	rows, next, err := repo.ListByUserName(ctx, "nobody", nil, 0)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestListByUserName_Pagination(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewHistoryRepository(setupTestDB(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, entry("alice", 60+float64(i))))
	}

	page1, next, err := repo.ListByUserName(ctx, "alice", nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)

	page2, next, err := repo.ListByUserName(ctx, "alice", next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotNil(t, next)
	assert.Equal(t, 62.0, page2[0].Weight)

	page3, next, err := repo.ListByUserName(ctx, "alice", next, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Nil(t, next)
	assert.Equal(t, 64.0, page3[0].Weight)

	count, err := repo.CountByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestListByUserName_BadToken(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewHistoryRepository(setupTestDB(t))

	bad := "not-a-token!"
	_, _, err := repo.ListByUserName(ctx, "alice", &bad, 2)
	assert.ErrorIs(t, err, pagination.ErrInvalidToken)
}
