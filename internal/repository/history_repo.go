package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/tdee-service/internal/db"
	"github.com/oggyb/tdee-service/internal/utils/pagination"
)

// HistoryRepository provides data access methods for the UserHistory model.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new repository bound to the given DB connection.
func NewHistoryRepository(database *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: database}
}

// Create inserts one history row. The generated id is written back into h.
//
// Example:
//
//	h := &db.UserHistory{UserName: "bob", Age: 28, Macros: "{...}"}
//	repo.Create(ctx, h) // h.ID is now set
func (r *HistoryRepository) Create(ctx context.Context, h *db.UserHistory) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	return nil
}

// ListByUserName returns the rows whose user_name equals userName exactly.
//
// Behavior:
//   - Ordered by id ASC (insertion order).
//   - limit <= 0 returns every matching row and never a next token.
//   - limit > 0 returns at most limit rows, plus a next token when more exist.
//   - No match is an empty slice, not an error.
//
// Example:
//
//	repo.ListByUserName(ctx, "bob", nil, 0)  // all of bob's entries
//	repo.ListByUserName(ctx, "bob", nil, 20) // first page of 20
func (r *HistoryRepository) ListByUserName(
	ctx context.Context,
	userName string,
	paginationToken *string,
	limit int,
) ([]db.UserHistory, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_name = ?", userName).
		Order("id ASC")
	if cursor.AfterID > 0 {
		query = query.Where("id > ?", cursor.AfterID)
	}
	if limit > 0 {
		query = query.Limit(limit + 1)
	}

	histories := make([]db.UserHistory, 0)
	if err := query.Find(&histories).Error; err != nil {
		return nil, nil, fmt.Errorf("list history: %w", err)
	}

	var nextToken *string
	if limit > 0 && len(histories) > limit {
		histories = histories[:limit]
		token, err := pagination.Encode(pagination.Cursor{AfterID: histories[limit-1].ID})
		if err != nil {
			return nil, nil, err
		}
		nextToken = &token
	}

	return histories, nextToken, nil
}

// CountByUserName returns how many entries a user has.
func (r *HistoryRepository) CountByUserName(ctx context.Context, userName string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.UserHistory{}).
		Where("user_name = ?", userName).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
