package history

import (
	"context"
	"errors"
	"time"

	"github.com/oggyb/tdee-service/internal/app"
	"github.com/oggyb/tdee-service/internal/db"
	svcErr "github.com/oggyb/tdee-service/internal/errors"
	"github.com/oggyb/tdee-service/internal/nutrition"
	"github.com/oggyb/tdee-service/internal/repository"
	"github.com/oggyb/tdee-service/internal/utils/pagination"
)

const maxPageSize = 100

// CreateRequest is the body of POST /user/create.
type CreateRequest struct {
	UserName      string              `json:"user_name" binding:"required,max=128"`
	Age           int                 `json:"age" binding:"required,gt=0,lte=150"`
	Weight        float64             `json:"weight" binding:"required,gt=0,lte=1000"`
	Height        float64             `json:"height" binding:"required,gt=0,lte=300"`
	ActivityLevel string              `json:"activity_level" binding:"required"`
	Macros        nutrition.Breakdown `json:"macros" binding:"required"`
}

// ListRequest is the query of GET /user/history.
type ListRequest struct {
	UserName  string `form:"username" binding:"required"`
	Limit     int    `form:"limit" binding:"gte=0,max=100"`
	PageToken string `form:"page_token"`
}

// Record is a stored history entry as returned to clients. Macros stays the
// serialized text it was stored as.
type Record struct {
	ID            uint64    `json:"id"`
	UserName      string    `json:"user_name"`
	Age           int       `json:"age"`
	Weight        float64   `json:"weight"`
	Height        float64   `json:"height"`
	ActivityLevel string    `json:"activity_level"`
	Macros        string    `json:"macros"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListResponse carries one page of records.
type ListResponse struct {
	Records   []Record
	NextToken *string
	// Total is only filled when the caller paginates.
	Total *int64
}

// Service records and reads users' body-metric history.
type Service struct {
	appCtx *app.AppContext
	repo   *repository.HistoryRepository
}

// NewHistoryService creates a new history service backed by appCtx.DB.
func NewHistoryService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		repo:   repository.NewHistoryRepository(appCtx.DB),
	}
}

// Create validates and stores one entry.
//
// Behavior:
//   - activity_level must be a known label; it is stored as the label.
//   - macros must only use known scenario and plan names.
//   - The returned record carries the generated id.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Record, error) {
	level, err := nutrition.ParseActivityLevel(req.ActivityLevel)
	if err != nil {
		return nil, svcErr.InvalidArgument(
			"activity_level: must be one of [sedentary light moderate_active very_active super_active]")
	}
	if err := req.Macros.Validate(); err != nil {
		return nil, svcErr.InvalidArgument("macros: " + err.Error())
	}
	macros, err := nutrition.EncodeBreakdown(req.Macros)
	if err != nil {
		return nil, svcErr.InvalidArgument("macros: " + err.Error())
	}

	row := &db.UserHistory{
		UserName:      req.UserName,
		Age:           req.Age,
		Weight:        req.Weight,
		Height:        req.Height,
		ActivityLevel: string(level),
		Macros:        macros,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.appCtx.Logger.Error("failed to store history", "user_name", req.UserName, "err", err)
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("history stored", "id", row.ID, "user_name", row.UserName)
	rec := toRecord(*row)
	return &rec, nil
}

// List returns the entries for one user in insertion order.
//
// Behavior:
//   - Limit 0 returns every entry in one response.
//   - Limit > 0 pages through entries; NextToken is set while more remain.
//   - An unknown user yields an empty, non-nil slice.
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.UserName == "" {
		return nil, svcErr.InvalidArgument("username: is required")
	}
	if req.Limit < 0 || req.Limit > maxPageSize {
		return nil, svcErr.InvalidArgument("limit: must be between 0 and 100")
	}

	var token *string
	if req.PageToken != "" {
		token = &req.PageToken
	}

	rows, next, err := s.repo.ListByUserName(ctx, req.UserName, token, req.Limit)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidToken) {
			return nil, svcErr.InvalidArgument("page_token: invalid")
		}
		s.appCtx.Logger.Error("failed to list history", "user_name", req.UserName, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &ListResponse{Records: make([]Record, 0, len(rows)), NextToken: next}
	if len(rows) == 0 {
		s.appCtx.Logger.Debug("no history found", "user_name", req.UserName)
		return resp, nil
	}
	for _, r := range rows {
		resp.Records = append(resp.Records, toRecord(r))
	}

	if req.Limit > 0 {
		total, err := s.repo.CountByUserName(ctx, req.UserName)
		if err != nil {
			s.appCtx.Logger.Warn("failed to count history", "user_name", req.UserName, "err", err)
		} else {
			resp.Total = &total
		}
	}
	return resp, nil
}

func toRecord(h db.UserHistory) Record {
	return Record{
		ID:            h.ID,
		UserName:      h.UserName,
		Age:           h.Age,
		Weight:        h.Weight,
		Height:        h.Height,
		ActivityLevel: h.ActivityLevel,
		Macros:        h.Macros,
		CreatedAt:     h.CreatedAt,
	}
}
