package tdee

import (
	"context"

	"github.com/oggyb/tdee-service/internal/app"
	svcErr "github.com/oggyb/tdee-service/internal/errors"
	"github.com/oggyb/tdee-service/internal/nutrition"
)

// CalculateRequest is the body of POST /tdee/calculate.
type CalculateRequest struct {
	Gender        string  `json:"gender" binding:"required"`
	Age           int     `json:"age" binding:"required,gt=0,lte=150"`
	Weight        float64 `json:"weight" binding:"required,gt=0,lte=1000"` // kg
	Height        float64 `json:"height" binding:"required,gt=0,lte=300"`  // cm
	ActivityLevel string  `json:"activity_level" binding:"required"`
}

// MacrosRequest is the query of GET /tdee/macros. The lower bound keeps the
// cutting scenario above zero calories.
type MacrosRequest struct {
	MaintenanceCalories int `form:"maintenance-calories" binding:"required,gt=500,lte=100000"`
}

const minMaintenanceCalories = 500

// Service implements the TDEE API on top of the formula engine.
// It needs no store; every call is a pure computation.
type Service struct {
	appCtx *app.AppContext
}

// NewTdeeService creates a new TDEE service.
func NewTdeeService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// Calculate returns the TDEE in whole kcal/day, rounded up.
//
// Example:
//
//	svc.Calculate(ctx, &CalculateRequest{Gender: "male", Age: 28, Weight: 86.5, Height: 169.5, ActivityLevel: "moderate_active"}) // 2774
func (s *Service) Calculate(ctx context.Context, req *CalculateRequest) (int, error) {
	in, err := toInput(req)
	if err != nil {
		return 0, err
	}

	tdee, err := nutrition.CalculateTDEE(in)
	if err != nil {
		return 0, svcErr.InvalidArgument(err.Error())
	}

	s.appCtx.Logger.Debug("tdee calculated", "gender", in.Gender, "activity_level", in.ActivityLevel, "tdee", tdee)
	return tdee, nil
}

// Macros returns the 3x3 macro reference around the maintenance figure.
func (s *Service) Macros(ctx context.Context, req *MacrosRequest) (*nutrition.MacrosResponse, error) {
	if req.MaintenanceCalories <= minMaintenanceCalories || req.MaintenanceCalories > nutrition.MaxMaintenanceCalories {
		return nil, svcErr.InvalidArgument("maintenance-calories: must be between 501 and 100000")
	}
	resp := nutrition.MacrosReference(req.MaintenanceCalories)
	return &resp, nil
}

func toInput(req *CalculateRequest) (nutrition.TdeeInput, error) {
	gender, err := nutrition.ParseGender(req.Gender)
	if err != nil {
		return nutrition.TdeeInput{}, svcErr.InvalidArgument("gender: must be one of [male female]")
	}
	level, err := nutrition.ParseActivityLevel(req.ActivityLevel)
	if err != nil {
		return nutrition.TdeeInput{}, svcErr.InvalidArgument(
			"activity_level: must be one of [sedentary light moderate_active very_active super_active]")
	}
	return nutrition.TdeeInput{
		Gender:        gender,
		Age:           req.Age,
		WeightKg:      req.Weight,
		HeightCm:      req.Height,
		ActivityLevel: level,
	}, nil
}
