package nutrition

import (
	"errors"
	"fmt"
	"math"
)

// kcal per gram
const (
	proteinKcalPerGram = 4
	fatKcalPerGram     = 9
	carbKcalPerGram    = 4
)

const (
	maleOffset = 5.0
	// Published Mifflin-St Jeor uses -161. The service has always answered
	// with -151 and clients compare against those numbers.
	femaleOffset = -151.0
)

// MaxMaintenanceCalories bounds the maintenance figure MacrosReference works
// from. Larger inputs are treated as this value.
const MaxMaintenanceCalories = 100000

// ErrInvalidInput is returned for metrics the formula cannot accept.
var ErrInvalidInput = errors.New("invalid tdee input")

// BMR returns the Mifflin-St Jeor basal metabolic rate.
func BMR(in TdeeInput) (float64, error) {
	if err := validate(in); err != nil {
		return 0, err
	}
	bmr := 10*in.WeightKg + 6.25*in.HeightCm - 5*float64(in.Age)
	if in.Gender == Male {
		return bmr + maleOffset, nil
	}
	return bmr + femaleOffset, nil
}

// CalculateTDEE returns BMR times the activity multiplier, rounded up to a
// whole calorie.
func CalculateTDEE(in TdeeInput) (int, error) {
	bmr, err := BMR(in)
	if err != nil {
		return 0, err
	}
	tdee := math.Ceil(bmr * in.ActivityLevel.Multiplier())
	if math.IsNaN(tdee) || math.IsInf(tdee, 0) || tdee > math.MaxInt32 || tdee < math.MinInt32 {
		return 0, fmt.Errorf("%w: tdee out of range", ErrInvalidInput)
	}
	return int(tdee), nil
}

// MacrosReference builds the 3x3 table of scenario/plan macro targets around
// a maintenance calorie figure. The figure is clamped to
// [-MaxMaintenanceCalories, MaxMaintenanceCalories] so the sums never overflow.
func MacrosReference(maintenanceCalories int) MacrosResponse {
	maintenanceCalories = max(-MaxMaintenanceCalories, min(maintenanceCalories, MaxMaintenanceCalories))

	var resp MacrosResponse
	for _, s := range scenarios {
		calories := float64(maintenanceCalories + s.Offset)
		row := resp.slot(s.Name)
		for _, p := range plans {
			*row.slot(p.Name) = MacroDetail{
				Calories: int(math.Ceil(calories)),
				Protein:  round2(calories * p.ProteinRatio / proteinKcalPerGram),
				Fats:     round2(calories * p.FatRatio / fatKcalPerGram),
				Carbs:    round2(calories * p.CarbRatio / carbKcalPerGram),
			}
		}
	}
	return resp
}

func validate(in TdeeInput) error {
	switch {
	case in.Gender != Male && in.Gender != Female:
		return fmt.Errorf("%w: gender %q", ErrInvalidInput, in.Gender)
	case in.ActivityLevel.Multiplier() == 0:
		return fmt.Errorf("%w: activity level %q", ErrInvalidInput, in.ActivityLevel)
	case in.Age <= 0:
		return fmt.Errorf("%w: age must be positive", ErrInvalidInput)
	case !(in.WeightKg > 0):
		return fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	case !(in.HeightCm > 0):
		return fmt.Errorf("%w: height must be positive", ErrInvalidInput)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
