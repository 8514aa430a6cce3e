package nutrition

import (
	"fmt"
	"strings"
)

// Gender selects the additive constant of the BMR formula.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts "male" or "female" in any letter case.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case Male, Female:
		return g, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// ActivityLevel is the label clients send. The multiplier behind it never
// leaves this package.
type ActivityLevel string

const (
	Sedentary      ActivityLevel = "sedentary"
	Light          ActivityLevel = "light"
	ModerateActive ActivityLevel = "moderate_active"
	VeryActive     ActivityLevel = "very_active"
	SuperActive    ActivityLevel = "super_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:      1.2,
	Light:          1.375,
	ModerateActive: 1.55,
	VeryActive:     1.725,
	SuperActive:    1.9,
}

// ParseActivityLevel resolves a wire label to an ActivityLevel.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	l := ActivityLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := activityMultipliers[l]; !ok {
		return "", fmt.Errorf("unknown activity level %q", s)
	}
	return l, nil
}

// Multiplier returns the TDEE factor for the level, or 0 if the level is unknown.
func (l ActivityLevel) Multiplier() float64 {
	return activityMultipliers[l]
}

// TdeeInput holds the body metrics of a single TDEE calculation.
type TdeeInput struct {
	Gender        Gender
	Age           int
	WeightKg      float64
	HeightCm      float64
	ActivityLevel ActivityLevel
}

// Scenario is a calorie offset applied to a maintenance figure.
type Scenario struct {
	Name   string
	Offset int
}

// Plan is a fixed (protein, fat, carb) split of calories.
type Plan struct {
	Name         string
	ProteinRatio float64
	FatRatio     float64
	CarbRatio    float64
}

const (
	ScenarioMaintenance = "maintenance"
	ScenarioCutting     = "cutting"
	ScenarioBulking     = "bulking"

	PlanModerateCarb = "moderate_carb"
	PlanLowerCarb    = "lower_carb"
	PlanHigherCarb   = "higher_carb"
)

var (
	scenarios = []Scenario{
		{Name: ScenarioMaintenance, Offset: 0},
		{Name: ScenarioCutting, Offset: -500},
		{Name: ScenarioBulking, Offset: 500},
	}
	plans = []Plan{
		{Name: PlanModerateCarb, ProteinRatio: 0.30, FatRatio: 0.35, CarbRatio: 0.35},
		{Name: PlanLowerCarb, ProteinRatio: 0.40, FatRatio: 0.40, CarbRatio: 0.20},
		{Name: PlanHigherCarb, ProteinRatio: 0.30, FatRatio: 0.20, CarbRatio: 0.50},
	}
)

// Scenarios returns the adjustment scenarios in response order.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// Plans returns the macro plans in response order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// MacroDetail is the calorie and gram target for one scenario/plan pair.
type MacroDetail struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
}

// PlanMacros holds one MacroDetail per plan.
type PlanMacros struct {
	ModerateCarb MacroDetail `json:"moderate_carb"`
	LowerCarb    MacroDetail `json:"lower_carb"`
	HigherCarb   MacroDetail `json:"higher_carb"`
}

// MacrosResponse is the full 3x3 macro reference.
type MacrosResponse struct {
	Maintenance PlanMacros `json:"maintenance"`
	Cutting     PlanMacros `json:"cutting"`
	Bulking     PlanMacros `json:"bulking"`
}

func (p *PlanMacros) slot(plan string) *MacroDetail {
	switch plan {
	case PlanModerateCarb:
		return &p.ModerateCarb
	case PlanLowerCarb:
		return &p.LowerCarb
	case PlanHigherCarb:
		return &p.HigherCarb
	}
	return nil
}

func (m *MacrosResponse) slot(scenario string) *PlanMacros {
	switch scenario {
	case ScenarioMaintenance:
		return &m.Maintenance
	case ScenarioCutting:
		return &m.Cutting
	case ScenarioBulking:
		return &m.Bulking
	}
	return nil
}

// Breakdown converts the reference into its map form.
func (m MacrosResponse) Breakdown() Breakdown {
	b := make(Breakdown, len(scenarios))
	for _, s := range scenarios {
		pm := m.slot(s.Name)
		b[s.Name] = make(map[string]MacroDetail, len(plans))
		for _, p := range plans {
			b[s.Name][p.Name] = *pm.slot(p.Name)
		}
	}
	return b
}
