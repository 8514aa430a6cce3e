package nutrition

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Breakdown is a macro table keyed by scenario then plan, as attached to a
// history entry. It may hold any subset of the reference table.
type Breakdown map[string]map[string]MacroDetail

// ErrInvalidBreakdown is returned for unknown keys or an empty table.
var ErrInvalidBreakdown = errors.New("invalid macro breakdown")

// Validate checks that every key names a known scenario and plan.
func (b Breakdown) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidBreakdown)
	}
	for scenario, row := range b {
		if !knownScenario(scenario) {
			return fmt.Errorf("%w: unknown scenario %q", ErrInvalidBreakdown, scenario)
		}
		if len(row) == 0 {
			return fmt.Errorf("%w: scenario %q has no plans", ErrInvalidBreakdown, scenario)
		}
		for plan := range row {
			if !knownPlan(plan) {
				return fmt.Errorf("%w: unknown plan %q in %q", ErrInvalidBreakdown, plan, scenario)
			}
		}
	}
	return nil
}

// EncodeBreakdown serializes a breakdown to the text stored in the history table.
func EncodeBreakdown(b Breakdown) (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode breakdown: %w", err)
	}
	return string(raw), nil
}

// DecodeBreakdown parses text produced by EncodeBreakdown.
func DecodeBreakdown(s string) (Breakdown, error) {
	var b Breakdown
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}
	return b, nil
}

func knownScenario(name string) bool {
	for _, s := range scenarios {
		if s.Name == name {
			return true
		}
	}
	return false
}

func knownPlan(name string) bool {
	for _, p := range plans {
		if p.Name == name {
			return true
		}
	}
	return false
}
