// Package scenario holds the closed set of policy scenarios and their
// coefficients. A Registry is built once and only read afterwards.
package scenario

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotFound        = errors.New("scenario: not found")
	ErrInvalidScenario = errors.New("scenario: invalid coefficients")
	ErrDuplicateID     = errors.New("scenario: duplicate id")
)

// Scenario is one policy-feedback hypothesis.
type Scenario struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	// InvestmentGrowth is α.
	InvestmentGrowth float64 `yaml:"investment_growth" json:"investment_growth"`
	// TechImprovement is β.
	TechImprovement float64 `yaml:"tech_improvement" json:"tech_improvement"`
	// InfrastructureCoeff is γ.
	InfrastructureCoeff float64 `yaml:"infrastructure_coeff" json:"infrastructure_coeff"`
	// Depreciation is δ.
	Depreciation        float64 `yaml:"depreciation" json:"depreciation"`
	PolicyEffectiveness float64 `yaml:"policy_effectiveness" json:"policy_effectiveness"`
	// MaxCapacity is the logistic ceiling for renewable capacity, in MW.
	MaxCapacity float64 `yaml:"max_capacity" json:"max_capacity"`
	Color       string  `yaml:"color" json:"color"`
}

// Validate reports whether the coefficients can drive the model.
func (s Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidScenario)
	}
	coeffs := []struct {
		name  string
		value float64
	}{
		{"investment_growth", s.InvestmentGrowth},
		{"tech_improvement", s.TechImprovement},
		{"infrastructure_coeff", s.InfrastructureCoeff},
		{"depreciation", s.Depreciation},
		{"policy_effectiveness", s.PolicyEffectiveness},
		{"max_capacity", s.MaxCapacity},
	}
	for _, c := range coeffs {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s: %s is not finite", ErrInvalidScenario, s.ID, c.name)
		}
	}
	if s.MaxCapacity <= 0 {
		return fmt.Errorf("%w: %s: max_capacity must be positive, got %g", ErrInvalidScenario, s.ID, s.MaxCapacity)
	}
	return nil
}

// DisplayName falls back to the id when no name is set.
func (s Scenario) DisplayName() string {
	if s.Name == "" {
		return s.ID
	}
	return s.Name
}
