package scenario

const (
	BusinessAsUsual     = "business_as_usual"
	InvestmentIncentive = "investment_incentive"
	StrictRegulation    = "strict_regulation"
	CombinedPolicy      = "combined_policy"

	// DefaultMaxCapacity is the ceiling shared by all built-in scenarios.
	DefaultMaxCapacity = 80000.0
)

// Defaults returns the built-in scenario table in registry order.
func Defaults() []Scenario {
	return []Scenario{
		{
			ID:                  BusinessAsUsual,
			Name:                "Business as Usual",
			InvestmentGrowth:    0.08,
			TechImprovement:     0.03,
			InfrastructureCoeff: 0.1,
			Depreciation:        0.02,
			PolicyEffectiveness: 1.0,
			MaxCapacity:         DefaultMaxCapacity,
			Color:               "red",
		},
		{
			ID:                  InvestmentIncentive,
			Name:                "Investment Incentive",
			InvestmentGrowth:    0.15,
			TechImprovement:     0.04,
			InfrastructureCoeff: 0.15,
			Depreciation:        0.02,
			PolicyEffectiveness: 1.2,
			MaxCapacity:         DefaultMaxCapacity,
			Color:               "blue",
		},
		{
			ID:                  StrictRegulation,
			Name:                "Strict Regulation",
			InvestmentGrowth:    0.10,
			TechImprovement:     0.05,
			InfrastructureCoeff: 0.12,
			Depreciation:        0.02,
			PolicyEffectiveness: 1.5,
			MaxCapacity:         DefaultMaxCapacity,
			Color:               "green",
		},
		{
			ID:                  CombinedPolicy,
			Name:                "Combined Policy",
			InvestmentGrowth:    0.18,
			TechImprovement:     0.06,
			InfrastructureCoeff: 0.18,
			Depreciation:        0.02,
			PolicyEffectiveness: 1.8,
			MaxCapacity:         DefaultMaxCapacity,
			Color:               "purple",
		},
	}
}

// Default returns a registry holding the built-in scenarios.
func Default() *Registry {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		panic(err)
	}
	return r
}
