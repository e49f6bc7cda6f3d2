package models

import (
	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/scenario"
)

// State vector layout.
const (
	Capacity = iota
	Investment
	Infrastructure

	energyTransitionDim
)

// InfrastructureDecay is the fixed yearly decay rate of infrastructure readiness.
const InfrastructureDecay = 0.05

// EnergyTransition couples renewable capacity, investment intensity and
// infrastructure readiness under one scenario's coefficients:
//
//	dC/dt = I·β·R·p·(1 − C/Cmax) − δ·C
//	dI/dt = α·I·(C/Cmax)·p
//	dR/dt = γ·I − 0.05·R
type EnergyTransition struct {
	sc scenario.Scenario
}

// NewEnergyTransition validates the scenario once so Derive can run unchecked.
func NewEnergyTransition(sc scenario.Scenario) (*EnergyTransition, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &EnergyTransition{sc: sc}, nil
}

func (e *EnergyTransition) Scenario() scenario.Scenario { return e.sc }

func (e *EnergyTransition) StateDim() int {
	return energyTransitionDim
}

// Derive ignores t: the field is autonomous.
func (e *EnergyTransition) Derive(x dynamo.State, t float64) dynamo.State {
	return field(x, e.sc)
}

// Derivative evaluates the vector field for a single state. It fails with
// scenario.ErrInvalidScenario for malformed coefficients.
func Derivative(x dynamo.State, sc scenario.Scenario) (dynamo.State, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if len(x) != energyTransitionDim {
		return nil, dynamo.ErrDimensionMismatch
	}
	return field(x, sc), nil
}

func field(x dynamo.State, sc scenario.Scenario) dynamo.State {
	capacity, investment, infrastructure := x[Capacity], x[Investment], x[Infrastructure]
	saturation := capacity / sc.MaxCapacity

	dCapacity := investment*sc.TechImprovement*infrastructure*sc.PolicyEffectiveness*(1-saturation) -
		sc.Depreciation*capacity
	dInvestment := sc.InvestmentGrowth * investment * saturation * sc.PolicyEffectiveness
	dInfrastructure := sc.InfrastructureCoeff*investment - InfrastructureDecay*infrastructure

	return dynamo.State{dCapacity, dInvestment, dInfrastructure}
}
