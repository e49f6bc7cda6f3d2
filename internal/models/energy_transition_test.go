package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/scenario"
)

func baseline(t *testing.T) scenario.Scenario {
	t.Helper()
	s, err := scenario.Default().Get(scenario.BusinessAsUsual)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDerivative_Baseline(t *testing.T) {
	x := dynamo.State{26200, 2.9, 50}

	dx, err := Derivative(x, baseline(t))
	if err != nil {
		t.Fatal(err)
	}

	want := dynamo.State{
		2.9*0.03*50*1.0*(1-26200.0/80000) - 0.02*26200,
		0.08 * 2.9 * (26200.0 / 80000) * 1.0,
		0.1*2.9 - 0.05*50,
	}
	for i := range want {
		if math.Abs(dx[i]-want[i]) > 1e-9 {
			t.Errorf("dx[%d] = %.9f, want %.9f", i, dx[i], want[i])
		}
	}
}

func TestDerivative_AtCeiling(t *testing.T) {
	sc := baseline(t)
	sc.Depreciation = 0

	dx, err := Derivative(dynamo.State{sc.MaxCapacity, 5, 40}, sc)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dx[Capacity]) > 1e-12 {
		t.Errorf("capacity must not grow at the ceiling, got %g", dx[Capacity])
	}
}

func TestDerivative_ZeroInvestment(t *testing.T) {
	sc := baseline(t)

	dx, err := Derivative(dynamo.State{1000, 0, 10}, sc)
	if err != nil {
		t.Fatal(err)
	}
	if dx[Investment] != 0 {
		t.Errorf("investment must stay at zero, got %g", dx[Investment])
	}
	if want := -sc.Depreciation * 1000; math.Abs(dx[Capacity]-want) > 1e-12 {
		t.Errorf("capacity should only depreciate: got %g, want %g", dx[Capacity], want)
	}
	if want := -InfrastructureDecay * 10; math.Abs(dx[Infrastructure]-want) > 1e-12 {
		t.Errorf("infrastructure should only decay: got %g, want %g", dx[Infrastructure], want)
	}
}

func TestDerivative_InvalidScenario(t *testing.T) {
	sc := baseline(t)
	sc.MaxCapacity = 0

	if _, err := Derivative(dynamo.State{1, 1, 1}, sc); !errors.Is(err, scenario.ErrInvalidScenario) {
		t.Errorf("expected ErrInvalidScenario, got %v", err)
	}
	if _, err := NewEnergyTransition(sc); !errors.Is(err, scenario.ErrInvalidScenario) {
		t.Errorf("expected ErrInvalidScenario from constructor, got %v", err)
	}
}

func TestDerivative_WrongDimension(t *testing.T) {
	if _, err := Derivative(dynamo.State{1, 1}, baseline(t)); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEnergyTransition_PureAndAutonomous(t *testing.T) {
	m, err := NewEnergyTransition(baseline(t))
	if err != nil {
		t.Fatal(err)
	}

	x := dynamo.State{30000, 3, 45}
	a := m.Derive(x, 0)
	b := m.Derive(x, 17)

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("component %d depends on t: %g vs %g", i, a[i], b[i])
		}
	}
	if x[0] != 30000 || x[1] != 3 || x[2] != 45 {
		t.Errorf("input mutated: %v", x)
	}
	if m.StateDim() != 3 {
		t.Errorf("expected state dim 3, got %d", m.StateDim())
	}
}
