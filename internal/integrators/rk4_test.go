package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/renewsim/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int { return 2 }

// logistic growth with a known closed form
type logistic struct {
	r, k float64
}

func (l *logistic) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{l.r * x[0] * (1 - x[0]/l.k)}
}

func (l *logistic) StateDim() int { return 1 }

func (l *logistic) exact(x0, t float64) float64 {
	return l.k / (1 + (l.k-x0)/x0*math.Exp(-l.r*t))
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4_Logistic(t *testing.T) {
	dyn := &logistic{r: 0.2, k: 80000}
	integ := NewRK4()

	x := dynamo.State{26200}
	dt := 1.0 / 16
	for i := 0; i < 16*10; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	want := dyn.exact(26200, 10)
	if rel := math.Abs(x[0]-want) / want; rel > 1e-8 {
		t.Errorf("logistic after 10y: got %.6f, want %.6f (rel %.2e)", x[0], want, rel)
	}
}

func TestRK4_DoesNotMutateInput(t *testing.T) {
	integ := NewRK4()
	x := dynamo.State{1.0, 0.0}
	_ = integ.Step(&simpleDynamics{}, x, 0, 0.1)

	if x[0] != 1.0 || x[1] != 0.0 {
		t.Errorf("input state mutated: %v", x)
	}
}

func TestEuler_FirstOrder(t *testing.T) {
	dyn := &logistic{r: 0.2, k: 80000}
	euler := NewEuler()

	run := func(n int) float64 {
		x := dynamo.State{26200}
		dt := 5.0 / float64(n)
		for i := 0; i < n; i++ {
			x = euler.Step(dyn, x, float64(i)*dt, dt)
		}
		return x[0]
	}

	want := dyn.exact(26200, 5)
	e1 := math.Abs(run(50) - want)
	e2 := math.Abs(run(100) - want)

	// halving the step should roughly halve the error
	ratio := e1 / e2
	if ratio < 1.7 || ratio > 2.3 {
		t.Errorf("euler error ratio %.3f, expected ~2", ratio)
	}
}
