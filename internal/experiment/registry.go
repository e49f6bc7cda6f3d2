package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/integrators"
)

type integratorEntry struct {
	build    func() dynamo.Integrator
	adaptive bool
}

// Steppers keep scratch state, so every run gets a fresh one.
var integratorTable = map[string]integratorEntry{
	"rk45":  {build: func() dynamo.Integrator { return integrators.NewRK45() }, adaptive: true},
	"rk4":   {build: func() dynamo.Integrator { return integrators.NewRK4() }},
	"euler": {build: func() dynamo.Integrator { return integrators.NewEuler() }},
}

const DefaultIntegrator = "rk45"

// NewIntegrator builds a stepper by name and reports whether it should be
// driven with error control.
func NewIntegrator(name string) (dynamo.Integrator, bool, error) {
	e, ok := integratorTable[name]
	if !ok {
		return nil, false, fmt.Errorf("unknown integrator: %s (available: %v)", name, IntegratorNames())
	}
	return e.build(), e.adaptive, nil
}

func IntegratorNames() []string {
	names := make([]string, 0, len(integratorTable))
	for name := range integratorTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
