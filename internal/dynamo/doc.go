// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: single-step numerical method
//   - [AdaptiveIntegrator]: stepper with an embedded error estimate
//   - [Simulator]: resolves a trajectory at caller-chosen output times
//
// # Example
//
//	dyn, _ := models.NewEnergyTransition(sc)
//	s := dynamo.New(dyn, integrators.NewRK45())
//	result, _ := s.Run(ctx, x0, []float64{0, 1, 2}, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Integrators may keep scratch buffers, so a Simulator must not be shared
// between goroutines. Build one per run.
package dynamo
