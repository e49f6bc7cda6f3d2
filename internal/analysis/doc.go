// Package analysis inspects projected trajectories in state space.
package analysis
