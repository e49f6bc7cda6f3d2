// Package viz renders projections for the terminal: colour styles keyed by
// scenario, asciigraph line charts of renewable share and sparklines.
package viz
