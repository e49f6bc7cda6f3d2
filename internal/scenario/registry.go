package scenario

import (
	"fmt"
)

// Registry is an ordered, read-only set of scenarios. Iteration order is the
// order the scenarios were given in. It is safe for concurrent readers.
type Registry struct {
	order []string
	byID  map[string]Scenario
}

// NewRegistry indexes the given scenarios. Coefficients are not validated
// here: a malformed scenario fails when it is run, not when it is registered.
func NewRegistry(scenarios ...Scenario) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(scenarios)),
		byID:  make(map[string]Scenario, len(scenarios)),
	}
	for _, s := range scenarios {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidScenario)
		}
		if _, ok := r.byID[s.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		r.order = append(r.order, s.ID)
		r.byID[s.ID] = s
	}
	return r, nil
}

func (r *Registry) Get(id string) (Scenario, error) {
	s, ok := r.byID[id]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s (available: %v)", ErrNotFound, id, r.order)
	}
	return s, nil
}

func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *Registry) All() []Scenario {
	all := make([]Scenario, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.byID[id])
	}
	return all
}

func (r *Registry) Len() int { return len(r.order) }

// Override returns a new registry where the scenario with the given id has
// been passed through fn. The receiver is left untouched.
func (r *Registry) Override(id string, fn func(*Scenario)) (*Registry, error) {
	if _, ok := r.byID[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	all := r.All()
	for i := range all {
		if all[i].ID == id {
			fn(&all[i])
			all[i].ID = id
		}
	}
	return NewRegistry(all...)
}
