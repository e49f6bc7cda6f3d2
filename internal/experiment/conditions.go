package experiment

import (
	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/history"
	"github.com/san-kum/renewsim/internal/models"
)

const (
	DefaultInvestment     = 2.9
	DefaultInfrastructure = 50.0
)

type InitialConditions struct {
	RenewableCapacity float64 `yaml:"renewable_capacity" json:"renewable_capacity"`
	Investment        float64 `yaml:"investment" json:"investment"`
	Infrastructure    float64 `yaml:"infrastructure" json:"infrastructure"`
	TotalCapacity     float64 `yaml:"total_capacity" json:"total_capacity"`
}

// FromHistory takes capacity and total capacity from the last historical
// record. Investment and infrastructure have no historical source and are
// supplied by the caller.
func FromHistory(d *history.Dataset, investment, infrastructure float64) InitialConditions {
	last := d.Last()
	return InitialConditions{
		RenewableCapacity: last.RenewableCapacity,
		Investment:        investment,
		Infrastructure:    infrastructure,
		TotalCapacity:     last.TotalOrDefault(),
	}
}

func (ic InitialConditions) State() dynamo.State {
	x := make(dynamo.State, 3)
	x[models.Capacity] = ic.RenewableCapacity
	x[models.Investment] = ic.Investment
	x[models.Infrastructure] = ic.Infrastructure
	return x
}
