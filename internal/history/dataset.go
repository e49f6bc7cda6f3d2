// Package history holds the yearly historical series the projections start
// from. Only its last record feeds the simulation.
package history

import (
	"errors"
	"fmt"
)

// DefaultTotalCapacity is used when the last record carries no total capacity.
const DefaultTotalCapacity = 95400.0

var (
	ErrEmpty    = errors.New("history: dataset is empty")
	ErrUnsorted = errors.New("history: records must be strictly ascending by year")
)

type Record struct {
	Year              int     `yaml:"year" json:"year"`
	RenewableCapacity float64 `yaml:"renewable_capacity" json:"renewable_capacity"`
	TotalCapacity     float64 `yaml:"total_capacity" json:"total_capacity"`
}

// Share is renewable capacity as a percentage of total capacity, or zero
// when no total is known.
func (r Record) Share() float64 {
	if r.TotalCapacity == 0 {
		return 0
	}
	return r.RenewableCapacity / r.TotalCapacity * 100
}

// TotalOrDefault substitutes DefaultTotalCapacity for a missing total.
func (r Record) TotalOrDefault() float64 {
	if r.TotalCapacity <= 0 {
		return DefaultTotalCapacity
	}
	return r.TotalCapacity
}

type Dataset struct {
	records []Record
}

func New(records []Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	for i := 1; i < len(records); i++ {
		if records[i].Year <= records[i-1].Year {
			return nil, fmt.Errorf("%w: %d follows %d", ErrUnsorted, records[i].Year, records[i-1].Year)
		}
	}
	rs := make([]Record, len(records))
	copy(rs, records)
	return &Dataset{records: rs}, nil
}

func (d *Dataset) Records() []Record {
	rs := make([]Record, len(d.records))
	copy(rs, d.records)
	return rs
}

func (d *Dataset) Last() Record { return d.records[len(d.records)-1] }

// StartYear is the year projections start from: the last historical year.
func (d *Dataset) StartYear() int { return d.Last().Year }

func (d *Dataset) Len() int { return len(d.records) }

// Shares returns the historical renewable share series.
func (d *Dataset) Shares() []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = r.Share()
	}
	return out
}
