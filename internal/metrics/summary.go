package metrics

import (
	"math"

	"github.com/san-kum/renewsim/internal/projection"
)

// Target is the policy share goal and the year it is checked at.
type Target struct {
	Share         float64
	MilestoneYear int
}

// Summary is the headline view of one projected scenario. FinalCapacity is
// truncated to whole MW; like the shares it is null when not finite.
type Summary struct {
	Scenario               string           `json:"scenario"`
	ShareAtMilestone       projection.Float `json:"share_at_milestone"`
	FinalShare             projection.Float `json:"final_share"`
	FinalCapacity          projection.Float `json:"final_capacity"`
	PeakShare              projection.Float `json:"peak_share"`
	TargetReachedMilestone bool             `json:"target_reached_milestone"`
	TargetReachedFinal     bool             `json:"target_reached_final"`
	FirstYearReaching      projection.Float `json:"first_year_reaching_target"`
	CapacityCAGR           projection.Float `json:"capacity_cagr"`
}

func Summarize(res *projection.Result, target Target) Summary {
	last := res.Last()
	milestone := Eval(NewShareAt(target.MilestoneYear), res)

	return Summary{
		Scenario:               res.Scenario,
		ShareAtMilestone:       projection.Float(milestone),
		FinalShare:             last.RenewableShare,
		FinalCapacity:          projection.Float(math.Trunc(float64(last.RenewableCapacity))),
		PeakShare:              projection.Float(Eval(NewPeakShare(), res)),
		TargetReachedMilestone: milestone >= target.Share,
		TargetReachedFinal:     float64(last.RenewableShare) >= target.Share,
		FirstYearReaching:      projection.Float(Eval(NewFirstYearReaching(target.Share), res)),
		CapacityCAGR:           projection.Float(Eval(NewCapacityCAGR(), res)),
	}
}

// Compare summarizes each result, keeping the input order.
func Compare(results []*projection.Result, target Target) []Summary {
	out := make([]Summary, len(results))
	for i, res := range results {
		out[i] = Summarize(res, target)
	}
	return out
}
