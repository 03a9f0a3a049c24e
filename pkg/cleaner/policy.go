package cleaner

import (
	"github.com/philipparndt/meshclean/pkg/mesh"
)

// Selection is the decision of a policy over one component set.
type Selection struct {
	Index    int
	FellBack bool
}

// policyFunc returns the index of the component to keep. Policies are total
// over any non-empty component set.
type policyFunc func(components []*mesh.Component, scores []mesh.ScoreRecord) Selection

// policies dispatches each method to its selection function. New policies
// register here.
var policies = map[Method]policyFunc{
	First: selectFirst,
	Ratio: selectByRatio,
}

func selectFirst(_ []*mesh.Component, _ []mesh.ScoreRecord) Selection {
	return Selection{Index: 0}
}

// selectByRatio picks the component with the smallest surface-to-volume
// ratio. Components with an undefined score or non-positive volume cannot be
// compared and are skipped; ties go to the earlier component. When no
// component qualifies the first one wins and the fallback is flagged so
// callers can report it.
func selectByRatio(_ []*mesh.Component, scores []mesh.ScoreRecord) Selection {
	best := -1
	bestRatio := 0.0
	for i, score := range scores {
		if !score.Defined || score.Volume <= 0 {
			continue
		}
		ratio := score.Ratio()
		if best == -1 || ratio < bestRatio {
			best = i
			bestRatio = ratio
		}
	}
	if best < 0 {
		return Selection{Index: 0, FellBack: true}
	}
	return Selection{Index: best}
}
