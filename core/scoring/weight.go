package scoring

import (
	"fmt"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

// ApplyDiffstatWeight scales a scored commit by the shape of its diff.
// Large source changes and new files boost the multiplier, config-only
// and deletion-heavy commits dampen it, and the combined multiplier
// clamps to the configured floor and ceiling. Substantial test
// additions add flat safety points on top. The input is never mutated;
// a nil diffstat returns the score unchanged.
func ApplyDiffstatWeight(sc schema.ScoredCommit, ds *schema.DiffStat, th schema.Thresholds) schema.ScoredCommit {
	if ds == nil {
		return sc
	}

	cats := make(map[string]float64, len(sc.Categories)+1)
	for name, score := range sc.Categories {
		cats[name] = score
	}

	multiplier := 1.0

	if ds.Source >= th.LargeSourceThreshold {
		multiplier += th.LargeSourceBonus
	} else if ds.Source >= th.MediumSourceThreshold {
		multiplier += th.MediumSourceBonus
	}

	if ds.Source == 0 && ds.Test == 0 && ds.Config > 0 {
		multiplier *= th.ConfigOnlyMultiplier
	}

	if ds.NewFiles >= th.MajorNewFilesThreshold {
		multiplier += th.MajorNewFilesBonus
	} else if ds.NewFiles >= th.MinorNewFilesThreshold {
		multiplier += th.MinorNewFilesBonus
	}

	if ds.Deleted > ds.Added && ds.Deleted > th.DeletionHeavyThreshold {
		multiplier *= th.DeletionHeavyMultiplier
	}

	// Only override combinations can stack past the bounds; a clamp
	// means the configured thresholds disagree with each other.
	if multiplier < th.MultiplierFloor || multiplier > th.MultiplierCeiling {
		clamped := max(th.MultiplierFloor, min(th.MultiplierCeiling, multiplier))
		contract.LogWarn(fmt.Sprintf("diffstat multiplier %.2f clamped to %.2f", multiplier, clamped), nil)
		multiplier = clamped
	}

	total := max(minCommitScore, sc.Total*multiplier)

	if ds.Test >= th.TestLinesThreshold {
		cats["safety"] += th.TestSafetyBonus
	}

	return schema.ScoredCommit{Total: total, Categories: cats}
}
