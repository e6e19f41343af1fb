package roadmap

// Health classifies how a roadmap item is tracking against its target date.
type Health string

const (
	HealthOnTrack Health = "on-track"
	HealthAtRisk  Health = "at-risk"
	HealthBehind  Health = "behind"
	HealthAhead   Health = "ahead"
)

const (
	// warningThresholdDays: anything incomplete due within this window is
	// flagged as behind.
	warningThresholdDays = 7

	// planningHorizonDays: unstarted work due beyond this horizon is not
	// flagged at all.
	planningHorizonDays = 60

	// assumedItemsPerDay is the velocity used by the remaining-items check.
	// Tunable: it has no empirical basis, it is kept at 1 for compatibility
	// with historical classifications.
	assumedItemsPerDay = 1.0

	// velocitySlack is the safety factor applied on top of the assumed
	// velocity.
	velocitySlack = 1.2

	// aheadMargin/atRiskMargin bound the completion-vs-elapsed comparison.
	aheadMargin  = 15.0
	atRiskMargin = -10.0
)

// ClassifyHealth maps the three progress inputs to a Health value.
// remainingItems is optional; pass a negative value to skip the velocity
// check. Rules apply in order, first match wins.
func ClassifyHealth(completionPct, timeElapsedPct float64, daysRemaining int, remainingItems int) Health {
	// Past the target date the only question is whether the work finished.
	if daysRemaining < 0 {
		if completionPct >= 100 {
			return HealthOnTrack
		}
		return HealthBehind
	}

	if completionPct >= 100 {
		return HealthOnTrack
	}

	if daysRemaining <= warningThresholdDays {
		return HealthBehind
	}

	// Unstarted work far from its deadline is not worth flagging.
	if daysRemaining > planningHorizonDays && completionPct == 0 {
		return HealthOnTrack
	}

	if remainingItems >= 0 {
		daysNeeded := float64(remainingItems) / assumedItemsPerDay
		if float64(daysRemaining) >= velocitySlack*daysNeeded {
			return HealthOnTrack
		}
	}

	switch diff := completionPct - timeElapsedPct; {
	case diff > aheadMargin:
		return HealthAhead
	case diff < atRiskMargin:
		return HealthAtRisk
	default:
		return HealthOnTrack
	}
}
