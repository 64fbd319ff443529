package spc

// Special-cause rule names attached to flagged points. The exact
// strings are part of the output contract; chart tooltips display
// them verbatim.
const (
	RuleBeyondLimits   = "Beyond control limits"
	RuleRunAboveCenter = "Run of 8+ above center"
	RuleRunBelowCenter = "Run of 8+ below center"
)

// runLength is the window size for the run rule: eight consecutive
// points on one side of the center line signal a sustained shift.
const runLength = 8

// annotateSpecialCauses applies the special-cause rules to a computed
// series and returns the annotated copy; the input slice is left
// untouched. Two rules are checked and both can fire on the same
// point: a value strictly outside its own control limits, and
// membership in any window of eight consecutive points all strictly
// on one side of the center line. Overlapping run windows tag a point
// once, never repeatedly.
func annotateSpecialCauses(points []SPCPoint) []SPCPoint {
	annotated := make([]SPCPoint, len(points))
	copy(annotated, points)

	for i := range annotated {
		p := &annotated[i]
		if p.Value > p.UCL || p.Value < p.LCL {
			addRule(p, RuleBeyondLimits)
		}
	}

	for start := 0; start+runLength <= len(annotated); start++ {
		window := annotated[start : start+runLength]
		switch {
		case allAbove(window):
			flagWindow(window, RuleRunAboveCenter)
		case allBelow(window):
			flagWindow(window, RuleRunBelowCenter)
		}
	}

	return annotated
}

// allAbove reports whether every point sits strictly above its center
// line. A point exactly on the center line breaks the run.
func allAbove(points []SPCPoint) bool {
	for _, p := range points {
		if p.Value <= p.CenterLine {
			return false
		}
	}
	return true
}

func allBelow(points []SPCPoint) bool {
	for _, p := range points {
		if p.Value >= p.CenterLine {
			return false
		}
	}
	return true
}

func flagWindow(points []SPCPoint, rule string) {
	for i := range points {
		addRule(&points[i], rule)
	}
}

// addRule marks a point as special cause and appends the rule name
// unless the identical rule is already recorded.
func addRule(p *SPCPoint, rule string) {
	for _, existing := range p.SpecialCauseRules {
		if existing == rule {
			return
		}
	}
	p.SpecialCause = true
	p.SpecialCauseRules = append(p.SpecialCauseRules, rule)
}
