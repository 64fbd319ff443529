package spc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flat builds a series of points sharing the same limits so rule
// behavior can be tested in isolation from limit computation.
func flat(values ...float64) []SPCPoint {
	points := make([]SPCPoint, len(values))
	for i, v := range values {
		points[i] = SPCPoint{
			Period:     "p",
			Value:      v,
			UCL:        20,
			LCL:        10,
			CenterLine: 15,
		}
	}
	return points
}

func TestBeyondLimitsIsStrict(t *testing.T) {
	annotated := annotateSpecialCauses(flat(20, 20.0001, 10, 9.9999, 15))

	assert.False(t, annotated[0].SpecialCause, "value on the UCL is not beyond it")
	assert.True(t, annotated[1].SpecialCause)
	assert.Equal(t, []string{RuleBeyondLimits}, annotated[1].SpecialCauseRules)
	assert.False(t, annotated[2].SpecialCause, "value on the LCL is not beyond it")
	assert.True(t, annotated[3].SpecialCause)
	assert.False(t, annotated[4].SpecialCause)
}

func TestRunOfEightAboveCenter(t *testing.T) {
	annotated := annotateSpecialCauses(flat(16, 16, 17, 16, 18, 16, 17, 16))

	for i, p := range annotated {
		assert.True(t, p.SpecialCause, "point %d", i)
		assert.Equal(t, []string{RuleRunAboveCenter}, p.SpecialCauseRules)
	}
}

func TestRunOfSevenIsNotEnough(t *testing.T) {
	annotated := annotateSpecialCauses(flat(16, 16, 17, 16, 18, 16, 17))

	for i, p := range annotated {
		assert.False(t, p.SpecialCause, "point %d", i)
	}
}

func TestLongRunTagsEachPointOnce(t *testing.T) {
	// Ten points below center produce three overlapping windows; the
	// shared points must still carry the rule exactly once.
	annotated := annotateSpecialCauses(flat(14, 13, 14, 12, 14, 13, 14, 12, 13, 14))

	for i, p := range annotated {
		assert.True(t, p.SpecialCause, "point %d", i)
		assert.Equal(t, []string{RuleRunBelowCenter}, p.SpecialCauseRules, "point %d", i)
	}
}

func TestPointOnCenterBreaksRun(t *testing.T) {
	// Point 4 sits exactly on the center line, so neither side ever
	// accumulates eight consecutive points.
	annotated := annotateSpecialCauses(flat(16, 16, 17, 16, 15, 16, 17, 16, 18))

	for i, p := range annotated {
		assert.False(t, p.SpecialCause, "point %d", i)
	}
}

func TestBothRulesOnOnePoint(t *testing.T) {
	values := []float64{14, 13, 14, 12, 14, 13, 14, 9.5}
	annotated := annotateSpecialCauses(flat(values...))

	last := annotated[7]
	assert.True(t, last.SpecialCause)
	require.Len(t, last.SpecialCauseRules, 2)
	assert.Equal(t, []string{RuleBeyondLimits, RuleRunBelowCenter}, last.SpecialCauseRules)

	for _, p := range annotated[:7] {
		assert.Equal(t, []string{RuleRunBelowCenter}, p.SpecialCauseRules)
	}
}

func TestAnnotateLeavesInputUntouched(t *testing.T) {
	input := flat(25, 14, 13, 14, 12, 14, 13, 14, 12)

	annotated := annotateSpecialCauses(input)

	for i, p := range input {
		assert.False(t, p.SpecialCause, "input point %d was mutated", i)
		assert.Nil(t, p.SpecialCauseRules, "input point %d was mutated", i)
	}
	assert.True(t, annotated[0].SpecialCause)
}

func TestAnnotateEmptySeries(t *testing.T) {
	assert.Empty(t, annotateSpecialCauses(nil))
	assert.Empty(t, annotateSpecialCauses([]SPCPoint{}))
}
