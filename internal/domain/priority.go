package domain

// Quadrant identifies one of the four Eisenhower matrix buckets.
type Quadrant string

// Eisenhower matrix quadrants.
const (
	QuadrantDoFirst   Quadrant = "Q1" // urgent and important
	QuadrantSchedule  Quadrant = "Q2" // important, not urgent
	QuadrantDelegate  Quadrant = "Q3" // urgent, not important
	QuadrantEliminate Quadrant = "Q4" // neither
)

// Base scores per quadrant. The 300-point gap between adjacent bases exceeds
// the maximum urgency/importance contribution (4*10 + 4*5 = 60), so scores
// never overlap across quadrants and sort order stays quadrant-major.
const (
	baseScoreQ1 = 1000
	baseScoreQ2 = 700
	baseScoreQ3 = 400
	baseScoreQ4 = 100
)

// highThreshold is where each axis bisects: 3 and 4 count as "high".
const highThreshold = 3

// ClampRating forces a rating into the valid [1,4] range.
func ClampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 4 {
		return 4
	}
	return v
}

// QuadrantFor maps an (urgency, importance) pair to its Eisenhower quadrant.
// Inputs outside [1,4] are clamped first.
func QuadrantFor(urgency, importance int) Quadrant {
	urgent := ClampRating(urgency) >= highThreshold
	important := ClampRating(importance) >= highThreshold

	switch {
	case urgent && important:
		return QuadrantDoFirst
	case !urgent && important:
		return QuadrantSchedule
	case urgent && !important:
		return QuadrantDelegate
	default:
		return QuadrantEliminate
	}
}

// PriorityScore computes the sort key for a task: quadrant base plus
// urgency*10 plus importance*5. Higher scores sort first. The value has no
// meaning beyond relative order.
func PriorityScore(urgency, importance int, quadrant Quadrant) int {
	var base int
	switch quadrant {
	case QuadrantDoFirst:
		base = baseScoreQ1
	case QuadrantSchedule:
		base = baseScoreQ2
	case QuadrantDelegate:
		base = baseScoreQ3
	case QuadrantEliminate:
		base = baseScoreQ4
	}

	return base + ClampRating(urgency)*10 + ClampRating(importance)*5
}

// Label returns the human-readable name for the quadrant.
func (q Quadrant) Label() string {
	switch q {
	case QuadrantDoFirst:
		return "Do First"
	case QuadrantSchedule:
		return "Schedule"
	case QuadrantDelegate:
		return "Delegate"
	case QuadrantEliminate:
		return "Eliminate"
	default:
		return "Unknown"
	}
}

// Valid reports whether the quadrant is one of Q1-Q4.
func (q Quadrant) Valid() bool {
	switch q {
	case QuadrantDoFirst, QuadrantSchedule, QuadrantDelegate, QuadrantEliminate:
		return true
	}
	return false
}
