// Package grading holds the weighted aggregation math for grades,
// independent of storage and transport.
package grading

// ItemScore is one recorded grade joined with its item's scale.
type ItemScore struct {
	EnrollmentID uint
	Points       float64
	MaxPoints    float64
	Weight       *float64 // nil means weight 1
}

// InRange reports whether points is a legal score for an item with the given
// maximum.
func InRange(points, maxPoints float64) bool {
	return points >= 0 && points <= maxPoints
}

func weight(w *float64) float64 {
	if w == nil {
		return 1
	}
	return *w
}

// StudentAverage computes the weighted mean of points/max over the items the
// student actually has grades for. Items without a recorded grade are simply
// absent from scores and therefore never count as zero. ok is false when the
// student has no grades at all.
func StudentAverage(scores []ItemScore) (avg float64, ok bool) {
	var num, den float64
	for _, s := range scores {
		if s.MaxPoints <= 0 {
			continue
		}
		w := weight(s.Weight)
		num += w * (s.Points / s.MaxPoints)
		den += w
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// ClassAverage averages the per-student weighted means across all students
// with at least one grade. Returns 0 for an empty class.
func ClassAverage(scores []ItemScore) float64 {
	byStudent := make(map[uint][]ItemScore)
	for _, s := range scores {
		byStudent[s.EnrollmentID] = append(byStudent[s.EnrollmentID], s)
	}
	var sum float64
	var n int
	for _, ss := range byStudent {
		if avg, ok := StudentAverage(ss); ok {
			sum += avg
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
