package algo

import "math"

// RiskScore weights churn by how often a file was edited:
// changes * (1 + ln(1 + editCount)).
func RiskScore(changes, editCount int) float64 {
	if editCount < 0 {
		editCount = 0
	}
	return float64(changes) * (1 + math.Log1p(float64(editCount)))
}

// HealthScore maps a recent commit count onto 0-100 against a reference cap.
// A non-positive cap yields 0.
func HealthScore(count, capacity int) int {
	if capacity <= 0 || count <= 0 {
		return 0
	}
	return min(100, int(math.Floor(float64(count)/float64(capacity)*100)))
}
