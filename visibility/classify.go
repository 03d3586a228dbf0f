package visibility

import "loader/queue"

// Classify maps a viewport distance to the band a request should be promoted
// to. The second return is false when the distance warrants no promotion.
//
// Distance is measured from the viewport edge to the consumer's nearest
// edge; zero or negative means the consumer overlaps the viewport. Negative
// distances for consumers scrolled past above the viewport classify as high
// on purpose: they are one flick away from being visible again.
func Classify(distance, mediumThreshold float64) (queue.PriorityBand, bool) {
	switch {
	case distance <= 0:
		return queue.PriorityHigh, true
	case distance <= mediumThreshold:
		return queue.PriorityMedium, true
	default:
		return 0, false
	}
}
