package library

import "math"

// HistogramBuckets is the number of rating buckets (ratings run 1..10).
const HistogramBuckets = 10

// RatingHistogram buckets critic ratings 1..10 with round-half-up, so a 7.5
// counts toward 8 and a 7.4 toward 7. Unrated movies are not included in the
// input.
func RatingHistogram(ratings []float64) [HistogramBuckets]int {
	var hist [HistogramBuckets]int
	for _, rating := range ratings {
		if rating <= 0 {
			continue
		}
		bucket := int(math.Floor(rating + 0.5))
		if bucket < 1 {
			bucket = 1
		}
		if bucket > HistogramBuckets {
			bucket = HistogramBuckets
		}
		hist[bucket-1]++
	}
	return hist
}
