package model

// Review ratings are bounded to this closed interval.
const (
	MinRating = 1
	MaxRating = 5
)

// RecomputeRating returns the arithmetic mean and the count of the given
// reviews.  An empty slice yields a zero mean.
func RecomputeRating(reviews []Review) (float64, int) {
	n := len(reviews)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(n), n
}

// ApplyRating overwrites the derived aggregate fields from p.Reviews.
func (p *Product) ApplyRating() {
	p.Rating, p.NumReviews = RecomputeRating(p.Reviews)
}

// ValidRating reports whether v lies within [MinRating, MaxRating].
func ValidRating(v float64) bool {
	return v >= MinRating && v <= MaxRating
}
