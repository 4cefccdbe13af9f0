package domain

// Rating is the learner's answer on the four-button review scale.
// The numeric order matters: a rating of Good or better counts as a
// correct answer when accumulating daily statistics.
type Rating int

// Possible rating values, matching the Anki-style four-button layout.
const (
	RatingAgain Rating = iota + 1 // complete failure, resets progress
	RatingHard                    // correct but struggled
	RatingGood                    // correct with effort
	RatingEasy                    // effortless recall
)

// IsValid reports whether the rating is one of the four defined values.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// Correct reports whether the rating counts as a successful recall
// (Good or Easy).
func (r Rating) Correct() bool {
	return r >= RatingGood
}

// String returns the lowercase name of the rating, or "unknown" for
// out-of-range values.
func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	default:
		return "unknown"
	}
}

// ParseRating converts a rating name back into a Rating value.
// Returns ErrInvalidRating for unrecognized names.
func ParseRating(s string) (Rating, error) {
	switch s {
	case "again":
		return RatingAgain, nil
	case "hard":
		return RatingHard, nil
	case "good":
		return RatingGood, nil
	case "easy":
		return RatingEasy, nil
	default:
		return 0, ErrInvalidRating
	}
}
