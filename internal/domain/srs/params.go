// Package srs implements the SM-2 spaced-repetition scheduling algorithm.
//
// Every function in this package is pure: given a scheduling state, a rating
// and an explicit "now" instant it deterministically produces a new state,
// with no side effects and no failure modes beyond rejecting an out-of-range
// rating.
package srs

// Params defines the tunable constants of the scheduling algorithm.
// The defaults reproduce classic SM-2 with a four-button rating scale.
type Params struct {
	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor float64

	// AgainPenalty is subtracted from the ease factor on a lapse, on top
	// of the standard SM-2 adjustment.
	AgainPenalty float64

	// HardMultiplier scales the interval for Hard answers.
	HardMultiplier float64

	// EasyBonus additionally scales the interval for Easy answers.
	EasyBonus float64

	// LapseInterval is the interval in days after an Again answer.
	LapseInterval int

	// GraduatingInterval is the first interval after a new card is answered
	// Hard or Good.
	GraduatingInterval int

	// SecondInterval is the interval after the second consecutive Good.
	SecondInterval int

	// EasyFirstInterval is the first interval after a new card is answered
	// Easy.
	EasyFirstInterval int
}

// DefaultParams returns the standard SM-2 parameter set.
func DefaultParams() *Params {
	return &Params{
		MinEaseFactor:      1.3,
		AgainPenalty:       0.2,
		HardMultiplier:     1.2,
		EasyBonus:          1.3,
		LapseInterval:      1,
		GraduatingInterval: 1,
		SecondInterval:     6,
		EasyFirstInterval:  4,
	}
}
