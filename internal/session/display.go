package session

import (
	"math/rand"

	"github.com/hakusan/kioku/internal/domain"
)

// DisplayCard is a card's content arranged for presentation: Front is the
// side shown first.
type DisplayCard struct {
	Front        string
	Back         string
	FrontReading string
	BackReading  string
}

// PrepareForDisplay arranges a card for the given direction. Meaning-first
// presentation swaps the sides (and their readings) so the meaning is the
// prompt; term-first leaves the card as stored; random flips a fair coin per
// call. A nil rng falls back to the package-level source, which is fine for
// everything except deterministic tests.
func PrepareForDisplay(card *domain.Flashcard, direction domain.CardDirection, rng *rand.Rand) DisplayCard {
	actual := direction
	if direction == domain.DirectionRandom {
		coin := rand.Intn(2)
		if rng != nil {
			coin = rng.Intn(2)
		}
		if coin == 0 {
			actual = domain.DirectionMeaningFirst
		} else {
			actual = domain.DirectionTermFirst
		}
	}

	if actual == domain.DirectionMeaningFirst {
		return DisplayCard{
			Front:        card.Back,
			Back:         card.Front,
			FrontReading: card.BackReading,
			BackReading:  card.FrontReading,
		}
	}

	return DisplayCard{
		Front:        card.Front,
		Back:         card.Back,
		FrontReading: card.FrontReading,
		BackReading:  card.BackReading,
	}
}
