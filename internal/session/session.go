// Package session manages study sessions: building a queue of cards to
// study, choosing the next card, and tracking progress. The queue is a pure
// value; every transition returns a new queue and never mutates in place,
// so a caller can hold onto earlier states or drive UI updates from fresh
// values.
package session

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/hakusan/kioku/internal/domain"
	"github.com/hakusan/kioku/internal/domain/srs"
)

// newCardsPerInterleave is how many completed reviews earn one new card.
const newCardsPerInterleave = 10

// Config controls how a session queue is built.
type Config struct {
	MaxNewCards    int  // 0 = unlimited
	MaxReviewCards int  // 0 = unlimited
	RandomizeOrder bool // Fisher-Yates shuffle within each list
}

// DefaultConfig returns the standard session configuration.
func DefaultConfig() Config {
	return Config{
		MaxNewCards:    20,
		MaxReviewCards: 200,
		RandomizeOrder: true,
	}
}

// Queue is the state of one study session: the cards selected for it, split
// into never-studied and due-for-review lists, plus the ordered ids of cards
// already completed.
type Queue struct {
	NewCards     []*domain.Flashcard
	ReviewCards  []*domain.Flashcard
	Completed    []uuid.UUID
	CurrentIndex int
}

// Progress summarizes how far a session has advanced.
type Progress struct {
	Total           int
	Completed       int
	Remaining       int
	NewCompleted    int
	ReviewCompleted int
	PercentComplete int
}

// Counts reports how many cards are available to study right now.
type Counts struct {
	NewCount        int
	DueCount        int
	TotalReviewable int
}

// BuildQueue builds a session queue from the given cards. Suspended cards
// are excluded; the rest partition into new (never reviewed) and due-review
// (reviewed, due at or before now). Review cards are ordered most overdue
// first, both lists are capped per the config, and optionally shuffled.
// A nil rng falls back to a time-seeded source.
func BuildQueue(allCards []*domain.Flashcard, cfg Config, now time.Time, rng *rand.Rand) Queue {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	candidates := lo.Filter(allCards, func(c *domain.Flashcard, _ int) bool {
		return !c.IsSuspended()
	})

	newCards := lo.Filter(candidates, func(c *domain.Flashcard, _ int) bool {
		return srs.IsNew(c.State)
	})

	reviewCards := lo.Filter(candidates, func(c *domain.Flashcard, _ int) bool {
		return !srs.IsNew(c.State) && srs.IsDue(c.State, now)
	})

	// Most overdue first. Stable so equally-overdue cards keep store order.
	reviewCards = sortByOverdue(reviewCards, now)

	newCards = capList(newCards, cfg.MaxNewCards)
	reviewCards = capList(reviewCards, cfg.MaxReviewCards)

	if cfg.RandomizeOrder {
		newCards = shuffle(newCards, rng)
		reviewCards = shuffle(reviewCards, rng)
	}

	return Queue{
		NewCards:    newCards,
		ReviewCards: reviewCards,
		Completed:   []uuid.UUID{},
	}
}

// NextCard returns the card to study next, or nil when the session is
// complete. Review cards are served first; one new card is interleaved after
// every ten completed reviews, and new cards also fill in once the review
// list is exhausted.
func (q Queue) NextCard() *domain.Flashcard {
	completed := q.completedSet()

	remaining := func(cards []*domain.Flashcard) []*domain.Flashcard {
		return lo.Filter(cards, func(c *domain.Flashcard, _ int) bool {
			_, done := completed[c.ID]
			return !done
		})
	}

	newRemaining := remaining(q.NewCards)
	reviewRemaining := remaining(q.ReviewCards)

	if len(newRemaining) == 0 && len(reviewRemaining) == 0 {
		return nil
	}

	reviewsCompleted := q.reviewsCompleted()

	// At a ten-review boundary exactly one new card is served; requiring the
	// previous completion to be a review keeps a second new card from
	// slipping in before the counter moves again.
	atBoundary := reviewsCompleted > 0 &&
		reviewsCompleted%newCardsPerInterleave == 0 &&
		q.lastCompletedWasReview()

	shouldShowNew := len(reviewRemaining) == 0 || (len(newRemaining) > 0 && atBoundary)

	if shouldShowNew && len(newRemaining) > 0 {
		return newRemaining[0]
	}

	if len(reviewRemaining) > 0 {
		return reviewRemaining[0]
	}
	return newRemaining[0]
}

// CompleteCard returns a new queue with the card marked completed. The
// receiver is unchanged.
func (q Queue) CompleteCard(cardID uuid.UUID) Queue {
	completed := make([]uuid.UUID, 0, len(q.Completed)+1)
	completed = append(completed, q.Completed...)
	completed = append(completed, cardID)

	return Queue{
		NewCards:     q.NewCards,
		ReviewCards:  q.ReviewCards,
		Completed:    completed,
		CurrentIndex: q.CurrentIndex + 1,
	}
}

// Progress reports the session's counters. An empty session is vacuously
// 100% complete.
func (q Queue) Progress() Progress {
	total := len(q.NewCards) + len(q.ReviewCards)
	completed := len(q.Completed)

	newIDs := lo.SliceToMap(q.NewCards, func(c *domain.Flashcard) (uuid.UUID, struct{}) {
		return c.ID, struct{}{}
	})
	newCompleted := lo.CountBy(q.Completed, func(id uuid.UUID) bool {
		_, ok := newIDs[id]
		return ok
	})

	percent := 100
	if total > 0 {
		percent = int(float64(completed)/float64(total)*100 + 0.5)
	}

	return Progress{
		Total:           total,
		Completed:       completed,
		Remaining:       total - completed,
		NewCompleted:    newCompleted,
		ReviewCompleted: completed - newCompleted,
		PercentComplete: percent,
	}
}

// IsComplete reports whether every card in the queue has been completed.
func (q Queue) IsComplete() bool {
	return len(q.Completed) >= len(q.NewCards)+len(q.ReviewCards)
}

// ReviewableCount counts the cards available for study right now, using the
// same partition rules as BuildQueue but without caps.
func ReviewableCount(cards []*domain.Flashcard, now time.Time) Counts {
	newCount := lo.CountBy(cards, func(c *domain.Flashcard) bool {
		return !c.IsSuspended() && srs.IsNew(c.State)
	})
	dueCount := lo.CountBy(cards, func(c *domain.Flashcard) bool {
		return !c.IsSuspended() && !srs.IsNew(c.State) && srs.IsDue(c.State, now)
	})

	return Counts{
		NewCount:        newCount,
		DueCount:        dueCount,
		TotalReviewable: newCount + dueCount,
	}
}

func (q Queue) completedSet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(q.Completed))
	for _, id := range q.Completed {
		set[id] = struct{}{}
	}
	return set
}

// reviewsCompleted counts completed ids that belong to the review list.
func (q Queue) reviewsCompleted() int {
	return lo.CountBy(q.Completed, func(id uuid.UUID) bool {
		return q.isReviewCard(id)
	})
}

func (q Queue) lastCompletedWasReview() bool {
	if len(q.Completed) == 0 {
		return false
	}
	return q.isReviewCard(q.Completed[len(q.Completed)-1])
}

func (q Queue) isReviewCard(id uuid.UUID) bool {
	return lo.SomeBy(q.ReviewCards, func(c *domain.Flashcard) bool {
		return c.ID == id
	})
}

// sortByOverdue orders cards by descending days overdue without mutating
// the input slice.
func sortByOverdue(cards []*domain.Flashcard, now time.Time) []*domain.Flashcard {
	sorted := make([]*domain.Flashcard, len(cards))
	copy(sorted, cards)

	sort.SliceStable(sorted, func(i, j int) bool {
		return srs.DaysOverdue(sorted[i].State, now) > srs.DaysOverdue(sorted[j].State, now)
	})

	return sorted
}

func capList(cards []*domain.Flashcard, limit int) []*domain.Flashcard {
	if limit > 0 && len(cards) > limit {
		return cards[:limit]
	}
	return cards
}

// shuffle is a Fisher-Yates shuffle over a copy of the input.
func shuffle(cards []*domain.Flashcard, rng *rand.Rand) []*domain.Flashcard {
	shuffled := make([]*domain.Flashcard, len(cards))
	copy(shuffled, cards)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}
