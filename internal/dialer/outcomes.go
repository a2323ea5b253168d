package dialer

import (
	"math/rand"
	"sync"
	"time"

	"autodialer/internal/calls"
)

// OutcomeSource decides how a simulated ring resolves.
// It stands in for a real telephony backend.
type OutcomeSource interface {
	Next() calls.Outcome
}

// WeightedOutcome is one entry of a categorical outcome distribution.
type WeightedOutcome struct {
	Outcome calls.Outcome
	Weight  int
}

// DefaultWeights is the demo distribution: 30% answered, 40% no answer,
// 20% busy, 10% failed.
var DefaultWeights = []WeightedOutcome{
	{Outcome: calls.OutcomeAnswered, Weight: 30},
	{Outcome: calls.OutcomeNoAnswer, Weight: 40},
	{Outcome: calls.OutcomeBusy, Weight: 20},
	{Outcome: calls.OutcomeFailed, Weight: 10},
}

// WeightedOutcomes draws independent outcomes from a fixed distribution.
type WeightedOutcomes struct {
	mu      sync.Mutex
	rng     *rand.Rand
	weights []WeightedOutcome
	total   int
}

// NewWeightedOutcomes builds a source over weights (DefaultWeights when empty).
// A nil rng is seeded from the clock.
func NewWeightedOutcomes(rng *rand.Rand, weights []WeightedOutcome) *WeightedOutcomes {
	if len(weights) == 0 {
		weights = DefaultWeights
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	w := &WeightedOutcomes{rng: rng}
	for _, o := range weights {
		if o.Weight <= 0 {
			continue
		}
		w.weights = append(w.weights, o)
		w.total += o.Weight
	}
	return w
}

func (w *WeightedOutcomes) Next() calls.Outcome {
	if w.total <= 0 {
		return calls.OutcomeFailed
	}

	// *rand.Rand is not safe for concurrent use.
	w.mu.Lock()
	r := w.rng.Intn(w.total)
	w.mu.Unlock()

	var acc int
	for _, o := range w.weights {
		acc += o.Weight
		if r < acc {
			return o.Outcome
		}
	}
	return calls.OutcomeFailed
}

// Sequence replays a fixed list of outcomes, then repeats the last one.
// An empty Sequence always fails.
type Sequence struct {
	mu       sync.Mutex
	outcomes []calls.Outcome
	next     int
}

func NewSequence(outcomes ...calls.Outcome) *Sequence {
	return &Sequence{outcomes: append([]calls.Outcome(nil), outcomes...)}
}

// Always returns a source that resolves every attempt to o.
func Always(o calls.Outcome) *Sequence { return NewSequence(o) }

func (s *Sequence) Next() calls.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.outcomes) == 0 {
		return calls.OutcomeFailed
	}
	o := s.outcomes[s.next]
	if s.next < len(s.outcomes)-1 {
		s.next++
	}
	return o
}
