package reporting

import (
	"context"
	"errors"
	"sort"

	"autodialer/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts access to finalized call records.
//
// Implementations return records in insertion order and must hand out copies.
type Repository interface {
	ListCalls(ctx context.Context, f Filter) ([]calls.CallRecord, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Summarize computes CallStats over records. It never fails, even on an empty slice.
func Summarize(records []calls.CallRecord) CallStats {
	var out CallStats
	var totalDuration float64
	for _, rec := range records {
		base := rec.Base()
		out.TotalCalls++
		totalDuration += base.Duration
		if base.Answered {
			out.AnsweredCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.SuccessRate = float64(out.AnsweredCalls) / float64(out.TotalCalls) * 100
		out.AverageDuration = totalDuration / float64(out.TotalCalls)
	}
	return out
}

// HourlyVolume buckets records by the hour their first attempt started.
func HourlyVolume(records []calls.CallRecord) []HourBucket {
	counts := map[string]int{}
	for _, rec := range records {
		counts[rec.Base().StartTime.Format("15:00")]++
	}
	out := make([]HourBucket, 0, len(counts))
	for h, n := range counts {
		out = append(out, HourBucket{Hour: h, Calls: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// OutcomeBreakdown counts attempts per outcome tag, in calls.Outcomes order.
// Tags with no attempts are reported with zero.
func OutcomeBreakdown(records []calls.CallRecord) []OutcomeCount {
	counts := make(map[calls.Outcome]int, len(calls.Outcomes))
	for _, rec := range records {
		for _, a := range rec.Base().Attempts {
			counts[a.Result]++
		}
	}
	out := make([]OutcomeCount, 0, len(calls.Outcomes))
	for _, o := range calls.Outcomes {
		out = append(out, OutcomeCount{Outcome: o, Attempts: counts[o]})
	}
	return out
}

// Recent returns the last n records, newest first. n <= 0 returns all of them.
func Recent(records []calls.CallRecord, n int) []calls.CallRecord {
	if n <= 0 || n > len(records) {
		n = len(records)
	}
	out := make([]calls.CallRecord, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		out = append(out, records[i])
	}
	return out
}

func (s *Service) list(ctx context.Context, f Filter) ([]calls.CallRecord, error) {
	if f.Mode != "" && !f.Mode.Valid() {
		return nil, ErrInvalidRequest
	}
	if s.repo == nil {
		return nil, errors.New("reporting: repository not configured")
	}
	return s.repo.ListCalls(ctx, f)
}

func (s *Service) CallStats(ctx context.Context, f Filter) (CallStats, error) {
	rows, err := s.list(ctx, f)
	if err != nil {
		return CallStats{}, err
	}
	return Summarize(rows), nil
}

func (s *Service) Recent(ctx context.Context, f Filter, n int) ([]calls.CallRecord, error) {
	if n < 0 {
		return nil, ErrInvalidRequest
	}
	rows, err := s.list(ctx, f)
	if err != nil {
		return nil, err
	}
	return Recent(rows, n), nil
}

func (s *Service) Dashboard(ctx context.Context, f Filter) (Dashboard, error) {
	rows, err := s.list(ctx, f)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Stats:        Summarize(rows),
		HourlyVolume: HourlyVolume(rows),
		Outcomes:     OutcomeBreakdown(rows),
	}, nil
}
