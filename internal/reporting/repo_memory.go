package reporting

import (
	"context"
	"errors"

	"autodialer/internal/calls"
)

// HistoryRepo serves reports straight from the in-process call history.
type HistoryRepo struct {
	History *calls.History
}

func NewHistoryRepo(h *calls.History) *HistoryRepo { return &HistoryRepo{History: h} }

func (r *HistoryRepo) ListCalls(ctx context.Context, f Filter) ([]calls.CallRecord, error) {
	if r.History == nil {
		return nil, errors.New("reporting: history not configured")
	}
	all := r.History.All()
	if f.Mode == "" {
		return all, nil
	}
	out := make([]calls.CallRecord, 0, len(all))
	for _, rec := range all {
		if rec.Mode() == f.Mode {
			out = append(out, rec)
		}
	}
	return out, nil
}
