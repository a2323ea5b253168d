package calls

import "sync"

// History is the append-only log of finalized call records.
//
// Invariants:
// - Records are never updated, reordered or removed.
// - Append stores a snapshot and readers get snapshots, so no caller can
//   mutate what is logged.
type History struct {
	mu      sync.Mutex
	records []CallRecord
}

func NewHistory() *History { return &History{} }

func (h *History) Append(rec CallRecord) {
	if rec == nil {
		return
	}
	snap := Snapshot(rec)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, snap)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// All returns every record in insertion order.
func (h *History) All() []CallRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]CallRecord, len(h.records))
	for i, r := range h.records {
		out[i] = Snapshot(r)
	}
	return out
}
