package dialer

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"autodialer/internal/calls"
	"autodialer/internal/contacts"
	"autodialer/internal/reporting"
)

const (
	// MaxBatchSize caps how many contacts one power batch can ring.
	MaxBatchSize = 10

	// MaxRedialLimit caps the per-call redial budget.
	MaxRedialLimit = 10
)

type Config struct {
	// MaxRedials is the default redial budget for single-mode dials.
	MaxRedials int
	// BatchSize is the default power batch size (1..MaxBatchSize).
	BatchSize int
}

// Session owns the in-flight call state of one dialing session and appends
// finalized records to the call history.
//
// Invariants:
// - At most one single-mode record is in flight.
// - Every record reaches history exactly once, as a snapshot.
// - Precondition failures are no-ops and report false/0.
type Session struct {
	mu sync.Mutex

	// ops serializes multi-step callers, see Exclusive.
	ops sync.Mutex

	outcomes OutcomeSource
	history  *calls.History
	observer Observer
	log      *slog.Logger

	// Now and NewBatchID are swappable for tests.
	Now        func() time.Time
	NewBatchID func() string

	cfg  Config
	mode calls.Mode

	current *calls.SingleCall
	dialing bool
	redials int
	budget  int

	batch   []calls.PowerCall
	batchID string
}

// Exclusive holds the session for a caller that checks preconditions, takes
// quota and then dials. Other Exclusive callers wait until release is called.
// Session methods stay callable while it is held.
func (s *Session) Exclusive() (release func()) {
	s.ops.Lock()
	return s.ops.Unlock
}

type Option func(*Session)

func WithHistory(h *calls.History) Option { return func(s *Session) { s.history = h } }
func WithObserver(o Observer) Option      { return func(s *Session) { s.observer = o } }
func WithLogger(l *slog.Logger) Option    { return func(s *Session) { s.log = l } }

func NewSession(src OutcomeSource, cfg Config, opts ...Option) *Session {
	if src == nil {
		src = NewWeightedOutcomes(nil, nil)
	}
	cfg.MaxRedials = clamp(cfg.MaxRedials, 0, MaxRedialLimit)
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = MaxBatchSize
	}
	cfg.BatchSize = clamp(cfg.BatchSize, 1, MaxBatchSize)

	s := &Session{
		outcomes:   src,
		cfg:        cfg,
		mode:       calls.ModeSingle,
		Now:        time.Now,
		NewBatchID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = calls.NewHistory()
	}
	if s.observer == nil {
		s.observer = noopObserver{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func (s *Session) Mode() calls.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches dialing mode. It is refused while a single call is in flight.
// Switching to power mode drops a previous (finished) batch.
func (s *Session) SetMode(m calls.Mode) bool {
	if !m.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dialing {
		return false
	}
	if m == calls.ModePower && s.batchComplete() {
		s.batch, s.batchID = nil, ""
	}
	s.mode = m
	return true
}

func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Session) IsDialing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialing
}

// Current returns a snapshot of the latest single-mode record. It stays
// available after finalization until the next dial or Reset.
func (s *Session) Current() (calls.SingleCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return calls.SingleCall{}, false
	}
	return calls.SingleCall{Record: s.current.Record.Clone()}, true
}

// Dial starts a single-mode call to c and makes the first attempt.
// maxRedials < 0 selects the session default.
func (s *Session) Dial(c contacts.Contact, maxRedials int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != calls.ModeSingle || s.dialing || c.Phone == "" {
		return false
	}
	if maxRedials < 0 {
		maxRedials = s.cfg.MaxRedials
	}

	s.current = &calls.SingleCall{Record: calls.Record{
		Contact:   c.Clone(),
		StartTime: s.Now(),
		Status:    calls.Status{State: calls.StateDialing},
	}}
	s.dialing = true
	s.redials = 0
	s.budget = clamp(maxRedials, 0, MaxRedialLimit)

	s.log.Info("dial started", "contact_id", c.ID, "max_redials", s.budget)
	s.attemptSingle()
	return true
}

// Redial makes the next attempt of a call that is waiting in redialing state.
func (s *Session) Redial() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dialing || s.current == nil || s.current.Status.State != calls.StateRedialing {
		return false
	}
	s.attemptSingle()
	return true
}

// EndCall hangs up the in-flight single call, finalizing it as failed.
func (s *Session) EndCall() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dialing || s.current == nil {
		return false
	}
	s.current.Status = calls.Status{State: calls.StateFailed}
	s.finalizeSingle()
	s.log.Info("call ended by operator", "contact_id", s.current.Contact.ID)
	return true
}

func (s *Session) attemptSingle() {
	rec := s.current
	outcome := s.outcomes.Next()
	rec.Attempts = append(rec.Attempts, calls.Attempt{
		Time:   s.Now(),
		Number: rec.Contact.Phone,
		Result: outcome,
	})
	s.observer.AttemptMade(calls.ModeSingle, outcome)
	s.log.Debug("dial attempt", "contact_id", rec.Contact.ID, "attempt", len(rec.Attempts), "result", outcome)

	switch {
	case outcome == calls.OutcomeAnswered:
		rec.Answered = true
		rec.Status = calls.Status{State: calls.StateAnswered}
		s.finalizeSingle()
	case s.redials < s.budget:
		s.redials++
		rec.Status = calls.Status{State: calls.StateRedialing, Redial: s.redials, MaxRedials: s.budget}
	default:
		rec.Status = calls.Status{State: calls.StateFailed}
		s.finalizeSingle()
	}
}

func (s *Session) finalizeSingle() {
	s.current.Finalize(s.Now())
	s.dialing = false
	s.history.Append(*s.current)
	s.observer.CallFinalized(calls.Snapshot(*s.current))
	s.log.Info("call finalized",
		"mode", calls.ModeSingle,
		"contact_id", s.current.Contact.ID,
		"status", s.current.Status.String(),
		"attempts", len(s.current.Attempts),
	)
}

// DialBatch rings up to BatchSize contacts in power mode, one attempt each.
// Members finalize into history one by one. It returns the number dialed.
func (s *Session) DialBatch(list []contacts.Contact) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != calls.ModePower || !s.batchComplete() {
		return 0
	}

	targets := make([]contacts.Contact, 0, s.cfg.BatchSize)
	for _, c := range list {
		if len(targets) == s.cfg.BatchSize {
			break
		}
		if c.Phone != "" {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 {
		return 0
	}

	s.batchID = s.NewBatchID()
	s.batch = make([]calls.PowerCall, len(targets))
	start := s.Now()
	for i, c := range targets {
		s.batch[i] = calls.PowerCall{
			Record: calls.Record{
				Contact:   c.Clone(),
				StartTime: start,
				Status:    calls.Status{State: calls.StateDialing},
			},
			CallID:  fmt.Sprintf("power_%d", i),
			BatchID: s.batchID,
		}
	}

	answered := 0
	for i := range s.batch {
		m := &s.batch[i]
		outcome := s.outcomes.Next()
		m.Attempts = append(m.Attempts, calls.Attempt{Time: s.Now(), Number: m.Contact.Phone, Result: outcome})
		s.observer.AttemptMade(calls.ModePower, outcome)

		if outcome == calls.OutcomeAnswered {
			m.Answered = true
			m.Status = calls.Status{State: calls.StateAnswered}
			answered++
		} else {
			m.Status = calls.Status{State: calls.StateFailed}
		}
		m.Finalize(s.Now())
		s.history.Append(*m)
		s.observer.CallFinalized(calls.Snapshot(*m))
	}

	s.log.Info("power batch dialed", "batch_id", s.batchID, "size", len(s.batch), "answered", answered)
	return len(s.batch)
}

// batchComplete reports whether no batch member is still dialing.
func (s *Session) batchComplete() bool {
	for _, m := range s.batch {
		if !m.Status.State.Terminal() {
			return false
		}
	}
	return true
}

// ActiveBatch returns members of the current batch still in flight.
func (s *Session) ActiveBatch() []calls.PowerCall {
	return s.batchMembers(false)
}

// CompletedBatch returns members of the current batch that reached a terminal state.
func (s *Session) CompletedBatch() []calls.PowerCall {
	return s.batchMembers(true)
}

func (s *Session) batchMembers(terminal bool) []calls.PowerCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.membersLocked(terminal)
}

func (s *Session) membersLocked(terminal bool) []calls.PowerCall {
	out := make([]calls.PowerCall, 0, len(s.batch))
	for _, m := range s.batch {
		if m.Status.State.Terminal() == terminal {
			out = append(out, calls.Snapshot(m).(calls.PowerCall))
		}
	}
	return out
}

// BatchID identifies the current batch, or "" when there is none.
func (s *Session) BatchID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchID
}

// ClearBatch drops the current batch once every member has finished.
func (s *Session) ClearBatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batch) == 0 || !s.batchComplete() {
		return false
	}
	s.batch, s.batchID = nil, ""
	return true
}

// Reset clears all in-flight state. History is left untouched.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.dialing = false
	s.redials = 0
	s.budget = 0
	s.batch, s.batchID = nil, ""
	s.log.Info("dialer reset")
}

// History returns copies of every finalized record in insertion order.
func (s *Session) History() []calls.CallRecord {
	return s.history.All()
}

func (s *Session) Stats() reporting.CallStats {
	return reporting.Summarize(s.history.All())
}

// View is a read-only picture of the session for display.
type View struct {
	Mode       calls.Mode        `json:"mode"`
	IsDialing  bool              `json:"is_dialing"`
	MaxRedials int               `json:"max_redials"`
	BatchSize  int               `json:"batch_size"`
	Current    *calls.SingleCall `json:"current"`
	BatchID    string            `json:"batch_id,omitempty"`
	InFlight   []calls.PowerCall `json:"in_flight"`
	Completed  []calls.PowerCall `json:"completed"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Mode:       s.mode,
		IsDialing:  s.dialing,
		MaxRedials: s.cfg.MaxRedials,
		BatchSize:  s.cfg.BatchSize,
		BatchID:    s.batchID,
		InFlight:   s.membersLocked(false),
		Completed:  s.membersLocked(true),
	}
	if s.current != nil {
		cur := calls.SingleCall{Record: s.current.Record.Clone()}
		v.Current = &cur
	}
	return v
}
