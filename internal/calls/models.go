package calls

import (
	"encoding/json"
	"fmt"
	"time"

	"autodialer/internal/contacts"
)

// Outcome is the result tag of one simulated ring.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeNoAnswer Outcome = "no_answer"
	OutcomeBusy     Outcome = "busy"
	OutcomeFailed   Outcome = "failed"
)

// Outcomes lists every outcome tag in display order.
var Outcomes = []Outcome{OutcomeAnswered, OutcomeNoAnswer, OutcomeBusy, OutcomeFailed}

// Mode is the dialing mode that produced a call record.
type Mode string

const (
	ModeSingle Mode = "single"
	ModePower  Mode = "power"
)

func (m Mode) Valid() bool { return m == ModeSingle || m == ModePower }

// State is the lifecycle position of a call record.
type State string

const (
	StateDialing   State = "dialing"
	StateRedialing State = "redialing"
	StateAnswered  State = "answered"
	StateFailed    State = "failed"
)

// Terminal reports whether no further attempts can happen.
func (s State) Terminal() bool { return s == StateAnswered || s == StateFailed }

// Status is a State plus the redial position when redialing.
// It renders as "dialing", "answered", "failed" or "redialing (k/max)".
type Status struct {
	State      State
	Redial     int
	MaxRedials int
}

func (s Status) String() string {
	if s.State == StateRedialing {
		return fmt.Sprintf("redialing (%d/%d)", s.Redial, s.MaxRedials)
	}
	return string(s.State)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Attempt is one simulated ring of a contact.
type Attempt struct {
	Time   time.Time `json:"time"`
	Number string    `json:"number"`
	Result Outcome   `json:"result"`
}

// Record is the shape shared by single and power call records.
//
// Records are mutable only while in flight inside the dialer. Finalized copies
// handed to history never alias in-flight state (see Clone).
type Record struct {
	Contact   contacts.Contact `json:"contact"`
	StartTime time.Time        `json:"start_time"`
	EndTime   *time.Time       `json:"end_time,omitempty"`

	// Duration is wall-clock seconds from start to finalize.
	Duration float64 `json:"duration"`

	Status   Status    `json:"status"`
	Attempts []Attempt `json:"attempts"`
	Answered bool      `json:"answered"`
}

// Clone returns a deep copy of the mutable parts of r.
func (r Record) Clone() Record {
	out := r
	out.Contact = r.Contact.Clone()
	if r.EndTime != nil {
		t := *r.EndTime
		out.EndTime = &t
	}
	out.Attempts = append([]Attempt(nil), r.Attempts...)
	return out
}

// Finalize stamps the end time and duration.
func (r *Record) Finalize(end time.Time) {
	r.EndTime = &end
	r.Duration = end.Sub(r.StartTime).Seconds()
}

// CallRecord is either a SingleCall or a PowerCall value.
type CallRecord interface {
	Mode() Mode
	Base() Record
	snapshot() CallRecord
}

// SingleCall is a record produced by single-mode dialing.
type SingleCall struct {
	Record
}

func (c SingleCall) Mode() Mode   { return ModeSingle }
func (c SingleCall) Base() Record { return c.Record }

func (c SingleCall) snapshot() CallRecord { return SingleCall{Record: c.Record.Clone()} }

func (c SingleCall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Record
		Mode Mode `json:"mode"`
	}{c.Record, ModeSingle})
}

// PowerCall is one member of a power-mode batch.
type PowerCall struct {
	Record

	// CallID disambiguates members of one batch ("power_0" .. "power_9").
	CallID  string `json:"call_id"`
	BatchID string `json:"batch_id"`
}

func (c PowerCall) Mode() Mode   { return ModePower }
func (c PowerCall) Base() Record { return c.Record }

func (c PowerCall) snapshot() CallRecord {
	return PowerCall{Record: c.Record.Clone(), CallID: c.CallID, BatchID: c.BatchID}
}

func (c PowerCall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Record
		CallID  string `json:"call_id"`
		BatchID string `json:"batch_id"`
		Mode    Mode   `json:"mode"`
	}{c.Record, c.CallID, c.BatchID, ModePower})
}

// Snapshot returns an independent copy of rec.
func Snapshot(rec CallRecord) CallRecord {
	if rec == nil {
		return nil
	}
	return rec.snapshot()
}
