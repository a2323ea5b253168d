package campaign

import (
	"errors"
	"sync"

	"autodialer/internal/calls"
	"autodialer/internal/contacts"
	"autodialer/internal/dialer"
)

var (
	ErrNoContacts = errors.New("campaign: no contacts loaded")
	ErrNotRunning = errors.New("campaign: not running")
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Action is what one Step did (or would do).
type Action string

const (
	ActionNone     Action = "none"
	ActionDial     Action = "dial"
	ActionRedial   Action = "redial"
	ActionAdvance  Action = "advance"
	ActionComplete Action = "complete"
	ActionBlocked  Action = "blocked"
)

// Dials reports whether the action rings a phone.
func (a Action) Dials() bool { return a == ActionDial || a == ActionRedial }

type Progress struct {
	Position int     `json:"position"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
	Status   Status  `json:"status"`
}

type StepResult struct {
	Action   Action            `json:"action"`
	Contact  *contacts.Contact `json:"contact,omitempty"`
	Progress Progress          `json:"progress"`
}

// Campaign walks the imported contact list in order, one contact at a time.
type Campaign struct {
	mu sync.Mutex

	list       []contacts.Contact
	mapping    contacts.FieldMapping
	sourceRows int

	cursor int
	// dialed is set once the contact under the cursor has been dialed.
	dialed bool
	status Status
}

func New() *Campaign { return &Campaign{status: StatusIdle} }

// Load replaces the contact list wholesale and rewinds the campaign.
func (c *Campaign) Load(res contacts.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append([]contacts.Contact(nil), res.Contacts...)
	c.mapping = res.Mapping
	c.sourceRows = res.SourceRows
	c.cursor = 0
	c.dialed = false
	c.status = StatusIdle
}

func (c *Campaign) Contacts() []contacts.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]contacts.Contact(nil), c.list...)
}

func (c *Campaign) Mapping() contacts.FieldMapping {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapping
}

// Dropped is the number of source rows rejected at import.
func (c *Campaign) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sourceRows - len(c.list)
}

func (c *Campaign) Find(id int) (contacts.Contact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ct := range c.list {
		if ct.ID == id {
			return ct, true
		}
	}
	return contacts.Contact{}, false
}

// Current returns the contact under the cursor.
func (c *Campaign) Current() (contacts.Contact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Campaign) currentLocked() (contacts.Contact, bool) {
	if c.cursor < 0 || c.cursor >= len(c.list) {
		return contacts.Contact{}, false
	}
	return c.list[c.cursor], true
}

func (c *Campaign) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

func (c *Campaign) progressLocked() Progress {
	p := Progress{Total: len(c.list), Status: c.status}
	if p.Total == 0 {
		return p
	}
	p.Position = min(c.cursor+1, p.Total)
	if c.status == StatusCompleted {
		p.Position = p.Total
	}
	p.Percent = float64(p.Position) / float64(p.Total) * 100
	return p
}

// Start rewinds to the first contact and marks the campaign running.
func (c *Campaign) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.list) == 0 {
		return ErrNoContacts
	}
	c.cursor = 0
	c.dialed = false
	c.status = StatusRunning
	return nil
}

func (c *Campaign) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusRunning {
		return ErrNotRunning
	}
	c.status = StatusPaused
	return nil
}

// Skip moves to the next contact. It does nothing on the last contact.
func (c *Campaign) Skip() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cursor >= len(c.list)-1 {
		return false
	}
	c.cursor++
	c.dialed = false
	return true
}

// PeekBatch returns up to n contacts from the cursor without moving it.
func (c *Campaign) PeekBatch(n int) []contacts.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 || c.cursor >= len(c.list) {
		return nil
	}
	end := min(c.cursor+n, len(c.list))
	return append([]contacts.Contact(nil), c.list[c.cursor:end]...)
}

// NextBatch hands out up to n contacts from the cursor and moves past them.
// A running campaign completes when the list is exhausted.
func (c *Campaign) NextBatch(n int) []contacts.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 || c.cursor >= len(c.list) {
		return nil
	}
	end := min(c.cursor+n, len(c.list))
	out := append([]contacts.Contact(nil), c.list[c.cursor:end]...)
	c.cursor = end
	c.dialed = false
	if c.cursor >= len(c.list) && c.status == StatusRunning {
		c.status = StatusCompleted
	}
	return out
}

// NextAction reports what Step would do now, without doing it.
func (c *Campaign) NextAction(s *dialer.Session) Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextActionLocked(s)
}

func (c *Campaign) nextActionLocked(s *dialer.Session) Action {
	if c.status != StatusRunning {
		return ActionNone
	}
	if s.IsDialing() {
		if cur, ok := s.Current(); ok && cur.Status.State == calls.StateRedialing {
			return ActionRedial
		}
		return ActionBlocked
	}
	if !c.dialed {
		if s.Mode() != calls.ModeSingle {
			return ActionBlocked
		}
		return ActionDial
	}
	if c.cursor >= len(c.list)-1 {
		return ActionComplete
	}
	return ActionAdvance
}

// Step performs one auto-dial tick against s: dial the current contact when
// idle, redial while the call is redialing, advance once it is terminal, and
// complete after the last contact.
func (c *Campaign) Step(s *dialer.Session, maxRedials int) StepResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	action := c.nextActionLocked(s)
	switch action {
	case ActionDial:
		cur, _ := c.currentLocked()
		if s.Dial(cur, maxRedials) {
			c.dialed = true
		} else {
			action = ActionBlocked
		}
	case ActionRedial:
		if !s.Redial() {
			action = ActionBlocked
		}
	case ActionAdvance:
		c.cursor++
		c.dialed = false
	case ActionComplete:
		c.status = StatusCompleted
	}

	res := StepResult{Action: action, Progress: c.progressLocked()}
	if cur, ok := c.currentLocked(); ok {
		res.Contact = &cur
	}
	return res
}
