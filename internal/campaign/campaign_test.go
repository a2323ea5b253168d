package campaign

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"autodialer/internal/calls"
	"autodialer/internal/contacts"
	"autodialer/internal/dialer"
)

func loaded(n int) *Campaign {
	res := contacts.Result{SourceRows: n + 1, Mapping: contacts.FieldMapping{Phone: "phone"}}
	for i := 1; i <= n; i++ {
		res.Contacts = append(res.Contacts, contacts.Contact{ID: i, Phone: "+1555000000" + string(rune('0'+i)), Name: "n"})
	}
	c := New()
	c.Load(res)
	return c
}

func session(src dialer.OutcomeSource) *dialer.Session {
	return dialer.NewSession(src, dialer.Config{MaxRedials: 1},
		dialer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestLoad(t *testing.T) {
	c := loaded(3)
	require.Len(t, c.Contacts(), 3)
	require.Equal(t, 1, c.Dropped())
	require.Equal(t, "phone", c.Mapping().Phone)

	ct, ok := c.Find(2)
	require.True(t, ok)
	require.Equal(t, 2, ct.ID)
	_, ok = c.Find(42)
	require.False(t, ok)

	p := c.Progress()
	require.Equal(t, 1, p.Position)
	require.Equal(t, 3, p.Total)
	require.Equal(t, StatusIdle, p.Status)
	require.InDelta(t, 33.33, p.Percent, 0.01)
}

func TestStartRequiresContacts(t *testing.T) {
	require.ErrorIs(t, New().Start(), ErrNoContacts)
	require.ErrorIs(t, New().Pause(), ErrNotRunning)
}

func TestSkipStopsAtLastContact(t *testing.T) {
	c := loaded(2)
	require.True(t, c.Skip())
	require.False(t, c.Skip())
	cur, ok := c.Current()
	require.True(t, ok)
	require.Equal(t, 2, cur.ID)
}

func TestNextBatch(t *testing.T) {
	c := loaded(5)
	require.NoError(t, c.Start())

	require.Len(t, c.PeekBatch(3), 3)
	require.Equal(t, 1, c.Progress().Position, "peek must not move the cursor")

	b := c.NextBatch(3)
	require.Len(t, b, 3)
	require.Equal(t, 1, b[0].ID)
	require.Equal(t, StatusRunning, c.Progress().Status)

	b = c.NextBatch(3)
	require.Len(t, b, 2)
	require.Equal(t, 4, b[0].ID)
	require.Equal(t, StatusCompleted, c.Progress().Status)
	require.Equal(t, 5, c.Progress().Position)

	require.Empty(t, c.NextBatch(3))
}

func TestStep_WalksTheList(t *testing.T) {
	c := loaded(2)
	s := session(dialer.NewSequence(calls.OutcomeBusy, calls.OutcomeAnswered, calls.OutcomeNoAnswer))

	require.Equal(t, ActionNone, c.Step(s, 1).Action, "idle campaign does nothing")
	require.NoError(t, c.Start())

	// contact 1: busy, then answered on the redial.
	require.Equal(t, ActionDial, c.NextAction(s))
	res := c.Step(s, 1)
	require.Equal(t, ActionDial, res.Action)
	require.Equal(t, 1, res.Contact.ID)
	require.True(t, s.IsDialing())

	require.Equal(t, ActionRedial, c.Step(s, 1).Action)
	require.False(t, s.IsDialing())

	res = c.Step(s, 1)
	require.Equal(t, ActionAdvance, res.Action)
	require.Equal(t, 2, res.Contact.ID)

	// contact 2: no answer twice, budget of one redial.
	require.Equal(t, ActionDial, c.Step(s, 1).Action)
	require.Equal(t, ActionRedial, c.Step(s, 1).Action)

	res = c.Step(s, 1)
	require.Equal(t, ActionComplete, res.Action)
	require.Equal(t, StatusCompleted, res.Progress.Status)
	require.Equal(t, 100.0, res.Progress.Percent)

	require.Equal(t, ActionNone, c.Step(s, 1).Action)

	hist := s.History()
	require.Len(t, hist, 2)
	require.True(t, hist[0].Base().Answered)
	require.False(t, hist[1].Base().Answered)
	require.Len(t, hist[1].Base().Attempts, 2)
}

func TestStep_PauseHolds(t *testing.T) {
	c := loaded(2)
	s := session(dialer.Always(calls.OutcomeNoAnswer))
	require.NoError(t, c.Start())
	require.Equal(t, ActionDial, c.Step(s, 1).Action)

	require.NoError(t, c.Pause())
	require.Equal(t, ActionNone, c.Step(s, 1).Action)
	require.True(t, s.IsDialing())
}

func TestStep_BlockedInPowerMode(t *testing.T) {
	c := loaded(1)
	s := session(dialer.Always(calls.OutcomeAnswered))
	require.True(t, s.SetMode(calls.ModePower))
	require.NoError(t, c.Start())

	require.Equal(t, ActionBlocked, c.Step(s, 1).Action)
	require.Empty(t, s.History())
}
