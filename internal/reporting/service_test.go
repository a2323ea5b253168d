package reporting

import (
	"context"
	"testing"
	"time"

	"autodialer/internal/calls"
	"autodialer/internal/contacts"
)

func finalized(start time.Time, secs int, answered bool, results ...calls.Outcome) calls.Record {
	end := start.Add(time.Duration(secs) * time.Second)
	r := calls.Record{
		Contact:   contacts.Contact{ID: 1, Phone: "+15551234567"},
		StartTime: start,
		Answered:  answered,
		Status:    calls.Status{State: calls.StateFailed},
	}
	if answered {
		r.Status.State = calls.StateAnswered
	}
	for _, o := range results {
		r.Attempts = append(r.Attempts, calls.Attempt{Time: start, Number: r.Contact.Phone, Result: o})
	}
	r.Finalize(end)
	return r
}

func TestSummarize_EmptyHistory(t *testing.T) {
	got := Summarize(nil)
	if got != (CallStats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestReporting_CallStats(t *testing.T) {
	h := calls.NewHistory()
	now := time.Unix(1700000000, 0).UTC()
	h.Append(calls.SingleCall{Record: finalized(now, 4, true, calls.OutcomeAnswered)})
	h.Append(calls.SingleCall{Record: finalized(now, 2, false, calls.OutcomeBusy, calls.OutcomeNoAnswer)})
	h.Append(calls.PowerCall{Record: finalized(now, 0, false, calls.OutcomeFailed), CallID: "power_0"})
	h.Append(calls.PowerCall{Record: finalized(now, 6, true, calls.OutcomeAnswered), CallID: "power_1"})

	svc := NewService(NewHistoryRepo(h))

	out, err := svc.CallStats(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 4 || out.AnsweredCalls != 2 {
		t.Fatalf("unexpected stats: %+v", out)
	}
	if out.SuccessRate != 50 {
		t.Fatalf("expected 50%% success, got %v", out.SuccessRate)
	}
	if out.AverageDuration != 3 {
		t.Fatalf("expected 3s average, got %v", out.AverageDuration)
	}

	power, err := svc.CallStats(context.Background(), Filter{Mode: calls.ModePower})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if power.TotalCalls != 2 || power.AnsweredCalls != 1 {
		t.Fatalf("unexpected power stats: %+v", power)
	}

	if _, err := svc.CallStats(context.Background(), Filter{Mode: "predictive"}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestReporting_DashboardBuckets(t *testing.T) {
	h := calls.NewHistory()
	base := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	h.Append(calls.SingleCall{Record: finalized(base.Add(2*time.Hour), 1, false, calls.OutcomeBusy, calls.OutcomeBusy)})
	h.Append(calls.SingleCall{Record: finalized(base, 1, true, calls.OutcomeNoAnswer, calls.OutcomeAnswered)})
	h.Append(calls.SingleCall{Record: finalized(base.Add(10*time.Minute), 1, true, calls.OutcomeAnswered)})

	d, err := NewService(NewHistoryRepo(h)).Dashboard(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(d.HourlyVolume) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", d.HourlyVolume)
	}
	if d.HourlyVolume[0] != (HourBucket{Hour: "09:00", Calls: 2}) || d.HourlyVolume[1] != (HourBucket{Hour: "11:00", Calls: 1}) {
		t.Fatalf("unexpected buckets: %+v", d.HourlyVolume)
	}

	want := []OutcomeCount{
		{Outcome: calls.OutcomeAnswered, Attempts: 2},
		{Outcome: calls.OutcomeNoAnswer, Attempts: 1},
		{Outcome: calls.OutcomeBusy, Attempts: 2},
		{Outcome: calls.OutcomeFailed, Attempts: 0},
	}
	if len(d.Outcomes) != len(want) {
		t.Fatalf("unexpected outcomes: %+v", d.Outcomes)
	}
	for i := range want {
		if d.Outcomes[i] != want[i] {
			t.Fatalf("outcome %d: expected %+v, got %+v", i, want[i], d.Outcomes[i])
		}
	}
}

func TestReporting_RecentNewestFirst(t *testing.T) {
	h := calls.NewHistory()
	now := time.Unix(1700000000, 0).UTC()
	for i := 1; i <= 3; i++ {
		r := finalized(now, i, false, calls.OutcomeBusy)
		r.Contact.ID = i
		h.Append(calls.SingleCall{Record: r})
	}
	svc := NewService(NewHistoryRepo(h))

	got, err := svc.Recent(context.Background(), Filter{}, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0].Base().Contact.ID != 3 || got[1].Base().Contact.ID != 2 {
		t.Fatalf("unexpected order")
	}

	all, err := svc.Recent(context.Background(), Filter{}, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 records, got %d", len(all))
	}

	if _, err := svc.Recent(context.Background(), Filter{}, -1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReporting_RequiresRepository(t *testing.T) {
	if _, err := NewService(nil).CallStats(context.Background(), Filter{}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewService(&HistoryRepo{}).CallStats(context.Background(), Filter{}); err == nil {
		t.Fatalf("expected error")
	}
}
