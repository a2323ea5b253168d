package audit

import (
	"context"
	"testing"
	"time"

	"autodialer/pkg/logger"
)

func TestService_AppendRequiresType(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Append(context.Background(), Event{Message: "x"}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if err := NewService(nil).Append(context.Background(), Event{Type: EventTypeDialerReset}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_StampsIDAndTime(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	fixed := time.Unix(1700000000, 0)
	svc.clock = func() time.Time { return fixed }

	if err := svc.Append(context.Background(), Event{Type: EventTypeDialerReset}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	evs, _ := repo.List(context.Background(), 0)
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].ID == "" {
		t.Fatalf("expected id")
	}
	if !evs[0].CreatedAt.Equal(fixed) {
		t.Fatalf("expected created_at %v, got %v", fixed, evs[0].CreatedAt)
	}
}

func TestService_LogEncodesMetadata(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := logger.WithRequestID(context.Background(), "req-1")

	svc.ContactsImported(ctx, "leads.csv", 2, 1)

	evs, err := svc.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	e := evs[0]
	if e.Type != EventTypeContactsImported {
		t.Fatalf("expected contacts_imported, got %s", e.Type)
	}
	if e.RequestID != "req-1" {
		t.Fatalf("expected request id captured, got %q", e.RequestID)
	}
	if e.Metadata != `{"dropped":1,"filename":"leads.csv","imported":2}` {
		t.Fatalf("unexpected metadata %s", e.Metadata)
	}
}

func TestMemoryRepo_ListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	for _, typ := range []EventType{EventTypeCampaignStarted, EventTypeCampaignPaused, EventTypeCampaignCompleted} {
		svc.Log(ctx, typ, string(typ), nil)
	}

	evs, _ := svc.Recent(ctx, 2)
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Type != EventTypeCampaignCompleted || evs[1].Type != EventTypeCampaignPaused {
		t.Fatalf("unexpected order: %s, %s", evs[0].Type, evs[1].Type)
	}
	if evs[0].Metadata != "" {
		t.Fatalf("expected empty metadata")
	}

	// Listing hands out copies.
	evs[0].Message = "changed"
	again, _ := svc.Recent(ctx, 1)
	if again[0].Message != string(EventTypeCampaignCompleted) {
		t.Fatalf("repo aliased listed events")
	}
}
