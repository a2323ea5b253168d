package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"autodialer/pkg/logger"
)

// Repository is the persistence contract for activity events.
//
// It MUST be append-only. No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context, limit int) ([]Event, error)
}

// Service records operator-visible activity (imports, campaign lifecycle, resets).
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Log appends an event with metadata encoded as JSON. Failures are logged and
// swallowed.
func (s *Service) Log(ctx context.Context, typ EventType, message string, metadata map[string]any) {
	e := Event{Type: typ, Message: message, RequestID: logger.RequestID(ctx)}
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			logger.From(ctx).Warn("audit metadata encode failed", "type", typ, "err", err)
		} else {
			e.Metadata = string(b)
		}
	}
	if err := s.Append(ctx, e); err != nil {
		logger.From(ctx).Warn("audit append failed", "type", typ, "err", err)
	}
}

func (s *Service) ContactsImported(ctx context.Context, filename string, imported, dropped int) {
	s.Log(ctx, EventTypeContactsImported,
		fmt.Sprintf("imported %d contacts from %s (%d dropped)", imported, filename, dropped),
		map[string]any{"filename": filename, "imported": imported, "dropped": dropped})
}

func (s *Service) PowerBatchDialed(ctx context.Context, batchID string, size int) {
	s.Log(ctx, EventTypePowerBatchDialed,
		fmt.Sprintf("power batch of %d dialed", size),
		map[string]any{"batch_id": batchID, "size": size})
}

// Recent lists the newest events first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	return s.repo.List(ctx, limit)
}
