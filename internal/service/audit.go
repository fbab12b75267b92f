package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultAuditWriteTimeout = 5 * time.Second
	defaultAuditListLimit    = 100
	maxAuditListLimit        = 1000
)

// AuditRecorder appends audit entries. Record never blocks the caller and
// never reports failures to it.
type AuditRecorder interface {
	Record(ctx context.Context, actorID primitive.ObjectID, action domain.AuditAction, details string)
}

// AuditService records and lists audit entries.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, limit int64) ([]domain.AuditLog, error)
	// Flush waits until every pending entry has been written or dropped.
	Flush()
}

type auditService struct {
	repo         repository.AuditLogRepository
	clock        Clock
	writeTimeout time.Duration
	metrics      *metrics.Metrics

	pending sync.WaitGroup
}

func NewAuditService(repo repository.AuditLogRepository, clock Clock, writeTimeout time.Duration, m *metrics.Metrics) AuditService {
	if clock == nil {
		clock = SystemClock
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultAuditWriteTimeout
	}
	return &auditService{
		repo:         repo,
		clock:        clock,
		writeTimeout: writeTimeout,
		metrics:      m,
	}
}

// Record writes the entry in the background. The request context is only
// used for its values: cancellation of the request does not drop the entry.
func (s *auditService) Record(ctx context.Context, actorID primitive.ObjectID, action domain.AuditAction, details string) {
	entry := &domain.AuditLog{
		ID:        primitive.NewObjectID(),
		Timestamp: s.clock(),
		ActorID:   actorID,
		Action:    action,
		Details:   details,
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("WARN: audit: panic while writing %s entry: %v", action, r)
				s.metrics.AuditWrite("error")
			}
		}()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
		defer cancel()

		if err := s.repo.Append(writeCtx, entry); err != nil {
			log.Printf("WARN: audit: failed to record %s by %s: %v", action, actorID.Hex(), err)
			s.metrics.AuditWrite("error")
			return
		}
		s.metrics.AuditWrite("ok")
	}()
}

// List returns the most recent entries, newest first.
func (s *auditService) List(ctx context.Context, limit int64) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	if limit > maxAuditListLimit {
		limit = maxAuditListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *auditService) Flush() {
	s.pending.Wait()
}
