package memory

import (
	"alcyxob/gym-manager/internal/domain"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLogRepository is append-only, like the collection it stands in for.
type AuditLogRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditLog
}

func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

func (r *AuditLogRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == primitive.NilObjectID {
		entry.ID = primitive.NewObjectID()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int64) ([]domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AuditLog, len(r.entries))
	copy(out, r.entries)
	// same order as the mongo index: timestamp, then _id, both descending
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
