package memory

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"sync"
)

type BrandingRepository struct {
	mu       sync.RWMutex
	branding *domain.Branding
}

func NewBrandingRepository() *BrandingRepository {
	return &BrandingRepository{}
}

func (r *BrandingRepository) Get(ctx context.Context) (*domain.Branding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.branding == nil {
		return nil, repository.ErrNotFound
	}
	b := *r.branding
	return &b, nil
}

func (r *BrandingRepository) Save(ctx context.Context, branding *domain.Branding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	branding.ID = domain.BrandingDocumentID
	b := *branding
	r.branding = &b
	return nil
}
