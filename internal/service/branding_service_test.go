package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/storage"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranding_DefaultsUntilUpdated(t *testing.T) {
	f := newFixture(t)
	branding := NewBrandingService(f.store.Branding, storage.NewMemoryStorage(""), f.audit, f.clock.Now, 0)

	got, err := branding.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBranding().GymName, got.GymName)
	assert.Empty(t, got.LogoURL)
}

func TestBranding_Update(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	coach := f.addUser(t, "coach", domain.RoleCoach, time.Time{})
	files := storage.NewMemoryStorage("http://media.test")
	branding := NewBrandingService(f.store.Branding, files, f.audit, f.clock.Now, 0)
	ctx := context.Background()

	_, err := branding.Update(ctx, actorOf(coach), BrandingPatch{GymName: strPtr("Iron Temple")})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = branding.Update(ctx, actorOf(admin), BrandingPatch{PrimaryColor: strPtr("red")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = branding.Update(ctx, actorOf(admin), BrandingPatch{LogoKey: strPtr("exercises/abc/x.png")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = branding.RequestLogoUploadURL(ctx, actorOf(admin), "video/mp4")
	assert.ErrorIs(t, err, ErrValidation)
	ticket, err := branding.RequestLogoUploadURL(ctx, actorOf(admin), "image/png")
	require.NoError(t, err)

	updated, err := branding.Update(ctx, actorOf(admin), BrandingPatch{
		GymName:      strPtr("Iron Temple"),
		PrimaryColor: strPtr("#ff0000"),
		LogoKey:      &ticket.ObjectKey,
	})
	require.NoError(t, err)
	assert.Equal(t, "Iron Temple", updated.GymName)
	assert.Equal(t, "#FF0000", updated.PrimaryColor)
	assert.Equal(t, domain.DefaultBranding().SecondaryColor, updated.SecondaryColor)
	assert.Contains(t, updated.LogoURL, ticket.ObjectKey)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, admin.ID, *updated.UpdatedBy)

	public, err := branding.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Iron Temple", public.GymName)

	// replacing the logo drops the old object
	next, err := branding.RequestLogoUploadURL(ctx, actorOf(admin), "image/png")
	require.NoError(t, err)
	_, err = branding.Update(ctx, actorOf(admin), BrandingPatch{LogoKey: &next.ObjectKey})
	require.NoError(t, err)
	assert.Equal(t, []string{ticket.ObjectKey}, files.Deleted())

	assert.Equal(t, []domain.AuditAction{domain.AuditUpdateBranding, domain.AuditUpdateBranding}, f.auditActions(t))
}
