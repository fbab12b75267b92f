package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
)

const logoPrefix = "branding/logo"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// BrandingView is the public branding with a link to the logo.
type BrandingView struct {
	domain.Branding
	LogoURL string `json:"logoUrl,omitempty"`
}

// BrandingPatch changes the gym's look; nil fields are kept. LogoKey must
// be a key returned by RequestLogoUploadURL.
type BrandingPatch struct {
	GymName        *string
	PrimaryColor   *string
	SecondaryColor *string
	LogoKey        *string
}

type BrandingService interface {
	Get(ctx context.Context) (*BrandingView, error)
	Update(ctx context.Context, actor Actor, patch BrandingPatch) (*BrandingView, error)
	RequestLogoUploadURL(ctx context.Context, actor Actor, contentType string) (*UploadTicket, error)
}

type brandingService struct {
	repo          repository.BrandingRepository
	files         storage.FileStorage
	audit         AuditRecorder
	clock         Clock
	presignExpiry time.Duration
}

func NewBrandingService(repo repository.BrandingRepository, files storage.FileStorage, audit AuditRecorder, clock Clock, presignExpiry time.Duration) BrandingService {
	if clock == nil {
		clock = SystemClock
	}
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &brandingService{
		repo:          repo,
		files:         files,
		audit:         audit,
		clock:         clock,
		presignExpiry: presignExpiry,
	}
}

func (s *brandingService) Get(ctx context.Context) (*BrandingView, error) {
	branding, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, branding), nil
}

func (s *brandingService) Update(ctx context.Context, actor Actor, patch BrandingPatch) (*BrandingView, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	branding, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	previousLogo := branding.LogoKey

	if patch.GymName != nil {
		name := strings.TrimSpace(*patch.GymName)
		if name == "" {
			return nil, validationError("gymName cannot be empty")
		}
		branding.GymName = name
	}
	if patch.PrimaryColor != nil {
		if !hexColor.MatchString(*patch.PrimaryColor) {
			return nil, validationError("primaryColor must look like #RRGGBB")
		}
		branding.PrimaryColor = strings.ToUpper(*patch.PrimaryColor)
	}
	if patch.SecondaryColor != nil {
		if !hexColor.MatchString(*patch.SecondaryColor) {
			return nil, validationError("secondaryColor must look like #RRGGBB")
		}
		branding.SecondaryColor = strings.ToUpper(*patch.SecondaryColor)
	}
	if patch.LogoKey != nil {
		if *patch.LogoKey != "" && !strings.HasPrefix(*patch.LogoKey, logoPrefix+"/") {
			return nil, validationError("logoKey was not issued for the gym logo")
		}
		branding.LogoKey = *patch.LogoKey
	}

	branding.UpdatedBy = &actor.ID
	branding.UpdatedAt = s.clock()
	if err := s.repo.Save(ctx, branding); err != nil {
		return nil, err
	}
	if previousLogo != "" && previousLogo != branding.LogoKey {
		if err := s.files.DeleteObject(ctx, previousLogo); err != nil {
			log.Printf("WARN: orphaned logo object %s: %v", previousLogo, err)
		}
	}

	s.audit.Record(ctx, actor.ID, domain.AuditUpdateBranding,
		fmt.Sprintf("gym %q colors %s/%s", branding.GymName, branding.PrimaryColor, branding.SecondaryColor))
	return s.view(ctx, branding), nil
}

func (s *brandingService) RequestLogoUploadURL(ctx context.Context, actor Actor, contentType string) (*UploadTicket, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if err := storage.CheckImageType(contentType); err != nil {
		return nil, validationError("logo must be an image")
	}
	key := storage.NewObjectKey(logoPrefix, contentType)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign logo upload: %w", err)
	}
	return &UploadTicket{UploadURL: url, ObjectKey: key, ExpiresAt: s.clock().Add(s.presignExpiry)}, nil
}

// load returns the stored branding, or the defaults before the first update.
func (s *brandingService) load(ctx context.Context) (*domain.Branding, error) {
	branding, err := s.repo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		b := domain.DefaultBranding()
		return &b, nil
	}
	return branding, err
}

func (s *brandingService) view(ctx context.Context, branding *domain.Branding) *BrandingView {
	v := &BrandingView{Branding: *branding}
	if branding.LogoKey == "" {
		return v
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, branding.LogoKey, s.presignExpiry)
	if err != nil {
		log.Printf("WARN: no logo link: %v", err)
		return v
	}
	v.LogoURL = url
	return v
}
