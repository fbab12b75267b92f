package api

import (
	"alcyxob/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type BrandingHandler struct {
	brandingService service.BrandingService
}

func NewBrandingHandler(brandingService service.BrandingService) *BrandingHandler {
	return &BrandingHandler{brandingService: brandingService}
}

type UpdateBrandingRequest struct {
	GymName        *string `json:"gymName"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	LogoKey        *string `json:"logoKey"`
}

type LogoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// GetBranding is public: the login screen needs it.
func (h *BrandingHandler) GetBranding(c *gin.Context) {
	branding, err := h.brandingService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branding)
}

func (h *BrandingHandler) UpdateBranding(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req UpdateBrandingRequest
	if !bindJSON(c, &req) {
		return
	}

	branding, err := h.brandingService.Update(c.Request.Context(), actor, service.BrandingPatch{
		GymName:        req.GymName,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		LogoKey:        req.LogoKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branding)
}

func (h *BrandingHandler) RequestLogoUploadURL(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req LogoUploadURLRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.brandingService.RequestLogoUploadURL(c.Request.Context(), actor, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
