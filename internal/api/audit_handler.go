package api

import (
	"alcyxob/gym-manager/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAudit returns the newest entries first. ?limit= defaults to 100.
func (h *AuditHandler) ListAudit(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	entries, err := h.auditService.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
