package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/repository"
)

type AuditHandler struct {
	repo *repository.AuditRepository
}

func NewAuditHandler(repo *repository.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

func (h *AuditHandler) List(c *gin.Context) {
	p := dto.ParsePagination(c)
	events, total, err := h.repo.List(c.Request.Context(),
		c.Query("entityType"), c.Query("actor"), p.PageSize, p.Offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       events,
		"pagination": dto.NewPagination(p.Page, p.PageSize, total),
	})
}
