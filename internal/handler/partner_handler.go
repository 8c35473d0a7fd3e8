package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/model"
	"github.com/rukapay/routing-engine/internal/service"
)

type PartnerHandler struct {
	registry *service.RegistryService
}

func NewPartnerHandler(registry *service.RegistryService) *PartnerHandler {
	return &PartnerHandler{registry: registry}
}

func (h *PartnerHandler) List(c *gin.Context) {
	kind := c.Query("kind")
	region := c.Query("region")
	p := dto.ParsePagination(c)

	partners, total, err := h.registry.ListPartners(c.Request.Context(), kind, region, p.PageSize, p.Offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       partners,
		"pagination": dto.NewPagination(p.Page, p.PageSize, total),
	})
}

func (h *PartnerHandler) Get(c *gin.Context) {
	partner, err := h.registry.GetPartner(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, partner)
}

func (h *PartnerHandler) ListEligible(c *gin.Context) {
	tt := model.TransactionType(c.Query("transactionType"))
	region := c.Query("region")
	if !tt.Valid() || region == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "transactionType and region query parameters are required",
			Code:  "VALIDATION_ERROR",
		})
		return
	}

	partners, err := h.registry.ListEligiblePartners(c.Request.Context(), tt, region)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": partners})
}
