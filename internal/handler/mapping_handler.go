package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/middleware"
	"github.com/rukapay/routing-engine/internal/model"
	"github.com/rukapay/routing-engine/internal/repository"
	"github.com/rukapay/routing-engine/internal/service"
)

type MappingHandler struct {
	routing *service.RoutingService
}

func NewMappingHandler(routing *service.RoutingService) *MappingHandler {
	return &MappingHandler{routing: routing}
}

func (h *MappingHandler) List(c *gin.Context) {
	rows, err := h.routing.ListMappings(c.Request.Context(),
		c.Query("transactionType"), c.Query("region"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.MappingResponse, len(rows))
	for i, row := range rows {
		out[i] = toMappingResponse(row)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *MappingHandler) Create(c *gin.Context) {
	var req dto.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	key := model.RouteKey{TransactionType: req.TransactionType, Region: req.Region, Network: req.Network}
	mapping, err := h.routing.CreateMapping(c.Request.Context(), middleware.Actor(c), key, req.PartnerID, req.Priority)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

func (h *MappingHandler) Switch(c *gin.Context) {
	var req dto.SwitchPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	key := model.RouteKey{TransactionType: req.TransactionType, Region: req.Region, Network: req.Network}
	mapping, event, err := h.routing.SwitchPartner(c.Request.Context(),
		middleware.Actor(c), key, req.PrimaryPartnerID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SwitchPartnerResponse{
		Mapping:      mapping,
		AuditEventID: event.ID,
	})
}

func (h *MappingHandler) Resolve(c *gin.Context) {
	var req dto.ResolveRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	decision, err := h.routing.ResolvePartner(c.Request.Context(),
		model.RouteKey{TransactionType: req.TransactionType, Region: req.Region, Network: req.Network})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

func toMappingResponse(row repository.MappingRow) dto.MappingResponse {
	partner := row.Partner
	return dto.MappingResponse{
		ID:              row.Mapping.ID,
		TransactionType: row.Mapping.TransactionType,
		Region:          row.Mapping.Region,
		Network:         row.Mapping.Network,
		Priority:        row.Mapping.Priority,
		IsActive:        row.Mapping.IsActive,
		Partner:         &partner,
		CreatedAt:       row.Mapping.CreatedAt,
		UpdatedAt:       row.Mapping.UpdatedAt,
	}
}
