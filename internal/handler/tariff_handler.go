package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/middleware"
	"github.com/rukapay/routing-engine/internal/service"
)

type TariffHandler struct {
	svc *service.TariffService
}

func NewTariffHandler(svc *service.TariffService) *TariffHandler {
	return &TariffHandler{svc: svc}
}

func (h *TariffHandler) List(c *gin.Context) {
	p := dto.ParsePagination(c)
	tariffs, total, err := h.svc.ListTariffs(c.Request.Context(),
		c.Query("tariffType"), c.Query("transactionType"), c.Query("partnerId"),
		p.PageSize, p.Offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       tariffs,
		"pagination": dto.NewPagination(p.Page, p.PageSize, total),
	})
}

func (h *TariffHandler) Get(c *gin.Context) {
	tariff, err := h.svc.GetTariff(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariff)
}

func (h *TariffHandler) Create(c *gin.Context) {
	var req dto.TariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tariff, err := h.svc.CreateTariff(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tariff)
}

func (h *TariffHandler) Update(c *gin.Context) {
	var req dto.UpdateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tariff, err := h.svc.UpdateTariff(c.Request.Context(), middleware.Actor(c), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariff)
}

func (h *TariffHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteTariff(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
