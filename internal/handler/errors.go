package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/middleware"
	"github.com/rukapay/routing-engine/internal/service"
)

// respondServiceError maps domain errors onto HTTP responses. Resolution
// failures are unprocessable rather than bad requests: the request was well
// formed, the configuration cannot serve it.
func respondServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		fields := make([]dto.ValidationError, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = dto.ValidationError{Field: f.Field, Message: f.Message}
		}
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error:  "validation failed",
			Code:   "VALIDATION_ERROR",
			Errors: fields,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrUnmapped):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorListResponse{
			Error: err.Error(), Code: "UNMAPPED",
		})
	case errors.Is(err, service.ErrNoApplicableTariff):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorListResponse{
			Error: err.Error(), Code: "NO_APPLICABLE_TARIFF",
		})
	case errors.Is(err, service.ErrPartnerUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorListResponse{
			Error: err.Error(), Code: "PARTNER_UNAVAILABLE",
		})
	case errors.Is(err, service.ErrConcurrentModification):
		c.JSON(http.StatusConflict, dto.ErrorListResponse{
			Error: err.Error(), Code: "CONCURRENT_MODIFICATION",
		})
	default:
		status, resp := middleware.MapDBError(err)
		c.JSON(status, dto.ErrorListResponse{Error: resp.Error})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
		Error: "validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}
