package dto

import (
	"time"

	"github.com/rukapay/routing-engine/internal/model"
)

// MappingResponse is a mapping row joined with its resolved partner details.
type MappingResponse struct {
	ID              string                `json:"id"`
	TransactionType model.TransactionType `json:"transaction_type"`
	Region          string                `json:"region"`
	Network         *string               `json:"network,omitempty"`
	Priority        int                   `json:"priority"`
	IsActive        bool                  `json:"is_active"`
	Partner         *model.Partner        `json:"partner"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type SwitchPartnerResponse struct {
	Mapping      *model.PartnerMapping `json:"mapping"`
	AuditEventID string                `json:"audit_event_id"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorListResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}
