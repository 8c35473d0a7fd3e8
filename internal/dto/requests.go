package dto

import (
	"github.com/shopspring/decimal"

	"github.com/rukapay/routing-engine/internal/model"
)

type ResolveRouteRequest struct {
	TransactionType model.TransactionType `json:"transaction_type" binding:"required"`
	Region          string                `json:"region" binding:"required"`
	Network         *string               `json:"network"`
}

type CreateMappingRequest struct {
	TransactionType model.TransactionType `json:"transaction_type" binding:"required"`
	Region          string                `json:"region" binding:"required"`
	Network         *string               `json:"network"`
	PartnerID       string                `json:"partner_id" binding:"required,uuid"`
	Priority        int                   `json:"priority"`
}

type SwitchPartnerRequest struct {
	TransactionType  model.TransactionType `json:"transaction_type" binding:"required"`
	Region           string                `json:"region" binding:"required"`
	Network          *string               `json:"network"`
	PrimaryPartnerID string                `json:"primary_partner_id" binding:"required,uuid"`
	Reason           string                `json:"reason"`
}

type TariffRequest struct {
	TariffType        model.TariffType      `json:"tariff_type" binding:"required,oneof=INTERNAL EXTERNAL"`
	TransactionType   model.TransactionType `json:"transaction_type" binding:"required"`
	TransactionModeID *string               `json:"transaction_mode_id"`
	FeeType           model.FeeType         `json:"fee_type" binding:"required,oneof=FIXED PERCENTAGE TIERED HYBRID"`
	FeeAmount         decimal.Decimal       `json:"fee_amount"`
	FeePercentage     decimal.Decimal       `json:"fee_percentage"`
	MinAmount         decimal.NullDecimal   `json:"min_amount"`
	MaxAmount         decimal.NullDecimal   `json:"max_amount"`
	Currency          string                `json:"currency" binding:"required,len=3"`
	UserType          *string               `json:"user_type"`
	SubscriberType    *string               `json:"subscriber_type"`
	Group             *string               `json:"group"`
	PartnerID         *string               `json:"partner_id" binding:"omitempty,uuid"`
	APIPartnerID      *string               `json:"api_partner_id" binding:"omitempty,uuid"`
	PartnerFee        decimal.Decimal       `json:"partner_fee"`
	RukapayFee        decimal.Decimal       `json:"rukapay_fee"`
	TelecomBankCharge decimal.Decimal       `json:"telecom_bank_charge"`
	GovernmentTax     decimal.NullDecimal   `json:"government_tax"`
}

type UpdateTariffRequest struct {
	TariffRequest
	Version int `json:"version" binding:"required,min=1"`
}

type ComputeSettlementRequest struct {
	TransactionType   model.TransactionType `json:"transaction_type" binding:"required"`
	TransactionModeID *string               `json:"transaction_mode_id"`
	TariffType        model.TariffType      `json:"tariff_type" binding:"required,oneof=INTERNAL EXTERNAL"`
	Region            string                `json:"region" binding:"required"`
	Network           *string               `json:"network"`
	Amount            decimal.Decimal       `json:"amount" binding:"required"`
	Direction         model.Direction       `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	PartnerType       *model.PartnerType    `json:"partner_type" binding:"omitempty,oneof=EXTERNAL_PARTNER API_PARTNER"`
}
