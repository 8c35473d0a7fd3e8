package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Partner is an external entity (bank, MNO aggregator, gateway) able to
// execute transactions. The engine only reads partners; the roster is owned
// by the partner-management service.
type Partner struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Kind               PartnerKind     `json:"kind"`
	IsActive           bool            `json:"is_active"`
	IsSuspended        bool            `json:"is_suspended"`
	SupportedServices  []string        `json:"supported_services"`
	GeographicRegions  []string        `json:"geographic_regions"`
	CostPerTransaction decimal.Decimal `json:"cost_per_transaction"`
	Priority           int             `json:"priority"`
	FailoverPriority   int             `json:"failover_priority"`
	SuccessRate        decimal.Decimal `json:"success_rate"`
	AvgResponseTimeMs  int             `json:"avg_response_time_ms"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Available reports whether the partner may currently execute transactions.
func (p *Partner) Available() bool {
	return p.IsActive && !p.IsSuspended
}

// PartnerMapping binds a routing key to the partner responsible for it.
// Network is set only for MNO-class transaction types.
type PartnerMapping struct {
	ID              string          `json:"id"`
	TransactionType TransactionType `json:"transaction_type"`
	Region          string          `json:"region"`
	Network         *string         `json:"network,omitempty"`
	PartnerID       string          `json:"partner_id"`
	Priority        int             `json:"priority"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Tariff is a fee-structure definition applied to transactions matching its
// scope. For EXTERNAL tariffs with a fixed component, FeeAmount is derived:
// PartnerFee + RukapayFee + TelecomBankCharge, recomputed on every write.
type Tariff struct {
	ID                string              `json:"id"`
	TariffType        TariffType          `json:"tariff_type"`
	TransactionType   TransactionType     `json:"transaction_type"`
	TransactionModeID *string             `json:"transaction_mode_id,omitempty"`
	FeeType           FeeType             `json:"fee_type"`
	FeeAmount         decimal.Decimal     `json:"fee_amount"`
	FeePercentage     decimal.Decimal     `json:"fee_percentage"`
	MinAmount         decimal.NullDecimal `json:"min_amount,omitempty"`
	MaxAmount         decimal.NullDecimal `json:"max_amount,omitempty"`
	Currency          string              `json:"currency"`
	UserType          *string             `json:"user_type,omitempty"`
	SubscriberType    *string             `json:"subscriber_type,omitempty"`
	Group             *string             `json:"group,omitempty"`
	PartnerID         *string             `json:"partner_id,omitempty"`
	APIPartnerID      *string             `json:"api_partner_id,omitempty"`
	PartnerFee        decimal.Decimal     `json:"partner_fee"`
	RukapayFee        decimal.Decimal     `json:"rukapay_fee"`
	TelecomBankCharge decimal.Decimal     `json:"telecom_bank_charge"`
	GovernmentTax     decimal.NullDecimal `json:"government_tax,omitempty"`
	Version           int                 `json:"version"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// HasFeeSplit reports whether the tariff carries decomposed external cost
// fields. When it does, the fee components of a settlement come from the
// split rather than the flat fee. The split only exists for EXTERNAL
// tariffs; INTERNAL rows settle on their fee amount regardless of what the
// split columns hold.
func (t *Tariff) HasFeeSplit() bool {
	if t.TariffType != TariffExternal {
		return false
	}
	return t.PartnerFee.IsPositive() || t.RukapayFee.IsPositive() || t.TelecomBankCharge.IsPositive()
}

// AmountWindowWidth is MaxAmount - MinAmount with open bounds treated as
// infinite; ok is false when either bound is open.
func (t *Tariff) AmountWindowWidth() (decimal.Decimal, bool) {
	if !t.MinAmount.Valid || !t.MaxAmount.Valid {
		return decimal.Zero, false
	}
	return t.MaxAmount.Decimal.Sub(t.MinAmount.Decimal), true
}

// AuditEvent records an admin mutation for attribution. IDs are ULIDs so
// events sort by creation time.
type AuditEvent struct {
	ID           string          `json:"id"`
	Actor        string          `json:"actor"`
	Action       string          `json:"action"`
	EntityType   string          `json:"entity_type"`
	EntityID     string          `json:"entity_id"`
	OldPartnerID *string         `json:"old_partner_id,omitempty"`
	NewPartnerID *string         `json:"new_partner_id,omitempty"`
	Reason       *string         `json:"reason,omitempty"`
	Detail       map[string]any  `json:"detail,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RouteDecision is the outcome of partner resolution for a routing key.
type RouteDecision struct {
	Primary       *Partner   `json:"primary"`
	FailoverChain []*Partner `json:"failover_chain"`
	Degraded      bool       `json:"degraded"`
	DegradedNote  string     `json:"degraded_note,omitempty"`
}

// FeeComponents is the structured fee breakdown of a settlement. Components
// the tariff does not populate stay zero.
type FeeComponents struct {
	RukapayFee    decimal.Decimal `json:"rukapay_fee"`
	ThirdPartyFee decimal.Decimal `json:"third_party_fee"`
	GovernmentTax decimal.Decimal `json:"government_tax"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	NetworkFee    decimal.Decimal `json:"network_fee"`
	ComplianceFee decimal.Decimal `json:"compliance_fee"`
}

// Sum adds every component.
func (f FeeComponents) Sum() decimal.Decimal {
	return f.RukapayFee.
		Add(f.ThirdPartyFee).
		Add(f.GovernmentTax).
		Add(f.ProcessingFee).
		Add(f.NetworkFee).
		Add(f.ComplianceFee)
}

// Populated reports whether any structured component is non-zero.
func (f FeeComponents) Populated() bool {
	return !f.Sum().IsZero()
}

// SettlementResult is the computed fee breakdown and net amount for one
// transaction leg.
type SettlementResult struct {
	PartnerID     string          `json:"partner_id,omitempty"`
	TariffID      string          `json:"tariff_id"`
	FeeComponents FeeComponents   `json:"fee_components"`
	TotalFee      decimal.Decimal `json:"total_fee"`
	NetAmount     decimal.Decimal `json:"net_amount"`
}
