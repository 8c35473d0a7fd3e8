package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/model"
)

type SettlementService struct {
	routing *RoutingService
	tariffs *TariffService
}

func NewSettlementService(routing *RoutingService, tariffs *TariffService) *SettlementService {
	return &SettlementService{routing: routing, tariffs: tariffs}
}

// Compute runs the full pipeline for one transaction context: resolve the
// partner (EXTERNAL contexts), resolve the tariff, apply it. No partial
// result is ever produced: a routing or tariff failure aborts the whole call.
func (s *SettlementService) Compute(ctx context.Context, req *dto.ComputeSettlementRequest) (*model.SettlementResult, error) {
	if !req.Amount.IsPositive() {
		return nil, invalidField("amount", "must be greater than zero")
	}

	var partnerID string
	if req.TariffType == model.TariffExternal {
		decision, err := s.routing.ResolvePartner(ctx, model.RouteKey{
			TransactionType: req.TransactionType,
			Region:          req.Region,
			Network:         req.Network,
		})
		if err != nil {
			return nil, err
		}
		partnerID = decision.Primary.ID
	} else if !req.TransactionType.Valid() {
		return nil, invalidField("transaction_type", "unknown transaction type")
	}

	var partnerType model.PartnerType
	if req.PartnerType != nil {
		partnerType = *req.PartnerType
	}

	tariff, err := s.tariffs.ResolveTariff(ctx, TariffQuery{
		TariffType:        req.TariffType,
		TransactionType:   req.TransactionType,
		TransactionModeID: req.TransactionModeID,
		Amount:            req.Amount,
		PartnerID:         partnerID,
		PartnerType:       partnerType,
	})
	if err != nil {
		return nil, err
	}

	result := ComputeSettlement(tariff, req.Amount, req.Direction, req.TransactionType)
	result.PartnerID = partnerID
	return result, nil
}

// ComputeSettlement applies a tariff to an amount. It is a pure function:
// identical inputs always yield an identical result.
//
// The flat fee follows the tariff's fee type: FIXED and TIERED charge the
// base fee amount (tier-band schedules are not configured anywhere yet, so
// TIERED settles on its base fee), PERCENTAGE charges amount x fraction, and
// HYBRID charges both. Government tax is layered on top of the computed fee
// as its own component and never folded into the fee before percentage math.
func ComputeSettlement(tariff *model.Tariff, amount decimal.Decimal, direction model.Direction, txType model.TransactionType) *model.SettlementResult {
	flatFee := baseFee(tariff, amount)

	var components model.FeeComponents
	if tariff.HasFeeSplit() {
		components.ThirdPartyFee = tariff.PartnerFee
		components.RukapayFee = tariff.RukapayFee
		components.NetworkFee = tariff.TelecomBankCharge
		// The variable part of a HYBRID split tariff is platform margin.
		if tariff.FeeType == model.FeeHybrid || tariff.FeeType == model.FeePercentage {
			components.RukapayFee = components.RukapayFee.Add(amount.Mul(tariff.FeePercentage))
		}
	}

	feeBeforeTax := ResolveTotalFee(components,
		decimal.NewNullDecimal(flatFee), decimal.NullDecimal{}, decimal.NullDecimal{})

	if tariff.GovernmentTax.Valid {
		components.GovernmentTax = feeBeforeTax.Mul(tariff.GovernmentTax.Decimal).Div(oneHundred)
	}

	totalFee := feeBeforeTax.Add(components.GovernmentTax)

	return &model.SettlementResult{
		TariffID:      tariff.ID,
		FeeComponents: components,
		TotalFee:      totalFee,
		NetAmount:     netAmount(amount, totalFee, direction, txType),
	}
}

func baseFee(tariff *model.Tariff, amount decimal.Decimal) decimal.Decimal {
	switch tariff.FeeType {
	case model.FeePercentage:
		return amount.Mul(tariff.FeePercentage)
	case model.FeeHybrid:
		return tariff.FeeAmount.Add(amount.Mul(tariff.FeePercentage))
	default: // FIXED, TIERED
		return tariff.FeeAmount
	}
}

// ResolveTotalFee applies the canonical fallback order for a total fee:
// structured components when any is populated, then the flat fee, then the
// amount/net difference when both are independently known. Later fallbacks
// exist for legacy ledger rows that predate the structured breakdown and are
// consulted only when the richer signal is absent.
func ResolveTotalFee(components model.FeeComponents, flatFee, amount, netAmount decimal.NullDecimal) decimal.Decimal {
	if components.Populated() {
		return components.Sum()
	}
	if flatFee.Valid {
		return flatFee.Decimal
	}
	if amount.Valid && netAmount.Valid {
		return amount.Decimal.Sub(netAmount.Decimal).Abs()
	}
	return decimal.Zero
}

// netAmount applies the direction convention. A DEBIT leg charges the payer
// the amount plus the fee. A CREDIT leg delivers amount minus fee only for
// transaction types whose fee is taken at the receiving leg; otherwise the
// payer already bore the fee and the credit is unchanged.
func netAmount(amount, totalFee decimal.Decimal, direction model.Direction, txType model.TransactionType) decimal.Decimal {
	if direction == model.Debit {
		return amount.Add(totalFee)
	}
	if txType.FeeDeductedOnCredit() {
		return amount.Sub(totalFee)
	}
	return amount
}
