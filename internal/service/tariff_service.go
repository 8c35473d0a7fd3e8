package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/model"
	"github.com/rukapay/routing-engine/internal/repository"
)

var oneHundred = decimal.NewFromInt(100)

// TariffQuery is the tariff-relevant slice of a transaction context.
type TariffQuery struct {
	TariffType        model.TariffType
	TransactionType   model.TransactionType
	TransactionModeID *string
	Amount            decimal.Decimal
	// PartnerID is the partner resolved by routing; required for EXTERNAL
	// contexts so the tariff's partner reference can be matched.
	PartnerID   string
	PartnerType model.PartnerType
}

type TariffService struct {
	tariffRepo *repository.TariffRepository
}

func NewTariffService(tariffRepo *repository.TariffRepository) *TariffService {
	return &TariffService{tariffRepo: tariffRepo}
}

// ResolveTariff finds the best-matching tariff for a transaction context, or
// ErrNoApplicableTariff when none matches.
func (s *TariffService) ResolveTariff(ctx context.Context, q TariffQuery) (*model.Tariff, error) {
	candidates, err := s.tariffRepo.FindCandidates(ctx, q.TariffType, q.TransactionType, q.TransactionModeID, q.Amount)
	if err != nil {
		return nil, err
	}

	if q.TariffType == model.TariffExternal {
		candidates = filterByPartner(candidates, q.PartnerID, q.PartnerType)
	}

	best := pickMostSpecific(candidates)
	if best == nil {
		return nil, ErrNoApplicableTariff
	}
	return best, nil
}

// filterByPartner keeps tariffs whose partner reference matches the resolved
// partner, honoring the partner-type discriminator when given.
func filterByPartner(tariffs []*model.Tariff, partnerID string, pt model.PartnerType) []*model.Tariff {
	var out []*model.Tariff
	for _, t := range tariffs {
		direct := t.PartnerID != nil && *t.PartnerID == partnerID
		api := t.APIPartnerID != nil && *t.APIPartnerID == partnerID
		switch pt {
		case model.ExternalPartner:
			if direct {
				out = append(out, t)
			}
		case model.APIPartner:
			if api {
				out = append(out, t)
			}
		default:
			if direct || api {
				out = append(out, t)
			}
		}
	}
	return out
}

// pickMostSpecific prefers the narrowest amount window; a bounded window
// always beats an open one, and remaining ties go to the most recently
// updated tariff.
func pickMostSpecific(tariffs []*model.Tariff) *model.Tariff {
	var best *model.Tariff
	for _, t := range tariffs {
		if best == nil || moreSpecific(t, best) {
			best = t
		}
	}
	return best
}

func moreSpecific(a, b *model.Tariff) bool {
	wa, boundedA := a.AmountWindowWidth()
	wb, boundedB := b.AmountWindowWidth()
	if boundedA != boundedB {
		return boundedA
	}
	if boundedA && boundedB && !wa.Equal(wb) {
		return wa.LessThan(wb)
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

func (s *TariffService) GetTariff(ctx context.Context, id string) (*model.Tariff, error) {
	return s.tariffRepo.GetByID(ctx, id)
}

func (s *TariffService) ListTariffs(ctx context.Context, tariffType, transactionType, partnerID string, limit, offset int) ([]*model.Tariff, int, error) {
	return s.tariffRepo.List(ctx, tariffType, transactionType, partnerID, limit, offset)
}

func (s *TariffService) CreateTariff(ctx context.Context, actor string, req *dto.TariffRequest) (*model.Tariff, error) {
	tariff, err := buildTariff(req)
	if err != nil {
		return nil, err
	}

	event := &model.AuditEvent{
		ID:         ulid.Make().String(),
		Actor:      actor,
		Action:     "tariff.create",
		EntityType: "tariff",
		Detail:     tariffAuditDetail(tariff),
	}
	if err := s.tariffRepo.Insert(ctx, tariff, event); err != nil {
		return nil, err
	}
	return tariff, nil
}

func (s *TariffService) UpdateTariff(ctx context.Context, actor, id string, req *dto.UpdateTariffRequest) (*model.Tariff, error) {
	tariff, err := buildTariff(&req.TariffRequest)
	if err != nil {
		return nil, err
	}
	tariff.ID = id
	tariff.Version = req.Version

	event := &model.AuditEvent{
		ID:         ulid.Make().String(),
		Actor:      actor,
		Action:     "tariff.update",
		EntityType: "tariff",
		Detail:     tariffAuditDetail(tariff),
	}
	if err := s.tariffRepo.Update(ctx, tariff, event); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}
	return tariff, nil
}

func (s *TariffService) DeleteTariff(ctx context.Context, actor, id string) error {
	event := &model.AuditEvent{
		ID:         ulid.Make().String(),
		Actor:      actor,
		Action:     "tariff.delete",
		EntityType: "tariff",
	}
	return s.tariffRepo.Delete(ctx, id, event)
}

// buildTariff validates a tariff mutation request and normalizes it into the
// persistable form. All invariants are enforced here, server-side, so no
// client can bypass them:
//   - EXTERNAL tariffs reference exactly one of partner_id / api_partner_id;
//   - the derived fee amount of EXTERNAL fixed-component tariffs is always
//     recomputed from the sub-fees, overriding any client-supplied value;
//   - API-partner percentages arrive as whole percents and are converted to
//     decimal fractions exactly once, here;
//   - government_tax stays a plain percent (it is applied multiplicatively at
//     settlement time, never summed into the fee).
func buildTariff(req *dto.TariffRequest) (*model.Tariff, error) {
	verr := &ValidationError{}

	if !req.TransactionType.Valid() {
		verr.add("transaction_type", fmt.Sprintf("unknown transaction type '%s'", req.TransactionType))
	}
	if req.TransactionType == model.CustomType && (req.TransactionModeID == nil || *req.TransactionModeID == "") {
		verr.add("transaction_mode_id", "required for CUSTOM transaction type")
	}

	external := req.TariffType == model.TariffExternal
	hasPartner := req.PartnerID != nil && *req.PartnerID != ""
	hasAPIPartner := req.APIPartnerID != nil && *req.APIPartnerID != ""
	if external && hasPartner == hasAPIPartner {
		verr.add("partner_id", "external tariffs require exactly one of partner_id or api_partner_id")
	}
	if !external && (hasPartner || hasAPIPartner) {
		verr.add("partner_id", "internal tariffs must not reference a partner")
	}
	if !external {
		if req.PartnerFee.IsPositive() {
			verr.add("partner_fee", "only external tariffs carry a fee split")
		}
		if req.RukapayFee.IsPositive() {
			verr.add("rukapay_fee", "only external tariffs carry a fee split")
		}
		if req.TelecomBankCharge.IsPositive() {
			verr.add("telecom_bank_charge", "only external tariffs carry a fee split")
		}
	}

	feeAmount := req.FeeAmount
	if external && req.FeeType != model.FeePercentage {
		// Derived, never independently editable.
		feeAmount = req.PartnerFee.Add(req.RukapayFee).Add(req.TelecomBankCharge)
	}

	feePercentage := req.FeePercentage
	if hasAPIPartner && feePercentage.IsPositive() {
		feePercentage = feePercentage.Div(oneHundred)
	}

	switch req.FeeType {
	case model.FeeFixed, model.FeeTiered:
		if !feeAmount.IsPositive() {
			verr.add("fee_amount", "must be greater than zero")
		}
	case model.FeePercentage:
		if !feePercentage.IsPositive() {
			verr.add("fee_percentage", "must be greater than zero")
		}
	case model.FeeHybrid:
		if !feeAmount.IsPositive() {
			verr.add("fee_amount", "must be greater than zero")
		}
		if !feePercentage.IsPositive() {
			verr.add("fee_percentage", "must be greater than zero")
		}
	}

	if feePercentage.GreaterThan(decimal.NewFromInt(1)) {
		verr.add("fee_percentage", "must be a decimal fraction not exceeding 1")
	}

	if req.MinAmount.Valid && req.MinAmount.Decimal.IsNegative() {
		verr.add("min_amount", "must not be negative")
	}
	if req.MaxAmount.Valid && req.MaxAmount.Decimal.IsNegative() {
		verr.add("max_amount", "must not be negative")
	}
	if req.MinAmount.Valid && req.MaxAmount.Valid && req.MaxAmount.Decimal.LessThan(req.MinAmount.Decimal) {
		verr.add("max_amount", "must not be less than min_amount")
	}
	if req.GovernmentTax.Valid && req.GovernmentTax.Decimal.IsNegative() {
		verr.add("government_tax", "must not be negative")
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	partnerID, apiPartnerID := req.PartnerID, req.APIPartnerID
	if !hasPartner {
		partnerID = nil
	}
	if !hasAPIPartner {
		apiPartnerID = nil
	}

	return &model.Tariff{
		TariffType:        req.TariffType,
		TransactionType:   req.TransactionType,
		TransactionModeID: req.TransactionModeID,
		FeeType:           req.FeeType,
		FeeAmount:         feeAmount,
		FeePercentage:     feePercentage,
		MinAmount:         req.MinAmount,
		MaxAmount:         req.MaxAmount,
		Currency:          req.Currency,
		UserType:          req.UserType,
		SubscriberType:    req.SubscriberType,
		Group:             req.Group,
		PartnerID:         partnerID,
		APIPartnerID:      apiPartnerID,
		PartnerFee:        req.PartnerFee,
		RukapayFee:        req.RukapayFee,
		TelecomBankCharge: req.TelecomBankCharge,
		GovernmentTax:     req.GovernmentTax,
	}, nil
}

func tariffAuditDetail(t *model.Tariff) map[string]any {
	return map[string]any{
		"tariff_type":      t.TariffType,
		"transaction_type": t.TransactionType,
		"fee_type":         t.FeeType,
		"fee_amount":       t.FeeAmount.String(),
		"fee_percentage":   t.FeePercentage.String(),
	}
}
