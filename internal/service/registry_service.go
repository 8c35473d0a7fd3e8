package service

import (
	"context"
	"sort"

	"github.com/rukapay/routing-engine/internal/model"
	"github.com/rukapay/routing-engine/internal/repository"
)

// serviceSynonyms is the fixed token table matching a transaction type to the
// service tokens partners advertise. Partner records predate the current type
// enum, so legacy aliases and pluralized tokens are recognized here rather
// than guessed by string heuristics at resolution time. Changes to this table
// ship with the engine and are code-reviewed like any routing change.
var serviceSynonyms = map[model.TransactionType][]string{
	model.WalletToWallet:  {"WALLET_TO_WALLET", "WALLET_TO_WALLETS", "P2P"},
	model.WalletToMNO:     {"WALLET_TO_MNO", "WALLET_TO_MNOS", "MNO_PAYOUT"},
	model.MNOToWallet:     {"MNO_TO_WALLET", "MNO_TO_WALLETS", "MNO_COLLECTION"},
	model.WalletToBank:    {"WALLET_TO_BANK", "WALLET_TO_BANKS", "BANK_PAYOUT"},
	model.BankToWallet:    {"BANK_TO_WALLET", "BANK_TO_WALLETS", "BANK_COLLECTION"},
	model.BillPayment:     {"BILL_PAYMENT", "BILL_PAYMENTS", "UTILITIES"},
	model.MerchantPayment: {"MERCHANT_PAYMENT", "MERCHANT_PAYMENTS", "POS"},
	model.AirtimePurchase: {"AIRTIME_PURCHASE", "AIRTIME_PURCHASES", "AIRTIME", "TOPUP"},
	model.CustomType:      {"CUSTOM"},
}

type RegistryService struct {
	partnerRepo *repository.PartnerRepository
}

func NewRegistryService(partnerRepo *repository.PartnerRepository) *RegistryService {
	return &RegistryService{partnerRepo: partnerRepo}
}

// Supports reports whether the partner advertises a service token matching
// the transaction type, via the synonym table.
func Supports(p *model.Partner, tt model.TransactionType) bool {
	tokens, ok := serviceSynonyms[tt]
	if !ok {
		return false
	}
	for _, advertised := range p.SupportedServices {
		for _, token := range tokens {
			if advertised == token {
				return true
			}
		}
	}
	return false
}

// filterEligible keeps partners that are available, cover the region and
// support the transaction type.
func filterEligible(partners []*model.Partner, tt model.TransactionType, region string) []*model.Partner {
	var eligible []*model.Partner
	for _, p := range partners {
		if !p.Available() {
			continue
		}
		if !containsString(p.GeographicRegions, region) {
			continue
		}
		if !Supports(p, tt) {
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible
}

// sortFailover orders partners by ascending failover priority, ties broken by
// routing priority, then partner id so the chain is deterministic.
func sortFailover(partners []*model.Partner) {
	sort.Slice(partners, func(i, j int) bool {
		a, b := partners[i], partners[j]
		if a.FailoverPriority != b.FailoverPriority {
			return a.FailoverPriority < b.FailoverPriority
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.ID < b.ID
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (s *RegistryService) GetPartner(ctx context.Context, id string) (*model.Partner, error) {
	return s.partnerRepo.GetByID(ctx, id)
}

// ListEligiblePartners returns partners able to execute the transaction type
// in the region, in deterministic failover order.
func (s *RegistryService) ListEligiblePartners(ctx context.Context, tt model.TransactionType, region string) ([]*model.Partner, error) {
	partners, err := s.partnerRepo.ListAvailableInRegion(ctx, region)
	if err != nil {
		return nil, err
	}
	eligible := filterEligible(partners, tt, region)
	sortFailover(eligible)
	return eligible, nil
}

// IsEligible reports whether one specific partner may serve the key.
func (s *RegistryService) IsEligible(ctx context.Context, partnerID string, tt model.TransactionType, region string) (bool, error) {
	p, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return false, err
	}
	return p.Available() && containsString(p.GeographicRegions, region) && Supports(p, tt), nil
}

func (s *RegistryService) ListPartners(ctx context.Context, kind, region string, limit, offset int) ([]*model.Partner, int, error) {
	return s.partnerRepo.List(ctx, kind, region, limit, offset)
}
