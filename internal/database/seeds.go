package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type partnerSeed struct {
	Code              string
	Name              string
	Kind              string
	Services          []string
	Regions           []string
	CostPerTxn        string
	Priority          int
	FailoverPriority  int
	SuccessRate       string
	AvgResponseTimeMs int
	Suspended         bool
}

type mappingSeed struct {
	TransactionType string
	Region          string
	Network         *string
	PartnerCode     string
	Priority        int
}

type tariffSeed struct {
	TariffType        string
	TransactionType   string
	FeeType           string
	FeeAmount         string
	FeePercentage     string
	MinAmount         *string
	MaxAmount         *string
	Currency          string
	PartnerCode       string // resolved to partner_id when set
	APIPartnerCode    string // resolved to api_partner_id when set
	PartnerFee        string
	RukapayFee        string
	TelecomBankCharge string
	GovernmentTax     *string
}

var partnerSeeds = []partnerSeed{
	{Code: "MTN_MOMO", Name: "MTN Mobile Money", Kind: "EXTERNAL",
		Services: []string{"WALLET_TO_MNO", "MNO_TO_WALLET", "AIRTIME"},
		Regions:  []string{"UG", "RW"}, CostPerTxn: "120", Priority: 1, FailoverPriority: 1,
		SuccessRate: "0.982", AvgResponseTimeMs: 850},
	{Code: "AIRTEL_MONEY", Name: "Airtel Money", Kind: "EXTERNAL",
		Services: []string{"WALLET_TO_MNO", "MNO_TO_WALLET", "AIRTIME"},
		Regions:  []string{"UG", "KE", "TZ"}, CostPerTxn: "110", Priority: 2, FailoverPriority: 2,
		SuccessRate: "0.971", AvgResponseTimeMs: 1100},
	{Code: "STANBIC", Name: "Stanbic Bank", Kind: "EXTERNAL",
		Services: []string{"WALLET_TO_BANK", "BANK_TO_WALLET"},
		Regions:  []string{"UG", "KE", "TZ"}, CostPerTxn: "450", Priority: 1, FailoverPriority: 1,
		SuccessRate: "0.995", AvgResponseTimeMs: 2400},
	{Code: "EQUITY", Name: "Equity Bank", Kind: "EXTERNAL",
		Services: []string{"WALLET_TO_BANK", "BANK_TO_WALLET", "MERCHANT_PAYMENTS"},
		Regions:  []string{"KE", "UG", "RW"}, CostPerTxn: "400", Priority: 2, FailoverPriority: 2,
		SuccessRate: "0.991", AvgResponseTimeMs: 2100},
	{Code: "INTERSWITCH", Name: "Interswitch Gateway", Kind: "EXTERNAL",
		Services: []string{"BILL_PAYMENTS", "UTILITIES", "MERCHANT_PAYMENTS"},
		Regions:  []string{"UG", "KE"}, CostPerTxn: "200", Priority: 1, FailoverPriority: 1,
		SuccessRate: "0.988", AvgResponseTimeMs: 1500},
	{Code: "PEGASUS", Name: "Pegasus Technologies", Kind: "API",
		Services: []string{"BILL_PAYMENTS", "WALLET_TO_MNO", "MNO_TO_WALLET"},
		Regions:  []string{"UG"}, CostPerTxn: "150", Priority: 3, FailoverPriority: 3,
		SuccessRate: "0.962", AvgResponseTimeMs: 1300},
	{Code: "YO_UGANDA", Name: "Yo! Uganda", Kind: "API",
		Services: []string{"WALLET_TO_MNO", "MNO_TO_WALLET", "BILL_PAYMENTS"},
		Regions:  []string{"UG"}, CostPerTxn: "140", Priority: 4, FailoverPriority: 4,
		SuccessRate: "0.955", AvgResponseTimeMs: 1700, Suspended: true},
}

var mappingSeeds = []mappingSeed{
	{TransactionType: "WALLET_TO_MNO", Region: "UG", Network: ptr("MTN"), PartnerCode: "MTN_MOMO", Priority: 1},
	{TransactionType: "WALLET_TO_MNO", Region: "UG", Network: ptr("AIRTEL"), PartnerCode: "AIRTEL_MONEY", Priority: 1},
	{TransactionType: "MNO_TO_WALLET", Region: "UG", Network: ptr("MTN"), PartnerCode: "MTN_MOMO", Priority: 1},
	{TransactionType: "MNO_TO_WALLET", Region: "UG", Network: ptr("AIRTEL"), PartnerCode: "AIRTEL_MONEY", Priority: 1},
	{TransactionType: "WALLET_TO_BANK", Region: "UG", PartnerCode: "STANBIC", Priority: 1},
	{TransactionType: "BANK_TO_WALLET", Region: "UG", PartnerCode: "STANBIC", Priority: 1},
	{TransactionType: "WALLET_TO_BANK", Region: "KE", PartnerCode: "EQUITY", Priority: 1},
	{TransactionType: "BILL_PAYMENT", Region: "UG", PartnerCode: "INTERSWITCH", Priority: 1},
	{TransactionType: "MERCHANT_PAYMENT", Region: "KE", PartnerCode: "EQUITY", Priority: 1},
}

var tariffSeeds = []tariffSeed{
	{TariffType: "INTERNAL", TransactionType: "WALLET_TO_WALLET", FeeType: "FIXED",
		FeeAmount: "500", Currency: "UGX", MinAmount: ptr("0"), MaxAmount: ptr("1000000")},
	{TariffType: "INTERNAL", TransactionType: "WALLET_TO_WALLET", FeeType: "TIERED",
		FeeAmount: "1500", Currency: "UGX", MinAmount: ptr("1000000")},
	{TariffType: "EXTERNAL", TransactionType: "WALLET_TO_MNO", FeeType: "FIXED",
		Currency: "UGX", PartnerCode: "MTN_MOMO",
		PartnerFee: "300", RukapayFee: "150", TelecomBankCharge: "50", FeeAmount: "500"},
	{TariffType: "EXTERNAL", TransactionType: "WALLET_TO_MNO", FeeType: "FIXED",
		Currency: "UGX", PartnerCode: "AIRTEL_MONEY",
		PartnerFee: "280", RukapayFee: "150", TelecomBankCharge: "50", FeeAmount: "480"},
	{TariffType: "EXTERNAL", TransactionType: "WALLET_TO_BANK", FeeType: "PERCENTAGE",
		FeePercentage: "0.02", Currency: "UGX", PartnerCode: "STANBIC", GovernmentTax: ptr("18")},
	{TariffType: "EXTERNAL", TransactionType: "BILL_PAYMENT", FeeType: "HYBRID",
		FeePercentage: "0.01", Currency: "UGX", PartnerCode: "INTERSWITCH",
		PartnerFee: "200", RukapayFee: "200", TelecomBankCharge: "0", FeeAmount: "400"},
	{TariffType: "EXTERNAL", TransactionType: "MERCHANT_PAYMENT", FeeType: "PERCENTAGE",
		FeePercentage: "0.015", Currency: "KES", PartnerCode: "EQUITY"},
	{TariffType: "EXTERNAL", TransactionType: "BILL_PAYMENT", FeeType: "FIXED",
		Currency: "UGX", APIPartnerCode: "PEGASUS",
		PartnerFee: "250", RukapayFee: "100", TelecomBankCharge: "0", FeeAmount: "350"},
}

// SeedData loads a reference roster, mapping table and tariff book for
// development environments. It is idempotent: an already-seeded database is
// left untouched.
func SeedData(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM partners`).Scan(&count); err != nil {
		return fmt.Errorf("check partners: %w", err)
	}
	if count > 0 {
		log.Info().Msg("database already seeded, skipping")
		return nil
	}

	partnerIDs := make(map[string]string, len(partnerSeeds))
	for _, p := range partnerSeeds {
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO partners (code, name, kind, is_suspended, supported_services, geographic_regions,
				cost_per_transaction, priority, failover_priority, success_rate, avg_response_time_ms)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`,
			p.Code, p.Name, p.Kind, p.Suspended, p.Services, p.Regions,
			p.CostPerTxn, p.Priority, p.FailoverPriority, p.SuccessRate, p.AvgResponseTimeMs,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed partner %s: %w", p.Code, err)
		}
		partnerIDs[p.Code] = id
	}

	for _, m := range mappingSeeds {
		_, err := pool.Exec(ctx,
			`INSERT INTO partner_mappings (transaction_type, region, network, partner_id, priority)
			VALUES ($1, $2, $3, $4, $5)`,
			m.TransactionType, m.Region, m.Network, partnerIDs[m.PartnerCode], m.Priority)
		if err != nil {
			return fmt.Errorf("seed mapping %s/%s: %w", m.TransactionType, m.Region, err)
		}
	}

	for _, ts := range tariffSeeds {
		var partnerID, apiPartnerID *string
		if ts.PartnerCode != "" {
			id := partnerIDs[ts.PartnerCode]
			partnerID = &id
		}
		if ts.APIPartnerCode != "" {
			id := partnerIDs[ts.APIPartnerCode]
			apiPartnerID = &id
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO tariffs (tariff_type, transaction_type, fee_type, fee_amount, fee_percentage,
				min_amount, max_amount, currency, partner_id, api_partner_id,
				partner_fee, rukapay_fee, telecom_bank_charge, government_tax)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			ts.TariffType, ts.TransactionType, ts.FeeType,
			zeroIfEmpty(ts.FeeAmount), zeroIfEmpty(ts.FeePercentage),
			ts.MinAmount, ts.MaxAmount, ts.Currency, partnerID, apiPartnerID,
			zeroIfEmpty(ts.PartnerFee), zeroIfEmpty(ts.RukapayFee), zeroIfEmpty(ts.TelecomBankCharge),
			ts.GovernmentTax)
		if err != nil {
			return fmt.Errorf("seed tariff %s/%s: %w", ts.TariffType, ts.TransactionType, err)
		}
	}

	log.Info().
		Int("partners", len(partnerSeeds)).
		Int("mappings", len(mappingSeeds)).
		Int("tariffs", len(tariffSeeds)).
		Msg("seed data loaded")

	return nil
}

func ptr(s string) *string { return &s }

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
