package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukapay/routing-engine/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestComputeSettlement_FixedExternalSplit(t *testing.T) {
	tariff := &model.Tariff{
		ID:                "t1",
		TariffType:        model.TariffExternal,
		FeeType:           model.FeeFixed,
		FeeAmount:         d("500"),
		PartnerFee:        d("300"),
		RukapayFee:        d("150"),
		TelecomBankCharge: d("50"),
	}

	res := ComputeSettlement(tariff, d("10000"), model.Debit, model.WalletToMNO)

	assert.True(t, res.TotalFee.Equal(d("500")), "total fee = %s", res.TotalFee)
	assert.True(t, res.NetAmount.Equal(d("10500")), "net amount = %s", res.NetAmount)
	assert.True(t, res.FeeComponents.ThirdPartyFee.Equal(d("300")))
	assert.True(t, res.FeeComponents.RukapayFee.Equal(d("150")))
	assert.True(t, res.FeeComponents.NetworkFee.Equal(d("50")))
	assert.True(t, res.FeeComponents.GovernmentTax.IsZero())
}

func TestComputeSettlement_PercentageWithGovernmentTax(t *testing.T) {
	tariff := &model.Tariff{
		ID:            "t2",
		TariffType:    model.TariffExternal,
		FeeType:       model.FeePercentage,
		FeePercentage: d("0.02"),
		GovernmentTax: nd("18"),
	}

	res := ComputeSettlement(tariff, d("100000"), model.Debit, model.WalletToBank)

	// fee = 2000, tax = 2000 * 18% = 360, layered on top of the fee
	assert.True(t, res.FeeComponents.GovernmentTax.Equal(d("360")), "tax = %s", res.FeeComponents.GovernmentTax)
	assert.True(t, res.TotalFee.Equal(d("2360")), "total fee = %s", res.TotalFee)
	assert.True(t, res.NetAmount.Equal(d("102360")))
}

func TestComputeSettlement_HybridSplitVariablePartIsPlatformMargin(t *testing.T) {
	tariff := &model.Tariff{
		FeeType:           model.FeeHybrid,
		TariffType:        model.TariffExternal,
		FeeAmount:         d("400"),
		FeePercentage:     d("0.01"),
		PartnerFee:        d("200"),
		RukapayFee:        d("200"),
		TelecomBankCharge: d("0"),
	}

	res := ComputeSettlement(tariff, d("50000"), model.Debit, model.BillPayment)

	// 400 fixed split + 1% of 50000 = 900 total, variable part on the platform side
	assert.True(t, res.FeeComponents.RukapayFee.Equal(d("700")), "rukapay = %s", res.FeeComponents.RukapayFee)
	assert.True(t, res.FeeComponents.ThirdPartyFee.Equal(d("200")))
	assert.True(t, res.TotalFee.Equal(d("900")), "total fee = %s", res.TotalFee)
}

func TestComputeSettlement_InternalIgnoresStraySplitColumns(t *testing.T) {
	// Legacy INTERNAL rows sometimes carry junk in the split columns. The
	// split is an EXTERNAL concept and must never displace the fee amount.
	tariff := &model.Tariff{
		FeeType:    model.FeeFixed,
		TariffType: model.TariffInternal,
		FeeAmount:  d("500"),
		PartnerFee: d("9000"),
		RukapayFee: d("100"),
	}

	res := ComputeSettlement(tariff, d("10000"), model.Debit, model.WalletToWallet)
	assert.True(t, res.TotalFee.Equal(d("500")), "total fee = %s", res.TotalFee)
	assert.False(t, res.FeeComponents.Populated())
}

func TestComputeSettlement_TieredChargesBaseFee(t *testing.T) {
	tariff := &model.Tariff{
		FeeType:    model.FeeTiered,
		TariffType: model.TariffInternal,
		FeeAmount:  d("1500"),
	}

	res := ComputeSettlement(tariff, d("2000000"), model.Debit, model.WalletToWallet)
	assert.True(t, res.TotalFee.Equal(d("1500")))
}

func TestComputeSettlement_CreditConventionPerType(t *testing.T) {
	tariff := &model.Tariff{
		FeeType:    model.FeeFixed,
		TariffType: model.TariffInternal,
		FeeAmount:  d("500"),
	}

	t.Run("fee deducted at receiving leg", func(t *testing.T) {
		res := ComputeSettlement(tariff, d("10000"), model.Credit, model.WalletToBank)
		assert.True(t, res.NetAmount.Equal(d("9500")), "net = %s", res.NetAmount)
	})

	t.Run("fee charged upstream leaves credit unchanged", func(t *testing.T) {
		res := ComputeSettlement(tariff, d("10000"), model.Credit, model.BillPayment)
		assert.True(t, res.NetAmount.Equal(d("10000")), "net = %s", res.NetAmount)
	})
}

func TestComputeSettlement_Idempotent(t *testing.T) {
	tariff := &model.Tariff{
		ID:            "t3",
		FeeType:       model.FeeHybrid,
		TariffType:    model.TariffInternal,
		FeeAmount:     d("200"),
		FeePercentage: d("0.005"),
		GovernmentTax: nd("18"),
	}

	first := ComputeSettlement(tariff, d("75000"), model.Debit, model.WalletToWallet)
	second := ComputeSettlement(tariff, d("75000"), model.Debit, model.WalletToWallet)

	require.Equal(t, first.TariffID, second.TariffID)
	assert.True(t, first.TotalFee.Equal(second.TotalFee))
	assert.True(t, first.NetAmount.Equal(second.NetAmount))
	assert.True(t, first.FeeComponents.Sum().Equal(second.FeeComponents.Sum()))
}

func TestResolveTotalFee_FallbackOrder(t *testing.T) {
	components := model.FeeComponents{RukapayFee: d("150"), ThirdPartyFee: d("300")}

	t.Run("structured components win", func(t *testing.T) {
		total := ResolveTotalFee(components, nd("999"), nd("10000"), nd("9000"))
		assert.True(t, total.Equal(d("450")))
	})

	t.Run("flat fee when no components", func(t *testing.T) {
		total := ResolveTotalFee(model.FeeComponents{}, nd("999"), nd("10000"), nd("9000"))
		assert.True(t, total.Equal(d("999")))
	})

	t.Run("amount minus net as last resort", func(t *testing.T) {
		total := ResolveTotalFee(model.FeeComponents{}, decimal.NullDecimal{}, nd("10000"), nd("9000"))
		assert.True(t, total.Equal(d("1000")))
	})

	t.Run("nothing known yields zero", func(t *testing.T) {
		total := ResolveTotalFee(model.FeeComponents{}, decimal.NullDecimal{}, decimal.NullDecimal{}, decimal.NullDecimal{})
		assert.True(t, total.IsZero())
	})
}

func TestComputeSettlement_LegacyFlatFeeWithoutSplit(t *testing.T) {
	// Tariffs predating the structured breakdown carry only a flat amount.
	tariff := &model.Tariff{
		FeeType:    model.FeeFixed,
		TariffType: model.TariffExternal,
		FeeAmount:  d("800"),
	}

	res := ComputeSettlement(tariff, d("10000"), model.Debit, model.BillPayment)
	assert.False(t, res.FeeComponents.Populated())
	assert.True(t, res.TotalFee.Equal(d("800")))
	assert.True(t, res.NetAmount.Equal(d("10800")))
}

func TestComputeSettlement_ResultIsStableAcrossClock(t *testing.T) {
	tariff := &model.Tariff{
		FeeType:       model.FeePercentage,
		TariffType:    model.TariffInternal,
		FeePercentage: d("0.01"),
		UpdatedAt:     time.Now(),
	}

	res := ComputeSettlement(tariff, d("123456"), model.Debit, model.WalletToWallet)
	assert.True(t, res.TotalFee.Equal(d("1234.56")))
}
