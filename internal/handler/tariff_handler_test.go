package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTariffCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, pool := setupRouter(t)

	mtnID := partnerIDByCode(t, pool, "MTN_MOMO")
	pegasusID := partnerIDByCode(t, pool, "PEGASUS")

	t.Run("happy: derived fee amount overrides client value", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/tariffs", dto.TariffRequest{
			TariffType:        model.TariffExternal,
			TransactionType:   model.MNOToWallet,
			FeeType:           model.FeeFixed,
			FeeAmount:         dec("999999"),
			Currency:          "UGX",
			PartnerID:         &mtnID,
			PartnerFee:        dec("300"),
			RukapayFee:        dec("150"),
			TelecomBankCharge: dec("50"),
		}, testActor)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var tariff model.Tariff
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tariff))
		assert.True(t, tariff.FeeAmount.Equal(dec("500")), "fee amount = %s", tariff.FeeAmount)
		assert.Equal(t, 1, tariff.Version)
	})

	t.Run("happy: api partner percentage converted to fraction", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/tariffs", dto.TariffRequest{
			TariffType:      model.TariffExternal,
			TransactionType: model.BillPayment,
			FeeType:         model.FeePercentage,
			FeePercentage:   dec("2.5"),
			Currency:        "UGX",
			APIPartnerID:    &pegasusID,
		}, testActor)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var tariff model.Tariff
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tariff))
		assert.True(t, tariff.FeePercentage.Equal(dec("0.025")), "percentage = %s", tariff.FeePercentage)

		// persisted value matches, not just the echo
		var stored decimal.Decimal
		require.NoError(t, pool.QueryRow(context.Background(),
			`SELECT fee_percentage FROM tariffs WHERE id = $1`, tariff.ID).Scan(&stored))
		assert.True(t, stored.Equal(dec("0.025")))
	})

	t.Run("bad: hybrid with zero components names both fields", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/tariffs", dto.TariffRequest{
			TariffType:      model.TariffInternal,
			TransactionType: model.WalletToWallet,
			FeeType:         model.FeeHybrid,
			Currency:        "UGX",
		}, testActor)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.ErrorListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)

		fields := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			fields[i] = e.Field
		}
		assert.Contains(t, fields, "fee_amount")
		assert.Contains(t, fields, "fee_percentage")
	})

	t.Run("bad: mutation without actor identity", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/tariffs", dto.TariffRequest{
			TariffType:      model.TariffInternal,
			TransactionType: model.WalletToWallet,
			FeeType:         model.FeeFixed,
			FeeAmount:       dec("100"),
			Currency:        "UGX",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTariffUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, _ := setupRouter(t)

	create := dto.TariffRequest{
		TariffType:      model.TariffInternal,
		TransactionType: model.AirtimePurchase,
		FeeType:         model.FeeFixed,
		FeeAmount:       dec("200"),
		Currency:        "UGX",
	}
	w := doJSON(t, router, "POST", "/api/v1/tariffs", create, testActor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tariff model.Tariff
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tariff))
	require.Equal(t, 1, tariff.Version)

	t.Run("happy: update bumps version", func(t *testing.T) {
		update := dto.UpdateTariffRequest{TariffRequest: create, Version: 1}
		update.FeeAmount = dec("250")

		w := doJSON(t, router, "PUT", "/api/v1/tariffs/"+tariff.ID, update, testActor)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated model.Tariff
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, 2, updated.Version)
		assert.True(t, updated.FeeAmount.Equal(dec("250")))
	})

	t.Run("bad: stale version conflicts", func(t *testing.T) {
		update := dto.UpdateTariffRequest{TariffRequest: create, Version: 1}
		update.FeeAmount = dec("300")

		w := doJSON(t, router, "PUT", "/api/v1/tariffs/"+tariff.ID, update, testActor)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		var resp dto.ErrorListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "CONCURRENT_MODIFICATION", resp.Code)
	})

	t.Run("bad: unknown tariff id", func(t *testing.T) {
		update := dto.UpdateTariffRequest{TariffRequest: create, Version: 1}
		w := doJSON(t, router, "PUT", "/api/v1/tariffs/00000000-0000-0000-0000-000000000000", update, testActor)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTariffDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, _ := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/tariffs", dto.TariffRequest{
		TariffType:      model.TariffInternal,
		TransactionType: model.BankToWallet,
		FeeType:         model.FeeFixed,
		FeeAmount:       dec("450"),
		Currency:        "KES",
	}, testActor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tariff model.Tariff
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tariff))

	w = doJSON(t, router, "DELETE", "/api/v1/tariffs/"+tariff.ID, nil, testActor)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/tariffs/"+tariff.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTariffList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, _ := setupRouter(t)

	w := doJSON(t, router, "GET", "/api/v1/tariffs?tariffType=INTERNAL&transactionType=WALLET_TO_WALLET", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data       []model.Tariff `json:"data"`
		Pagination dto.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Pagination.TotalItems)
}
