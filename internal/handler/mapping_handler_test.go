package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukapay/routing-engine/internal/dto"
	"github.com/rukapay/routing-engine/internal/model"
)

func TestRouteResolve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, _ := setupRouter(t)

	t.Run("happy: mapped key resolves its partner", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/routes/resolve", dto.ResolveRouteRequest{
			TransactionType: model.BillPayment,
			Region:          "UG",
		}, "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var decision model.RouteDecision
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
		require.NotNil(t, decision.Primary)
		assert.Equal(t, "INTERSWITCH", decision.Primary.Code)
		assert.False(t, decision.Degraded)
	})

	t.Run("happy: per-network MNO routing", func(t *testing.T) {
		mtn, airtel := "MTN", "AIRTEL"

		w := doJSON(t, router, "POST", "/api/v1/routes/resolve", dto.ResolveRouteRequest{
			TransactionType: model.WalletToMNO, Region: "UG", Network: &mtn,
		}, "")
		require.Equal(t, http.StatusOK, w.Code)
		var decision model.RouteDecision
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
		assert.Equal(t, "MTN_MOMO", decision.Primary.Code)

		w = doJSON(t, router, "POST", "/api/v1/routes/resolve", dto.ResolveRouteRequest{
			TransactionType: model.WalletToMNO, Region: "UG", Network: &airtel,
		}, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
		assert.Equal(t, "AIRTEL_MONEY", decision.Primary.Code)
	})

	t.Run("bad: MNO key without network", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/routes/resolve", dto.ResolveRouteRequest{
			TransactionType: model.WalletToMNO, Region: "UG",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad: unmapped key is a hard failure", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/routes/resolve", dto.ResolveRouteRequest{
			TransactionType: model.WalletToBank, Region: "RW",
		}, "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.ErrorListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "UNMAPPED", resp.Code)
	})
}

func TestRouteResolve_DegradedFailover(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, pool := setupRouter(t)
	ctx := context.Background()

	suspend := func(t *testing.T, code string) {
		t.Helper()
		_, err := pool.Exec(ctx,
			`UPDATE partners SET is_suspended = TRUE WHERE code = $1`, code)
		require.NoError(t, err)
	}

	t.Run("edge: suspended primary degrades onto the failover chain", func(t *testing.T) {
		suspend(t, "MTN_MOMO")

		mtn := "MTN"
		w := doJSON(t, router, "POST", "/api/v1/routes/resolve", dto.ResolveRouteRequest{
			TransactionType: model.WalletToMNO, Region: "UG", Network: &mtn,
		}, "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var decision model.RouteDecision
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
		assert.True(t, decision.Degraded)
		assert.Contains(t, decision.DegradedNote, "MTN_MOMO")
		require.NotNil(t, decision.Primary)
		assert.Equal(t, "AIRTEL_MONEY", decision.Primary.Code)
		require.Len(t, decision.FailoverChain, 1)
		assert.Equal(t, "PEGASUS", decision.FailoverChain[0].Code)
	})

	t.Run("edge: suspended primary with empty chain is unavailable", func(t *testing.T) {
		suspend(t, "STANBIC")
		suspend(t, "EQUITY")

		w := doJSON(t, router, "POST", "/api/v1/routes/resolve", dto.ResolveRouteRequest{
			TransactionType: model.WalletToBank, Region: "UG",
		}, "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())

		var resp dto.ErrorListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "PARTNER_UNAVAILABLE", resp.Code)
	})
}

func TestMappingSwitch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, pool := setupRouter(t)

	equityID := partnerIDByCode(t, pool, "EQUITY")
	stanbicID := partnerIDByCode(t, pool, "STANBIC")

	activePartnerFor := func(t *testing.T, txType, region string) string {
		t.Helper()
		var partnerID string
		require.NoError(t, pool.QueryRow(context.Background(),
			`SELECT partner_id FROM partner_mappings
			WHERE transaction_type = $1 AND region = $2 AND COALESCE(network,'') = '' AND is_active`,
			txType, region).Scan(&partnerID))
		return partnerID
	}

	t.Run("happy: switch re-points routing atomically", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/mappings/switch", dto.SwitchPartnerRequest{
			TransactionType:  model.WalletToBank,
			Region:           "UG",
			PrimaryPartnerID: equityID,
			Reason:           "stanbic maintenance window",
		}, testActor)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, equityID, activePartnerFor(t, "WALLET_TO_BANK", "UG"))

		// at most one active row per key
		var active int
		require.NoError(t, pool.QueryRow(context.Background(),
			`SELECT COUNT(*) FROM partner_mappings
			WHERE transaction_type = 'WALLET_TO_BANK' AND region = 'UG' AND is_active`).Scan(&active))
		assert.Equal(t, 1, active)

		// switch left an attributed audit trail
		var resp struct {
			AuditEventID string `json:"audit_event_id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.AuditEventID)

		var actor, reason string
		require.NoError(t, pool.QueryRow(context.Background(),
			`SELECT actor, reason FROM audit_events WHERE id = $1`, resp.AuditEventID).
			Scan(&actor, &reason))
		assert.Equal(t, testActor, actor)
		assert.Equal(t, "stanbic maintenance window", reason)
	})

	t.Run("bad: empty reason leaves prior mapping active", func(t *testing.T) {
		before := activePartnerFor(t, "BILL_PAYMENT", "UG")

		w := doJSON(t, router, "POST", "/api/v1/mappings/switch", dto.SwitchPartnerRequest{
			TransactionType:  model.BillPayment,
			Region:           "UG",
			PrimaryPartnerID: equityID,
			Reason:           "",
		}, testActor)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, before, activePartnerFor(t, "BILL_PAYMENT", "UG"))
	})

	t.Run("bad: ineligible partner rejected", func(t *testing.T) {
		mtnID := partnerIDByCode(t, pool, "MTN_MOMO")

		w := doJSON(t, router, "POST", "/api/v1/mappings/switch", dto.SwitchPartnerRequest{
			TransactionType:  model.WalletToBank,
			Region:           "UG",
			PrimaryPartnerID: mtnID,
			Reason:           "testing eligibility gate",
		}, testActor)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad: mutation without actor identity", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/mappings/switch", dto.SwitchPartnerRequest{
			TransactionType:  model.WalletToBank,
			Region:           "UG",
			PrimaryPartnerID: stanbicID,
			Reason:           "switch back",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMappingSwitch_ConcurrentConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, pool := setupRouter(t)
	ctx := context.Background()

	equityID := partnerIDByCode(t, pool, "EQUITY")
	stanbicID := partnerIDByCode(t, pool, "STANBIC")

	// simulate a racing admin holding the active row's lock mid-switch
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	var lockedID string
	require.NoError(t, tx.QueryRow(ctx,
		`SELECT id FROM partner_mappings
		WHERE transaction_type = 'WALLET_TO_BANK' AND region = 'UG' AND is_active
		FOR UPDATE`).Scan(&lockedID))

	w := doJSON(t, router, "POST", "/api/v1/mappings/switch", dto.SwitchPartnerRequest{
		TransactionType:  model.WalletToBank,
		Region:           "UG",
		PrimaryPartnerID: equityID,
		Reason:           "racing switch",
	}, testActor)

	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var resp dto.ErrorListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONCURRENT_MODIFICATION", resp.Code)

	require.NoError(t, tx.Rollback(ctx))

	// the losing switch left routing untouched: one active row, still the
	// original partner
	var active int
	var partnerID string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(partner_id::text) FROM partner_mappings
		WHERE transaction_type = 'WALLET_TO_BANK' AND region = 'UG' AND is_active`).
		Scan(&active, &partnerID))
	assert.Equal(t, 1, active)
	assert.Equal(t, stanbicID, partnerID)

	// once the lock is released the switch goes through
	w = doJSON(t, router, "POST", "/api/v1/mappings/switch", dto.SwitchPartnerRequest{
		TransactionType:  model.WalletToBank,
		Region:           "UG",
		PrimaryPartnerID: equityID,
		Reason:           "retry after conflict",
	}, testActor)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestMappingCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, pool := setupRouter(t)

	equityID := partnerIDByCode(t, pool, "EQUITY")

	t.Run("happy: create mapping for unmapped key", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/mappings", dto.CreateMappingRequest{
			TransactionType: model.BankToWallet,
			Region:          "KE",
			PartnerID:       equityID,
			Priority:        1,
		}, testActor)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("bad: second active mapping for the same key", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/mappings", dto.CreateMappingRequest{
			TransactionType: model.WalletToBank,
			Region:          "KE",
			PartnerID:       equityID,
			Priority:        1,
		}, testActor)

		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func TestMappingList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router, _ := setupRouter(t)

	w := doJSON(t, router, "GET", "/api/v1/mappings?transactionType=WALLET_TO_MNO&region=UG", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []dto.MappingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	for _, m := range resp.Data {
		require.NotNil(t, m.Partner)
		require.NotNil(t, m.Network)
	}
}
