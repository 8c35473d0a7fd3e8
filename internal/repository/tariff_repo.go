package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rukapay/routing-engine/internal/model"
)

// ErrStaleVersion signals an optimistic-lock conflict: the tariff was
// modified since the caller read it.
var ErrStaleVersion = errors.New("tariff version is stale")

const tariffColumns = `id, tariff_type, transaction_type, transaction_mode_id, fee_type,
	fee_amount, fee_percentage, min_amount, max_amount, currency,
	user_type, subscriber_type, group_name, partner_id, api_partner_id,
	partner_fee, rukapay_fee, telecom_bank_charge, government_tax,
	version, created_at, updated_at`

type TariffRepository struct {
	pool *pgxpool.Pool
}

func NewTariffRepository(pool *pgxpool.Pool) *TariffRepository {
	return &TariffRepository{pool: pool}
}

func scanTariff(row pgx.Row) (*model.Tariff, error) {
	t := &model.Tariff{}
	err := row.Scan(&t.ID, &t.TariffType, &t.TransactionType, &t.TransactionModeID, &t.FeeType,
		&t.FeeAmount, &t.FeePercentage, &t.MinAmount, &t.MaxAmount, &t.Currency,
		&t.UserType, &t.SubscriberType, &t.Group, &t.PartnerID, &t.APIPartnerID,
		&t.PartnerFee, &t.RukapayFee, &t.TelecomBankCharge, &t.GovernmentTax,
		&t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TariffRepository) GetByID(ctx context.Context, id string) (*model.Tariff, error) {
	return scanTariff(r.pool.QueryRow(ctx,
		`SELECT `+tariffColumns+` FROM tariffs WHERE id = $1`, id))
}

// FindCandidates returns tariffs matching the scope and amount window of a
// transaction context. Partner matching and specificity ranking happen in the
// tariff service.
func (r *TariffRepository) FindCandidates(ctx context.Context, tariffType model.TariffType, transactionType model.TransactionType, modeID *string, amount decimal.Decimal) ([]*model.Tariff, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tariffColumns+`
		FROM tariffs
		WHERE tariff_type = $1
		  AND transaction_type = $2
		  AND ($2 <> 'CUSTOM' OR transaction_mode_id = $3)
		  AND (min_amount IS NULL OR min_amount <= $4)
		  AND (max_amount IS NULL OR max_amount >= $4)`,
		tariffType, transactionType, modeID, amount)
	if err != nil {
		return nil, fmt.Errorf("find tariff candidates: %w", err)
	}
	defer rows.Close()

	var tariffs []*model.Tariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, rows.Err()
}

func (r *TariffRepository) List(ctx context.Context, tariffType, transactionType, partnerID string, limit, offset int) ([]*model.Tariff, int, error) {
	where := `WHERE ($1 = '' OR tariff_type = $1)
		  AND ($2 = '' OR transaction_type = $2)
		  AND ($3 = '' OR partner_id::text = $3 OR api_partner_id::text = $3)`

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tariffs `+where,
		tariffType, transactionType, partnerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count tariffs: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+tariffColumns+` FROM tariffs `+where+`
		ORDER BY updated_at DESC
		LIMIT $4 OFFSET $5`, tariffType, transactionType, partnerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tariffs: %w", err)
	}
	defer rows.Close()

	var tariffs []*model.Tariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, 0, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, total, rows.Err()
}

func (r *TariffRepository) Insert(ctx context.Context, t *model.Tariff, event *model.AuditEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tariff insert: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO tariffs (tariff_type, transaction_type, transaction_mode_id, fee_type,
			fee_amount, fee_percentage, min_amount, max_amount, currency,
			user_type, subscriber_type, group_name, partner_id, api_partner_id,
			partner_fee, rukapay_fee, telecom_bank_charge, government_tax)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, version, created_at, updated_at`,
		t.TariffType, t.TransactionType, t.TransactionModeID, t.FeeType,
		t.FeeAmount, t.FeePercentage, t.MinAmount, t.MaxAmount, t.Currency,
		t.UserType, t.SubscriberType, t.Group, t.PartnerID, t.APIPartnerID,
		t.PartnerFee, t.RukapayFee, t.TelecomBankCharge, t.GovernmentTax).
		Scan(&t.ID, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	event.EntityID = t.ID
	if err := insertAuditEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return tx.Commit(ctx)
}

// Update applies a full-row update guarded by the version the caller read.
// A stale version yields ErrStaleVersion so the caller can retry the mutation.
func (r *TariffRepository) Update(ctx context.Context, t *model.Tariff, event *model.AuditEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tariff update: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`UPDATE tariffs SET
			tariff_type = $3, transaction_type = $4, transaction_mode_id = $5, fee_type = $6,
			fee_amount = $7, fee_percentage = $8, min_amount = $9, max_amount = $10, currency = $11,
			user_type = $12, subscriber_type = $13, group_name = $14, partner_id = $15, api_partner_id = $16,
			partner_fee = $17, rukapay_fee = $18, telecom_bank_charge = $19, government_tax = $20,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`,
		t.ID, t.Version,
		t.TariffType, t.TransactionType, t.TransactionModeID, t.FeeType,
		t.FeeAmount, t.FeePercentage, t.MinAmount, t.MaxAmount, t.Currency,
		t.UserType, t.SubscriberType, t.Group, t.PartnerID, t.APIPartnerID,
		t.PartnerFee, t.RukapayFee, t.TelecomBankCharge, t.GovernmentTax).
		Scan(&t.Version, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM tariffs WHERE id = $1)`, t.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check tariff exists: %w", err)
		}
		if exists {
			return ErrStaleVersion
		}
		return pgx.ErrNoRows
	}
	if err != nil {
		return err
	}

	event.EntityID = t.ID
	if err := insertAuditEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *TariffRepository) Delete(ctx context.Context, id string, event *model.AuditEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tariff delete: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM tariffs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	event.EntityID = id
	if err := insertAuditEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return tx.Commit(ctx)
}
