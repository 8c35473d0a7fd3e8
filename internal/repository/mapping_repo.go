package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rukapay/routing-engine/internal/model"
)

const mappingColumns = `id, transaction_type, region, network, partner_id, priority, is_active, created_at, updated_at`

type MappingRepository struct {
	pool *pgxpool.Pool
}

func NewMappingRepository(pool *pgxpool.Pool) *MappingRepository {
	return &MappingRepository{pool: pool}
}

// MappingRow is a mapping joined with its partner.
type MappingRow struct {
	Mapping model.PartnerMapping
	Partner model.Partner
}

func scanMapping(row pgx.Row, m *model.PartnerMapping) error {
	return row.Scan(&m.ID, &m.TransactionType, &m.Region, &m.Network,
		&m.PartnerID, &m.Priority, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
}

// FindActive returns the single active mapping for the key, or nil when the
// key is unmapped.
func (r *MappingRepository) FindActive(ctx context.Context, key model.RouteKey) (*model.PartnerMapping, error) {
	m := &model.PartnerMapping{}
	err := scanMapping(r.pool.QueryRow(ctx,
		`SELECT `+mappingColumns+`
		FROM partner_mappings
		WHERE transaction_type = $1 AND region = $2 AND COALESCE(network, '') = $3 AND is_active`,
		key.TransactionType, key.Region, key.NetworkValue()), m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active mapping: %w", err)
	}
	return m, nil
}

// ListWithPartners returns mapping rows (active first) with resolved partner
// details, optionally filtered by transaction type and region.
func (r *MappingRepository) ListWithPartners(ctx context.Context, transactionType, region string) ([]MappingRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.transaction_type, m.region, m.network, m.partner_id, m.priority, m.is_active,
			m.created_at, m.updated_at,
			p.id, p.code, p.name, p.kind, p.is_active, p.is_suspended, p.supported_services,
			p.geographic_regions, p.cost_per_transaction, p.priority, p.failover_priority,
			p.success_rate, p.avg_response_time_ms, p.created_at, p.updated_at
		FROM partner_mappings m
		JOIN partners p ON p.id = m.partner_id
		WHERE ($1 = '' OR m.transaction_type = $1) AND ($2 = '' OR m.region = $2)
		ORDER BY m.is_active DESC, m.transaction_type, m.region, COALESCE(m.network, ''), m.updated_at DESC`,
		transactionType, region)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var result []MappingRow
	for rows.Next() {
		var row MappingRow
		m, p := &row.Mapping, &row.Partner
		err := rows.Scan(&m.ID, &m.TransactionType, &m.Region, &m.Network, &m.PartnerID,
			&m.Priority, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
			&p.ID, &p.Code, &p.Name, &p.Kind, &p.IsActive, &p.IsSuspended, &p.SupportedServices,
			&p.GeographicRegions, &p.CostPerTransaction, &p.Priority, &p.FailoverPriority,
			&p.SuccessRate, &p.AvgResponseTimeMs, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Insert creates a new active mapping and its audit event in one transaction.
func (r *MappingRepository) Insert(ctx context.Context, m *model.PartnerMapping, event *model.AuditEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin mapping insert: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO partner_mappings (transaction_type, region, network, partner_id, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at`,
		m.TransactionType, m.Region, m.Network, m.PartnerID, m.Priority).
		Scan(&m.ID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return err
	}

	event.EntityID = m.ID
	if err := insertAuditEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return tx.Commit(ctx)
}

// SwitchPartner atomically deactivates the current active mapping for the key
// (when one exists), activates a new row pointing at newPartnerID, and writes
// the audit event, all in one transaction. The row lock is taken with NOWAIT
// so a concurrent switch surfaces as a 55P03 conflict instead of blocking.
func (r *MappingRepository) SwitchPartner(ctx context.Context, key model.RouteKey, newPartnerID string, priority int, event *model.AuditEvent) (old, current *model.PartnerMapping, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin switch: %w", err)
	}
	defer tx.Rollback(ctx)

	prev := &model.PartnerMapping{}
	err = scanMapping(tx.QueryRow(ctx,
		`SELECT `+mappingColumns+`
		FROM partner_mappings
		WHERE transaction_type = $1 AND region = $2 AND COALESCE(network, '') = $3 AND is_active
		FOR UPDATE NOWAIT`,
		key.TransactionType, key.Region, key.NetworkValue()), prev)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		prev = nil
	case err != nil:
		return nil, nil, fmt.Errorf("lock active mapping: %w", err)
	}

	if prev != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE partner_mappings SET is_active = FALSE, updated_at = NOW() WHERE id = $1`,
			prev.ID); err != nil {
			return nil, nil, fmt.Errorf("deactivate mapping: %w", err)
		}
		event.OldPartnerID = &prev.PartnerID
	}

	next := &model.PartnerMapping{}
	err = scanMapping(tx.QueryRow(ctx,
		`INSERT INTO partner_mappings (transaction_type, region, network, partner_id, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+mappingColumns,
		key.TransactionType, key.Region, key.Network, newPartnerID, priority), next)
	if err != nil {
		return nil, nil, fmt.Errorf("activate mapping: %w", err)
	}

	event.EntityID = next.ID
	if err := insertAuditEvent(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("record audit event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit switch: %w", err)
	}
	return prev, next, nil
}
