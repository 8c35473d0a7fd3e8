package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rukapay/routing-engine/internal/model"
)

const partnerColumns = `id, code, name, kind, is_active, is_suspended, supported_services,
	geographic_regions, cost_per_transaction, priority, failover_priority,
	success_rate, avg_response_time_ms, created_at, updated_at`

type PartnerRepository struct {
	pool *pgxpool.Pool
}

func NewPartnerRepository(pool *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

func scanPartner(row pgx.Row) (*model.Partner, error) {
	p := &model.Partner{}
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Kind, &p.IsActive, &p.IsSuspended,
		&p.SupportedServices, &p.GeographicRegions, &p.CostPerTransaction,
		&p.Priority, &p.FailoverPriority, &p.SuccessRate, &p.AvgResponseTimeMs,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PartnerRepository) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	return scanPartner(r.pool.QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
}

// ListAvailableInRegion returns active, non-suspended partners covering the
// region. Service-type filtering happens in the registry service, where the
// synonym table lives.
func (r *PartnerRepository) ListAvailableInRegion(ctx context.Context, region string) ([]*model.Partner, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+partnerColumns+`
		FROM partners
		WHERE is_active AND NOT is_suspended AND $1 = ANY(geographic_regions)
		ORDER BY failover_priority, priority, id`, region)
	if err != nil {
		return nil, fmt.Errorf("list available partners: %w", err)
	}
	defer rows.Close()

	var partners []*model.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

func (r *PartnerRepository) List(ctx context.Context, kind, region string, limit, offset int) ([]*model.Partner, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM partners
		WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR $2 = ANY(geographic_regions))`,
		kind, region).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count partners: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+partnerColumns+`
		FROM partners
		WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR $2 = ANY(geographic_regions))
		ORDER BY priority, code
		LIMIT $3 OFFSET $4`, kind, region, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var partners []*model.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, err
		}
		partners = append(partners, p)
	}
	return partners, total, rows.Err()
}
