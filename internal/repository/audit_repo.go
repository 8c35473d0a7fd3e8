package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rukapay/routing-engine/internal/model"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// insertAuditEvent writes an audit row through any pgx executor so mutation
// repositories can include it in their own transactions.
func insertAuditEvent(ctx context.Context, q execer, ev *model.AuditEvent) error {
	_, err := q.Exec(ctx,
		`INSERT INTO audit_events (id, actor, action, entity_type, entity_id,
			old_partner_id, new_partner_id, reason, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ev.ID, ev.Actor, ev.Action, ev.EntityType, ev.EntityID,
		ev.OldPartnerID, ev.NewPartnerID, ev.Reason, ev.Detail)
	return err
}

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, ev *model.AuditEvent) error {
	return insertAuditEvent(ctx, r.pool, ev)
}

func (r *AuditRepository) List(ctx context.Context, entityType, actor string, limit, offset int) ([]*model.AuditEvent, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_events
		WHERE ($1 = '' OR entity_type = $1) AND ($2 = '' OR actor = $2)`,
		entityType, actor).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, actor, action, entity_type, entity_id, old_partner_id, new_partner_id,
			reason, detail, created_at
		FROM audit_events
		WHERE ($1 = '' OR entity_type = $1) AND ($2 = '' OR actor = $2)
		ORDER BY id DESC
		LIMIT $3 OFFSET $4`, entityType, actor, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []*model.AuditEvent
	for rows.Next() {
		ev := &model.AuditEvent{}
		err := rows.Scan(&ev.ID, &ev.Actor, &ev.Action, &ev.EntityType, &ev.EntityID,
			&ev.OldPartnerID, &ev.NewPartnerID, &ev.Reason, &ev.Detail, &ev.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
	}
	return events, total, rows.Err()
}
