package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rukapay/routing-engine/internal/model"
	"github.com/rukapay/routing-engine/internal/repository"
)

// RouteCache is a read-through cache of route decisions. Implementations must
// tolerate unavailability: a miss is always acceptable.
type RouteCache interface {
	Get(ctx context.Context, key string) (*model.RouteDecision, bool)
	Set(ctx context.Context, key string, decision *model.RouteDecision)
	Invalidate(ctx context.Context, key string)
}

type RoutingService struct {
	mappingRepo        *repository.MappingRepository
	registry           *RegistryService
	cache              RouteCache
	eligibilityTimeout time.Duration
}

func NewRoutingService(mappingRepo *repository.MappingRepository, registry *RegistryService, cache RouteCache, eligibilityTimeout time.Duration) *RoutingService {
	return &RoutingService{
		mappingRepo:        mappingRepo,
		registry:           registry,
		cache:              cache,
		eligibilityTimeout: eligibilityTimeout,
	}
}

// normalizeKey enforces the network rule: MNO-class types must carry a
// network, every other type has it stripped from the key.
func normalizeKey(key model.RouteKey) (model.RouteKey, error) {
	if !key.TransactionType.Valid() {
		return key, invalidField("transaction_type", fmt.Sprintf("unknown transaction type '%s'", key.TransactionType))
	}
	if key.TransactionType.RequiresNetwork() {
		if key.Network == nil || *key.Network == "" {
			return key, invalidField("network", fmt.Sprintf("transaction type '%s' requires a network", key.TransactionType))
		}
		return key, nil
	}
	key.Network = nil
	return key, nil
}

// ResolvePartner selects the active partner for a routing key. An unmapped
// key is a hard routing failure. A mapped but unavailable partner degrades
// the route onto the failover chain instead of failing outright.
func (s *RoutingService) ResolvePartner(ctx context.Context, key model.RouteKey) (*model.RouteDecision, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	if decision, ok := s.cache.Get(ctx, key.String()); ok {
		return decision, nil
	}

	mapping, err := s.mappingRepo.FindActive(ctx, key)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, ErrUnmapped
	}

	var (
		primary  *model.Partner
		eligible []*model.Partner
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if primary, err = s.registry.GetPartner(gctx, mapping.PartnerID); err != nil {
			return fmt.Errorf("load mapped partner: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if eligible, err = s.registry.ListEligiblePartners(gctx, key.TransactionType, key.Region); err != nil {
			return fmt.Errorf("build failover chain: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	chain := withoutPartner(eligible, primary.ID)

	if !primary.Available() {
		// No silent substitution: surface the degraded condition and hand the
		// caller the failover chain minus the unavailable partner.
		if len(chain) == 0 {
			return nil, ErrPartnerUnavailable
		}
		return &model.RouteDecision{
			Primary:       chain[0],
			FailoverChain: chain[1:],
			Degraded:      true,
			DegradedNote:  fmt.Sprintf("mapped partner %s is unavailable", primary.Code),
		}, nil
	}

	decision := &model.RouteDecision{Primary: primary, FailoverChain: chain}
	s.cache.Set(ctx, key.String(), decision)
	return decision, nil
}

func withoutPartner(partners []*model.Partner, id string) []*model.Partner {
	var out []*model.Partner
	for _, p := range partners {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func (s *RoutingService) ListMappings(ctx context.Context, transactionType, region string) ([]repository.MappingRow, error) {
	return s.mappingRepo.ListWithPartners(ctx, transactionType, region)
}

// CreateMapping inserts a new active mapping row. The partial unique index on
// the routing key rejects a second active row for the same key.
func (s *RoutingService) CreateMapping(ctx context.Context, actor string, key model.RouteKey, partnerID string, priority int) (*model.PartnerMapping, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if err := s.checkEligibility(ctx, partnerID, key); err != nil {
		return nil, err
	}

	mapping := &model.PartnerMapping{
		TransactionType: key.TransactionType,
		Region:          key.Region,
		Network:         key.Network,
		PartnerID:       partnerID,
		Priority:        priority,
	}
	event := &model.AuditEvent{
		ID:           ulid.Make().String(),
		Actor:        actor,
		Action:       "mapping.create",
		EntityType:   "partner_mapping",
		NewPartnerID: &partnerID,
		Detail:       map[string]any{"key": key.String()},
	}
	if err := s.mappingRepo.Insert(ctx, mapping, event); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, key.String())
	return mapping, nil
}

// SwitchPartner re-points live routing for a key. The old row deactivation
// and new row activation are one atomic unit; a non-empty reason is required
// and recorded for audit.
func (s *RoutingService) SwitchPartner(ctx context.Context, actor string, key model.RouteKey, newPartnerID, reason string) (*model.PartnerMapping, *model.AuditEvent, error) {
	if reason == "" {
		return nil, nil, invalidField("reason", "a non-empty reason is required to switch partners")
	}
	key, err := normalizeKey(key)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkEligibility(ctx, newPartnerID, key); err != nil {
		return nil, nil, err
	}

	event := &model.AuditEvent{
		ID:           ulid.Make().String(),
		Actor:        actor,
		Action:       "mapping.switch",
		EntityType:   "partner_mapping",
		NewPartnerID: &newPartnerID,
		Reason:       &reason,
		Detail:       map[string]any{"key": key.String()},
	}

	old, current, err := s.mappingRepo.SwitchPartner(ctx, key, newPartnerID, 1, event)
	if err != nil {
		if isLockConflict(err) {
			return nil, nil, ErrConcurrentModification
		}
		return nil, nil, err
	}

	s.cache.Invalidate(ctx, key.String())

	oldID := "none"
	if old != nil {
		oldID = old.PartnerID
	}
	log.Info().
		Str("key", key.String()).
		Str("old_partner", oldID).
		Str("new_partner", newPartnerID).
		Str("actor", actor).
		Msg("partner switched")

	return current, event, nil
}

// checkEligibility verifies the partner may serve the key, under a bounded
// timeout. Lookups that time out fail the mutation closed.
func (s *RoutingService) checkEligibility(ctx context.Context, partnerID string, key model.RouteKey) error {
	ctx, cancel := context.WithTimeout(ctx, s.eligibilityTimeout)
	defer cancel()

	ok, err := s.registry.IsEligible(ctx, partnerID, key.TransactionType, key.Region)
	if err != nil {
		return fmt.Errorf("eligibility check: %w", err)
	}
	if !ok {
		return invalidField("partner_id",
			fmt.Sprintf("partner %s is not eligible for %s in %s", partnerID, key.TransactionType, key.Region))
	}
	return nil
}

func isLockConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03" || pgErr.Code == "40001"
	}
	return false
}
