package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/logger"
	"github.com/baryc/quote-service/internal/repository"
)

// ErrEmptyLabel is returned when a service label has no visible characters.
var ErrEmptyLabel = errors.New("service label is empty")

// PricingConfigService manages the pricing configuration. Every change
// builds a new snapshot, stores it as a new version and publishes it; a
// snapshot already handed to callers is never modified.
type PricingConfigService interface {
	Current() *model.PricingSnapshot
	Load(ctx context.Context) (*model.PricingSnapshot, error)
	Refresh(ctx context.Context) (bool, error)
	Replace(ctx context.Context, snap *model.PricingSnapshot, by string) (*model.PricingSnapshot, error)
	AddService(ctx context.Context, label string, priceTTCPerArea float64, by string) (string, *model.PricingSnapshot, error)
	UpdateService(ctx context.Context, key string, update ServiceUpdate, by string) (*model.PricingSnapshot, error)
	RemoveService(ctx context.Context, key, by string) (*model.PricingSnapshot, error)
	SetCostPerArea(ctx context.Context, key string, cost *float64, by string) (*model.PricingSnapshot, error)
	History(ctx context.Context, limit int) ([]model.PricingSnapshot, error)
}

// ServiceUpdate lists the fields to change on a service; nil fields are kept.
type ServiceUpdate struct {
	Label           *string
	PriceTTCPerArea *float64
}

// PricingConfigServiceImpl implements PricingConfigService. Without a
// repository the configuration lives in memory only.
type PricingConfigServiceImpl struct {
	store *SnapshotStore
	repo  repository.PricingSnapshotsRepositoryInterface
	// writes serializes read-modify-publish cycles within this process;
	// the unique version index serializes them across processes.
	writes sync.Mutex
}

// NewPricingConfigService creates the service. repo may be nil.
func NewPricingConfigService(store *SnapshotStore, repo repository.PricingSnapshotsRepositoryInterface) *PricingConfigServiceImpl {
	return &PricingConfigServiceImpl{store: store, repo: repo}
}

// Current returns the active snapshot.
func (s *PricingConfigServiceImpl) Current() *model.PricingSnapshot {
	return s.store.Current()
}

// Load reads the active snapshot from storage and publishes it. On an empty
// database the default snapshot is stored as version 1.
func (s *PricingConfigServiceImpl) Load(ctx context.Context) (*model.PricingSnapshot, error) {
	if s.repo == nil {
		return s.store.Current(), nil
	}

	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pricing snapshot: %w", err)
	}

	if active == nil {
		seed := model.DefaultSnapshot()
		seed.Version = 1
		if err := s.repo.Save(ctx, seed); err != nil && !errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("seed pricing snapshot: %w", err)
		}
		if active, err = s.repo.GetActive(ctx); err != nil {
			return nil, fmt.Errorf("load pricing snapshot: %w", err)
		}
		if active == nil {
			active = seed
		}
		logger.From(ctx).Info().Int("version", active.Version).Msg("Seeded default pricing configuration")
	}

	s.store.Publish(active)
	return active, nil
}

// Refresh publishes the stored active snapshot when its version is newer
// than the one in memory. It reports whether a new snapshot was published.
func (s *PricingConfigServiceImpl) Refresh(ctx context.Context) (bool, error) {
	if s.repo == nil {
		return false, nil
	}

	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return false, fmt.Errorf("refresh pricing snapshot: %w", err)
	}
	if active == nil || !s.store.PublishIfNewer(active) {
		return false, nil
	}

	logger.From(ctx).Info().Int("version", active.Version).Msg("Pricing configuration refreshed")
	return true, nil
}

// Replace stores snap as the next version. Its Version, CreatedAt and
// CreatedBy are assigned by the service.
func (s *PricingConfigServiceImpl) Replace(ctx context.Context, snap *model.PricingSnapshot, by string) (*model.PricingSnapshot, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot is required", model.ErrInvalidSnapshot)
	}
	replacement := snap.Clone()
	return s.mutate(ctx, by, func(next *model.PricingSnapshot) error {
		next.VATRate = replacement.VATRate
		next.Catalog = replacement.Catalog
		next.Tariff = replacement.Tariff
		next.Costs = replacement.Costs
		next.TargetHourlyRate = replacement.TargetHourlyRate
		return nil
	})
}

// AddService adds a service to the catalog and returns its generated key.
func (s *PricingConfigServiceImpl) AddService(ctx context.Context, label string, priceTTCPerArea float64, by string) (string, *model.PricingSnapshot, error) {
	if strings.TrimSpace(label) == "" {
		return "", nil, ErrEmptyLabel
	}

	var key string
	snap, err := s.mutate(ctx, by, func(next *model.PricingSnapshot) error {
		next.Catalog, key = next.Catalog.AddService(label, priceTTCPerArea)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return key, snap, nil
}

// UpdateService renames and/or reprices a service. The key never changes.
func (s *PricingConfigServiceImpl) UpdateService(ctx context.Context, key string, update ServiceUpdate, by string) (*model.PricingSnapshot, error) {
	if update.Label != nil && strings.TrimSpace(*update.Label) == "" {
		return nil, ErrEmptyLabel
	}

	return s.mutate(ctx, by, func(next *model.PricingSnapshot) error {
		if _, ok := next.Catalog.HardwarePrice(key); ok {
			if update.PriceTTCPerArea == nil {
				return nil
			}
			var err error
			next.Catalog, err = next.Catalog.SetHardwarePrice(key, *update.PriceTTCPerArea)
			return err
		}

		var err error
		if update.Label != nil {
			if next.Catalog, err = next.Catalog.RenameService(key, *update.Label); err != nil {
				return err
			}
		}
		if update.PriceTTCPerArea != nil {
			if next.Catalog, err = next.Catalog.SetServicePrice(key, *update.PriceTTCPerArea); err != nil {
				return err
			}
		}
		if update.Label == nil && update.PriceTTCPerArea == nil {
			if _, ok := next.Catalog.ServicePrice(key); !ok {
				return fmt.Errorf("%w: %s", model.ErrServiceNotFound, key)
			}
		}
		return nil
	})
}

// RemoveService drops a service and its configured cost.
func (s *PricingConfigServiceImpl) RemoveService(ctx context.Context, key, by string) (*model.PricingSnapshot, error) {
	return s.mutate(ctx, by, func(next *model.PricingSnapshot) error {
		var err error
		if next.Catalog, err = next.Catalog.RemoveService(key); err != nil {
			return err
		}
		delete(next.Costs.CostsPerArea, key)
		return nil
	})
}

// SetCostPerArea sets the internal cost of a service (per m²) or a hardware
// service (per unit). A nil cost removes the entry, so the cost falls back
// to the margin rule.
func (s *PricingConfigServiceImpl) SetCostPerArea(ctx context.Context, key string, cost *float64, by string) (*model.PricingSnapshot, error) {
	return s.mutate(ctx, by, func(next *model.PricingSnapshot) error {
		table := &next.Costs.CostsPerArea
		if _, ok := next.Catalog.HardwarePrice(key); ok {
			table = &next.Costs.HardwareUnitCosts
		} else if _, ok := next.Catalog.ServicePrice(key); !ok {
			return fmt.Errorf("%w: %s", model.ErrServiceNotFound, key)
		}

		if cost == nil {
			delete(*table, key)
			return nil
		}
		if *table == nil {
			*table = make(map[string]float64)
		}
		(*table)[key] = *cost
		return nil
	})
}

// History returns stored snapshots, newest first. Without storage only the
// active snapshot is known.
func (s *PricingConfigServiceImpl) History(ctx context.Context, limit int) ([]model.PricingSnapshot, error) {
	if s.repo == nil {
		return []model.PricingSnapshot{*s.store.Current()}, nil
	}
	return s.repo.History(ctx, limit)
}

// mutate applies fn to a copy of the active snapshot, validates it, stores
// it under the next version and publishes it.
func (s *PricingConfigServiceImpl) mutate(ctx context.Context, by string, fn func(next *model.PricingSnapshot) error) (*model.PricingSnapshot, error) {
	s.writes.Lock()
	defer s.writes.Unlock()

	current := s.store.Current()
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version = current.Version + 1
	next.CreatedAt = time.Now().UTC()
	next.CreatedBy = by

	if err := next.Validate(); err != nil {
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, next); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				// Another instance wrote first; pick up its version so the
				// caller can retry against fresh data.
				if _, rerr := s.Refresh(ctx); rerr != nil {
					logger.From(ctx).Warn().Err(rerr).Msg("Failed to refresh pricing configuration after conflict")
				}
			}
			return nil, fmt.Errorf("save pricing snapshot: %w", err)
		}
	}

	s.store.Publish(next)
	logger.From(ctx).Info().
		Int("version", next.Version).
		Str("by", by).
		Msg("Pricing configuration updated")
	return next, nil
}
