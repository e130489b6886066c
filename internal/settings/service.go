package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/internal/schedule"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

// Repository is the persistence surface for the settings singleton.
type Repository interface {
	Load(ctx context.Context) (*models.StoreSettings, error)
	Save(ctx context.Context, settings *models.StoreSettings) error
}

// Versioner tracks a shared generation counter so multiple instances drop
// their local cache after any admin write. The redis client satisfies this.
type Versioner interface {
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	SettingsVersionKey() string
}

// Service loads and mutates the store-wide configuration. Reads are served
// from an in-process cache refreshed on TTL expiry or when the shared version
// counter moves.
type Service interface {
	Delivery(ctx context.Context) (types.DeliverySettings, error)
	Schedule(ctx context.Context) (types.ScheduleConfig, error)
	Snapshot(ctx context.Context) (*models.StoreSettings, error)
	UpdateDelivery(ctx context.Context, cfg types.DeliverySettings, actor string) error
	UpdateSchedule(ctx context.Context, cfg types.ScheduleConfig, actor string) error
	Refresh(ctx context.Context) error
	EnsureSeed(ctx context.Context, defaults models.StoreSettings) error
}

type service struct {
	repo     Repository
	version  Versioner
	cacheTTL time.Duration
	now      func() time.Time

	mu          sync.RWMutex
	cached      *models.StoreSettings
	cachedAt    time.Time
	seenVersion string
}

// NewService builds the settings service. A nil versioner degrades to pure
// TTL caching, which is fine for single-instance deployments.
func NewService(repo Repository, version Versioner, cacheTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &service{
		repo:     repo,
		version:  version,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

func (s *service) Delivery(ctx context.Context) (types.DeliverySettings, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return types.DeliverySettings{}, err
	}
	return snapshot.Delivery, nil
}

func (s *service) Schedule(ctx context.Context) (types.ScheduleConfig, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return types.ScheduleConfig{}, err
	}
	return snapshot.Schedule, nil
}

func (s *service) Snapshot(ctx context.Context) (*models.StoreSettings, error) {
	s.mu.RLock()
	cached, fresh := s.cached, s.cached != nil && s.now().Sub(s.cachedAt) < s.cacheTTL
	s.mu.RUnlock()

	if fresh && !s.versionMoved(ctx) {
		return cached, nil
	}
	if err := s.Refresh(ctx); err != nil {
		// Serve the stale copy over failing the request outright.
		if cached != nil {
			return cached, nil
		}
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached, nil
}

// Refresh reloads the singleton from the database unconditionally.
func (s *service) Refresh(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeDependency, "store settings not seeded")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}

	version := s.currentVersion(ctx)

	s.mu.Lock()
	s.cached = loaded
	s.cachedAt = s.now()
	s.seenVersion = version
	s.mu.Unlock()
	return nil
}

func (s *service) UpdateDelivery(ctx context.Context, cfg types.DeliverySettings, actor string) error {
	if err := validateDelivery(cfg); err != nil {
		return err
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	updated := *snapshot
	updated.Delivery = cfg
	return s.persist(ctx, &updated, actor)
}

func (s *service) UpdateSchedule(ctx context.Context, cfg types.ScheduleConfig, actor string) error {
	if err := schedule.ValidateConfig(cfg); err != nil {
		return err
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	updated := *snapshot
	updated.Schedule = cfg
	return s.persist(ctx, &updated, actor)
}

// EnsureSeed writes the bootstrap row when none exists yet.
func (s *service) EnsureSeed(ctx context.Context, defaults models.StoreSettings) error {
	_, err := s.repo.Load(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store settings")
	}

	defaults.ID = models.SettingsRowID
	if err := s.repo.Save(ctx, &defaults); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed store settings")
	}
	return s.Refresh(ctx)
}

func (s *service) persist(ctx context.Context, updated *models.StoreSettings, actor string) error {
	updated.ID = models.SettingsRowID
	if actor != "" {
		updated.UpdatedBy = &actor
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save store settings")
	}

	if s.version != nil {
		// Failure here only delays peers until their TTL expires.
		_, _ = s.version.Incr(ctx, s.version.SettingsVersionKey())
	}

	version := s.currentVersion(ctx)
	s.mu.Lock()
	s.cached = updated
	s.cachedAt = s.now()
	s.seenVersion = version
	s.mu.Unlock()
	return nil
}

func (s *service) currentVersion(ctx context.Context) string {
	if s.version == nil {
		return ""
	}
	value, err := s.version.Get(ctx, s.version.SettingsVersionKey())
	if err != nil {
		return ""
	}
	return value
}

func (s *service) versionMoved(ctx context.Context) bool {
	if s.version == nil {
		return false
	}
	current := s.currentVersion(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return current != s.seenVersion
}

func validateDelivery(cfg types.DeliverySettings) error {
	if cfg.FeePerKm.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "fee per km cannot be negative")
	}
	if cfg.FreeRadiusMeters < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "free radius cannot be negative")
	}
	if cfg.MaxRadiusKm <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max radius must be positive")
	}
	if !cfg.Rounding.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown rounding policy %q", cfg.Rounding))
	}
	return nil
}
