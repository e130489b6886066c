package settings

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

type stubRepo struct {
	row   *models.StoreSettings
	loads int
	saves int
}

func (r *stubRepo) Load(context.Context) (*models.StoreSettings, error) {
	r.loads++
	if r.row == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *r.row
	return &clone, nil
}

func (r *stubRepo) Save(_ context.Context, settings *models.StoreSettings) error {
	r.saves++
	clone := *settings
	r.row = &clone
	return nil
}

type stubVersioner struct {
	counter int64
}

func (v *stubVersioner) Get(context.Context, string) (string, error) {
	return strconv.FormatInt(v.counter, 10), nil
}

func (v *stubVersioner) Incr(context.Context, string) (int64, error) {
	v.counter++
	return v.counter, nil
}

func (v *stubVersioner) SettingsVersionKey() string { return "md:settings:version" }

func seededRow() *models.StoreSettings {
	return &models.StoreSettings{
		ID: models.SettingsRowID,
		Delivery: types.DeliverySettings{
			FeePerKm:         decimal.RequireFromString("2.5"),
			FreeRadiusMeters: 3000,
			MaxRadiusKm:      10,
			Rounding:         enums.RoundingHalfReal,
		},
		Schedule: types.DefaultScheduleConfig(),
	}
}

func newCachedService(t *testing.T, repo Repository, version Versioner) *service {
	t.Helper()
	svc, err := NewService(repo, version, time.Minute)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func TestSnapshotCachesWithinTTL(t *testing.T) {
	repo := &stubRepo{row: seededRow()}
	svc := newCachedService(t, repo, nil)

	for i := 0; i < 5; i++ {
		if _, err := svc.Snapshot(context.Background()); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}
	if repo.loads != 1 {
		t.Fatalf("expected a single load, got %d", repo.loads)
	}
}

func TestSnapshotReloadsAfterTTL(t *testing.T) {
	repo := &stubRepo{row: seededRow()}
	svc := newCachedService(t, repo, nil)

	now := time.Now()
	svc.now = func() time.Time { return now }

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot after ttl: %v", err)
	}
	if repo.loads != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", repo.loads)
	}
}

func TestSnapshotReloadsWhenVersionMoves(t *testing.T) {
	repo := &stubRepo{row: seededRow()}
	version := &stubVersioner{}
	svc := newCachedService(t, repo, version)

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	version.counter++ // a peer instance wrote settings
	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot after version bump: %v", err)
	}
	if repo.loads != 2 {
		t.Fatalf("expected reload on version change, got %d loads", repo.loads)
	}
}

func TestSnapshotNotSeeded(t *testing.T) {
	svc := newCachedService(t, &stubRepo{}, nil)

	_, err := svc.Snapshot(context.Background())
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestUpdateDeliveryPersistsAndBumpsVersion(t *testing.T) {
	repo := &stubRepo{row: seededRow()}
	version := &stubVersioner{}
	svc := newCachedService(t, repo, version)

	cfg := types.DeliverySettings{
		FeePerKm:         decimal.RequireFromString("3"),
		FreeRadiusMeters: 2000,
		MaxRadiusKm:      8,
		Rounding:         enums.RoundingCent,
	}
	if err := svc.UpdateDelivery(context.Background(), cfg, "admin@mariadoce.com.br"); err != nil {
		t.Fatalf("update delivery: %v", err)
	}

	if repo.saves != 1 {
		t.Fatalf("expected one save, got %d", repo.saves)
	}
	if version.counter != 1 {
		t.Fatalf("expected version bump, got %d", version.counter)
	}
	if repo.row.UpdatedBy == nil || *repo.row.UpdatedBy != "admin@mariadoce.com.br" {
		t.Fatalf("actor not recorded: %v", repo.row.UpdatedBy)
	}

	got, err := svc.Delivery(context.Background())
	if err != nil {
		t.Fatalf("delivery: %v", err)
	}
	if !got.FeePerKm.Equal(decimal.RequireFromString("3")) {
		t.Fatalf("cache not updated after write: %+v", got)
	}
}

func TestUpdateDeliveryValidation(t *testing.T) {
	svc := newCachedService(t, &stubRepo{row: seededRow()}, nil)

	bad := types.DeliverySettings{
		FeePerKm:    decimal.RequireFromString("-1"),
		MaxRadiusKm: 10,
		Rounding:    enums.RoundingHalfReal,
	}
	if err := svc.UpdateDelivery(context.Background(), bad, ""); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	bad = types.DeliverySettings{
		FeePerKm:    decimal.RequireFromString("2"),
		MaxRadiusKm: 0,
		Rounding:    enums.RoundingHalfReal,
	}
	if err := svc.UpdateDelivery(context.Background(), bad, ""); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected radius validation error, got %v", err)
	}

	bad = types.DeliverySettings{
		FeePerKm:    decimal.RequireFromString("2"),
		MaxRadiusKm: 10,
		Rounding:    "nearest_real",
	}
	if err := svc.UpdateDelivery(context.Background(), bad, ""); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected rounding validation error, got %v", err)
	}
}

func TestUpdateScheduleValidatesRanges(t *testing.T) {
	svc := newCachedService(t, &stubRepo{row: seededRow()}, nil)

	cfg := types.DefaultScheduleConfig()
	cfg.Weekly[enums.WeekdayMonday] = []string{"22:00-02:00"}
	if err := svc.UpdateSchedule(context.Background(), cfg, ""); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for midnight-crossing range, got %v", err)
	}

	ok := types.DefaultScheduleConfig()
	ok.Weekly[enums.WeekdayMonday] = []string{"22:00-23:59", "08:00-12:00"}
	if err := svc.UpdateSchedule(context.Background(), ok, "admin"); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}

func TestEnsureSeed(t *testing.T) {
	repo := &stubRepo{}
	svc := newCachedService(t, repo, nil)

	if err := svc.EnsureSeed(context.Background(), *seededRow()); err != nil {
		t.Fatalf("ensure seed: %v", err)
	}
	if repo.saves != 1 {
		t.Fatalf("expected seed write, got %d saves", repo.saves)
	}

	// Second call is a no-op.
	if err := svc.EnsureSeed(context.Background(), *seededRow()); err != nil {
		t.Fatalf("ensure seed again: %v", err)
	}
	if repo.saves != 1 {
		t.Fatalf("seed must not overwrite, got %d saves", repo.saves)
	}
}
