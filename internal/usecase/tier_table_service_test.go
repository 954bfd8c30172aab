package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/tier_table/internal/domain"
	"github.com/vitos/tier_table/internal/infrastructure/storage"
	"github.com/vitos/tier_table/internal/usecase"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	published []*domain.TierTable
}

func (n *recordingNotifier) PublishTable(t *domain.TierTable) {
	n.published = append(n.published, t)
}

type failingRepo struct {
	domain.TierTableRepository
	err error
}

func (r *failingRepo) SaveTierTable(ctx context.Context, t *domain.TierTable) error {
	return r.err
}

func newService(t *testing.T) (*usecase.TierTableService, *storage.SQLiteStore, *recordingNotifier) {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	notifier := &recordingNotifier{}
	return usecase.NewTierTableService(store, notifier, zap.NewNop()), store, notifier
}

func TestTierTableService_CreateTable(t *testing.T) {
	svc, store, notifier := newService(t)
	ctx := context.Background()

	table, err := svc.CreateTable(ctx, "  ", "spy ")
	require.NoError(t, err)
	assert.NotEmpty(t, table.ID)
	assert.Equal(t, "Exit Tiers", table.Name)
	assert.Equal(t, "SPY", table.Symbol)
	require.Len(t, table.Tiers, 1)
	assert.Equal(t, "100", table.TotalAllocated.String())
	assert.False(t, table.CanAddTier)

	stored, err := store.GetTierTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Tiers, 1)
	assert.Len(t, notifier.published, 1)
}

func TestTierTableService_Mutations(t *testing.T) {
	svc, store, notifier := newService(t)
	ctx := context.Background()

	table, err := svc.CreateTable(ctx, "QQQ exits", "QQQ")
	require.NoError(t, err)
	first := table.Tiers[0].ID

	table, applied, err := svc.AddTier(ctx, table.ID)
	require.NoError(t, err)
	assert.False(t, applied, "fully allocated table")
	assert.Len(t, table.Tiers, 1)

	table, applied, err = svc.EditField(ctx, table.ID, first, domain.FieldPercentPosition, "70")
	require.NoError(t, err)
	require.True(t, applied)
	assert.True(t, table.CanAddTier)

	table, applied, err = svc.AddTier(ctx, table.ID)
	require.NoError(t, err)
	require.True(t, applied)
	require.Len(t, table.Tiers, 2)
	second := table.Tiers[1].ID
	assert.Equal(t, "30", table.Tiers[1].PercentPosition.String())

	table, applied, err = svc.ChangeExitType(ctx, table.ID, second, domain.ExitTypeOCO)
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, "5", table.Tiers[1].OptionStopOffset)

	stored, err := store.GetTierTable(ctx, table.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tiers, 2)
	assert.Equal(t, domain.ExitTypeOCO, stored.Tiers[1].ExitType)
	assert.Equal(t, "70", stored.Tiers[0].PercentPosition.String())

	table, applied, err = svc.RemoveTier(ctx, table.ID, first)
	require.NoError(t, err)
	assert.False(t, applied, "first tier is not removable")

	table, applied, err = svc.RemoveTier(ctx, table.ID, second)
	require.NoError(t, err)
	require.True(t, applied)
	require.Len(t, table.Tiers, 1)
	assert.Equal(t, "100", table.Tiers[0].PercentPosition.String())

	// create + four applied changes
	assert.Len(t, notifier.published, 5)
}

func TestTierTableService_UnknownTable(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, _, err := svc.AddTier(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrTableNotFound)

	_, err = svc.GetTable("missing")
	assert.ErrorIs(t, err, domain.ErrTableNotFound)

	assert.ErrorIs(t, svc.DeleteTable(ctx, "missing"), domain.ErrTableNotFound)
}

func TestTierTableService_LoadTables(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	a, err := svc.CreateTable(ctx, "A", "AAPL")
	require.NoError(t, err)
	_, _, err = svc.EditField(ctx, a.ID, a.Tiers[0].ID, domain.FieldPercentPosition, "25")
	require.NoError(t, err)
	_, _, err = svc.AddTier(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.CreateTable(ctx, "B", "MSFT")
	require.NoError(t, err)

	reloaded := usecase.NewTierTableService(store, nil, zap.NewNop())
	require.NoError(t, reloaded.LoadTables(ctx))

	tables := reloaded.ListTables()
	require.Len(t, tables, 2)

	got, err := reloaded.GetTable(a.ID)
	require.NoError(t, err)
	require.Len(t, got.Tiers, 2)
	assert.Equal(t, "25", got.Tiers[0].PercentPosition.String())
	assert.Equal(t, "75", got.Tiers[1].PercentPosition.String())

	// ids handed out after a reload must not collide with stored ones
	_, _, err = reloaded.EditField(ctx, a.ID, got.Tiers[1].ID, domain.FieldPercentPosition, "50")
	require.NoError(t, err)
	got, applied, err := reloaded.AddTier(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, applied)
	require.Len(t, got.Tiers, 3)
	assert.NotEqual(t, got.Tiers[1].ID, got.Tiers[2].ID)
	assert.NotEqual(t, got.Tiers[0].ID, got.Tiers[2].ID)
}

func TestTierTableService_DeleteTable(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	table, err := svc.CreateTable(ctx, "gone", "")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTable(ctx, table.ID))

	assert.Empty(t, svc.ListTables())
	_, err = store.GetTierTable(ctx, table.ID)
	assert.ErrorIs(t, err, domain.ErrTableNotFound)
}

func TestTierTableService_SaveFailure(t *testing.T) {
	svc, store, notifier := newService(t)
	ctx := context.Background()

	table, err := svc.CreateTable(ctx, "x", "")
	require.NoError(t, err)

	boom := errors.New("disk full")
	broken := usecase.NewTierTableService(&failingRepo{TierTableRepository: store, err: boom}, notifier, zap.NewNop())
	require.NoError(t, broken.LoadTables(ctx))
	loaded, err := broken.GetTable(table.ID)
	require.NoError(t, err)

	got, applied, err := broken.EditField(ctx, table.ID, table.Tiers[0].ID, domain.FieldOptionProfitOffset, "3")
	assert.False(t, applied)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "9", got.Tiers[0].OptionProfitOffset)
	assert.Len(t, notifier.published, 1, "nothing published when the save fails")

	// the failed change is rolled back in memory
	current, err := broken.GetTable(table.ID)
	require.NoError(t, err)
	assert.Equal(t, "9", current.Tiers[0].OptionProfitOffset)
	assert.True(t, loaded.UpdatedAt.Equal(current.UpdatedAt))

	_, applied, err = broken.EditField(ctx, table.ID, table.Tiers[0].ID, domain.FieldPercentPosition, "40")
	assert.False(t, applied)
	assert.ErrorIs(t, err, boom)
	current, err = broken.GetTable(table.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", current.Tiers[0].PercentPosition.String())
	assert.False(t, current.CanAddTier)
}
