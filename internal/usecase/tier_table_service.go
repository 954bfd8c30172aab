package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/tier_table/internal/domain"
	"go.uber.org/zap"
)

const defaultTableName = "Exit Tiers"

type tableState struct {
	meta    domain.TierTable
	manager *TierListManager
}

func (st *tableState) snapshot() *domain.TierTable {
	t := st.meta
	t.Tiers = st.manager.Records()
	t.TotalAllocated = st.manager.TotalAllocated()
	t.CanAddTier = st.manager.CanAddTier()
	return &t
}

// TierTableService keeps one TierListManager per table. Every call runs
// under a single lock, so each change completes before the next starts.
type TierTableService struct {
	repo     domain.TierTableRepository
	notifier domain.TableNotifier
	logger   *zap.Logger

	mu     sync.Mutex
	tables map[string]*tableState
	now    func() time.Time
}

// NewTierTableService creates the service. notifier may be nil.
func NewTierTableService(repo domain.TierTableRepository, notifier domain.TableNotifier, logger *zap.Logger) *TierTableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TierTableService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		tables:   make(map[string]*tableState),
		now:      time.Now,
	}
}

// LoadTables rehydrates every persisted table, replacing what is in memory.
func (s *TierTableService) LoadTables(ctx context.Context) error {
	tables, err := s.repo.ListTierTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tier tables: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables = make(map[string]*tableState, len(tables))
	for _, t := range tables {
		s.tables[t.ID] = s.newState(*t, WithInitialRecords(t.Tiers))
	}
	s.logger.Info("Loaded tier tables", zap.Int("count", len(tables)))
	return nil
}

func (s *TierTableService) CreateTable(ctx context.Context, name, symbol string) (*domain.TierTable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultTableName
	}
	now := s.now()
	meta := domain.TierTable{
		ID:        uuid.NewString(),
		Name:      name,
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.newState(meta)
	snap := st.snapshot()
	if err := s.repo.SaveTierTable(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save tier table: %w", err)
	}
	s.tables[meta.ID] = st
	s.logger.Info("Created tier table",
		zap.String("table_id", meta.ID),
		zap.String("name", meta.Name),
		zap.String("symbol", meta.Symbol))
	s.publish(snap)
	return snap, nil
}

// ListTables returns snapshots ordered by creation time.
func (s *TierTableService) ListTables() []*domain.TierTable {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.TierTable, 0, len(s.tables))
	for _, st := range s.tables {
		out = append(out, st.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *TierTableService) GetTable(id string) (*domain.TierTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, id)
	}
	return st.snapshot(), nil
}

func (s *TierTableService) DeleteTable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrTableNotFound, id)
	}
	if err := s.repo.DeleteTierTable(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tier table %s: %w", id, err)
	}
	delete(s.tables, id)
	s.logger.Info("Deleted tier table", zap.String("table_id", id))
	return nil
}

// The mutations below return the table as it is after the call and
// whether the change was applied. A rejected change is not an error.

func (s *TierTableService) AddTier(ctx context.Context, tableID string) (*domain.TierTable, bool, error) {
	return s.mutate(ctx, tableID, "add_tier", func(m *TierListManager) bool {
		_, ok := m.AddTier()
		return ok
	})
}

func (s *TierTableService) RemoveTier(ctx context.Context, tableID, tierID string) (*domain.TierTable, bool, error) {
	return s.mutate(ctx, tableID, "remove_tier", func(m *TierListManager) bool {
		return m.RemoveTier(tierID)
	})
}

func (s *TierTableService) EditField(ctx context.Context, tableID, tierID string, field domain.TierField, value string) (*domain.TierTable, bool, error) {
	return s.mutate(ctx, tableID, "edit_field", func(m *TierListManager) bool {
		return m.EditField(tierID, field, value)
	})
}

func (s *TierTableService) ChangeExitType(ctx context.Context, tableID, tierID string, exitType domain.ExitType) (*domain.TierTable, bool, error) {
	return s.mutate(ctx, tableID, "change_exit_type", func(m *TierListManager) bool {
		return m.ChangeExitType(tierID, exitType)
	})
}

func (s *TierTableService) mutate(ctx context.Context, tableID, op string, apply func(*TierListManager) bool) (*domain.TierTable, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.tables[tableID]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrTableNotFound, tableID)
	}
	prev, prevUpdated := st.manager.clone(), st.meta.UpdatedAt
	if !apply(st.manager) {
		s.logger.Debug("Tier change rejected", zap.String("table_id", tableID), zap.String("op", op))
		return st.snapshot(), false, nil
	}

	st.meta.UpdatedAt = s.now()
	snap := st.snapshot()
	if err := s.repo.SaveTierTable(ctx, snap); err != nil {
		// Memory must not run ahead of what is stored.
		st.manager, st.meta.UpdatedAt = prev, prevUpdated
		s.logger.Error("Failed to persist tier table", zap.String("table_id", tableID), zap.String("op", op), zap.Error(err))
		return st.snapshot(), false, fmt.Errorf("failed to save tier table %s: %w", tableID, err)
	}
	s.publish(snap)
	return snap, true, nil
}

func (s *TierTableService) newState(meta domain.TierTable, opts ...ManagerOption) *tableState {
	meta.Tiers = nil
	tableID := meta.ID
	hooks := TierHooks{
		OnAdd: func(t domain.TierRecord) {
			s.logger.Debug("Tier added", zap.String("table_id", tableID), zap.String("tier_id", t.ID),
				zap.String("percent", t.PercentPosition.String()))
		},
		OnRemove: func(id string) {
			s.logger.Debug("Tier removed", zap.String("table_id", tableID), zap.String("tier_id", id))
		},
		OnUpdate: func(id string, t domain.TierRecord) {
			s.logger.Debug("Tier updated", zap.String("table_id", tableID), zap.String("tier_id", id),
				zap.String("exit_type", string(t.ExitType)), zap.String("percent", t.PercentPosition.String()))
		},
	}
	opts = append(opts, WithHooks(hooks))
	return &tableState{meta: meta, manager: NewTierListManager(opts...)}
}

func (s *TierTableService) publish(t *domain.TierTable) {
	if s.notifier != nil {
		s.notifier.PublishTable(t)
	}
}
