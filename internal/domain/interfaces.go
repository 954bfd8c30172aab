package domain

import "context"

// TierTableRepository defines storage operations for tier tables.
// GetTierTable returns ErrTableNotFound for an unknown id.
type TierTableRepository interface {
	SaveTierTable(ctx context.Context, table *TierTable) error
	GetTierTable(ctx context.Context, id string) (*TierTable, error)
	ListTierTables(ctx context.Context) ([]*TierTable, error)
	DeleteTierTable(ctx context.Context, id string) error
}

// TableNotifier receives a snapshot after every applied change.
type TableNotifier interface {
	PublishTable(table *TierTable)
}
