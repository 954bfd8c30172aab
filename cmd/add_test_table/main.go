package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/vitos/tier_table/internal/domain"
	"github.com/vitos/tier_table/internal/infrastructure/storage"
	"github.com/vitos/tier_table/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	dbPath := flag.String("db", "tiers.db", "path to the SQLite database")
	symbol := flag.String("symbol", "SPY", "symbol of the test table")
	flag.Parse()

	// Connect to database
	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	svc := usecase.NewTierTableService(store, nil, zap.NewNop())

	table, err := svc.CreateTable(ctx, "Test exits", *symbol)
	if err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}
	first := table.Tiers[0].ID

	// 50 / 30 / 20, last tier as OCO
	steps := []func() (*domain.TierTable, bool, error){
		func() (*domain.TierTable, bool, error) {
			return svc.EditField(ctx, table.ID, first, domain.FieldPercentPosition, "50")
		},
		func() (*domain.TierTable, bool, error) { return svc.AddTier(ctx, table.ID) },
		func() (*domain.TierTable, bool, error) {
			return svc.EditField(ctx, table.ID, "row-1", domain.FieldPercentPosition, "30")
		},
		func() (*domain.TierTable, bool, error) { return svc.AddTier(ctx, table.ID) },
		func() (*domain.TierTable, bool, error) {
			return svc.ChangeExitType(ctx, table.ID, "row-2", domain.ExitTypeOCO)
		},
	}
	for i, step := range steps {
		var applied bool
		table, applied, err = step()
		if err != nil {
			log.Fatalf("Step %d failed: %v", i+1, err)
		}
		if !applied {
			log.Fatalf("Step %d was rejected", i+1)
		}
	}

	fmt.Printf("✅ Test table added successfully!\n")
	fmt.Printf("Table ID: %s\n", table.ID)
	fmt.Printf("Symbol: %s\n", table.Symbol)
	for _, r := range table.Tiers {
		fmt.Printf("Tier %d: %s%% %s\n", r.ExitTierNumber, r.PercentPosition.String(), r.ExitType)
	}
}
