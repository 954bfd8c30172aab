package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/tier_table/internal/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", "tiers.db", "path to the SQLite database")
	flag.Parse()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	tables, err := store.ListTierTables(ctx)
	if err != nil {
		fmt.Printf("Failed to list tier tables: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d tier tables:\n", len(tables))
	for _, t := range tables {
		fmt.Printf("- Table ID: %s, Name: %s, Symbol: %s, Updated: %s\n",
			t.ID, t.Name, t.Symbol, t.UpdatedAt.Format("2006-01-02 15:04:05"))

		if len(t.Tiers) == 0 {
			fmt.Printf("  ⚠️ No tiers stored\n")
			continue
		}
		for _, r := range t.Tiers {
			fmt.Printf("  #%d %-8s %6s%%  %-5s  opt pft=%s stop=%s  stk pft=%s stop=%s\n",
				r.ExitTierNumber, r.ID, r.PercentPosition.String(), r.ExitType,
				r.OptionProfitOffset, r.OptionStopOffset, r.StockProfitOffset, r.StockStopOffset)
		}
	}
}
