package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TierTable is a named, persisted tier list, e.g. the exits for one symbol.
type TierTable struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Symbol         string          `json:"symbol"`
	Tiers          []TierRecord    `json:"tiers"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	CanAddTier     bool            `json:"can_add_tier"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Column struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	MinWidth int    `json:"min_width"`
	Align    string `json:"align"`
}

// Columns is the header of the tier table, in display order.
var Columns = []Column{
	{ID: "addTier", Label: "Add Tier", MinWidth: 80, Align: "center"},
	{ID: "exitTier", Label: "Exit Tier", MinWidth: 80, Align: "center"},
	{ID: string(FieldPercentPosition), Label: "% Position", MinWidth: 100, Align: "center"},
	{ID: "exitType", Label: "Exit Type", MinWidth: 100, Align: "center"},
	{ID: string(FieldOptionProfitOffset), Label: "Option Pft Offset", MinWidth: 120, Align: "center"},
	{ID: string(FieldOptionStopOffset), Label: "Option Stop Offset", MinWidth: 140, Align: "center"},
	{ID: string(FieldStockProfitOffset), Label: "Stock Pft Offset", MinWidth: 120, Align: "center"},
	{ID: string(FieldStockStopOffset), Label: "Stock Stop Offset", MinWidth: 140, Align: "center"},
	{ID: "removeTier", Label: "Remove Tier", MinWidth: 100, Align: "center"},
}
