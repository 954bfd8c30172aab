package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ExitType string

const (
	ExitTypeLimit ExitType = "Limit"
	ExitTypeOCO   ExitType = "OCO" // one-cancels-other: target + stop
)

// ParseExitType maps the select value sent by the rendering layer.
func ParseExitType(s string) (ExitType, error) {
	switch ExitType(s) {
	case ExitTypeLimit:
		return ExitTypeLimit, nil
	case ExitTypeOCO:
		return ExitTypeOCO, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidExitType, s)
}

// TierField names an editable cell of a tier row.
type TierField string

const (
	FieldPercentPosition    TierField = "percentPosition"
	FieldOptionProfitOffset TierField = "optionPftOffset"
	FieldOptionStopOffset   TierField = "optionStopOffset"
	FieldStockProfitOffset  TierField = "stockPftOffset"
	FieldStockStopOffset    TierField = "stockStopOffset"
)

func ParseTierField(s string) (TierField, error) {
	switch f := TierField(s); f {
	case FieldPercentPosition, FieldOptionProfitOffset, FieldOptionStopOffset,
		FieldStockProfitOffset, FieldStockStopOffset:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
}

const (
	// OffsetPlaceholder is shown in the stop offset cells of Limit tiers.
	OffsetPlaceholder = "--"

	DefaultOptionProfitOffset = "9"
	DefaultStockProfitOffset  = "2"
	DefaultOptionStopOffset   = "5"
	DefaultStockStopOffset    = "1"
)

// FullAllocation is the total percentage every tier list shares.
var FullAllocation = decimal.NewFromInt(100)

// TierRecord is one exit tier: a slice of the position and how to exit it.
type TierRecord struct {
	ID                 string          `json:"id"`
	ExitTierNumber     int             `json:"exit_tier"`
	PercentPosition    decimal.Decimal `json:"percent_position"`
	ExitType           ExitType        `json:"exit_type"`
	OptionProfitOffset string          `json:"option_pft_offset"`
	OptionStopOffset   string          `json:"option_stop_offset"`
	StockProfitOffset  string          `json:"stock_pft_offset"`
	StockStopOffset    string          `json:"stock_stop_offset"`
}

// NewTierRecord returns a Limit tier with the default profit offsets.
func NewTierRecord(id string, percent decimal.Decimal) TierRecord {
	return TierRecord{
		ID:                 id,
		PercentPosition:    percent,
		ExitType:           ExitTypeLimit,
		OptionProfitOffset: DefaultOptionProfitOffset,
		OptionStopOffset:   OffsetPlaceholder,
		StockProfitOffset:  DefaultStockProfitOffset,
		StockStopOffset:    OffsetPlaceholder,
	}
}

// HasStops reports whether the stop offset cells are editable.
func (r TierRecord) HasStops() bool {
	return r.ExitType == ExitTypeOCO
}
