package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vitos/tier_table/internal/domain"
)

// TierHooks are called after a change has been applied to the list.
// Any of them may be nil.
type TierHooks struct {
	OnAdd    func(tier domain.TierRecord)
	OnRemove func(id string)
	OnUpdate func(id string, tier domain.TierRecord)
}

// Percent input beyond these bounds is treated as unparsable. Decimal
// arithmetic on extreme exponents allocates one digit per unit of exponent.
const (
	maxPercentInputLen = 64
	maxPercentExponent = 32
)

const idPrefix = "row-"

type ManagerOption func(*TierListManager)

// WithInitialRecords replaces the single default tier with a rehydrated
// sequence. An empty sequence keeps the default.
func WithInitialRecords(records []domain.TierRecord) ManagerOption {
	return func(m *TierListManager) {
		if len(records) == 0 {
			return
		}
		m.records = make([]domain.TierRecord, len(records))
		copy(m.records, records)
	}
}

func WithHooks(hooks TierHooks) ManagerOption {
	return func(m *TierListManager) {
		m.hooks = hooks
	}
}

// TierListManager owns an ordered list of exit tiers. It keeps the total
// allocation at or below 100%, numbers tiers 1..n in list order and never
// lets the list become empty. It is not safe for concurrent use.
type TierListManager struct {
	records []domain.TierRecord
	hooks   TierHooks
	nextID  int
}

func NewTierListManager(opts ...ManagerOption) *TierListManager {
	m := &TierListManager{
		records: []domain.TierRecord{domain.NewTierRecord(idPrefix+"0", domain.FullAllocation)},
	}
	for _, opt := range opts {
		opt(m)
	}
	for i := range m.records {
		gateStops(&m.records[i])
	}
	m.nextID = len(m.records)
	for _, r := range m.records {
		if n, ok := idSuffix(r.ID); ok && n >= m.nextID {
			m.nextID = n + 1
		}
	}
	m.renumber()
	return m
}

// Records returns a snapshot of the tiers in display order.
func (m *TierListManager) Records() []domain.TierRecord {
	out := make([]domain.TierRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *TierListManager) Get(id string) (domain.TierRecord, bool) {
	if i := m.indexOf(id); i >= 0 {
		return m.records[i], true
	}
	return domain.TierRecord{}, false
}

func (m *TierListManager) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, r := range m.records {
		total = total.Add(r.PercentPosition)
	}
	return total
}

// CanAddTier reports whether the rounded total is still below 100.
func (m *TierListManager) CanAddTier() bool {
	return m.TotalAllocated().Round(0).LessThan(domain.FullAllocation)
}

// AddTier appends a Limit tier holding whatever allocation is left.
func (m *TierListManager) AddTier() (domain.TierRecord, bool) {
	if !m.CanAddTier() {
		return domain.TierRecord{}, false
	}
	remaining := decimal.Max(decimal.Zero, domain.FullAllocation.Sub(m.TotalAllocated()))

	m.records = append(m.records, domain.NewTierRecord(m.newID(), remaining))
	m.renumber()

	added := m.records[len(m.records)-1]
	if m.hooks.OnAdd != nil {
		m.hooks.OnAdd(added)
	}
	return added, true
}

// RemoveTier drops a tier other than the first. The freed allocation goes
// to the first tier; when only the first tier is left it is reset to 100.
func (m *TierListManager) RemoveTier(id string) bool {
	i := m.indexOf(id)
	if i <= 0 {
		return false
	}
	freed := m.records[i].PercentPosition
	m.records = append(m.records[:i], m.records[i+1:]...)

	if len(m.records) == 1 {
		m.records[0].PercentPosition = domain.FullAllocation
	} else {
		m.records[0].PercentPosition = m.records[0].PercentPosition.Add(freed)
	}
	m.renumber()

	if m.hooks.OnRemove != nil {
		m.hooks.OnRemove(id)
	}
	return true
}

// EditField sets one cell of a tier. A percentage is clamped to 0 and to what
// keeps the total at or below 100; unparsable input becomes 0 and the other rows are left
// as they are. Offsets are stored verbatim. Stop offsets of a Limit tier
// cannot be edited.
func (m *TierListManager) EditField(id string, field domain.TierField, value string) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	r := &m.records[i]

	switch field {
	case domain.FieldPercentPosition:
		r.PercentPosition = m.clampPercent(i, value)
	case domain.FieldOptionProfitOffset:
		r.OptionProfitOffset = value
	case domain.FieldStockProfitOffset:
		r.StockProfitOffset = value
	case domain.FieldOptionStopOffset:
		if !r.HasStops() {
			return false
		}
		r.OptionStopOffset = value
	case domain.FieldStockStopOffset:
		if !r.HasStops() {
			return false
		}
		r.StockStopOffset = value
	default:
		return false
	}

	m.updated(i)
	return true
}

// ChangeExitType switches a tier between Limit and OCO. Switching to OCO
// always installs the default stops; earlier OCO values are not kept.
func (m *TierListManager) ChangeExitType(id string, exitType domain.ExitType) bool {
	if exitType != domain.ExitTypeLimit && exitType != domain.ExitTypeOCO {
		return false
	}
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	r := &m.records[i]
	r.ExitType = exitType
	if exitType == domain.ExitTypeOCO {
		r.OptionStopOffset = domain.DefaultOptionStopOffset
		r.StockStopOffset = domain.DefaultStockStopOffset
	} else {
		r.OptionStopOffset = domain.OffsetPlaceholder
		r.StockStopOffset = domain.OffsetPlaceholder
	}

	m.updated(i)
	return true
}

// clampPercent bounds an edited share to [0, 100 - others].
func (m *TierListManager) clampPercent(i int, value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if len(value) > maxPercentInputLen {
		return decimal.Zero
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	if exp := parsed.Exponent(); exp > maxPercentExponent || exp < -maxPercentExponent {
		return decimal.Zero
	}
	others := m.TotalAllocated().Sub(m.records[i].PercentPosition)
	return decimal.Max(decimal.Zero, decimal.Min(parsed, domain.FullAllocation.Sub(others)))
}

func (m *TierListManager) clone() *TierListManager {
	c := *m
	c.records = m.Records()
	return &c
}

func (m *TierListManager) updated(i int) {
	if m.hooks.OnUpdate != nil {
		m.hooks.OnUpdate(m.records[i].ID, m.records[i])
	}
}

func (m *TierListManager) indexOf(id string) int {
	for i, r := range m.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (m *TierListManager) renumber() {
	for i := range m.records {
		m.records[i].ExitTierNumber = i + 1
	}
}

// newID hands out row-N ids, skipping any a rehydrated list already uses.
func (m *TierListManager) newID() string {
	for {
		id := fmt.Sprintf("%s%d", idPrefix, m.nextID)
		m.nextID++
		if m.indexOf(id) < 0 {
			return id
		}
	}
}

func idSuffix(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// gateStops makes stored stop offsets agree with the exit type.
func gateStops(r *domain.TierRecord) {
	switch r.ExitType {
	case domain.ExitTypeOCO:
		if r.OptionStopOffset == domain.OffsetPlaceholder || r.OptionStopOffset == "" {
			r.OptionStopOffset = domain.DefaultOptionStopOffset
		}
		if r.StockStopOffset == domain.OffsetPlaceholder || r.StockStopOffset == "" {
			r.StockStopOffset = domain.DefaultStockStopOffset
		}
	default:
		r.ExitType = domain.ExitTypeLimit
		r.OptionStopOffset = domain.OffsetPlaceholder
		r.StockStopOffset = domain.OffsetPlaceholder
	}
}
