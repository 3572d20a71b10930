package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Indicator names. Each maps to its own table keyed by observation date.
const (
	IndicatorMag7BTC      = "mag7_btc"
	IndicatorPiCycle      = "pi_cycle"
	IndicatorCoinbaseRank = "coinbase_rank"
	IndicatorCBBI         = "cbbi"
	IndicatorHalving      = "halving"
)

// Signal labels derived from fetched values
const (
	SignalNeutral             = "neutral"
	SignalTopWarning          = "top warning"
	SignalInsufficientHistory = "insufficient history"
)

// DateLayout is the calendar-day key format used by every indicator table
const DateLayout = "2006-01-02"

// IndicatorRecord is one observation of a tracked indicator. Every record
// belongs to exactly one indicator table and one calendar day; a later fetch
// for the same day replaces the row.
type IndicatorRecord interface {
	IndicatorName() string
	RecordDate() string
}

// Mag7BTC holds the weighted BTC + MAG7 composite index for one day
type Mag7BTC struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Date       string          `gorm:"uniqueIndex;size:10;not null" json:"date"`
	IndexValue decimal.Decimal `gorm:"type:decimal(15,4)" json:"index_value"` // 7-day smoothed
	MA100      float64         `json:"ma_100"`
	MA150      float64         `json:"ma_150"`
	MA200      float64         `json:"ma_200"`
	EMA100     float64         `json:"ema_100"`
	EMA150     float64         `json:"ema_150"`
	EMA200     float64         `json:"ema_200"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Mag7BTC) TableName() string        { return "mag7_btc" }
func (m *Mag7BTC) IndicatorName() string { return IndicatorMag7BTC }
func (m *Mag7BTC) RecordDate() string    { return m.Date }

// PiCycle holds the Pi Cycle Top indicator (111-day MA vs 2x 350-day MA) for one day
type PiCycle struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Date      string          `gorm:"uniqueIndex;size:10;not null" json:"date"`
	BTCPrice  decimal.Decimal `gorm:"type:decimal(15,2)" json:"btc_price"`
	MA111     float64         `json:"ma_111"`
	MA350x2   float64         `json:"ma_350x2"`
	Ratio     float64         `json:"ratio"` // MA111 / MA350x2, approaches 1.0 at cycle tops
	Signal    string          `json:"signal"`
	Crossed   bool            `json:"crossed"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (PiCycle) TableName() string        { return "pi_cycle" }
func (p *PiCycle) IndicatorName() string { return IndicatorPiCycle }
func (p *PiCycle) RecordDate() string    { return p.Date }

// CoinbaseRank holds the Coinbase app position in the Apple top-free chart
// for one day. Rank 9999 means the app was outside the chart.
type CoinbaseRank struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"uniqueIndex;size:10;not null" json:"date"`
	Rank      int       `json:"rank"`
	Store     string    `json:"store"` // apple_us
	Chart     string    `json:"chart"` // top_free_overall
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CoinbaseRank) TableName() string        { return "coinbase_rank" }
func (r *CoinbaseRank) IndicatorName() string { return IndicatorCoinbaseRank }
func (r *CoinbaseRank) RecordDate() string    { return r.Date }

// CBBIScore holds one day of the Colin Talks Crypto Bitcoin Index confidence
// score (0..1). The source returns its full history, so a single fetch can
// backfill many rows.
type CBBIScore struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"uniqueIndex;size:10;not null" json:"date"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CBBIScore) TableName() string        { return "daily_cbbi_scores" }
func (c *CBBIScore) IndicatorName() string { return IndicatorCBBI }
func (c *CBBIScore) RecordDate() string    { return c.Date }

// Halving holds the halving-cycle projection computed for one day
type Halving struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Date                  string    `gorm:"uniqueIndex;size:10;not null" json:"date"`
	LastHalvingDate       string    `gorm:"size:10" json:"last_halving_date"`
	DaysSinceHalving      int       `json:"days_since_halving"`
	NextHalvingDate       string    `gorm:"size:10" json:"next_halving_date"`
	DaysUntilNextHalving  int       `json:"days_until_next_halving"`
	ProjectedTopDate      string    `gorm:"size:10" json:"projected_top_date"` // halving + 520 days
	DaysUntilProjectedTop int       `json:"days_until_projected_top"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (Halving) TableName() string        { return "halving" }
func (h *Halving) IndicatorName() string { return IndicatorHalving }
func (h *Halving) RecordDate() string    { return h.Date }

// IndicatorUpdate tracks refresh health for one indicator. One row per
// indicator, updated in place after every fetch attempt, never deleted.
type IndicatorUpdate struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	IndicatorName string     `gorm:"uniqueIndex;not null" json:"indicator_name"`
	LastAttempt   time.Time  `json:"last_attempt"`
	LastSuccess   *time.Time `json:"last_success"`
	Success       bool       `json:"success"`
	ErrorMessage  *string    `json:"error_message"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (IndicatorUpdate) TableName() string { return "indicator_updates" }

// IndicatorNames lists all tracked indicators in refresh order
func IndicatorNames() []string {
	return []string{
		IndicatorMag7BTC,
		IndicatorPiCycle,
		IndicatorCoinbaseRank,
		IndicatorCBBI,
		IndicatorHalving,
	}
}

// IsIndicator reports whether name is a known indicator
func IsIndicator(name string) bool {
	for _, n := range IndicatorNames() {
		if n == name {
			return true
		}
	}
	return false
}

// MigrateIndicatorModels runs database migrations for indicator tables
func MigrateIndicatorModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&Mag7BTC{},
		&PiCycle{},
		&CoinbaseRank{},
		&CBBIScore{},
		&Halving{},
		&IndicatorUpdate{},
	)
}
