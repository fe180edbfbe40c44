package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ViewFilter narrows a channel view to a dispatch date range and, for D2C,
// a set of dispatch weekdays. An empty Days slice means the channel default
// (Monday and Thursday for D2C).
type ViewFilter struct {
	From time.Time      `json:"from"`
	To   time.Time      `json:"to"`
	Days []time.Weekday `json:"days,omitempty"`
	All  bool           `json:"all_days,omitempty"`
}

// WindowRollups carries the calendar comparison windows every channel view
// reports alongside its weekly breakdown.
type WindowRollups struct {
	MTD       PeriodRollup `json:"mtd"`
	YTD       PeriodRollup `json:"ytd"`
	LastMonth PeriodRollup `json:"last_month"`
	LFL       PeriodRollup `json:"lfl"`
	YTDLFL    PeriodRollup `json:"ytd_lfl"`
}

// D2CView is the payload behind the D2C dashboard tab.
type D2CView struct {
	Orders       []OrderProfit `json:"orders"`
	Weekly       []WeekRollup  `json:"weekly"`
	Windows      WindowRollups `json:"windows"`
	Unclassified []Order       `json:"unclassified,omitempty"`
	Warnings     []Warning     `json:"warnings,omitempty"`
	Partial      bool          `json:"partial"`
	Generation   uint64        `json:"generation"`
}

// RetailOrderProfit pairs a retail order with its cost-model breakdown.
type RetailOrderProfit struct {
	Order    Order               `json:"order"`
	Cases    int                 `json:"cases"`
	Profit   RetailProfitability `json:"profit"`
	Excluded bool                `json:"excluded"`
}

// StoreSummary is the per-store all-time reduction for the retail tab.
type StoreSummary struct {
	Store      string          `json:"store"`
	Orders     int             `json:"orders"`
	Units      int             `json:"units"`
	RevenueSum decimal.Decimal `json:"revenue_sum"`
	ProfitSum  decimal.Decimal `json:"profit_sum"`
	LastOrder  time.Time       `json:"last_order"`
	Duplicate  bool            `json:"possible_duplicate"`
}

// RetailView is the payload behind the retail dashboard tab.
type RetailView struct {
	Orders     []RetailOrderProfit `json:"orders"`
	Stores     []StoreSummary      `json:"stores"`
	Windows    WindowRollups       `json:"windows"`
	Warnings   []Warning           `json:"warnings,omitempty"`
	Partial    bool                `json:"partial"`
	Generation uint64              `json:"generation"`
}

// ProductTotal is a per-product unit reduction over some window of the
// GoPuff feed.
type ProductTotal struct {
	Product string `json:"product"`
	Units   int    `json:"units"`
}

// GoPuffView summarises the spreadsheet sales feed.
type GoPuffView struct {
	LatestDate     time.Time      `json:"latest_date"`
	UnitsToday     int            `json:"units_today"`
	SKUsWithSales  int            `json:"skus_with_sales"`
	SKUsZeroSales  int            `json:"skus_zero_sales"`
	Today          []ProductTotal `json:"today"`
	WeekStart      time.Time      `json:"week_start"`
	WeekEnd        time.Time      `json:"week_end"`
	Weekly         []ProductTotal `json:"weekly"`
	MonthlyTop     ProductTotal   `json:"monthly_top"`
	MonthlyTopWhen string         `json:"monthly_top_when,omitempty"`
	AllTimeTop     ProductTotal   `json:"all_time_top"`
	WeekOffset     int            `json:"week_offset,omitempty"`
	Warnings       []Warning      `json:"warnings,omitempty"`
	Partial        bool           `json:"partial"`
	Generation     uint64         `json:"generation"`
}

// CacheStatus reports per-bucket freshness for UI display.
type CacheStatus struct {
	Generation  uint64               `json:"generation"`
	LastCleared time.Time            `json:"last_cleared"`
	Buckets     map[string]time.Time `json:"buckets"`
}
