// backend-go/internal/domain/models.go
package domain

import "time"

// LocationClass distinguishes intermediate warehouses from final delivery sites.
type LocationClass string

const (
	ClassWarehouse LocationClass = "warehouse"
	ClassSite      LocationClass = "site"
)

// Direction is the ledger direction of a movement delta.
type Direction string

const (
	DirectionInbound  Direction = "in"
	DirectionOutbound Direction = "out"
)

// CaseRow is one raw row of an ingested case table: the case identifier,
// its quantity and the raw cell values keyed by column name. Date parsing
// and column classification happen later, in the engine.
type CaseRow struct {
	CaseNo   string
	Quantity int
	Cells    map[string]string
}

// LocationEvent is one timestamped arrival of a case at a location.
// Seq is the declaration index of the column the event came from; it is the
// tie-break when two events share a timestamp.
type LocationEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Location  string        `json:"location"`
	Class     LocationClass `json:"class"`
	Seq       int           `json:"-"`
}

// Delta is a single ledger contribution produced by the transition
// classifier. Deltas are immutable and merged by month-keyed summation.
type Delta struct {
	CaseNo    string
	Location  string
	Class     LocationClass
	Direction Direction
	Month     Month
	Quantity  int
}

// WarehouseLedgerRow is one month of a warehouse ledger. Stock is the
// running prefix sum: stock[m] = stock[m-1] + inbound[m] - outbound[m].
type WarehouseLedgerRow struct {
	Warehouse string `json:"warehouse" db:"warehouse"`
	Month     string `json:"month" db:"month"`
	Inbound   int    `json:"inbound" db:"inbound"`
	Outbound  int    `json:"outbound" db:"outbound"`
	Stock     int    `json:"stock" db:"stock"`
}

// SiteLedgerRow is one month of a site ledger. Cumulative is non-decreasing.
type SiteLedgerRow struct {
	Site       string `json:"site" db:"site"`
	Month      string `json:"month" db:"month"`
	Inbound    int    `json:"inbound" db:"inbound"`
	Cumulative int    `json:"cumulative" db:"cumulative"`
}

// CaseReport is the per-case output contract: terminal status, staleness for
// pending cases and lead time for completed ones.
type CaseReport struct {
	CaseNo          string     `json:"case_no" db:"case_no"`
	Source          string     `json:"source" db:"source"`
	Quantity        int        `json:"quantity" db:"quantity"`
	Status          CaseStatus `json:"status" db:"status"`
	LastLocation    string     `json:"last_location" db:"last_location"`
	LastClass       string     `json:"last_class" db:"last_class"`
	FirstEventAt    *time.Time `json:"first_event_at,omitempty" db:"first_event_at"`
	LastWarehouseAt *time.Time `json:"last_warehouse_at,omitempty" db:"last_warehouse_at"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	ElapsedDays     *int       `json:"elapsed_days,omitempty" db:"elapsed_days"`
	LeadTimeDays    *int       `json:"lead_time_days,omitempty" db:"lead_time_days"`
}

// DeadStockRecord is one pending case whose staleness exceeded the
// configured threshold, tagged with its urgency tier.
type DeadStockRecord struct {
	CaseNo        string    `json:"case_no" db:"case_no"`
	Warehouse     string    `json:"warehouse" db:"warehouse"`
	LastInboundAt time.Time `json:"last_inbound_at" db:"last_inbound_at"`
	ElapsedDays   int       `json:"elapsed_days" db:"elapsed_days"`
	Tier          string    `json:"tier" db:"tier"`
}

// LeadTimeStats summarises lead time over completed cases.
type LeadTimeStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    int     `json:"max"`
}

// LedgerFilter narrows ledger queries by location and month window.
type LedgerFilter struct {
	Locations []string
	FromMonth string
	ToMonth   string
}

// CaseFilter narrows case report queries.
type CaseFilter struct {
	Status   string
	Source   string
	Page     int
	PageSize int
}

// WarehouseSummary is a warehouse's latest ledger position.
type WarehouseSummary struct {
	Warehouse     string `json:"warehouse" db:"warehouse"`
	TotalInbound  int    `json:"total_inbound" db:"total_inbound"`
	TotalOutbound int    `json:"total_outbound" db:"total_outbound"`
	CurrentStock  int    `json:"current_stock" db:"current_stock"`
}

// SiteSummary is a site's latest cumulative inbound.
type SiteSummary struct {
	Site              string `json:"site" db:"site"`
	CumulativeInbound int    `json:"cumulative_inbound" db:"cumulative_inbound"`
}

// StatusCount is one slice of the case status distribution.
type StatusCount struct {
	Status string `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}

// NetworkDashboard is the aggregate view the API serves to dashboards.
type NetworkDashboard struct {
	Warehouses     []WarehouseSummary `json:"warehouses"`
	Sites          []SiteSummary      `json:"sites"`
	StatusCounts   []StatusCount      `json:"status_counts"`
	LeadTime       LeadTimeStats      `json:"lead_time"`
	DeadStockCount int                `json:"dead_stock_count"`
}
