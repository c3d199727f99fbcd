package engine

import (
	"sort"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

// Default staleness threshold and urgency tier boundaries, in days.
const (
	DefaultDeadStockDays = 90
	DefaultElevatedDays  = 180
	DefaultUrgentDays    = 365
)

// DeadStockTier maps elapsed days onto an urgency tier.
func DeadStockTier(elapsedDays, elevatedDays, urgentDays int) string {
	switch {
	case elapsedDays >= urgentDays:
		return domain.TierUrgent
	case elapsedDays >= elevatedDays:
		return domain.TierElevated
	default:
		return domain.TierWatch
	}
}

// SelectDeadStock filters pending cases whose staleness meets the threshold
// and tags each with its tier, sorted descending by elapsed days. Raising
// the threshold can only shrink the result, never grow it.
func SelectDeadStock(reports []domain.CaseReport, thresholdDays, elevatedDays, urgentDays int) []domain.DeadStockRecord {
	if thresholdDays <= 0 {
		thresholdDays = DefaultDeadStockDays
	}
	if elevatedDays <= 0 {
		elevatedDays = DefaultElevatedDays
	}
	if urgentDays <= 0 {
		urgentDays = DefaultUrgentDays
	}

	var records []domain.DeadStockRecord
	for _, r := range reports {
		if r.Status != domain.StatusPending || r.ElapsedDays == nil || r.LastWarehouseAt == nil {
			continue
		}
		if *r.ElapsedDays < thresholdDays {
			continue
		}
		records = append(records, domain.DeadStockRecord{
			CaseNo:        r.CaseNo,
			Warehouse:     r.LastLocation,
			LastInboundAt: *r.LastWarehouseAt,
			ElapsedDays:   *r.ElapsedDays,
			Tier:          DeadStockTier(*r.ElapsedDays, elevatedDays, urgentDays),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].ElapsedDays != records[j].ElapsedDays {
			return records[i].ElapsedDays > records[j].ElapsedDays
		}
		return records[i].CaseNo < records[j].CaseNo
	})

	return records
}
