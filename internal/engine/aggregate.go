package engine

import (
	"sort"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

type monthlyFlow struct {
	inbound  int
	outbound int
}

// LedgerSet accumulates transition deltas as month-keyed sums. Add and Merge
// are commutative and associative, so per-case delta lists can be folded in
// any order (or in parallel, merging partial sets at the end).
type LedgerSet struct {
	warehouses map[string]map[domain.Month]monthlyFlow
	sites      map[string]map[domain.Month]int
}

// NewLedgerSet returns an empty ledger set.
func NewLedgerSet() *LedgerSet {
	return &LedgerSet{
		warehouses: make(map[string]map[domain.Month]monthlyFlow),
		sites:      make(map[string]map[domain.Month]int),
	}
}

// Add folds one delta into the set.
func (ls *LedgerSet) Add(d domain.Delta) {
	switch d.Class {
	case domain.ClassWarehouse:
		months := ls.warehouses[d.Location]
		if months == nil {
			months = make(map[domain.Month]monthlyFlow)
			ls.warehouses[d.Location] = months
		}
		flow := months[d.Month]
		if d.Direction == domain.DirectionInbound {
			flow.inbound += d.Quantity
		} else {
			flow.outbound += d.Quantity
		}
		months[d.Month] = flow
	case domain.ClassSite:
		months := ls.sites[d.Location]
		if months == nil {
			months = make(map[domain.Month]int)
			ls.sites[d.Location] = months
		}
		months[d.Month] += d.Quantity
	}
}

// Ensure registers a location so it appears in the materialized ledgers
// even when no delta ever touched it.
func (ls *LedgerSet) Ensure(location string, class domain.LocationClass) {
	switch class {
	case domain.ClassWarehouse:
		if ls.warehouses[location] == nil {
			ls.warehouses[location] = make(map[domain.Month]monthlyFlow)
		}
	case domain.ClassSite:
		if ls.sites[location] == nil {
			ls.sites[location] = make(map[domain.Month]int)
		}
	}
}

// AddAll folds a per-case delta list into the set.
func (ls *LedgerSet) AddAll(deltas []domain.Delta) {
	for _, d := range deltas {
		ls.Add(d)
	}
}

// Merge folds another ledger set into this one.
func (ls *LedgerSet) Merge(other *LedgerSet) {
	if other == nil {
		return
	}
	for loc, months := range other.warehouses {
		dst := ls.warehouses[loc]
		if dst == nil {
			dst = make(map[domain.Month]monthlyFlow, len(months))
			ls.warehouses[loc] = dst
		}
		for m, flow := range months {
			agg := dst[m]
			agg.inbound += flow.inbound
			agg.outbound += flow.outbound
			dst[m] = agg
		}
	}
	for loc, months := range other.sites {
		dst := ls.sites[loc]
		if dst == nil {
			dst = make(map[domain.Month]int, len(months))
			ls.sites[loc] = dst
		}
		for m, qty := range months {
			dst[m] += qty
		}
	}
}

// ObservedRange returns the earliest and latest months with any activity.
// ok is false when the set is empty.
func (ls *LedgerSet) ObservedRange() (start, end domain.Month, ok bool) {
	consider := func(m domain.Month) {
		if !ok {
			start, end, ok = m, m, true
			return
		}
		if m.Before(start) {
			start = m
		}
		if m.After(end) {
			end = m
		}
	}
	for _, months := range ls.warehouses {
		for m := range months {
			consider(m)
		}
	}
	for _, months := range ls.sites {
		for m := range months {
			consider(m)
		}
	}
	return start, end, ok
}

// WarehouseLedgers materializes the set over an explicit [start, end] month
// range: every month appears, empty ones with zero activity, and stock is
// the running prefix sum seeded at zero before the range. A case still held
// at range end therefore keeps contributing to stock month after month.
func (ls *LedgerSet) WarehouseLedgers(start, end domain.Month) map[string][]domain.WarehouseLedgerRow {
	months := domain.MonthRange(start, end)
	out := make(map[string][]domain.WarehouseLedgerRow, len(ls.warehouses))
	for _, loc := range sortedKeys(ls.warehouses) {
		flows := ls.warehouses[loc]
		rows := make([]domain.WarehouseLedgerRow, 0, len(months))
		stock := 0
		for _, m := range months {
			flow := flows[m]
			stock += flow.inbound - flow.outbound
			rows = append(rows, domain.WarehouseLedgerRow{
				Warehouse: loc,
				Month:     m.String(),
				Inbound:   flow.inbound,
				Outbound:  flow.outbound,
				Stock:     stock,
			})
		}
		out[loc] = rows
	}
	return out
}

// SiteLedgers materializes per-site monthly inbound with a running
// cumulative sum over the same explicit range.
func (ls *LedgerSet) SiteLedgers(start, end domain.Month) map[string][]domain.SiteLedgerRow {
	months := domain.MonthRange(start, end)
	out := make(map[string][]domain.SiteLedgerRow, len(ls.sites))
	for _, loc := range sortedKeys(ls.sites) {
		inbound := ls.sites[loc]
		rows := make([]domain.SiteLedgerRow, 0, len(months))
		cumulative := 0
		for _, m := range months {
			cumulative += inbound[m]
			rows = append(rows, domain.SiteLedgerRow{
				Site:       loc,
				Month:      m.String(),
				Inbound:    inbound[m],
				Cumulative: cumulative,
			})
		}
		out[loc] = rows
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
