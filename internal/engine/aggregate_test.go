package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

func month(y int, m time.Month) domain.Month {
	return domain.Month{Year: y, Mon: m}
}

func TestLedgerSet_StockIsPrefixSum(t *testing.T) {
	ls := NewLedgerSet()
	ls.Add(domain.Delta{Location: "WH1", Class: domain.ClassWarehouse, Direction: domain.DirectionInbound, Month: month(2023, time.January), Quantity: 3})
	ls.Add(domain.Delta{Location: "WH1", Class: domain.ClassWarehouse, Direction: domain.DirectionInbound, Month: month(2023, time.March), Quantity: 1})
	ls.Add(domain.Delta{Location: "WH1", Class: domain.ClassWarehouse, Direction: domain.DirectionOutbound, Month: month(2023, time.March), Quantity: 2})

	ledgers := ls.WarehouseLedgers(month(2023, time.January), month(2023, time.April))
	rows := ledgers["WH1"]
	require.Len(t, rows, 4)

	assert.Equal(t, []domain.WarehouseLedgerRow{
		{Warehouse: "WH1", Month: "2023-01", Inbound: 3, Outbound: 0, Stock: 3},
		{Warehouse: "WH1", Month: "2023-02", Inbound: 0, Outbound: 0, Stock: 3},
		{Warehouse: "WH1", Month: "2023-03", Inbound: 1, Outbound: 2, Stock: 2},
		{Warehouse: "WH1", Month: "2023-04", Inbound: 0, Outbound: 0, Stock: 2},
	}, rows)

	// stock[m] == stock[m-1] + inbound[m] - outbound[m], seeded at zero
	prev := 0
	for _, row := range rows {
		assert.Equal(t, prev+row.Inbound-row.Outbound, row.Stock)
		prev = row.Stock
	}
}

func TestLedgerSet_SiteCumulativeIsNonDecreasing(t *testing.T) {
	ls := NewLedgerSet()
	ls.Add(domain.Delta{Location: "S1", Class: domain.ClassSite, Direction: domain.DirectionInbound, Month: month(2023, time.February), Quantity: 2})
	ls.Add(domain.Delta{Location: "S1", Class: domain.ClassSite, Direction: domain.DirectionInbound, Month: month(2023, time.May), Quantity: 1})

	rows := ls.SiteLedgers(month(2023, time.January), month(2023, time.June))["S1"]
	require.Len(t, rows, 6)

	prev := 0
	for _, row := range rows {
		assert.GreaterOrEqual(t, row.Cumulative, prev)
		prev = row.Cumulative
	}
	assert.Equal(t, 3, rows[len(rows)-1].Cumulative)
}

func TestLedgerSet_EmptyMonthsAreRepresented(t *testing.T) {
	ls := NewLedgerSet()
	ls.Ensure("WH1", domain.ClassWarehouse)
	ls.Ensure("S1", domain.ClassSite)

	wh := ls.WarehouseLedgers(month(2024, time.January), month(2024, time.March))["WH1"]
	require.Len(t, wh, 3)
	for _, row := range wh {
		assert.Zero(t, row.Inbound)
		assert.Zero(t, row.Outbound)
		assert.Zero(t, row.Stock)
	}

	sites := ls.SiteLedgers(month(2024, time.January), month(2024, time.March))["S1"]
	require.Len(t, sites, 3)
}

func TestLedgerSet_MergeIsOrderIndependent(t *testing.T) {
	deltas := make([]domain.Delta, 0, 200)
	rng := rand.New(rand.NewSource(7))
	locations := []string{"WH1", "WH2", "WH3"}
	for i := 0; i < 200; i++ {
		dir := domain.DirectionInbound
		if rng.Intn(2) == 1 {
			dir = domain.DirectionOutbound
		}
		deltas = append(deltas, domain.Delta{
			Location:  locations[rng.Intn(len(locations))],
			Class:     domain.ClassWarehouse,
			Direction: dir,
			Month:     month(2023, time.Month(1+rng.Intn(12))),
			Quantity:  1 + rng.Intn(3),
		})
	}

	sequential := NewLedgerSet()
	sequential.AddAll(deltas)

	// Split into chunks, fold each separately, merge in reverse order.
	chunks := []*LedgerSet{NewLedgerSet(), NewLedgerSet(), NewLedgerSet()}
	for i, d := range deltas {
		chunks[i%len(chunks)].Add(d)
	}
	merged := NewLedgerSet()
	for i := len(chunks) - 1; i >= 0; i-- {
		merged.Merge(chunks[i])
	}

	from, to := month(2023, time.January), month(2023, time.December)
	assert.Equal(t, sequential.WarehouseLedgers(from, to), merged.WarehouseLedgers(from, to))
}

func TestLedgerSet_ObservedRange(t *testing.T) {
	ls := NewLedgerSet()
	_, _, ok := ls.ObservedRange()
	assert.False(t, ok)

	ls.Add(domain.Delta{Location: "WH1", Class: domain.ClassWarehouse, Direction: domain.DirectionInbound, Month: month(2023, time.March), Quantity: 1})
	ls.Add(domain.Delta{Location: "S1", Class: domain.ClassSite, Direction: domain.DirectionInbound, Month: month(2024, time.February), Quantity: 1})

	start, end, ok := ls.ObservedRange()
	require.True(t, ok)
	assert.Equal(t, month(2023, time.March), start)
	assert.Equal(t, month(2024, time.February), end)
}
