package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func whEvent(ts, loc string, seq int) domain.LocationEvent {
	return domain.LocationEvent{Timestamp: day(ts), Location: loc, Class: domain.ClassWarehouse, Seq: seq}
}

func siteEvent(ts, loc string, seq int) domain.LocationEvent {
	return domain.LocationEvent{Timestamp: day(ts), Location: loc, Class: domain.ClassSite, Seq: seq}
}

func TestClassify_TransferThenDelivery(t *testing.T) {
	events := []domain.LocationEvent{
		whEvent("2023-01-05", "WH1", 0),
		whEvent("2023-03-10", "WH2", 1),
		siteEvent("2023-05-01", "S1", 2),
	}

	timeline, warnings := Classify("C1", 1, events, DuplicateIgnore)
	require.Empty(t, warnings)

	assert.Equal(t, domain.StatusCompleted, timeline.Status)
	assert.Equal(t, "S1", timeline.LastLocation)

	expected := []domain.Delta{
		{CaseNo: "C1", Location: "WH1", Class: domain.ClassWarehouse, Direction: domain.DirectionInbound, Month: domain.Month{Year: 2023, Mon: time.January}, Quantity: 1},
		{CaseNo: "C1", Location: "WH1", Class: domain.ClassWarehouse, Direction: domain.DirectionOutbound, Month: domain.Month{Year: 2023, Mon: time.March}, Quantity: 1},
		{CaseNo: "C1", Location: "WH2", Class: domain.ClassWarehouse, Direction: domain.DirectionInbound, Month: domain.Month{Year: 2023, Mon: time.March}, Quantity: 1},
		{CaseNo: "C1", Location: "WH2", Class: domain.ClassWarehouse, Direction: domain.DirectionOutbound, Month: domain.Month{Year: 2023, Mon: time.May}, Quantity: 1},
		{CaseNo: "C1", Location: "S1", Class: domain.ClassSite, Direction: domain.DirectionInbound, Month: domain.Month{Year: 2023, Mon: time.May}, Quantity: 1},
	}
	assert.ElementsMatch(t, expected, timeline.Deltas)

	require.NotNil(t, timeline.FirstWarehouse)
	require.NotNil(t, timeline.LastSiteAt)
	assert.Equal(t, day("2023-01-05"), *timeline.FirstWarehouse)
	assert.Equal(t, day("2023-05-01"), *timeline.LastSiteAt)
}

func TestClassify_SiteWithoutWarehouse(t *testing.T) {
	events := []domain.LocationEvent{siteEvent("2023-04-10", "S1", 0)}

	timeline, warnings := Classify("C9", 1, events, DuplicateIgnore)
	require.Empty(t, warnings)

	assert.Equal(t, domain.StatusCompleted, timeline.Status)
	require.Len(t, timeline.Deltas, 1)
	assert.Equal(t, domain.ClassSite, timeline.Deltas[0].Class)
	assert.Equal(t, domain.DirectionInbound, timeline.Deltas[0].Direction)
}

func TestClassify_DuplicateWarehousePolicies(t *testing.T) {
	events := []domain.LocationEvent{
		whEvent("2023-01-05", "WH1", 0),
		whEvent("2023-02-15", "WH1", 0),
	}

	tests := []struct {
		name         string
		policy       DuplicatePolicy
		wantDeltas   int
		wantWarnings int
	}{
		{name: "ignore emits nothing for the re-stamp", policy: DuplicateIgnore, wantDeltas: 1, wantWarnings: 0},
		{name: "restamp moves the stock month", policy: DuplicateRestamp, wantDeltas: 3, wantWarnings: 0},
		{name: "flag raises an anomaly", policy: DuplicateFlag, wantDeltas: 1, wantWarnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeline, warnings := Classify("C4", 1, events, tt.policy)

			assert.Len(t, timeline.Deltas, tt.wantDeltas)
			assert.Len(t, warnings, tt.wantWarnings)
			assert.Equal(t, domain.StatusPending, timeline.Status)
			assert.Equal(t, "WH1", timeline.LastLocation)

			// Whatever the policy, the case holds exactly one unit.
			held := 0
			for _, d := range timeline.Deltas {
				if d.Direction == domain.DirectionInbound {
					held += d.Quantity
				} else {
					held -= d.Quantity
				}
			}
			assert.Equal(t, 1, held)
		})
	}
}

func TestClassify_EventsAfterDeliveryAreRetainedButInert(t *testing.T) {
	events := []domain.LocationEvent{
		whEvent("2023-01-05", "WH1", 0),
		siteEvent("2023-02-01", "S1", 2),
		whEvent("2023-03-01", "WH2", 1),
	}

	timeline, warnings := Classify("C7", 1, events, DuplicateIgnore)

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnAnomalousTimeline, warnings[0].Kind)
	assert.Equal(t, domain.StatusCompleted, timeline.Status)
	assert.Len(t, timeline.Events, 3, "post-delivery events stay on the timeline for audit")
	assert.Len(t, timeline.Deltas, 3, "post-delivery events emit no deltas")
}

func TestClassify_SameTimestampBreaksTiesByDeclarationOrder(t *testing.T) {
	// Same day: the warehouse column is declared before the site column, so
	// the warehouse arrival is processed first and the site event closes it
	// out with a matching outbound.
	events := []domain.LocationEvent{
		siteEvent("2023-06-01", "S1", 5),
		whEvent("2023-06-01", "WH1", 0),
	}

	timeline, warnings := Classify("C5", 1, events, DuplicateIgnore)
	require.Empty(t, warnings)

	require.Len(t, timeline.Deltas, 3)
	assert.Equal(t, "WH1", timeline.Deltas[0].Location)
	assert.Equal(t, domain.DirectionInbound, timeline.Deltas[0].Direction)
	assert.Equal(t, "WH1", timeline.Deltas[1].Location)
	assert.Equal(t, domain.DirectionOutbound, timeline.Deltas[1].Direction)
	assert.Equal(t, "S1", timeline.Deltas[2].Location)
}

func TestClassify_NoEvents(t *testing.T) {
	timeline, warnings := Classify("C3", 1, nil, DuplicateIgnore)

	assert.Equal(t, domain.StatusNotReceived, timeline.Status)
	assert.Empty(t, timeline.Deltas)
	assert.Empty(t, warnings)
}

func TestClassify_QuantityWeightsDeltas(t *testing.T) {
	events := []domain.LocationEvent{whEvent("2023-01-05", "WH1", 0)}

	timeline, _ := Classify("C8", 5, events, DuplicateIgnore)

	require.Len(t, timeline.Deltas, 1)
	assert.Equal(t, 5, timeline.Deltas[0].Quantity)
}
