package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

// DuplicatePolicy decides what a second arrival into the same warehouse
// does. Source data disagrees on the intent, so it is configurable.
type DuplicatePolicy string

const (
	// DuplicateIgnore emits no deltas; the re-stamp is treated as noise.
	DuplicateIgnore DuplicatePolicy = "ignore"
	// DuplicateRestamp emits an outbound+inbound pair on the same warehouse,
	// moving the case's stock contribution to the re-stamp month.
	DuplicateRestamp DuplicatePolicy = "restamp"
	// DuplicateFlag behaves like ignore but raises an anomaly warning.
	DuplicateFlag DuplicatePolicy = "flag"
)

// Timeline is the classified movement history of one case: its time-ordered
// events, the ledger deltas they produced and the terminal status.
type Timeline struct {
	CaseNo   string
	Quantity int
	Events   []domain.LocationEvent
	Deltas   []domain.Delta
	Status   domain.CaseStatus

	LastLocation    string
	LastClass       domain.LocationClass
	FirstEventAt    *time.Time
	FirstWarehouse  *time.Time
	LastWarehouseAt *time.Time
	DeliveredAt     *time.Time
	LastSiteAt      *time.Time
}

// timelineState is the fold state of the classifier.
type timelineState struct {
	warehouse string
	delivered bool
}

// Classify runs the transition state machine over a case's events.
//
// Events are processed ascending by timestamp; same-timestamp ties break on
// the declaration order of the source columns. The fold starts at "no
// location": a warehouse event books an inbound (plus an outbound on the
// previous warehouse when this is a transfer), a site event closes the case
// with a site inbound (plus the warehouse outbound when one is held).
// Events after delivery emit no deltas but stay on the timeline for audit.
func Classify(caseNo string, quantity int, events []domain.LocationEvent, policy DuplicatePolicy) (Timeline, []Warning) {
	if quantity < 1 {
		quantity = 1
	}

	t := Timeline{CaseNo: caseNo, Quantity: quantity}
	if len(events) == 0 {
		t.Status = domain.StatusNotReceived
		return t, nil
	}

	sorted := make([]domain.LocationEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].Seq < sorted[j].Seq
	})
	t.Events = sorted

	first := sorted[0].Timestamp
	t.FirstEventAt = &first

	var (
		st       timelineState
		warnings []Warning
	)

	delta := func(ev domain.LocationEvent, loc string, class domain.LocationClass, dir domain.Direction) domain.Delta {
		return domain.Delta{
			CaseNo:    caseNo,
			Location:  loc,
			Class:     class,
			Direction: dir,
			Month:     domain.MonthOf(ev.Timestamp),
			Quantity:  quantity,
		}
	}

	for _, ev := range sorted {
		ev := ev

		if ev.Class == domain.ClassSite {
			ts := ev.Timestamp
			if t.LastSiteAt == nil || ts.After(*t.LastSiteAt) {
				t.LastSiteAt = &ts
			}
		}

		if st.delivered {
			warnings = append(warnings, Warning{
				Kind:   WarnAnomalousTimeline,
				CaseNo: caseNo,
				Column: ev.Location,
				Detail: fmt.Sprintf("event at %s after delivery, ignored for ledgers", ev.Timestamp.Format("2006-01-02")),
			})
			continue
		}

		switch ev.Class {
		case domain.ClassWarehouse:
			ts := ev.Timestamp
			if t.FirstWarehouse == nil {
				t.FirstWarehouse = &ts
			}

			if st.warehouse == ev.Location {
				switch policy {
				case DuplicateRestamp:
					t.Deltas = append(t.Deltas,
						delta(ev, ev.Location, domain.ClassWarehouse, domain.DirectionOutbound),
						delta(ev, ev.Location, domain.ClassWarehouse, domain.DirectionInbound),
					)
					t.LastWarehouseAt = &ts
				case DuplicateFlag:
					warnings = append(warnings, Warning{
						Kind:   WarnAnomalousTimeline,
						CaseNo: caseNo,
						Column: ev.Location,
						Detail: fmt.Sprintf("duplicate arrival at %s on %s", ev.Location, ev.Timestamp.Format("2006-01-02")),
					})
				}
				continue
			}

			if st.warehouse != "" {
				// Transfer: both legs land in the month of the move.
				t.Deltas = append(t.Deltas, delta(ev, st.warehouse, domain.ClassWarehouse, domain.DirectionOutbound))
			}
			t.Deltas = append(t.Deltas, delta(ev, ev.Location, domain.ClassWarehouse, domain.DirectionInbound))
			st.warehouse = ev.Location
			t.LastWarehouseAt = &ts

		case domain.ClassSite:
			if st.warehouse != "" {
				t.Deltas = append(t.Deltas, delta(ev, st.warehouse, domain.ClassWarehouse, domain.DirectionOutbound))
			}
			t.Deltas = append(t.Deltas, delta(ev, ev.Location, domain.ClassSite, domain.DirectionInbound))
			ts := ev.Timestamp
			t.DeliveredAt = &ts
			t.LastLocation = ev.Location
			t.LastClass = domain.ClassSite
			st.warehouse = ""
			st.delivered = true
		}
	}

	if st.delivered {
		t.Status = domain.StatusCompleted
	} else {
		t.Status = domain.StatusPending
		t.LastLocation = st.warehouse
		t.LastClass = domain.ClassWarehouse
	}

	return t, warnings
}
