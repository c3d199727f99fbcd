package engine

import (
	"strings"
	"time"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

// Timestamp layouts accepted in date cells, tried in order. Snapshot
// exports are inconsistent about this, so the list is permissive.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2/1/2006",
	"2/1/06 15:04",
	"2/1/2006 15:04",
	"2-Jan-2006",
	time.RFC3339,
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0000-00-00 00:00:00" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractEvents turns one case row into its location events: one event per
// location column holding a parseable date. Unparseable cells drop only the
// event and raise a parse warning; empty cells are simply absent. Cell keys
// match location names under the same normalization as schema resolution, so
// rows keyed by raw header text still line up with the configured names.
func ExtractEvents(row domain.CaseRow, schema Schema) ([]domain.LocationEvent, []Warning) {
	var (
		events   []domain.LocationEvent
		warnings []Warning
	)

	cells := make(map[string]string, len(row.Cells))
	for key, value := range row.Cells {
		cells[normalizeColumnName(key)] = value
	}

	collect := func(cols []Column) {
		for _, col := range cols {
			raw, ok := cells[normalizeColumnName(col.Name)]
			if !ok || strings.TrimSpace(raw) == "" {
				continue
			}
			ts, ok := parseDate(raw)
			if !ok {
				warnings = append(warnings, Warning{
					Kind:   WarnParse,
					CaseNo: row.CaseNo,
					Column: col.Name,
					Value:  raw,
					Detail: "unparseable date cell, event dropped",
				})
				continue
			}
			events = append(events, domain.LocationEvent{
				Timestamp: ts,
				Location:  col.Name,
				Class:     col.Class,
				Seq:       col.Seq,
			})
		}
	}

	collect(schema.WarehouseCols)
	collect(schema.SiteCols)

	if len(events) == 0 {
		warnings = append(warnings, Warning{
			Kind:   WarnEmptyCase,
			CaseNo: row.CaseNo,
			Detail: "no parseable location events, case classified as not received",
		})
	}

	return events, warnings
}
