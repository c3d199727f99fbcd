package engine

import (
	"sort"
	"time"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

const hoursPerDay = 24

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / hoursPerDay)
}

// BuildReport derives the per-case output contract from a classified
// timeline. Elapsed days are measured against the supplied reference "now".
//
// Lead time uses the span definition: earliest warehouse timestamp to latest
// observed site timestamp. For multi-warehouse cases this differs from the
// sum of per-leg durations; the span is what the downstream reports consume.
func BuildReport(t Timeline, source string, now time.Time) domain.CaseReport {
	report := domain.CaseReport{
		CaseNo:       t.CaseNo,
		Source:       source,
		Quantity:     t.Quantity,
		Status:       t.Status,
		FirstEventAt: t.FirstEventAt,
		DeliveredAt:  t.DeliveredAt,
	}

	switch t.Status {
	case domain.StatusNotReceived:
		return report
	case domain.StatusPending:
		report.LastLocation = t.LastLocation
		report.LastClass = string(domain.ClassWarehouse)
		report.LastWarehouseAt = t.LastWarehouseAt
		if t.LastWarehouseAt != nil {
			elapsed := daysBetween(*t.LastWarehouseAt, now)
			report.ElapsedDays = &elapsed
		}
	case domain.StatusCompleted:
		report.LastLocation = t.LastLocation
		report.LastClass = string(domain.ClassSite)
		report.LastWarehouseAt = t.LastWarehouseAt
		if t.FirstWarehouse != nil && t.LastSiteAt != nil {
			lead := daysBetween(*t.FirstWarehouse, *t.LastSiteAt)
			report.LeadTimeDays = &lead
		}
	}

	return report
}

// StatusCounts tallies the case status distribution.
func StatusCounts(reports []domain.CaseReport) []domain.StatusCount {
	counts := make(map[domain.CaseStatus]int)
	for _, r := range reports {
		counts[r.Status]++
	}
	out := make([]domain.StatusCount, 0, len(counts))
	for _, status := range []domain.CaseStatus{domain.StatusNotReceived, domain.StatusPending, domain.StatusCompleted} {
		if counts[status] > 0 {
			out = append(out, domain.StatusCount{Status: string(status), Count: counts[status]})
		}
	}
	return out
}

// ComputeLeadTimeStats summarises lead time over the completed cases.
func ComputeLeadTimeStats(reports []domain.CaseReport) domain.LeadTimeStats {
	var leads []int
	for _, r := range reports {
		if r.Status == domain.StatusCompleted && r.LeadTimeDays != nil {
			leads = append(leads, *r.LeadTimeDays)
		}
	}
	if len(leads) == 0 {
		return domain.LeadTimeStats{}
	}

	sort.Ints(leads)
	sum := 0
	for _, v := range leads {
		sum += v
	}

	stats := domain.LeadTimeStats{
		Count: len(leads),
		Mean:  float64(sum) / float64(len(leads)),
		Max:   leads[len(leads)-1],
	}
	mid := len(leads) / 2
	if len(leads)%2 == 0 {
		stats.Median = float64(leads[mid-1]+leads[mid]) / 2
	} else {
		stats.Median = float64(leads[mid])
	}
	return stats
}

// LongLeadTimeCases returns completed cases whose lead time meets the
// threshold, sorted descending.
func LongLeadTimeCases(reports []domain.CaseReport, thresholdDays int) []domain.CaseReport {
	var out []domain.CaseReport
	for _, r := range reports {
		if r.Status == domain.StatusCompleted && r.LeadTimeDays != nil && *r.LeadTimeDays >= thresholdDays {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if *out[i].LeadTimeDays != *out[j].LeadTimeDays {
			return *out[i].LeadTimeDays > *out[j].LeadTimeDays
		}
		return out[i].CaseNo < out[j].CaseNo
	})
	return out
}
