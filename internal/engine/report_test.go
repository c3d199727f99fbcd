package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

func classify(t *testing.T, caseNo string, events ...domain.LocationEvent) Timeline {
	t.Helper()
	timeline, _ := Classify(caseNo, 1, events, DuplicateIgnore)
	return timeline
}

func TestBuildReport_PendingElapsedDays(t *testing.T) {
	timeline := classify(t, "C2", whEvent("2023-02-01", "WH1", 0))
	report := BuildReport(timeline, "test", day("2025-01-01"))

	assert.Equal(t, domain.StatusPending, report.Status)
	assert.Equal(t, "WH1", report.LastLocation)
	require.NotNil(t, report.ElapsedDays)
	assert.Equal(t, 700, *report.ElapsedDays)
	assert.Nil(t, report.LeadTimeDays)
}

func TestBuildReport_CompletedLeadTimeIsSpan(t *testing.T) {
	// First warehouse touch to last site touch, regardless of hops between.
	timeline := classify(t, "C1",
		whEvent("2023-01-05", "WH1", 0),
		whEvent("2023-03-10", "WH2", 1),
		siteEvent("2023-05-01", "S1", 2),
	)
	report := BuildReport(timeline, "test", day("2023-06-01"))

	assert.Equal(t, domain.StatusCompleted, report.Status)
	assert.Equal(t, "S1", report.LastLocation)
	require.NotNil(t, report.LeadTimeDays)
	assert.Equal(t, 116, *report.LeadTimeDays)
	assert.Nil(t, report.ElapsedDays)
}

func TestBuildReport_SiteOnlyCompletedHasNoLeadTime(t *testing.T) {
	timeline := classify(t, "C5", siteEvent("2023-04-20", "S2", 0))
	report := BuildReport(timeline, "test", day("2023-06-01"))

	assert.Equal(t, domain.StatusCompleted, report.Status)
	assert.Nil(t, report.LeadTimeDays)
	require.NotNil(t, report.DeliveredAt)
}

func TestBuildReport_NotReceived(t *testing.T) {
	timeline := classify(t, "C3")
	report := BuildReport(timeline, "test", day("2023-06-01"))

	assert.Equal(t, domain.StatusNotReceived, report.Status)
	assert.Empty(t, report.LastLocation)
	assert.Nil(t, report.ElapsedDays)
	assert.Nil(t, report.LeadTimeDays)
}

func leadReport(caseNo string, lead int) domain.CaseReport {
	return domain.CaseReport{CaseNo: caseNo, Status: domain.StatusCompleted, LeadTimeDays: &lead}
}

func TestComputeLeadTimeStats(t *testing.T) {
	reports := []domain.CaseReport{
		leadReport("C1", 10),
		leadReport("C2", 30),
		leadReport("C3", 20),
		{CaseNo: "C4", Status: domain.StatusPending},
	}

	stats := ComputeLeadTimeStats(reports)
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 20.0, stats.Mean, 1e-9)
	assert.InDelta(t, 20.0, stats.Median, 1e-9)
	assert.Equal(t, 30, stats.Max)
}

func TestComputeLeadTimeStats_EvenCountMedian(t *testing.T) {
	stats := ComputeLeadTimeStats([]domain.CaseReport{
		leadReport("C1", 10),
		leadReport("C2", 20),
	})
	assert.InDelta(t, 15.0, stats.Median, 1e-9)
}

func TestComputeLeadTimeStats_Empty(t *testing.T) {
	stats := ComputeLeadTimeStats(nil)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.Mean)
}

func TestLongLeadTimeCases(t *testing.T) {
	reports := []domain.CaseReport{
		leadReport("C1", 50),
		leadReport("C2", 200),
		leadReport("C3", 120),
		leadReport("C4", 120),
	}

	long := LongLeadTimeCases(reports, 120)
	require.Len(t, long, 3)
	assert.Equal(t, "C2", long[0].CaseNo)
	assert.Equal(t, "C3", long[1].CaseNo)
	assert.Equal(t, "C4", long[2].CaseNo)
}

func TestStatusCounts(t *testing.T) {
	reports := []domain.CaseReport{
		{Status: domain.StatusPending},
		{Status: domain.StatusCompleted},
		{Status: domain.StatusPending},
	}

	counts := StatusCounts(reports)
	require.Len(t, counts, 2)
	assert.Equal(t, domain.StatusCount{Status: "pending", Count: 2}, counts[0])
	assert.Equal(t, domain.StatusCount{Status: "completed", Count: 1}, counts[1])
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, daysBetween(day("2023-01-05"), day("2023-01-05")))
	assert.Equal(t, 1, daysBetween(day("2023-01-05"), day("2023-01-06")))
	assert.Equal(t, 365, daysBetween(day("2023-01-01"), day("2024-01-01")))
}
