package domain

import "strings"

// CaseStatus is the terminal classification of a case's timeline.
type CaseStatus string

const (
	StatusNotReceived CaseStatus = "not_received"
	StatusPending     CaseStatus = "pending"
	StatusCompleted   CaseStatus = "completed"
)

var caseStatusLabels = map[CaseStatus]string{
	StatusNotReceived: "Not Received",
	StatusPending:     "Pending",
	StatusCompleted:   "Completed",
}

var caseStatusCodes = map[string]CaseStatus{
	"not_received": StatusNotReceived,
	"not received": StatusNotReceived,
	"pending":      StatusPending,
	"completed":    StatusCompleted,
}

// CaseStatusLabel returns a human-readable label for a case status.
func CaseStatusLabel(status CaseStatus) string {
	if label, ok := caseStatusLabels[status]; ok {
		return label
	}

	return "Unknown"
}

// ParseCaseStatus returns the status for a given label (case-insensitive).
func ParseCaseStatus(label string) (CaseStatus, bool) {
	status, ok := caseStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// Dead stock urgency tiers, ordered by severity.
const (
	TierWatch    = "watch"
	TierElevated = "elevated"
	TierUrgent   = "urgent"
)
