package engine

// WarningKind classifies a non-fatal finding raised during a run.
type WarningKind string

const (
	// WarnParse marks a date cell that could not be parsed; the event is
	// dropped, not the case.
	WarnParse WarningKind = "parse"
	// WarnEmptyCase marks a case that produced no events at all.
	WarnEmptyCase WarningKind = "empty_case"
	// WarnAnomalousTimeline marks events arriving after a case was already
	// delivered, or a duplicate warehouse re-stamp under the flag policy.
	WarnAnomalousTimeline WarningKind = "anomalous_timeline"
	// WarnUnresolvedColumn marks a configured location name that matched no
	// column in the source header (non-strict mode only).
	WarnUnresolvedColumn WarningKind = "unresolved_column"
)

// Warning is a recovered per-case or per-column finding. Warnings never abort
// the batch; they are surfaced for audit and logged by the caller.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Source string      `json:"source,omitempty"`
	CaseNo string      `json:"case_no,omitempty"`
	Column string      `json:"column,omitempty"`
	Value  string      `json:"value,omitempty"`
	Detail string      `json:"detail"`
}
