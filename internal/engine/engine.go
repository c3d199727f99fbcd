package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

// Params configures a single analysis run.
type Params struct {
	Warehouses []string // warehouse column names, declaration order
	Sites      []string // site column names, declaration order
	Strict     bool     // unresolved columns are fatal when true

	Now        time.Time    // reference date for elapsed-days
	RangeStart domain.Month // reporting range; zero = derive from data
	RangeEnd   domain.Month

	DeadStockDays int
	ElevatedDays  int
	UrgentDays    int

	Duplicate DuplicatePolicy
	Workers   int
}

// Source is one case table to analyse. A source may override the engine's
// warehouse/site column sets; the original data comes as one workbook per
// supplier and the warehouse mix differs between them.
type Source struct {
	Name       string
	Header     []string
	Rows       []domain.CaseRow
	Warehouses []string
	Sites      []string
}

// Result is the full output contract of a run.
type Result struct {
	Months           []string
	WarehouseLedgers map[string][]domain.WarehouseLedgerRow
	SiteLedgers      map[string][]domain.SiteLedgerRow
	Reports          []domain.CaseReport
	DeadStock        []domain.DeadStockRecord
	StatusCounts     []domain.StatusCount
	LeadTime         domain.LeadTimeStats
	Warnings         []Warning
	TotalCases       int
}

// Engine runs the movement reconstruction and ledger aggregation.
type Engine struct {
	params Params
}

// New validates params and applies defaults.
func New(params Params) (*Engine, error) {
	if params.Now.IsZero() {
		params.Now = time.Now()
	}
	if params.Workers < 1 {
		params.Workers = 4
	}
	if params.Duplicate == "" {
		params.Duplicate = DuplicateIgnore
	}
	switch params.Duplicate {
	case DuplicateIgnore, DuplicateRestamp, DuplicateFlag:
	default:
		return nil, fmt.Errorf("unknown duplicate policy %q", params.Duplicate)
	}
	if params.DeadStockDays <= 0 {
		params.DeadStockDays = DefaultDeadStockDays
	}
	if params.ElevatedDays <= 0 {
		params.ElevatedDays = DefaultElevatedDays
	}
	if params.UrgentDays <= 0 {
		params.UrgentDays = DefaultUrgentDays
	}
	if !params.RangeStart.IsZero() && !params.RangeEnd.IsZero() && params.RangeEnd.Before(params.RangeStart) {
		return nil, fmt.Errorf("reporting range end %s before start %s", params.RangeEnd, params.RangeStart)
	}
	return &Engine{params: params}, nil
}

// caseJob is one unit of work for the case workers.
type caseJob struct {
	source string
	schema Schema
	row    domain.CaseRow
}

// caseOutcome is the per-case result flowing back to the reducer.
type caseOutcome struct {
	source   string
	report   domain.CaseReport
	deltas   []domain.Delta
	warnings []Warning
}

// Run reconstructs every case's movement sequence across all sources and
// folds the deltas into monthly ledgers. Case processing is independent, so
// it fans out over a worker pool; the reduction is a month-keyed sum, so the
// output does not depend on worker count or completion order.
func (e *Engine) Run(ctx context.Context, sources ...Source) (*Result, error) {
	ledger := NewLedgerSet()
	var (
		warnings []Warning
		schemas  = make([]Schema, len(sources))
		total    int
	)

	for i, src := range sources {
		warehouses := src.Warehouses
		if warehouses == nil {
			warehouses = e.params.Warehouses
		}
		sites := src.Sites
		if sites == nil {
			sites = e.params.Sites
		}

		schema, schemaWarnings, err := ResolveSchema(src.Header, warehouses, sites, e.params.Strict)
		for _, w := range schemaWarnings {
			w.Source = src.Name
			warnings = append(warnings, w)
		}
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}
		schemas[i] = schema

		for _, col := range schema.WarehouseCols {
			ledger.Ensure(col.Name, domain.ClassWarehouse)
		}
		for _, col := range schema.SiteCols {
			ledger.Ensure(col.Name, domain.ClassSite)
		}
		total += len(src.Rows)
	}

	jobChan := make(chan caseJob, e.params.Workers*2)
	outChan := make(chan caseOutcome, e.params.Workers*2)

	var wg sync.WaitGroup
	for i := 0; i < e.params.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				outChan <- e.processCase(job)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outChan)
	}()

	enqueueErr := make(chan error, 1)
	go func() {
		defer close(jobChan)
		for i, src := range sources {
			for _, row := range src.Rows {
				select {
				case <-ctx.Done():
					enqueueErr <- ctx.Err()
					return
				case jobChan <- caseJob{source: src.Name, schema: schemas[i], row: row}:
				}
			}
		}
		enqueueErr <- nil
	}()

	reports := make([]domain.CaseReport, 0, total)
	for outcome := range outChan {
		ledger.AddAll(outcome.deltas)
		reports = append(reports, outcome.report)
		warnings = append(warnings, outcome.warnings...)
	}
	if err := <-enqueueErr; err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Source != reports[j].Source {
			return reports[i].Source < reports[j].Source
		}
		return reports[i].CaseNo < reports[j].CaseNo
	})
	sortWarnings(warnings)

	start, end := e.params.RangeStart, e.params.RangeEnd
	if start.IsZero() || end.IsZero() {
		observedStart, observedEnd, ok := ledger.ObservedRange()
		if ok {
			if start.IsZero() {
				start = observedStart
			}
			if end.IsZero() {
				end = observedEnd
			}
		}
	}
	if start.IsZero() || end.IsZero() {
		// No dated events anywhere and no configured range.
		return &Result{
			WarehouseLedgers: map[string][]domain.WarehouseLedgerRow{},
			SiteLedgers:      map[string][]domain.SiteLedgerRow{},
			Reports:          reports,
			DeadStock:        []domain.DeadStockRecord{},
			StatusCounts:     StatusCounts(reports),
			LeadTime:         ComputeLeadTimeStats(reports),
			Warnings:         warnings,
			TotalCases:       total,
		}, nil
	}

	result := &Result{
		WarehouseLedgers: ledger.WarehouseLedgers(start, end),
		SiteLedgers:      ledger.SiteLedgers(start, end),
		Reports:          reports,
		DeadStock:        SelectDeadStock(reports, e.params.DeadStockDays, e.params.ElevatedDays, e.params.UrgentDays),
		StatusCounts:     StatusCounts(reports),
		LeadTime:         ComputeLeadTimeStats(reports),
		Warnings:         warnings,
		TotalCases:       total,
	}
	for _, m := range domain.MonthRange(start, end) {
		result.Months = append(result.Months, m.String())
	}
	return result, nil
}

func (e *Engine) processCase(job caseJob) caseOutcome {
	events, warnings := ExtractEvents(job.row, job.schema)
	timeline, classifyWarnings := Classify(job.row.CaseNo, job.row.Quantity, events, e.params.Duplicate)
	warnings = append(warnings, classifyWarnings...)
	for i := range warnings {
		warnings[i].Source = job.source
	}
	return caseOutcome{
		source:   job.source,
		report:   BuildReport(timeline, job.source, e.params.Now),
		deltas:   timeline.Deltas,
		warnings: warnings,
	}
}

func sortWarnings(warnings []Warning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Source != warnings[j].Source {
			return warnings[i].Source < warnings[j].Source
		}
		if warnings[i].CaseNo != warnings[j].CaseNo {
			return warnings[i].CaseNo < warnings[j].CaseNo
		}
		return warnings[i].Column < warnings[j].Column
	})
}
