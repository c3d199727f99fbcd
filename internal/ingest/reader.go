package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

// Candidate header names for the case identifier and package quantity
// columns, compared after normalization. Snapshot exports disagree on the
// exact spelling.
var (
	caseColumnCandidates     = []string{"case no.", "case no", "case number", "case id", "case", "mr no"}
	quantityColumnCandidates = []string{"pkg", "pkg qty", "qty", "quantity", "pieces"}
)

var headerSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "", "'", "")

func normalizeHeader(name string) string {
	return headerSanitizer.Replace(strings.TrimSpace(strings.ToLower(name)))
}

func findColumn(header []string, candidates []string) int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	for _, c := range candidates {
		if i, ok := index[normalizeHeader(c)]; ok {
			return i
		}
	}
	return -1
}

// Table is one parsed case table: the raw header plus one CaseRow per data
// record, with cells keyed by header text.
type Table struct {
	Name   string
	Header []string
	Rows   []domain.CaseRow
}

// ReadCSV parses a case table from r. The first record is the header; the
// case identifier column is required, the quantity column is optional and
// defaults to one package per case.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	caseIdx := findColumn(header, caseColumnCandidates)
	if caseIdx < 0 {
		return nil, fmt.Errorf("no case identifier column in %s (header: %s)", name, strings.Join(header, ", "))
	}
	qtyIdx := findColumn(header, quantityColumnCandidates)

	table := &Table{Name: name, Header: header}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d of %s: %w", line, name, err)
		}
		line++

		if caseIdx >= len(record) {
			continue
		}
		caseNo := strings.TrimSpace(record[caseIdx])
		if caseNo == "" {
			continue
		}

		row := domain.CaseRow{
			CaseNo:   caseNo,
			Quantity: 1,
			Cells:    make(map[string]string, len(header)),
		}
		if qtyIdx >= 0 && qtyIdx < len(record) {
			if qty, err := strconv.Atoi(strings.TrimSpace(record[qtyIdx])); err == nil && qty > 0 {
				row.Quantity = qty
			}
		}
		for i, h := range header {
			if i == caseIdx || i == qtyIdx || i >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[i])
			if value == "" {
				continue
			}
			row.Cells[h] = value
		}
		table.Rows = append(table.Rows, row)
	}

	log.Debug().
		Str("source", name).
		Int("rows", len(table.Rows)).
		Int("columns", len(header)).
		Msg("Parsed case table")

	return table, nil
}

// ReadFile loads a case table from a CSV or XLSX file. XLSX input is
// converted sheet-first to CSV next to the original before parsing.
func ReadFile(path string) (*Table, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(name, f)
	case ".xlsx":
		csvPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
		if err := ConvertXLSXToCSV(path, csvPath); err != nil {
			return nil, err
		}
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open converted csv %s: %w", csvPath, err)
		}
		defer f.Close()
		return ReadCSV(name, f)
	default:
		return nil, fmt.Errorf("unsupported file extension %s for %s", filepath.Ext(path), path)
	}
}

// ReadDir loads every CSV and XLSX file directly under dir, one table per
// file. Files that fail to parse abort the load; partial ingestion would
// silently understate the ledgers.
func ReadDir(dir string) ([]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dir %s: %w", dir, err)
	}

	var tables []*Table
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		table, err := ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no case tables found in %s", dir)
	}
	return tables, nil
}
