package engine

import (
	"fmt"
	"strings"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

// Column is one resolved location column of the source table. Seq is the
// global declaration index across both column lists; it is the
// same-timestamp tie-break for events.
type Column struct {
	Name  string
	Index int
	Class domain.LocationClass
	Seq   int
}

// Schema holds the classified location columns of a source table, in the
// order the configuration declared them.
type Schema struct {
	WarehouseCols []Column
	SiteCols      []Column
}

// ConfigurationError reports configured location names that matched no
// column in the source header. In strict mode it is fatal; otherwise the run
// continues with the reduced column set.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unresolved location columns: %s", strings.Join(e.Missing, ", "))
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// ResolveSchema maps the header of a source table onto the configured
// warehouse and site name sets. Matching is normalized (case, spacing and
// punctuation insensitive). Columns matching neither set are left alone;
// they are case metadata, not locations.
func ResolveSchema(header []string, warehouses, sites []string, strict bool) (Schema, []Warning, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeColumnName(h)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	var (
		schema   Schema
		warnings []Warning
		missing  []string
		seq      int
	)

	resolve := func(names []string, class domain.LocationClass) []Column {
		cols := make([]Column, 0, len(names))
		for _, name := range names {
			idx, ok := index[normalizeColumnName(name)]
			if !ok {
				missing = append(missing, name)
				warnings = append(warnings, Warning{
					Kind:   WarnUnresolvedColumn,
					Column: name,
					Detail: fmt.Sprintf("%s column %q not found in header", class, name),
				})
				continue
			}
			cols = append(cols, Column{Name: name, Index: idx, Class: class, Seq: seq})
			seq++
		}
		return cols
	}

	schema.WarehouseCols = resolve(warehouses, domain.ClassWarehouse)
	schema.SiteCols = resolve(sites, domain.ClassSite)

	if len(missing) > 0 && strict {
		return Schema{}, warnings, &ConfigurationError{Missing: missing}
	}
	if len(schema.WarehouseCols) == 0 && len(schema.SiteCols) == 0 {
		return Schema{}, warnings, &ConfigurationError{Missing: missing}
	}

	return schema, warnings, nil
}
