package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_SparseTable(t *testing.T) {
	input := strings.Join([]string{
		"Case No.,Pkg,Description,WH1,WH2,S1",
		"C1,2,transformer,2023-01-05,,2023-05-01",
		"C2,,cable drum,2023-02-01,,",
		",,orphan row without case,2023-02-01,,",
		"C3,0,,,,",
	}, "\n")

	table, err := ReadCSV("snapshot", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "snapshot", table.Name)
	require.Len(t, table.Rows, 3)

	c1 := table.Rows[0]
	assert.Equal(t, "C1", c1.CaseNo)
	assert.Equal(t, 2, c1.Quantity)
	assert.Equal(t, "2023-01-05", c1.Cells["WH1"])
	assert.Equal(t, "2023-05-01", c1.Cells["S1"])
	_, hasEmpty := c1.Cells["WH2"]
	assert.False(t, hasEmpty, "empty cells are not stored")
	_, hasQty := c1.Cells["Pkg"]
	assert.False(t, hasQty, "quantity column is not a location cell")

	// Missing and non-positive quantities default to one package.
	assert.Equal(t, 1, table.Rows[1].Quantity)
	assert.Equal(t, 1, table.Rows[2].Quantity)
}

func TestReadCSV_HeaderSpellingVariants(t *testing.T) {
	for _, header := range []string{"case_no", "CASE NO", "Case Number", "Case ID"} {
		input := header + ",WH1\nC1,2023-01-05\n"
		table, err := ReadCSV("s", strings.NewReader(input))
		require.NoErrorf(t, err, "header %q", header)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "C1", table.Rows[0].CaseNo)
	}
}

func TestReadCSV_MissingCaseColumn(t *testing.T) {
	input := "Description,WH1\nfoo,2023-01-05\n"
	_, err := ReadCSV("s", strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case identifier")
}

func TestReadCSV_RaggedRows(t *testing.T) {
	input := strings.Join([]string{
		"Case No.,WH1,S1",
		"C1,2023-01-05",
		"C2",
	}, "\n")

	table, err := ReadCSV("s", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2023-01-05", table.Rows[0].Cells["WH1"])
	assert.Empty(t, table.Rows[1].Cells)
}
