package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

func TestResolveSchema_NormalizedMatching(t *testing.T) {
	header := []string{"Case No.", "dsv_indoor", "DSV Outdoor", "MIR Site"}

	schema, warnings, err := ResolveSchema(header,
		[]string{"DSV Indoor", "DSV Outdoor"},
		[]string{"MIR-Site"},
		true)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, schema.WarehouseCols, 2)
	assert.Equal(t, "DSV Indoor", schema.WarehouseCols[0].Name)
	assert.Equal(t, 1, schema.WarehouseCols[0].Index)
	assert.Equal(t, domain.ClassWarehouse, schema.WarehouseCols[0].Class)

	require.Len(t, schema.SiteCols, 1)
	assert.Equal(t, 3, schema.SiteCols[0].Index)
	assert.Equal(t, domain.ClassSite, schema.SiteCols[0].Class)
}

func TestResolveSchema_SeqSpansBothLists(t *testing.T) {
	header := []string{"Case No.", "WH1", "WH2", "S1"}

	schema, _, err := ResolveSchema(header, []string{"WH1", "WH2"}, []string{"S1"}, true)
	require.NoError(t, err)

	assert.Equal(t, 0, schema.WarehouseCols[0].Seq)
	assert.Equal(t, 1, schema.WarehouseCols[1].Seq)
	assert.Equal(t, 2, schema.SiteCols[0].Seq)
}

func TestResolveSchema_MissingColumnLenient(t *testing.T) {
	header := []string{"Case No.", "WH1", "S1"}

	schema, warnings, err := ResolveSchema(header, []string{"WH1", "WH9"}, []string{"S1"}, false)
	require.NoError(t, err)
	require.Len(t, schema.WarehouseCols, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnUnresolvedColumn, warnings[0].Kind)
	assert.Equal(t, "WH9", warnings[0].Column)

	// Seq stays contiguous over the resolved columns.
	assert.Equal(t, 0, schema.WarehouseCols[0].Seq)
	assert.Equal(t, 1, schema.SiteCols[0].Seq)
}

func TestResolveSchema_MissingColumnStrict(t *testing.T) {
	header := []string{"Case No.", "WH1", "S1"}

	_, _, err := ResolveSchema(header, []string{"WH1", "WH9"}, []string{"S1"}, true)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, []string{"WH9"}, confErr.Missing)
}

func TestResolveSchema_NothingResolves(t *testing.T) {
	header := []string{"Case No.", "Description"}

	_, _, err := ResolveSchema(header, []string{"WH1"}, []string{"S1"}, false)
	require.Error(t, err)
}

func TestNormalizeColumnName(t *testing.T) {
	cases := map[string]string{
		"DSV Indoor":  "dsvindoor",
		"dsv_indoor ": "dsvindoor",
		"DSV-In/door": "dsvindoor",
		"Site.A":      "sitea",
	}
	for input, want := range cases {
		assert.Equal(t, want, normalizeColumnName(input), "input %q", input)
	}
}
