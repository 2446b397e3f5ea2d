package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		cell interface{}
		want string
	}{
		{name: "string", cell: "R$ 1.500,00", want: "R$ 1.500,00"},
		{name: "nil", cell: nil, want: ""},
		{name: "integral float", cell: float64(10000), want: "10000"},
		{name: "fractional float", cell: 1.25, want: "1.25"},
		{name: "bool", cell: true, want: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellString(tt.cell))
		})
	}
}

func TestTabName(t *testing.T) {
	assert.Equal(t, "Consolidado Nacional", tabName("Consolidado Nacional!A:Z"))
	assert.Equal(t, "Alcance TikTok", tabName("'Alcance TikTok'!A:E"))
	assert.Equal(t, "BENCHMARK", tabName("BENCHMARK"))
}

func TestTableFromValues(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Impressions", "Total spent"},
		{"15/03/2025", float64(10000), "R$ 1.500,00"},
		{"16/03/2025", float64(8000)}, // short row preserved
	}
	table := tableFromValues("Consolidado Nacional", values)

	assert.Equal(t, "Consolidado Nacional", table.Name)
	assert.Equal(t, []string{"Date", "Impressions", "Total spent"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"15/03/2025", "10000", "R$ 1.500,00"}, table.Rows[0])
	assert.Len(t, table.Rows[1], 2)
}

func TestTableFromValuesEmpty(t *testing.T) {
	table := tableFromValues("GA4", nil)
	assert.True(t, table.Empty())
	assert.Equal(t, "GA4", table.Name)
}
