package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-06-03 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("06/03/2024")
	require.Error(t, err)
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "TSLA", NormalizeTicker(" tsla "))
	assert.Equal(t, "BRK.B", NormalizeTicker("brk.b"))
	assert.Equal(t, "", NormalizeTicker("  "))
}

func TestPanelLookups(t *testing.T) {
	d1, _ := ParseDate("2024-01-02")
	d2, _ := ParseDate("2024-01-03")

	p := &Panel{
		Concepts: []string{"Revenues"},
		Rows: []ScoredRow{
			{PanelRow: PanelRow{Ticker: "AAPL", Date: d1}},
			{PanelRow: PanelRow{Ticker: "TSLA", Date: d1}},
			{PanelRow: PanelRow{Ticker: "TSLA", Date: d2}},
		},
	}

	assert.Equal(t, []string{"AAPL", "TSLA"}, p.Tickers())
	assert.Len(t, p.RowsFor("tsla"), 2)

	row, ok := p.Row("TSLA", d2)
	require.True(t, ok)
	assert.Equal(t, d2, row.Date)

	_, ok = p.Row("TSLA", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
	_, ok = p.Row("MSFT", d1)
	assert.False(t, ok)
}

func TestNullableHelpers(t *testing.T) {
	v := Float(1.5)
	require.NotNil(t, v)
	assert.Equal(t, 1.5, *v)

	assert.Equal(t, 1.5, FloatOr(v, 0))
	assert.Equal(t, 2.0, FloatOr(nil, 2.0))

	assert.True(t, IsNull(nil))
	assert.False(t, IsNull(v))
}
