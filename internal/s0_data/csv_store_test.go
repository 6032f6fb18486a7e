package s0_data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwlim/pitfolio/internal/contracts"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadReturnsCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "returns.csv",
		"date,ticker,adj_close,ret_1d,log_ret_1d,volume\n"+
			"2024-01-02,tsla,100.5,,,1000\n"+
			"2024-01-03,tsla,101.0,0.004975,0.004963,1200\n")

	rows, err := LoadReturnsCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "TSLA", rows[0].Ticker)
	assert.Equal(t, 100.5, rows[0].AdjClose)
	assert.Nil(t, rows[0].Ret1D)
	assert.Nil(t, rows[0].LogRet1D)
	require.NotNil(t, rows[0].Volume)
	assert.Equal(t, 1000.0, *rows[0].Volume)

	require.NotNil(t, rows[1].Ret1D)
	assert.InDelta(t, 0.004975, *rows[1].Ret1D, 1e-12)
}

func TestLoadReturnsCSV_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "returns.csv",
		"date,ticker\n2024-01-02,TSLA\n")

	_, err := LoadReturnsCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adj_close")
}

func TestLoadFactsCSV_DropsUnparsableRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "facts.csv",
		"ticker,concept,unit,value,form,fy,fp,end,filed,accn\n"+
			"TSLA,Revenues,USD,1000,10-K,2023,FY,2023-12-31,2024-01-29,acc-1\n"+
			"TSLA,Revenues,USD,not-a-number,10-K,2023,FY,2023-12-31,2024-01-29,acc-2\n"+
			"TSLA,Revenues,USD,2000,10-K,2023,FY,bad-date,2024-01-29,acc-3\n"+
			"TSLA,Revenues,USD,3000,10-K,2023,FY,2023-12-31,bad-date,acc-4\n")

	facts, err := LoadFactsCSV(path)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, 1000.0, facts[0].Value)
	assert.Equal(t, "acc-1", facts[0].Accession)
	assert.Equal(t, 2023, facts[0].FiscalYear)
}

func TestWriteLoadPanelCSV_RoundTripNulls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.csv")

	d1, _ := contracts.ParseDate("2024-01-02")
	d2, _ := contracts.ParseDate("2024-01-03")
	filed, _ := contracts.ParseDate("2023-10-23")

	rows := []contracts.PanelRow{
		{
			Ticker:   "TSLA",
			Date:     d1,
			AdjClose: 100.0,
			// ret_1d/volume null on the first trading day, no filing yet
		},
		{
			Ticker:   "TSLA",
			Date:     d2,
			AdjClose: 101.0,
			Ret1D:    contracts.Float(0.01),
			LogRet1D: contracts.Float(0.00995),
			Volume:   contracts.Float(1500),
			Filed:    &filed,
			Concepts: map[string]float64{"Revenues": 1000, "NetIncomeLoss": 50},
		},
	}
	concepts := []string{"Revenues", "NetIncomeLoss", "Assets"}

	require.NoError(t, WritePanelCSV(path, rows, concepts))

	loaded, loadedConcepts, err := LoadPanelCSV(path)
	require.NoError(t, err)
	assert.Equal(t, concepts, loadedConcepts)
	require.Len(t, loaded, 2)

	assert.Nil(t, loaded[0].Ret1D)
	assert.Nil(t, loaded[0].Filed)
	assert.Nil(t, loaded[0].Concepts)

	require.NotNil(t, loaded[1].Ret1D)
	assert.Equal(t, 0.01, *loaded[1].Ret1D)
	require.NotNil(t, loaded[1].Filed)
	assert.Equal(t, filed, *loaded[1].Filed)
	assert.Equal(t, 1000.0, loaded[1].Concepts["Revenues"])
	// Assets column was empty, must stay absent rather than become zero
	_, ok := loaded[1].Concepts["Assets"]
	assert.False(t, ok)
}

func TestLoadPanelCSV_RejectsWrongHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "panel.csv",
		"ticker,date,close,ret_1d,log_ret_1d,volume,filed\n"+
			"TSLA,2024-01-02,100,,,,\n")

	_, _, err := LoadPanelCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adj_close")
}

func TestWriteWideCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.csv")

	filed, _ := contracts.ParseDate("2024-01-29")
	snaps := []contracts.WideSnapshot{
		{Ticker: "TSLA", Filed: filed, Concepts: map[string]float64{"Revenues": 1000}},
	}

	require.NoError(t, WriteWideCSV(path, snaps, []string{"Revenues", "Assets"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ticker,filed,Revenues,Assets\nTSLA,2024-01-29,1000,\n", string(data))
}
