package s1_panel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwlim/pitfolio/internal/s0_data"
	"github.com/jwlim/pitfolio/pkg/logger"
)

func TestBuild(t *testing.T) {
	dir := t.TempDir()

	returnsPath := filepath.Join(dir, "returns.csv")
	require.NoError(t, os.WriteFile(returnsPath, []byte(
		"date,ticker,adj_close,ret_1d,log_ret_1d,volume\n"+
			"2024-01-02,TSLA,100,,,1000\n"+
			"2024-01-03,TSLA,101,0.01,0.00995,1100\n"+
			"2024-01-04,TSLA,102,0.0099,0.00985,1200\n"), 0o644))

	factsPath := filepath.Join(dir, "facts.csv")
	require.NoError(t, os.WriteFile(factsPath, []byte(
		"ticker,concept,unit,value,form,fy,fp,end,filed,accn\n"+
			"TSLA,Revenues,USD,1000,10-K,2023,FY,2023-12-31,2024-01-03,acc-1\n"+
			"TSLA,Revenues,USD,999,8-K,2023,FY,2023-12-31,2024-01-03,acc-2\n"), 0o644))

	widePath := filepath.Join(dir, "wide.csv")
	panelPath := filepath.Join(dir, "panel.csv")

	builder := NewBuilder(logger.NewNop())
	result, err := builder.Build(BuildConfig{
		ReturnsPath: returnsPath,
		FactsPath:   factsPath,
		WidePath:    widePath,
		PanelPath:   panelPath,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Tickers)
	assert.Equal(t, 1, result.Snapshots) // the 8-K fact is filtered out
	assert.Equal(t, 3, result.PanelRows)

	rows, concepts, err := s0_data.LoadPanelCSV(panelPath)
	require.NoError(t, err)
	assert.Contains(t, concepts, "Revenues")
	require.Len(t, rows, 3)

	// no filing preceded the first trading day
	assert.Nil(t, rows[0].Filed)
	assert.Nil(t, rows[0].Concepts)

	// the 2024-01-03 filing is visible from that day on
	require.NotNil(t, rows[1].Filed)
	assert.Equal(t, "2024-01-03", rows[1].Filed.Format("2006-01-02"))
	assert.Equal(t, 1000.0, rows[1].Concepts["Revenues"])
	assert.Equal(t, 1000.0, rows[2].Concepts["Revenues"])

	_, err = os.Stat(widePath)
	require.NoError(t, err)
}
