package s0_data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jwlim/pitfolio/internal/contracts"
)

// CSV column layout of the daily panel artifact. Concept columns follow
// the fixed base columns; the concept list is recovered from the header.
var panelBaseColumns = []string{"ticker", "date", "adj_close", "ret_1d", "log_ret_1d", "volume", "filed"}

// LoadReturnsCSV reads the daily return table: one row per (ticker, date)
// with columns date,ticker,adj_close,ret_1d,log_ret_1d,volume. Empty cells
// are nulls.
func LoadReturnsCSV(path string) ([]contracts.ReturnRow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	col := indexColumns(header)
	for _, required := range []string{"date", "ticker", "adj_close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("returns file %s missing column %q", path, required)
		}
	}

	out := make([]contracts.ReturnRow, 0, len(records))
	for i, rec := range records {
		date, err := contracts.ParseDate(field(rec, col, "date"))
		if err != nil {
			return nil, fmt.Errorf("returns file %s row %d: bad date: %w", path, i+2, err)
		}
		adjClose, err := strconv.ParseFloat(field(rec, col, "adj_close"), 64)
		if err != nil {
			return nil, fmt.Errorf("returns file %s row %d: bad adj_close: %w", path, i+2, err)
		}

		out = append(out, contracts.ReturnRow{
			Ticker:   contracts.NormalizeTicker(field(rec, col, "ticker")),
			Date:     date,
			AdjClose: adjClose,
			Ret1D:    parseNullable(field(rec, col, "ret_1d")),
			LogRet1D: parseNullable(field(rec, col, "log_ret_1d")),
			Volume:   parseNullable(field(rec, col, "volume")),
		})
	}
	return out, nil
}

// LoadFactsCSV reads the long company-facts table with columns
// ticker,concept,unit,value,form,fy,fp,end,filed,accn. Rows with
// unparsable dates or values are dropped, matching the normalizer's
// tolerance for dirty regulatory extracts.
func LoadFactsCSV(path string) ([]contracts.FundamentalFact, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	col := indexColumns(header)
	for _, required := range []string{"ticker", "concept", "unit", "value", "end", "filed"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("facts file %s missing column %q", path, required)
		}
	}

	out := make([]contracts.FundamentalFact, 0, len(records))
	for _, rec := range records {
		end, err := contracts.ParseDate(field(rec, col, "end"))
		if err != nil {
			continue
		}
		filed, err := contracts.ParseDate(field(rec, col, "filed"))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(field(rec, col, "value")), 64)
		if err != nil {
			continue
		}

		fy, _ := strconv.Atoi(field(rec, col, "fy"))

		out = append(out, contracts.FundamentalFact{
			Ticker:       contracts.NormalizeTicker(field(rec, col, "ticker")),
			Concept:      strings.TrimSpace(field(rec, col, "concept")),
			Unit:         strings.TrimSpace(field(rec, col, "unit")),
			Value:        value,
			Form:         strings.TrimSpace(field(rec, col, "form")),
			FiscalYear:   fy,
			FiscalPeriod: strings.TrimSpace(field(rec, col, "fp")),
			PeriodEnd:    end,
			Filed:        filed,
			Accession:    strings.TrimSpace(field(rec, col, "accn")),
		})
	}
	return out, nil
}

// WritePanelCSV writes the aligned panel with the given concept column
// order. Null cells are written empty.
func WritePanelCSV(path string, rows []contracts.PanelRow, concepts []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create panel dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create panel file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, panelBaseColumns...), concepts...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range rows {
		row := &rows[i]
		rec := []string{
			row.Ticker,
			row.Date.Format(contracts.DateLayout),
			formatFloat(row.AdjClose),
			formatNullable(row.Ret1D),
			formatNullable(row.LogRet1D),
			formatNullable(row.Volume),
			formatNullableDate(row.Filed),
		}
		for _, c := range concepts {
			if v, ok := row.Concepts[c]; ok {
				rec = append(rec, formatFloat(v))
			} else {
				rec = append(rec, "")
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// LoadPanelCSV reads a panel written by WritePanelCSV, recovering the
// concept column order from the header
func LoadPanelCSV(path string) ([]contracts.PanelRow, []string, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	if len(header) < len(panelBaseColumns) {
		return nil, nil, fmt.Errorf("panel file %s: header too short", path)
	}
	for i, want := range panelBaseColumns {
		if strings.TrimSpace(header[i]) != want {
			return nil, nil, fmt.Errorf("panel file %s: expected column %q at position %d, got %q", path, want, i, header[i])
		}
	}
	concepts := header[len(panelBaseColumns):]

	rows := make([]contracts.PanelRow, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, nil, fmt.Errorf("panel file %s row %d: %d fields, want %d", path, i+2, len(rec), len(header))
		}

		date, err := contracts.ParseDate(rec[1])
		if err != nil {
			return nil, nil, fmt.Errorf("panel file %s row %d: bad date: %w", path, i+2, err)
		}
		adjClose, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("panel file %s row %d: bad adj_close: %w", path, i+2, err)
		}

		row := contracts.PanelRow{
			Ticker:   contracts.NormalizeTicker(rec[0]),
			Date:     date,
			AdjClose: adjClose,
			Ret1D:    parseNullable(rec[3]),
			LogRet1D: parseNullable(rec[4]),
			Volume:   parseNullable(rec[5]),
		}
		if rec[6] != "" {
			filed, err := contracts.ParseDate(rec[6])
			if err != nil {
				return nil, nil, fmt.Errorf("panel file %s row %d: bad filed date: %w", path, i+2, err)
			}
			row.Filed = &filed
		}

		for j, c := range concepts {
			cell := rec[len(panelBaseColumns)+j]
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("panel file %s row %d: bad %s: %w", path, i+2, c, err)
			}
			if row.Concepts == nil {
				row.Concepts = make(map[string]float64, len(concepts))
			}
			row.Concepts[c] = v
		}

		rows = append(rows, row)
	}
	return rows, concepts, nil
}

// WriteWideCSV writes the pivoted fundamentals table keyed by
// (ticker, filed)
func WriteWideCSV(path string, snapshots []contracts.WideSnapshot, concepts []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wide fundamentals file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"ticker", "filed"}, concepts...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range snapshots {
		rec := []string{s.Ticker, s.Filed.Format(contracts.DateLayout)}
		for _, c := range concepts {
			if v, ok := s.Concepts[c]; ok {
				rec = append(rec, formatFloat(v))
			} else {
				rec = append(rec, "")
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("read %s: empty file", path)
	}
	return all[1:], all[0], nil
}

func indexColumns(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func field(rec []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseNullable(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatNullable(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

func formatNullableDate(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format(contracts.DateLayout)
}
