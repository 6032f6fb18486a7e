package contracts

import "time"

// FundamentalFact is one reported disclosure line item, as extracted from
// regulatory company facts. Facts are append-only and immutable; raw input
// may carry the same (ticker, concept) under several units and periods.
type FundamentalFact struct {
	Ticker       string    `json:"ticker"`
	Concept      string    `json:"concept"`
	Unit         string    `json:"unit"`
	Value        float64   `json:"value"`
	Form         string    `json:"form"`
	FiscalYear   int       `json:"fy"`
	FiscalPeriod string    `json:"fp"`
	PeriodEnd    time.Time `json:"end"`
	Filed        time.Time `json:"filed"`
	Accession    string    `json:"accn"`
}

// DefaultConcepts is the tracked concept allow-list used to build a stable
// feature table
var DefaultConcepts = []string{
	"Assets",
	"Liabilities",
	"StockholdersEquity",
	"Revenues",
	"NetIncomeLoss",
	"OperatingIncomeLoss",
	"EarningsPerShareBasic",
	"CommonStockSharesOutstanding",
}

// DefaultForms is the disclosure form allow-list: annual, quarterly, and
// foreign-equivalent report types
var DefaultForms = []string{"10-K", "10-Q", "20-F", "40-F", "6-K"}
