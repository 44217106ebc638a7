// Package market holds the payload types produced by the ingestion run: the
// fundamentals sections scraped from a company page and daily price history.
package market

import (
	"strconv"
	"strings"
	"time"
)

// CellKind tags the value held by a Cell
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// Cell is one value of a fundamentals table. Exactly one of Number or Text is
// meaningful, chosen by Kind.
type Cell struct {
	Kind    CellKind
	Number  float64
	Percent bool
	Text    string
}

// ParseCell types a raw table cell. Thousands separators are ignored and a
// trailing percent sign marks the value as a percentage.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	if s == "" {
		return Cell{Kind: CellEmpty}
	}

	num := strings.ReplaceAll(s, ",", "")
	percent := strings.HasSuffix(num, "%")
	if percent {
		num = strings.TrimSpace(strings.TrimSuffix(num, "%"))
	}
	if v, err := strconv.ParseFloat(num, 64); err == nil {
		return Cell{Kind: CellNumber, Number: v, Percent: percent}
	}

	return Cell{Kind: CellText, Text: s}
}

// Float returns the numeric value and whether the cell holds one
func (c Cell) Float() (float64, bool) {
	return c.Number, c.Kind == CellNumber
}

// String renders the cell the way it appeared on the page, modulo separators
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		s := strconv.FormatFloat(c.Number, 'f', -1, 64)
		if c.Percent {
			s += "%"
		}
		return s
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// Table is a rectangular grid of cells with a header row
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// Row returns the row whose first cell reads label, matched case-insensitively
// with trailing "+" expanders ignored.
func (t Table) Row(label string) ([]Cell, bool) {
	want := normalizeLabel(label)
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		if normalizeLabel(row[0].String()) == want {
			return row, true
		}
	}
	return nil, false
}

func normalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "+"))
	return strings.ToLower(s)
}

// Section is a titled block of the company page and the tables under it
type Section struct {
	Name   string
	Tables []Table
}

// Financials is the fundamentals payload for one symbol
type Financials struct {
	Symbol    string
	FetchedAt time.Time
	Sections  []Section
}

// Section returns the first section with the given name
func (f Financials) Section(name string) (Section, bool) {
	for _, s := range f.Sections {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Section{}, false
}

// PriceBar is one trading day
type PriceBar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
	Dividend float64
	// Split is the split ratio effective on Date, zero when there was none
	Split float64
}

// PriceHistory is the price payload for one symbol, bars in ascending date order
type PriceHistory struct {
	Symbol    string
	Ticker    string
	Currency  string
	FetchedAt time.Time
	Bars      []PriceBar
}

// Empty reports whether the history has no bars
func (h PriceHistory) Empty() bool {
	return len(h.Bars) == 0
}
