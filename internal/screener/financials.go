package screener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"stockfetcher/internal/fetcher"
	"stockfetcher/internal/market"
)

// FinancialsFetcher scrapes the consolidated company page for a symbol
type FinancialsFetcher struct {
	client *fetcher.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewFinancialsFetcher creates a new fundamentals fetcher on top of a retrying
// client whose base URL points at the site root.
func NewFinancialsFetcher(client *fetcher.Client, logger *slog.Logger) *FinancialsFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FinancialsFetcher{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// CompanyPath returns the consolidated company page path for a symbol
func CompanyPath(symbol string) string {
	return "/company/" + url.PathEscape(symbol) + "/consolidated/"
}

// Financials implements fetcher.FinancialsFetcher
func (f *FinancialsFetcher) Financials(ctx context.Context, symbol string) (market.Financials, error) {
	path := CompanyPath(symbol)
	headers := fetcher.BrowserHeaders(nil)

	f.logger.Debug("fetching financials",
		"symbol", symbol,
		"path", path,
		"user_agent", truncate(headers["User-Agent"], 50))

	resp, err := f.client.Get(ctx, path, headers)
	if err != nil {
		return market.Financials{}, fmt.Errorf("failed to fetch financials for %s: %w", symbol, err)
	}

	body := resp.String()
	f.logger.Debug("received company page", "symbol", symbol, "bytes", len(body))
	if strings.TrimSpace(body) == "" {
		return market.Financials{}, fetcher.NewParseError(fmt.Sprintf("empty company page for %s", symbol), nil)
	}

	sections, warnings, err := ParseSections(strings.NewReader(body))
	if err != nil {
		return market.Financials{}, fetcher.NewParseError(fmt.Sprintf("failed to parse company page for %s", symbol), err)
	}
	for _, w := range warnings {
		f.logger.Warn("skipping table", "symbol", symbol, "error", w)
	}
	if len(sections) == 0 {
		f.logger.Warn("company page has no sections", "symbol", symbol)
	}

	return market.Financials{
		Symbol:    symbol,
		FetchedAt: f.now(),
		Sections:  sections,
	}, nil
}

// ParseSections splits an HTML document into sections, one per <h2>, each
// holding the tables that appear after that heading and before the next one.
// Tables that fail to parse are skipped and reported in the warnings.
func ParseSections(r io.Reader) ([]market.Section, []error, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, err
	}

	var (
		sections []market.Section
		warnings []error
	)

	// Matches come back in document order, so a table belongs to the most
	// recent heading.
	doc.Find("h2, table").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "h2" {
			sections = append(sections, market.Section{Name: cleanText(s.Text())})
			return
		}
		if len(sections) == 0 || s.ParentsFiltered("table").Length() > 0 {
			return
		}

		cur := &sections[len(sections)-1]
		table, err := parseTable(s)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("section %q table %d: %w", cur.Name, len(cur.Tables)+1, err))
			return
		}
		cur.Tables = append(cur.Tables, table)
	})

	return sections, warnings, nil
}

func parseTable(tbl *goquery.Selection) (market.Table, error) {
	var t market.Table

	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Closest("table").Get(0) != tbl.Get(0) {
			return
		}

		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}

		inHead := tr.ParentsFiltered("thead").Length() > 0
		allTH := cells.Length() == cells.Filter("th").Length()
		if t.Columns == nil && len(t.Rows) == 0 && (inHead || allTH) {
			t.Columns = make([]string, 0, cells.Length())
			cells.Each(func(_ int, c *goquery.Selection) {
				t.Columns = append(t.Columns, cleanText(c.Text()))
			})
			return
		}

		row := make([]market.Cell, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			row = append(row, market.ParseCell(cleanText(c.Text())))
		})
		t.Rows = append(t.Rows, row)
	})

	if len(t.Rows) == 0 {
		return market.Table{}, fmt.Errorf("table has no data rows")
	}

	width := len(t.Columns)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for len(t.Columns) < width {
		t.Columns = append(t.Columns, "")
	}
	for i, row := range t.Rows {
		for len(row) < width {
			row = append(row, market.Cell{Kind: market.CellEmpty})
		}
		t.Rows[i] = row
	}

	return t, nil
}

// cleanText collapses runs of whitespace
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
