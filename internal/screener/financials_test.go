package screener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stockfetcher/internal/fetcher"
	"stockfetcher/internal/market"
	"stockfetcher/internal/ratelimit"
	"stockfetcher/internal/testutil"
)

const companyPage = `<!DOCTYPE html>
<html><body>
<table id="nav"><tr><td>ignored, before any heading</td></tr></table>
<section id="quarters">
  <h2>Quarterly Results</h2>
  <table class="data-table">
    <thead><tr><th></th><th>Dec 2023</th><th>Mar 2024</th></tr></thead>
    <tbody>
      <tr><td class="text">Sales&nbsp;<button>+</button></td><td>59,162</td><td>61,237</td></tr>
      <tr><td class="text">OPM %</td><td>26%</td><td>27%</td></tr>
      <tr><td class="text">Net Profit</td><td>11,097</td><td></td></tr>
    </tbody>
  </table>
</section>
<section id="profit-loss">
  <h2>
    Profit &amp; Loss
  </h2>
  <table class="data-table">
    <thead><tr><th></th><th>Mar 2023</th><th>Mar 2024</th></tr></thead>
    <tbody><tr><td>Sales</td><td>225,458</td><td>240,893</td></tr></tbody>
  </table>
  <table class="ranges-table">
    <tr><th colspan="2">Compounded Sales Growth</th></tr>
    <tr><td>10 Years:</td><td>11%</td></tr>
    <tr><td>TTM:</td><td>4%</td></tr>
  </table>
  <table class="broken"><thead><tr><th>only a header</th></tr></thead></table>
</section>
<section id="peers"><h2>Peer comparison</h2></section>
</body></html>`

func TestParseSections(t *testing.T) {
	sections, warnings, err := ParseSections(strings.NewReader(companyPage))
	if err != nil {
		t.Fatalf("ParseSections() returned unexpected error: %v", err)
	}

	wantNames := []string{"Quarterly Results", "Profit & Loss", "Peer comparison"}
	if len(sections) != len(wantNames) {
		t.Fatalf("got %d sections, want %d", len(sections), len(wantNames))
	}
	for i, name := range wantNames {
		if sections[i].Name != name {
			t.Errorf("section[%d] = %q, want %q", i, sections[i].Name, name)
		}
	}

	quarters := sections[0]
	if len(quarters.Tables) != 1 {
		t.Fatalf("Quarterly Results has %d tables, want 1", len(quarters.Tables))
	}
	q := quarters.Tables[0]
	if got := strings.Join(q.Columns, "|"); got != "|Dec 2023|Mar 2024" {
		t.Errorf("columns = %q, want %q", got, "|Dec 2023|Mar 2024")
	}
	sales, ok := q.Row("Sales")
	if !ok {
		t.Fatal("Sales row not found")
	}
	if v, ok := sales[2].Float(); !ok || v != 61237 {
		t.Errorf("Sales Mar 2024 = %v (%v), want 61237", v, ok)
	}
	opm, _ := q.Row("OPM %")
	if !opm[1].Percent || opm[1].Number != 26 {
		t.Errorf("OPM Dec 2023 = %+v, want 26%%", opm[1])
	}
	profit, _ := q.Row("Net Profit")
	if profit[2].Kind != market.CellEmpty {
		t.Errorf("empty cell kind = %v, want CellEmpty", profit[2].Kind)
	}

	pl := sections[1]
	if len(pl.Tables) != 2 {
		t.Fatalf("Profit & Loss has %d tables, want 2", len(pl.Tables))
	}
	growth := pl.Tables[1]
	if len(growth.Rows) != 2 {
		t.Errorf("growth table has %d rows, want 2", len(growth.Rows))
	}

	if len(sections[2].Tables) != 0 {
		t.Errorf("Peer comparison has %d tables, want 0", len(sections[2].Tables))
	}

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1 for the header-only table", len(warnings))
	}
	if !strings.Contains(warnings[0].Error(), "Profit & Loss") {
		t.Errorf("warning = %q, want it to name the section", warnings[0])
	}
}

func TestParseSections_NoHeadings(t *testing.T) {
	sections, warnings, err := ParseSections(strings.NewReader(`<html><body><table><tr><td>1</td></tr></table></body></html>`))
	if err != nil {
		t.Fatalf("ParseSections() returned unexpected error: %v", err)
	}
	if len(sections) != 0 || len(warnings) != 0 {
		t.Errorf("got %d sections and %d warnings, want none", len(sections), len(warnings))
	}
}

func TestParseSections_RaggedRowsPadded(t *testing.T) {
	page := `<h2>Ratios</h2><table>
		<tr><th></th><th>Mar 2023</th></tr>
		<tr><td>ROCE %</td><td>58%</td><td>extra</td></tr>
		<tr><td>Debtor Days</td></tr>
	</table>`

	sections, _, err := ParseSections(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseSections() returned unexpected error: %v", err)
	}
	table := sections[0].Tables[0]
	if len(table.Columns) != 3 {
		t.Errorf("columns = %d, want 3", len(table.Columns))
	}
	for i, row := range table.Rows {
		if len(row) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(row))
		}
	}
}

func TestCompanyPath(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"TCS", "/company/TCS/consolidated/"},
		{"M&M", "/company/M&M/consolidated/"},
		{"BAJAJ-AUTO", "/company/BAJAJ-AUTO/consolidated/"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := CompanyPath(tt.symbol); got != tt.want {
				t.Errorf("CompanyPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newFetcher(t *testing.T, handler http.Handler) *FinancialsFetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := fetcher.NewClient(fetcher.Options{
		BaseURL:    server.URL,
		Source:     ratelimit.SourceScreener,
		Timeout:    2 * time.Second,
		MaxRetries: 3,
		Sleeper:    &testutil.RecordingSleeper{},
	})
	t.Cleanup(func() { client.Close() })

	return NewFinancialsFetcher(client, nil)
}

func TestFinancialsFetcher_Financials_Success(t *testing.T) {
	f := newFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company/INFY/consolidated/" {
			t.Errorf("path = %q, want /company/INFY/consolidated/", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent header not set")
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(companyPage))
	}))

	got, err := f.Financials(context.Background(), "INFY")
	if err != nil {
		t.Fatalf("Financials() returned unexpected error: %v", err)
	}
	if got.Symbol != "INFY" {
		t.Errorf("Symbol = %q, want INFY", got.Symbol)
	}
	if len(got.Sections) != 3 {
		t.Errorf("got %d sections, want 3", len(got.Sections))
	}
	if got.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestFinancialsFetcher_Financials_NotFound(t *testing.T) {
	f := newFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := f.Financials(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("Financials() expected error, got nil")
	}
	var fe *fetcher.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Errorf("error = %v, want FetchError with status 404", err)
	}
}

func TestFinancialsFetcher_Financials_EmptyBody(t *testing.T) {
	f := newFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	_, err := f.Financials(context.Background(), "TCS")
	var fe *fetcher.FetchError
	if !errors.As(err, &fe) || fe.Type != fetcher.ErrorTypeParse {
		t.Errorf("error = %v, want parse FetchError", err)
	}
}
