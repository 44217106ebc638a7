package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"time"

	"stockfetcher/internal/fetcher"
	"stockfetcher/internal/market"
)

const (
	// DefaultSuffix maps a bare symbol onto its NSE listing
	DefaultSuffix = ".NS"
	// DefaultHistoryDays is the lookback window, roughly six years
	DefaultHistoryDays = 2190
)

// ChartResponse represents the chart API response
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// ChartResult is one instrument's series within a ChartResponse
type ChartResult struct {
	Meta struct {
		Currency             string `json:"currency"`
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp []int64 `json:"timestamp"`
	Events    struct {
		Dividends map[string]struct {
			Amount float64 `json:"amount"`
			Date   int64   `json:"date"`
		} `json:"dividends"`
		Splits map[string]struct {
			Date        int64   `json:"date"`
			Numerator   float64 `json:"numerator"`
			Denominator float64 `json:"denominator"`
		} `json:"splits"`
	} `json:"events"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// PriceFetcher fetches daily price history from the chart API
type PriceFetcher struct {
	client      *fetcher.Client
	suffix      string
	historyDays int
	logger      *slog.Logger
	now         func() time.Time
}

// NewPriceFetcher creates a new price history fetcher. The client's base URL
// points at the API host.
func NewPriceFetcher(client *fetcher.Client, suffix string, historyDays int, logger *slog.Logger) *PriceFetcher {
	if historyDays <= 0 {
		historyDays = DefaultHistoryDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceFetcher{
		client:      client,
		suffix:      suffix,
		historyDays: historyDays,
		logger:      logger,
		now:         time.Now,
	}
}

// Ticker returns the exchange-qualified ticker for a symbol
func (f *PriceFetcher) Ticker(symbol string) string {
	return symbol + f.suffix
}

// ChartPath builds the request path for a ticker over [from, to]
func ChartPath(ticker string, from, to time.Time) string {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "div|split")
	q.Set("includeAdjustedClose", "true")
	return "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + q.Encode()
}

// PriceHistory implements fetcher.PriceFetcher
func (f *PriceFetcher) PriceHistory(ctx context.Context, symbol string) (market.PriceHistory, error) {
	ticker := f.Ticker(symbol)
	to := f.now()
	from := to.AddDate(0, 0, -f.historyDays)

	f.logger.Debug("fetching price history", "symbol", symbol, "ticker", ticker, "days", f.historyDays)

	resp, err := f.client.Get(ctx, ChartPath(ticker, from, to), fetcher.BrowserHeaders(nil))
	if err != nil {
		return market.PriceHistory{}, fmt.Errorf("failed to fetch price history for %s: %w", ticker, err)
	}

	history, err := ParseChart(resp.Bytes())
	if err != nil {
		return market.PriceHistory{}, fetcher.NewParseError(fmt.Sprintf("failed to parse price history for %s", ticker), err)
	}
	if history.Empty() {
		return market.PriceHistory{}, fetcher.NewParseError(fmt.Sprintf("no historical data found for %s", ticker), nil)
	}

	history.Symbol = symbol
	history.Ticker = ticker
	history.FetchedAt = to
	return history, nil
}

// ParseChart decodes a chart API payload into a PriceHistory. Days with any
// missing open, high, low or close are dropped.
func ParseChart(data []byte) (market.PriceHistory, error) {
	var resp ChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return market.PriceHistory{}, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return market.PriceHistory{}, fmt.Errorf("chart api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return market.PriceHistory{}, fmt.Errorf("no result in response")
	}

	result := resp.Chart.Result[0]
	history := market.PriceHistory{
		Ticker:   result.Meta.Symbol,
		Currency: result.Meta.Currency,
	}
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return history, nil
	}

	loc := time.UTC
	if name := result.Meta.ExchangeTimezoneName; name != "" {
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
		}
	}

	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	dividends := make(map[string]float64, len(result.Events.Dividends))
	for _, d := range result.Events.Dividends {
		dividends[dayKey(d.Date, loc)] += d.Amount
	}
	splits := make(map[string]float64, len(result.Events.Splits))
	for _, s := range result.Events.Splits {
		if s.Denominator != 0 {
			splits[dayKey(s.Date, loc)] = s.Numerator / s.Denominator
		}
	}

	for i, ts := range result.Timestamp {
		open, okO := at(quote.Open, i)
		high, okH := at(quote.High, i)
		low, okL := at(quote.Low, i)
		closeVal, okC := at(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			continue
		}
		volume, _ := at(quote.Volume, i)
		adjClose, ok := at(adj, i)
		if !ok {
			adjClose = closeVal
		}

		t := time.Unix(ts, 0).In(loc)
		key := dayKey(ts, loc)
		history.Bars = append(history.Bars, market.PriceBar{
			Date:     time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closeVal,
			AdjClose: adjClose,
			Volume:   volume,
			Dividend: dividends[key],
			Split:    splits[key],
		})
	}

	sort.SliceStable(history.Bars, func(i, j int) bool {
		return history.Bars[i].Date.Before(history.Bars[j].Date)
	})

	return history, nil
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

func dayKey(ts int64, loc *time.Location) string {
	return time.Unix(ts, 0).In(loc).Format("2006-01-02")
}
