// Package trend turns a stock's monthly percentage series into a growth rate.
package trend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MonthLayout is the header format of dated columns, e.g. "Mar 2024".
const MonthLayout = "Jan 2006"

// Columns of the wide layout that carry no observation.
const (
	StockColumn    = "stock"
	CapGroupColumn = "cap_group"
)

// ErrTooFewPoints is returned when a slope cannot be fitted.
var ErrTooFewPoints = errors.New("at least two points are required")

// ErrStockNotFound is returned by FindRow when no row matches.
var ErrStockNotFound = errors.New("stock not found")

// Point is one dated observation.
type Point struct {
	Date  time.Time
	Value float64
}

// ParsePercent parses values like "12.5%", "-3" or "NaN".
// The boolean is false for missing or unparsable input.
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false
	}
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// FindRow returns the first row whose stock column equals stock.
func FindRow(header []string, rows [][]string, stock string) ([]string, error) {
	col := indexOf(header, StockColumn)
	if col < 0 {
		return nil, fmt.Errorf("header has no %q column", StockColumn)
	}
	for _, row := range rows {
		if col < len(row) && strings.EqualFold(strings.TrimSpace(row[col]), stock) {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStockNotFound, stock)
}

// SeriesFromRow converts one wide row into points sorted by date.
// Missing values are dropped.
func SeriesFromRow(header, row []string, stock string) ([]Point, error) {
	if col := indexOf(header, StockColumn); col >= 0 {
		if col >= len(row) || !strings.EqualFold(strings.TrimSpace(row[col]), stock) {
			return nil, fmt.Errorf("row does not belong to %s", stock)
		}
	}

	var points []Point
	for i, name := range header {
		name = strings.TrimSpace(name)
		if strings.EqualFold(name, StockColumn) || strings.EqualFold(name, CapGroupColumn) {
			continue
		}
		date, err := time.Parse(MonthLayout, name)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		if i >= len(row) {
			continue
		}
		v, ok := ParsePercent(row[i])
		if !ok {
			continue
		}
		points = append(points, Point{Date: date, Value: v})
	}

	sort.SliceStable(points, func(a, b int) bool {
		return points[a].Date.Before(points[b].Date)
	})
	return points, nil
}

// GrowthRate fits value against position 1..n by least squares and
// returns the slope, in percentage points per observation.
func GrowthRate(points []Point) (float64, error) {
	if len(points) < 2 {
		return 0, ErrTooFewPoints
	}

	n := float64(len(points))
	sumX, sumY, sumXY, sumX2 := 0.0, 0.0, 0.0, 0.0
	for i, p := range points {
		x := float64(i + 1)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0, ErrTooFewPoints
	}
	return (n*sumXY - sumX*sumY) / denominator, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
