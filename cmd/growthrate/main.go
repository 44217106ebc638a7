// Command growthrate fits a linear trend to one stock's monthly percentage
// series and optionally renders it as a PDF chart.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"stockfetcher/internal/chart"
	"stockfetcher/internal/trend"
)

func main() {
	csvPath := flag.String("csv", "", "wide CSV with stock, cap_group and \"Mon YYYY\" columns")
	stock := flag.String("stock", "", "stock symbol to analyse")
	out := flag.String("out", "", "write a PDF chart to this path")
	flag.Parse()

	if *csvPath == "" || *stock == "" {
		flag.Usage()
		os.Exit(2)
	}

	points, err := loadSeries(*csvPath, *stock)
	if err != nil {
		log.Fatalf("Failed to load series: %v", err)
	}

	slope, err := trend.GrowthRate(points)
	if err != nil {
		log.Fatalf("Failed to compute growth rate for %s: %v", *stock, err)
	}
	fmt.Printf("%s: %.4f%% per period over %d points\n", *stock, slope, len(points))

	if *out == "" {
		return
	}
	if err := writeChart(*out, *stock, points); err != nil {
		log.Fatalf("Failed to render chart: %v", err)
	}
	fmt.Printf("Chart written to %s\n", *out)
}

func loadSeries(path, stock string) ([]trend.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s has no data rows", path)
	}

	header := records[0]
	row, err := trend.FindRow(header, records[1:], stock)
	if err != nil {
		return nil, err
	}
	return trend.SeriesFromRow(header, row, stock)
}

func writeChart(path, stock string, points []trend.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.Render(f, stock+" growth", points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
