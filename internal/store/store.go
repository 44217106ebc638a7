// Package store persists the symbol-keyed payload mappings collected by a run.
//
// Each run writes two files named after the run's start stamp:
//
//	{dir}/stock_financials/{stamp}.gob
//	{dir}/share_prices/{stamp}.gob
package store

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"stockfetcher/internal/market"
)

const (
	FinancialsDir = "stock_financials"
	PricesDir     = "share_prices"
	Ext           = ".gob"

	// StampLayout formats a run's start time for file names
	StampLayout = "20060102_150405"
)

// Paths are the files written by Save
type Paths struct {
	Financials string
	Prices     string
}

// PathsFor returns the file paths for a run stamp without touching the disk
func PathsFor(dir, stamp string) Paths {
	return Paths{
		Financials: filepath.Join(dir, FinancialsDir, stamp+Ext),
		Prices:     filepath.Join(dir, PricesDir, stamp+Ext),
	}
}

// Save writes both mappings, creating directories as needed
func Save(dir, stamp string, financials map[string]market.Financials, prices map[string]market.PriceHistory) (Paths, error) {
	p := PathsFor(dir, stamp)

	if err := writeGob(p.Financials, financials); err != nil {
		return p, fmt.Errorf("failed to save financial data: %w", err)
	}
	if err := writeGob(p.Prices, prices); err != nil {
		return p, fmt.Errorf("failed to save price data: %w", err)
	}
	return p, nil
}

// LoadFinancials reads a financials file written by Save
func LoadFinancials(path string) (map[string]market.Financials, error) {
	var out map[string]market.Financials
	if err := readGob(path, &out); err != nil {
		return nil, fmt.Errorf("failed to load financial data: %w", err)
	}
	return out, nil
}

// LoadPrices reads a prices file written by Save
func LoadPrices(path string) (map[string]market.PriceHistory, error) {
	var out map[string]market.PriceHistory
	if err := readGob(path, &out); err != nil {
		return nil, fmt.Errorf("failed to load price data: %w", err)
	}
	return out, nil
}

// writeGob encodes v into a temp file next to path and renames it into place
func writeGob(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(bufio.NewReader(f)).Decode(v)
}
