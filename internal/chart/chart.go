// Package chart renders trend series as PDF line charts.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"

	"stockfetcher/internal/trend"
)

// DateLayout formats x axis labels.
const DateLayout = "Jan 2006"

// Page geometry in millimetres, A4 landscape.
const (
	pageWidth   = 297.0
	pageHeight  = 210.0
	plotLeft    = 30.0
	plotRight   = pageWidth - 15
	plotTop     = 30.0
	plotBottom  = pageHeight - 45
	yTicks      = 6
	markerSize  = 1.2
	labelOffset = 4.0
)

// ErrNoPoints is returned when there is nothing to draw.
var ErrNoPoints = errors.New("chart: no points to plot")

// Render draws points as a line with markers and writes the PDF to w.
// The y axis is formatted as percentages and x labels are rotated dates.
func Render(w io.Writer, title string, points []trend.Point) error {
	if len(points) == 0 {
		return ErrNoPoints
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetXY(plotLeft, 12)
	pdf.CellFormat(plotRight-plotLeft, 10, title, "", 0, "C", false, 0, "")

	lo, hi := valueRange(points)
	x := xScale(len(points))
	y := func(v float64) float64 {
		return plotBottom - (v-lo)/(hi-lo)*(plotBottom-plotTop)
	}

	// Grid and y axis labels
	pdf.SetFont("Arial", "", 9)
	pdf.SetLineWidth(0.1)
	for i := 0; i <= yTicks; i++ {
		v := lo + (hi-lo)*float64(i)/yTicks
		py := y(v)
		pdf.SetDrawColor(220, 220, 220)
		pdf.Line(plotLeft, py, plotRight, py)
		label := fmt.Sprintf("%.1f%%", v)
		pdf.Text(plotLeft-pdf.GetStringWidth(label)-2, py+1, label)
	}

	// Axes
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Line(plotLeft, plotTop, plotLeft, plotBottom)
	pdf.Line(plotLeft, plotBottom, plotRight, plotBottom)

	// Series
	pdf.SetDrawColor(31, 119, 180)
	pdf.SetFillColor(31, 119, 180)
	pdf.SetLineWidth(0.6)
	for i := 1; i < len(points); i++ {
		pdf.Line(x(i-1), y(points[i-1].Value), x(i), y(points[i].Value))
	}
	for i, p := range points {
		pdf.Circle(x(i), y(p.Value), markerSize, "F")
	}

	// Rotated date labels
	pdf.SetFont("Arial", "", 8)
	for i, p := range points {
		px := x(i)
		pdf.TransformBegin()
		pdf.TransformRotate(45, px, plotBottom+labelOffset)
		label := p.Date.Format(DateLayout)
		pdf.Text(px-pdf.GetStringWidth(label), plotBottom+labelOffset, label)
		pdf.TransformEnd()
	}

	// Axis titles
	pdf.SetFont("Arial", "", 11)
	pdf.Text((plotLeft+plotRight)/2-5, pageHeight-12, "Date")
	pdf.TransformBegin()
	pdf.TransformRotate(90, 12, (plotTop+plotBottom)/2)
	pdf.Text(12, (plotTop+plotBottom)/2, "Value (%)")
	pdf.TransformEnd()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	return pdf.Output(w)
}

// valueRange pads the data range so flat series still get a visible band.
func valueRange(points []trend.Point) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func xScale(n int) func(int) float64 {
	width := plotRight - plotLeft
	if n == 1 {
		return func(int) float64 { return plotLeft + width/2 }
	}
	step := (width - 10) / float64(n-1)
	return func(i int) float64 { return plotLeft + 5 + step*float64(i) }
}
