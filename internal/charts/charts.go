// Package charts renders small static SVG charts for server-side pages.
package charts

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Defaults for page charts.
const (
	DefaultWidth   = 640
	DefaultHeight  = 240
	DefaultPadding = 32.0
	DefaultTicks   = 5
)

var palette = []string{"#667eea", "#f97316", "#10b981", "#ef4444", "#0ea5e9", "#a855f7"}

// Series is one named set of values.
type Series struct {
	Label  string
	Color  string
	Values []float64
}

// Opts customises rendering.
type Opts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	StrokeColor string
	FillColor   string
	Padding     float64
	TickCount   int
	ShowDots    bool
}

// Floats converts decimal amounts for plotting.
func Floats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.InexactFloat64()
	}
	return out
}

// Placeholder renders an empty frame with a message, used when a chart has no
// data or its section failed to load.
func Placeholder(width, height int, message string) template.HTML {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return template.HTML(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-label="%s"><rect x="0.5" y="0.5" width="%d" height="%d" fill="none" stroke="#e2e8f0"></rect><text x="%d" y="%d" fill="#94a3b8" font-size="12" text-anchor="middle">%s</text></svg>`,
		width, height, template.HTMLEscapeString(message), width-1, height-1, width/2, height/2, template.HTMLEscapeString(message)))
}

type frame struct {
	width, height int
	padding       float64
	chartWidth    float64
	chartHeight   float64
	minVal        float64
	maxVal        float64
	scale         float64
	ticks         int
	axisColor     string
	gridColor     string
}

func newFrame(width, height int, opts Opts, values ...[]float64) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	f := frame{
		width:     width,
		height:    height,
		padding:   opts.Padding,
		ticks:     opts.TickCount,
		axisColor: fallback(opts.AxisColor, "#475569"),
		gridColor: fallback(opts.GridColor, "#e2e8f0"),
	}
	if f.padding <= 0 {
		f.padding = DefaultPadding
	}
	if f.ticks <= 0 {
		f.ticks = DefaultTicks
	}
	f.chartWidth = float64(width) - 2*f.padding
	f.chartHeight = float64(height) - 2*f.padding
	if f.chartWidth <= 0 || f.chartHeight <= 0 {
		return frame{}, fmt.Errorf("charts: viewport too small")
	}

	first := true
	for _, series := range values {
		for _, v := range series {
			if first {
				f.minVal, f.maxVal = v, v
				first = false
				continue
			}
			f.minVal = math.Min(f.minVal, v)
			f.maxVal = math.Max(f.maxVal, v)
		}
	}
	if f.minVal > 0 {
		f.minVal = 0
	}
	if f.maxVal < 0 {
		f.maxVal = 0
	}
	if almostEqual(f.maxVal, f.minVal) {
		f.maxVal = f.minVal + 1
	}
	f.scale = f.chartHeight / (f.maxVal - f.minVal)
	return f, nil
}

func (f frame) y(value float64) float64 {
	return f.padding + f.chartHeight - (value-f.minVal)*f.scale
}

func (f frame) open(b *strings.Builder, opts Opts, kind string) {
	titleID := makeID(opts.Title, kind+"-title")
	descID := makeID(opts.Title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Chart")))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(opts.Description, opts.Title)))

	for i := 0; i <= f.ticks; i++ {
		ratio := float64(i) / float64(f.ticks)
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		y := f.padding + f.chartHeight - ratio*f.chartHeight
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, f.padding, y, f.padding+f.chartWidth, y, f.gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(FormatTick(value)))
	}
	fmt.Fprintf(b, `<g stroke="%s" aria-hidden="true">`, f.axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, f.padding, f.padding, f.padding+f.chartHeight)
	zero := f.y(0)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, zero, f.padding+f.chartWidth, zero)
	b.WriteString(`</g>`)
}

func (f frame) label(b *strings.Builder, x float64, text string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, f.padding+f.chartHeight+14, f.axisColor, template.HTMLEscapeString(text))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

// FormatTick abbreviates axis values with Indian units: thousand (k), lakh (L)
// and crore (Cr).
func FormatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e7:
		return trimZero(v/1e7) + "Cr"
	case abs >= 1e5:
		return trimZero(v/1e5) + "L"
	case abs >= 1e3:
		return trimZero(v/1e3) + "k"
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
