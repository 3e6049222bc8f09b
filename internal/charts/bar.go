package charts

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders grouped bars, one group per label and one bar per series.
func Bars(width, height int, labels []string, series []Series, opts Opts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("charts: labels required")
	}
	if len(series) == 0 {
		return "", fmt.Errorf("charts: at least one series required")
	}
	values := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("charts: series %q has %d values for %d labels", s.Label, len(s.Values), len(labels))
		}
		values = append(values, s.Values)
	}
	f, err := newFrame(width, height, opts, values...)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	f.open(&b, opts, "bar")

	groupWidth := f.chartWidth / float64(len(labels))
	barWidth := groupWidth * 0.8 / float64(len(series))
	zero := f.y(0)
	for i, label := range labels {
		baseX := f.padding + float64(i)*groupWidth + groupWidth*0.1
		for j, s := range series {
			v := s.Values[i]
			top := f.y(math.Max(v, 0))
			h := math.Abs(f.y(v) - zero)
			color := fallback(s.Color, palette[j%len(palette)])
			fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s %s: %s</title></rect>`,
				baseX+float64(j)*barWidth, top, barWidth, h, color,
				template.HTMLEscapeString(s.Label), template.HTMLEscapeString(label), FormatTick(v))
		}
		f.label(&b, f.padding+float64(i)*groupWidth+groupWidth/2, label)
	}

	if len(series) > 1 {
		legendX := f.padding
		legendY := math.Max(f.padding-12, 12)
		for j, s := range series {
			color := fallback(s.Color, palette[j%len(palette)])
			fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, legendX, legendY-8, color)
			fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10">%s</text>`, legendX+14, legendY, f.axisColor, template.HTMLEscapeString(s.Label))
			legendX += 96
		}
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
