package charts

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders one series as a line with a shaded area.
func Line(width, height int, labels []string, values []float64, opts Opts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("charts: series required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("charts: labels length must match series")
	}
	f, err := newFrame(width, height, opts, values)
	if err != nil {
		return "", err
	}
	stroke := fallback(opts.StrokeColor, palette[0])
	fill := fallback(opts.FillColor, "rgba(102,126,234,0.15)")

	x := func(i int) float64 {
		if len(values) == 1 {
			return f.padding + f.chartWidth/2
		}
		return f.padding + float64(i)*f.chartWidth/float64(len(values)-1)
	}

	var path strings.Builder
	for i, v := range values {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, x(i), f.y(v))
	}
	line := strings.TrimSpace(path.String())

	var b strings.Builder
	f.open(&b, opts, "line")
	base := f.y(0)
	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`, line, x(len(values)-1), base, x(0), base, fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, line, stroke)
	if opts.ShowDots || len(values) == 1 {
		for i, v := range values {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"><title>%s: %s</title></circle>`, x(i), f.y(v), stroke, template.HTMLEscapeString(labels[i]), FormatTick(v))
		}
	}
	for i, label := range labels {
		f.label(&b, x(i), label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
