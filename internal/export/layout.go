package export

import (
	"time"
)

// Style selects font and decoration of a laid-out line.
type Style int

const (
	StyleBody Style = iota
	StyleTitle
	StyleSubtitle
	// StyleHeader is a filled band; Y is the band's top edge.
	StyleHeader
	StyleTotal
)

// HeaderBandHeight is the height of a StyleHeader band in millimetres.
const HeaderBandHeight = 8

// Geometry fixes the vertical positions of a table document, in millimetres
// from the top of an A4 page.
type Geometry struct {
	TitleY      float64
	SubtitleY   float64
	HeaderY     float64
	FirstRowY   float64
	RowStep     float64
	TotalsGap   float64
	BottomLimit float64
	ResumeY     float64
	BandLeft    float64
	BandWidth   float64
}

// DefaultGeometry matches the sales report layout.
var DefaultGeometry = Geometry{
	TitleY:      15,
	SubtitleY:   25,
	HeaderY:     35,
	FirstRowY:   45,
	RowStep:     8,
	TotalsGap:   10,
	BottomLimit: 270,
	ResumeY:     20,
	BandLeft:    10,
	BandWidth:   190,
}

// Text is one string placed at X on a line.
type Text struct {
	X     float64
	Value string
}

// Line is a row of texts at a fixed Y.
type Line struct {
	Y     float64
	Style Style
	Texts []Text
}

// Page is an ordered list of lines.
type Page struct {
	Lines []Line
}

// Document is the renderer-independent form of a PDF.
type Document struct {
	Title    string
	Geometry Geometry
	Pages    []Page
}

// Layout appends lines top to bottom. When the cursor has moved past the
// bottom limit the next line opens a page and the cursor restarts at ResumeY.
type Layout struct {
	geo Geometry
	doc Document
	y   float64
}

// NewLayout starts a one-page document with the cursor at the first row.
func NewLayout(title string, geo Geometry) *Layout {
	return &Layout{
		geo: geo,
		doc: Document{Title: title, Geometry: geo, Pages: []Page{{}}},
		y:   geo.FirstRowY,
	}
}

// Place puts a line at an absolute Y on the current page without moving the
// cursor.
func (l *Layout) Place(y float64, style Style, texts ...Text) {
	page := &l.doc.Pages[len(l.doc.Pages)-1]
	page.Lines = append(page.Lines, Line{Y: y, Style: style, Texts: texts})
}

// Append adds a line at the cursor, breaking the page first if needed, then
// advances the cursor by step.
func (l *Layout) Append(step float64, style Style, texts ...Text) {
	if l.y > l.geo.BottomLimit {
		l.doc.Pages = append(l.doc.Pages, Page{})
		l.y = l.geo.ResumeY
	}
	l.Place(l.y, style, texts...)
	l.y += step
}

// Skip moves the cursor down without emitting a line.
func (l *Layout) Skip(d float64) {
	l.y += d
}

// Cursor returns the Y of the next appended line.
func (l *Layout) Cursor() float64 { return l.y }

// Document returns the laid-out document.
func (l *Layout) Document() Document {
	return l.doc
}

// TableDocument lays out t: title, generation date, a header band on the first
// page, one line per row and the totals after a gap. An empty table yields a
// single "No records" line.
func TableDocument(t Table, at time.Time, cur Currency) Document {
	geo := DefaultGeometry
	l := NewLayout(t.Title, geo)
	l.Place(geo.TitleY, StyleTitle, Text{X: 10, Value: t.Title})
	l.Place(geo.SubtitleY, StyleSubtitle, Text{X: 10, Value: "Generated on: " + at.Format("02/01/2006")})

	var header []Text
	for _, col := range t.Columns {
		if col.PDFX > 0 {
			header = append(header, Text{X: col.PDFX, Value: col.Header})
		}
	}
	l.Place(geo.HeaderY, StyleHeader, header...)

	if len(t.Rows) == 0 {
		l.Append(geo.RowStep, StyleBody, Text{X: 12, Value: "No records"})
	}
	for _, row := range t.Rows {
		var texts []Text
		for i, col := range t.Columns {
			if col.PDFX <= 0 || i >= len(row) {
				continue
			}
			value := row[i].Display(cur)
			if col.Trim > 0 {
				value = truncate(value, col.Trim)
			}
			texts = append(texts, Text{X: col.PDFX, Value: value})
		}
		l.Append(geo.RowStep, StyleBody, texts...)
	}

	if len(t.Totals) > 0 {
		l.Skip(geo.TotalsGap)
		for _, total := range t.Totals {
			l.Append(geo.RowStep, StyleTotal, Text{X: 10, Value: total.Label + ": " + total.Value.Display(cur)})
		}
	}
	return l.Document()
}

// SummaryDocument lays out the summary table as "Metric: value" lines.
func SummaryDocument(t Table, at time.Time, cur Currency) Document {
	geo := DefaultGeometry
	l := NewLayout(t.Title, geo)
	l.Place(geo.TitleY, StyleTitle, Text{X: 10, Value: t.Title})
	l.Place(geo.SubtitleY, StyleSubtitle, Text{X: 10, Value: "Generated on: " + at.Format("02/01/2006")})
	l.Skip(geo.HeaderY - geo.FirstRowY)
	for _, row := range t.Rows {
		if len(row) < 2 {
			continue
		}
		l.Append(10, StyleBody, Text{X: 10, Value: row[0].Display(cur) + ": " + row[1].Display(cur)})
	}
	if len(t.Rows) == 0 {
		l.Append(10, StyleBody, Text{X: 10, Value: "No records"})
	}
	return l.Document()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
