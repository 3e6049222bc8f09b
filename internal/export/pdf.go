package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-pdf/fpdf"
)

// LayoutFunc lays out a document with amounts written in cur.
type LayoutFunc func(cur Currency) Document

// Fixed returns a LayoutFunc that ignores the currency.
func Fixed(doc Document) LayoutFunc {
	return func(Currency) Document { return doc }
}

// PDFRenderer lays out a document in the currency its fonts can print and
// turns it into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, layout LayoutFunc) ([]byte, error)
}

// NativeRenderer draws documents in-process with fpdf using the core
// Helvetica font. Currency defaults to PDF since Helvetica has no rupee glyph.
type NativeRenderer struct {
	Currency Currency
}

func (n NativeRenderer) currency() Currency {
	if n.Currency.Symbol == "" {
		return PDF
	}
	return n.Currency
}

type fontSpec struct {
	style string
	size  float64
	r     int
	g     int
	b     int
}

var fonts = map[Style]fontSpec{
	StyleTitle:    {style: "B", size: 16, r: 40, g: 40, b: 40},
	StyleSubtitle: {size: 10, r: 100, g: 100, b: 100},
	StyleHeader:   {style: "B", size: 8, r: 255, g: 255, b: 255},
	StyleBody:     {size: 8},
	StyleTotal:    {style: "B", size: 10, r: 40, g: 40, b: 40},
}

// Render implements PDFRenderer. A document without pages still renders one
// blank page.
func (n NativeRenderer) Render(ctx context.Context, layout LayoutFunc) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := layout(n.currency())
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("erpdesk", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pages := doc.Pages
	if len(pages) == 0 {
		pages = []Page{{}}
	}
	band := doc.Geometry
	if band.BandWidth == 0 {
		band = DefaultGeometry
	}
	for _, page := range pages {
		pdf.AddPage()
		for _, line := range page.Lines {
			spec := fonts[line.Style]
			pdf.SetFont("Helvetica", spec.style, spec.size)
			pdf.SetTextColor(spec.r, spec.g, spec.b)
			y := line.Y
			if line.Style == StyleHeader {
				pdf.SetFillColor(102, 126, 234)
				pdf.Rect(band.BandLeft, line.Y, band.BandWidth, HeaderBandHeight, "F")
				y = line.Y + 5
			}
			for _, text := range line.Texts {
				pdf.Text(text.X, y, tr(text.Value))
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FallbackRenderer tries Primary and, when it fails, Secondary.
type FallbackRenderer struct {
	Primary   PDFRenderer
	Secondary PDFRenderer
	Logger    *slog.Logger
}

// Render implements PDFRenderer.
func (f FallbackRenderer) Render(ctx context.Context, layout LayoutFunc) ([]byte, error) {
	if f.Primary == nil {
		return f.secondary().Render(ctx, layout)
	}
	data, err := f.Primary.Render(ctx, layout)
	if err == nil {
		return data, nil
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("primary pdf renderer failed, falling back", slog.Any("error", err))
	return f.secondary().Render(ctx, layout)
}

func (f FallbackRenderer) secondary() PDFRenderer {
	if f.Secondary == nil {
		return NativeRenderer{}
	}
	return f.Secondary
}
