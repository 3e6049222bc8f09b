package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// GotenbergRenderer converts documents to HTML, one absolutely positioned A4
// block per page, and has Gotenberg print them with Chromium. Browser fonts
// have the rupee glyph, so amounts are laid out in INR.
type GotenbergRenderer struct {
	Endpoint string
	Client   *http.Client
}

// Render implements PDFRenderer.
func (g GotenbergRenderer) Render(ctx context.Context, layout LayoutFunc) ([]byte, error) {
	endpoint := strings.TrimRight(g.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("export: gotenberg endpoint required")
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, DocumentHTML(layout(INR))); err != nil {
		return nil, err
	}
	for field, value := range map[string]string{
		"paperWidth":   "8.27",
		"paperHeight":  "11.7",
		"marginTop":    "0",
		"marginBottom": "0",
		"marginLeft":   "0",
		"marginRight":  "0",
	} {
		if err := writer.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export: gotenberg request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("export: gotenberg response %d: %s", resp.StatusCode, string(data))
	}
	return io.ReadAll(resp.Body)
}

var cssSizes = map[Style]string{
	StyleTitle:    "font-size:16pt;font-weight:bold;color:#282828;",
	StyleSubtitle: "font-size:10pt;color:#646464;",
	StyleHeader:   "font-size:8pt;font-weight:bold;color:#fff;",
	StyleBody:     "font-size:8pt;color:#000;",
	StyleTotal:    "font-size:10pt;font-weight:bold;color:#282828;",
}

// DocumentHTML renders doc as printable HTML.
func DocumentHTML(doc Document) string {
	geo := doc.Geometry
	if geo.BandWidth == 0 {
		geo = DefaultGeometry
	}
	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><meta charset="utf-8"><title>`)
	b.WriteString(html.EscapeString(doc.Title))
	b.WriteString(`</title><style>@page{size:A4;margin:0}body{margin:0;font-family:Helvetica,Arial,sans-serif}`)
	b.WriteString(`.page{position:relative;width:210mm;height:297mm;overflow:hidden;page-break-after:always}`)
	b.WriteString(`.t{position:absolute;white-space:nowrap;transform:translateY(-100%)}`)
	b.WriteString(`.band{position:absolute;background:#667eea}</style></head><body>`)

	pages := doc.Pages
	if len(pages) == 0 {
		pages = []Page{{}}
	}
	for _, page := range pages {
		b.WriteString(`<section class="page">`)
		for _, line := range page.Lines {
			y := line.Y
			if line.Style == StyleHeader {
				fmt.Fprintf(&b, `<div class="band" style="left:%.1fmm;top:%.1fmm;width:%.1fmm;height:%dmm"></div>`,
					geo.BandLeft, line.Y, geo.BandWidth, HeaderBandHeight)
				y = line.Y + 5
			}
			for _, text := range line.Texts {
				fmt.Fprintf(&b, `<div class="t" style="left:%.1fmm;top:%.1fmm;%s">%s</div>`,
					text.X, y, cssSizes[line.Style], html.EscapeString(text.Value))
			}
		}
		b.WriteString(`</section>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}
