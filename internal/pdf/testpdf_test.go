package pdf

import (
	"bytes"
	"fmt"
	"strings"
)

// textRun places one string on the page.
type textRun struct {
	x, y float64
	text string
}

// buildPDF writes a single-page PDF with a Helvetica font that carries
// explicit widths (every glyph 500/1000 em) so glyph positions are known.
func buildPDF(runs []textRun) []byte {
	var content strings.Builder
	for _, r := range runs {
		escaped := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(r.text)
		fmt.Fprintf(&content, "BT /F1 10 Tf %.2f %.2f Td (%s) Tj ET\n", r.x, r.y, escaped)
	}

	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica " +
			"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// reportRuns lays out a small two-table lab report.
func reportRuns() []textRun {
	return []textRun{
		{72, 760, "LABORATORI DIAGNOSTIK"},
		{72, 740, "Pacienti: Arta Krasniqi"},
		{72, 725, "Datelindja: 01/01/1990"},
		{72, 710, "DATA E ANALIZES: 15/03/2024"},

		{72, 680, "Nr"},
		{110, 680, "Analiza"},
		{250, 680, "REZULTATI"},
		{400, 680, "VLERAT REFERUESE"},

		{72, 665, "1"},
		{110, 665, "WBC"},
		{250, 665, "5.2"},
		{400, 665, "4.0-10.0"},

		{72, 650, "2"},
		{110, 650, "*Glukoza*"},
		{250, 650, "95 mg/dL"},
		{400, 650, "70-110"},

		{72, 600, "Shenim: rezultatet jane te verifikuara"},
	}
}
