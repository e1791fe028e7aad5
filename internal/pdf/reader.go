package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Reader opens documents with ledongthuc/pdf and pulls text out of them.
type Reader struct {
	maxTextSize int
}

// NewReader creates a reader with the default text limit.
func NewReader() *Reader {
	return &Reader{
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// Open parses an in-memory PDF. Panics raised by the underlying parser on
// malformed input are turned into errors.
func (r *Reader) Open(data []byte) (doc *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// PageText returns the plain text of one page (1-based). Pages that cannot
// be decoded yield an empty string.
func (r *Reader) PageText(doc *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("failed to extract text from page %d: %v", pageNum, rec)
		}
	}()

	if pageNum < 1 || pageNum > doc.NumPage() {
		return "", fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, doc.NumPage())
	}

	page := doc.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
	}

	return normalizeText(truncateText(content, r.maxTextSize)), nil
}

// truncateText cuts s to at most limit bytes without splitting a rune.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// Glyphs returns the positioned text runs of a page.
func (r *Reader) Glyphs(doc *pdf.Reader, pageNum int) (glyphs []Glyph, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			glyphs, err = nil, fmt.Errorf("failed to read content of page %d: %v", pageNum, rec)
		}
	}()

	page := doc.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	for _, t := range page.Content().Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return glyphs, nil
}
