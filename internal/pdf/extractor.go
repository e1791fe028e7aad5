package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
	"github.com/a3tai/mcp-bloodwork/internal/logging"
)

var pdfLogger = logging.Logger(logging.SourcePDF)

// Extraction is the raw material the parser works from.
type Extraction struct {
	// FullText is the text of the first page, where report metadata lives.
	FullText string `json:"full_text"`
	// Tables holds every detected table grid in document order.
	Tables []bloodwork.RawTable `json:"tables"`
	// Info is nil when structural validation failed but text extraction
	// still succeeded.
	Info *DocumentInfo `json:"info,omitempty"`
}

// Extractor pulls first-page text and table grids out of a PDF.
type Extractor struct {
	validator *Validator
	reader    *Reader
	grid      *GridBuilder
}

// NewExtractor creates an extractor that refuses files above maxFileSize.
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{
		validator: NewValidator(maxFileSize),
		reader:    NewReader(),
		grid:      NewGridBuilder(),
	}
}

// ReadFile loads a report from disk after the existence and size checks, so oversized files are never read into memory.
func (e *Extractor) ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if err := e.validator.CheckSize(fileInfo.Size()); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Extract returns the first page text and all table grids of data.
// Structural failures are reported as *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*Extraction, error) {
	info, err := e.validator.Validate(data)
	if err != nil {
		var extErr *ExtractionError
		if !errors.As(err, &extErr) || extErr.Code != CodeUnreadable {
			return nil, err
		}
		// pdfcpu is stricter than the text reader; let the reader decide.
		pdfLogger.Warn("structural validation failed, trying text extraction", "err", err)
	}

	doc, err := e.reader.Open(data)
	if err != nil {
		return nil, newError(CodeUnreadable, "failed to open PDF", err)
	}
	if doc.NumPage() == 0 {
		return nil, newError(CodeUnreadable, "document has no pages", nil)
	}

	fullText, err := e.reader.PageText(doc, 1)
	if err != nil {
		return nil, newError(CodeUnreadable, "failed to extract first page text", err)
	}

	result := &Extraction{
		FullText: fullText,
		Tables:   []bloodwork.RawTable{},
		Info:     info,
	}

	for pageNum := 1; pageNum <= doc.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		glyphs, err := e.reader.Glyphs(doc, pageNum)
		if err != nil {
			// Continue with other pages even if one fails
			pdfLogger.Warn("skipping page", "page", pageNum, "err", err)
			continue
		}

		tables := e.grid.Tables(glyphs)
		pdfLogger.Debug("detected tables", "page", pageNum, "tables", len(tables))
		result.Tables = append(result.Tables, tables...)
	}

	if strings.TrimSpace(result.FullText) == "" && len(result.Tables) == 0 {
		return nil, newError(CodeNoText, "no text content could be extracted from PDF", nil)
	}

	pdfLogger.Info("extracted document", "pages", doc.NumPage(), "tables", len(result.Tables))
	return result, nil
}
