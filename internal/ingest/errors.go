package ingest

import "errors"

// Upload errors. Extraction failures are reported with the pdf package
// sentinels (pdf.ErrUnreadable, pdf.ErrFileTooLarge, ...).
var (
	ErrNotPDF      = errors.New("only PDF files are supported")
	ErrNoTables    = errors.New("no table data found in PDF")
	ErrStoreFailed = errors.New("failed to store blood work results")
)
