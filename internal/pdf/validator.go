package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfMagic is the header every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// DocumentInfo is what structural validation learns about a document.
type DocumentInfo struct {
	Pages     int    `json:"pages"`
	Version   string `json:"version,omitempty"`
	Encrypted bool   `json:"encrypted"`
}

// Validator performs cheap structural checks before text extraction.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new validator with the given size limit.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// CheckSize rejects empty and oversized uploads.
func (v *Validator) CheckSize(size int64) error {
	if size == 0 {
		return newError(CodeEmptyFile, "file is empty", nil)
	}
	if v.maxFileSize > 0 && size > v.maxFileSize {
		return newError(CodeTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", size, v.maxFileSize), nil)
	}
	return nil
}

// Validate checks size, header and the document structure. pdfcpu is used
// in relaxed mode; a structural complaint from pdfcpu is reported through
// the returned error but callers may still try the text reader.
func (v *Validator) Validate(data []byte) (*DocumentInfo, error) {
	if err := v.CheckSize(int64(len(data))); err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(bytes.TrimLeft(data[:min(len(data), 1024)], "\x00\t\r\n "), pdfMagic) {
		return nil, newError(CodeNotPDF, "missing %PDF header", nil)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, newError(CodeUnreadable, "failed to read PDF context", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, newError(CodeUnreadable, "failed to ensure page count", err)
	}

	info := &DocumentInfo{
		Pages:     ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}

	return info, nil
}
