package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
)

const testMaxFileSize = 10 * 1024 * 1024

func TestExtractor_ExtractRejects(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int64
		data    []byte
		wantErr error
		code    ErrorCode
	}{
		{
			name:    "empty data",
			maxSize: testMaxFileSize,
			data:    []byte{},
			wantErr: ErrEmptyFile,
			code:    CodeEmptyFile,
		},
		{
			name:    "over the size limit",
			maxSize: 8,
			data:    []byte("%PDF-1.4 but far too long"),
			wantErr: ErrFileTooLarge,
			code:    CodeTooLarge,
		},
		{
			name:    "not a PDF",
			maxSize: testMaxFileSize,
			data:    []byte("REZULTATI 5.2 mg/dL"),
			wantErr: ErrNotPDF,
			code:    CodeNotPDF,
		},
		{
			name:    "PDF header with garbage body",
			maxSize: testMaxFileSize,
			data:    []byte("%PDF-1.4\nthis is not a document\n"),
			wantErr: ErrUnreadable,
			code:    CodeUnreadable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewExtractor(tt.maxSize)

			result, err := extractor.Extract(context.Background(), tt.data)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)

			var extErr *ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.code, extErr.Code)
		})
	}
}

func TestExtractor_Extract(t *testing.T) {
	extractor := NewExtractor(testMaxFileSize)

	result, err := extractor.Extract(context.Background(), buildPDF(reportRuns()))
	require.NoError(t, err)

	assert.Contains(t, result.FullText, "15/03/2024")
	assert.Contains(t, result.FullText, "01/01/1990")

	require.Len(t, result.Tables, 1)
	assert.Equal(t, bloodwork.RawTable{
		{"Nr", "Analiza", "REZULTATI", "VLERAT REFERUESE"},
		{"1", "WBC", "5.2", "4.0-10.0"},
		{"2", "*Glukoza*", "95 mg/dL", "70-110"},
	}, result.Tables[0])
}

func TestExtractor_ExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(testMaxFileSize).Extract(ctx, buildPDF(reportRuns()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractor_ReadFile(t *testing.T) {
	dir := t.TempDir()

	reportPath := filepath.Join(dir, "report.PDF")
	data := buildPDF(reportRuns())
	require.NoError(t, os.WriteFile(reportPath, data, 0o600))

	emptyPath := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o600))

	extractor := NewExtractor(testMaxFileSize)

	t.Run("reads the file", func(t *testing.T) {
		got, err := extractor.ReadFile(reportPath)
		require.NoError(t, err)
		assert.Equal(t, data, got)

		result, err := extractor.Extract(context.Background(), got)
		require.NoError(t, err)
		assert.Len(t, result.Tables, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := extractor.ReadFile(filepath.Join(dir, "missing.pdf"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("directory", func(t *testing.T) {
		_, err := extractor.ReadFile(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := extractor.ReadFile("")
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := extractor.ReadFile(emptyPath)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("size checked before reading", func(t *testing.T) {
		_, err := NewExtractor(16).ReadFile(reportPath)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestExtractionError(t *testing.T) {
	err := newError(CodeTooLarge, "file too large: 20 bytes", nil)
	assert.Equal(t, "[FILE_TOO_LARGE] file too large: 20 bytes", err.Error())
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.NotErrorIs(t, err, ErrNotPDF)

	wrapped := newError(CodeUnreadable, "failed to open PDF", assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Contains(t, wrapped.Error(), "[UNREADABLE] failed to open PDF: ")
	assert.Equal(t, "UNKNOWN", CodeUnknown.String())
}
