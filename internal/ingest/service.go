// Package ingest turns one uploaded lab report into stored test results.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
	"github.com/a3tai/mcp-bloodwork/internal/logging"
	"github.com/a3tai/mcp-bloodwork/internal/metrics"
	"github.com/a3tai/mcp-bloodwork/internal/pdf"
)

// SuccessMessage is returned with every successfully parsed upload.
const SuccessMessage = "Blood work parsed successfully"

var ingestLogger = logging.Logger(logging.SourceIngest)

// Extractor reads reports and pulls text and tables out of PDF bytes.
type Extractor interface {
	ReadFile(path string) ([]byte, error)
	Extract(ctx context.Context, data []byte) (*pdf.Extraction, error)
}

// Store persists an assembled record.
type Store interface {
	Store(ctx context.Context, record bloodwork.Record) bool
}

// Request is one upload.
type Request struct {
	Filename string
	Data     []byte
	Metadata bloodwork.Metadata
}

// Response describes a successfully ingested upload.
type Response struct {
	UploadID string                 `json:"upload_id"`
	Filename string                 `json:"filename"`
	TestDate string                 `json:"test_date"`
	Name     *string                `json:"name"`
	Results  []bloodwork.TestResult `json:"results"`
	Message  string                 `json:"message"`
}

// Service runs the extract, parse and store flow for uploads.
type Service struct {
	extractor Extractor
	store     Store
	limiter   *rate.Limiter
	assembler bloodwork.Assembler
	resolver  bloodwork.DateResolver
	newID     func() string
}

// NewService creates an ingest service. A nil limiter disables rate
// limiting.
func NewService(extractor Extractor, store Store, limiter *rate.Limiter) *Service {
	return &Service{
		extractor: extractor,
		store:     store,
		limiter:   limiter,
		assembler: bloodwork.Assembler{
			OnRow: func(reason bloodwork.RejectReason) { metrics.RecordRow(string(reason)) },
		},
		newID: func() string { return uuid.New().String() },
	}
}

// NewLimiter returns a limiter allowing perSecond uploads with the given
// burst, or nil when perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Ingest parses one report and stores its results.
func (s *Service) Ingest(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	uploadID := s.newID()
	log := ingestLogger.With("upload_id", uploadID, "filename", req.Filename)

	resp, outcome, err := s.ingest(ctx, uploadID, req)
	metrics.RecordUpload(outcome, time.Since(started))

	if err != nil {
		log.Error("error processing file", "outcome", outcome, "err", err)
		return nil, err
	}

	log.Info("ingested report", "date", resp.TestDate, "results", len(resp.Results), "duration", time.Since(started))
	return resp, nil
}

func (s *Service) ingest(ctx context.Context, uploadID string, req Request) (*Response, string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, metrics.OutcomeRejected, fmt.Errorf("upload rate limit: %w", err)
		}
	}

	if !strings.HasSuffix(strings.ToLower(req.Filename), ".pdf") {
		return nil, metrics.OutcomeRejected, ErrNotPDF
	}
	if err := req.Metadata.Validate(); err != nil {
		return nil, metrics.OutcomeRejected, err
	}

	extraction, err := s.extractor.Extract(ctx, req.Data)
	if err != nil {
		outcome := metrics.OutcomeUnreadable
		if errors.Is(err, pdf.ErrFileTooLarge) || errors.Is(err, pdf.ErrEmptyFile) || errors.Is(err, pdf.ErrNotPDF) {
			outcome = metrics.OutcomeRejected
		}
		return nil, outcome, fmt.Errorf("error processing file: %w", err)
	}
	if len(extraction.Tables) == 0 {
		return nil, metrics.OutcomeNoTables, ErrNoTables
	}

	date := s.resolver.Resolve(extraction.FullText, req.Metadata.Birthday)
	record := s.assembler.Assemble(extraction.FullText, extraction.Tables, date, req.Metadata.Name)

	if !s.store.Store(ctx, record) {
		return nil, metrics.OutcomeStoreError, ErrStoreFailed
	}

	return &Response{
		UploadID: uploadID,
		Filename: req.Filename,
		TestDate: record.TestDate,
		Name:     req.Metadata.Name,
		Results:  record.Results,
		Message:  SuccessMessage,
	}, metrics.OutcomeOK, nil
}

// IngestFile reads path and ingests it under its base name.
func (s *Service) IngestFile(ctx context.Context, path string, metadata bloodwork.Metadata) (*Response, error) {
	data, err := s.extractor.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return s.Ingest(ctx, Request{
		Filename: filepath.Base(path),
		Data:     data,
		Metadata: metadata,
	})
}
