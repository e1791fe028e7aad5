package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
	"github.com/a3tai/mcp-bloodwork/internal/logging"
	"github.com/a3tai/mcp-bloodwork/internal/metrics"
)

var storageLogger = logging.Logger(logging.SourceStorage)

// Adapter maps bloodwork records onto a TimeSeries backend.
type Adapter struct {
	backend     TimeSeries
	measurement string
}

// NewAdapter wraps backend. An empty measurement selects DefaultMeasurement.
func NewAdapter(backend TimeSeries, measurement string) *Adapter {
	if measurement == "" {
		measurement = DefaultMeasurement
	}
	return &Adapter{backend: backend, measurement: measurement}
}

// Measurement returns the measurement name results are stored under.
func (a *Adapter) Measurement() string {
	return a.measurement
}

// Points converts a record to one point per result, stamped at UTC
// midnight of the record date.
func (a *Adapter) Points(record bloodwork.Record) ([]Point, error) {
	ts, err := time.Parse(bloodwork.StorageDateLayout, record.TestDate)
	if err != nil {
		return nil, fmt.Errorf("invalid test date %q: %w", record.TestDate, err)
	}

	points := make([]Point, 0, len(record.Results))
	for _, result := range record.Results {
		tags := map[string]string{
			TagPatientName: record.Patient(),
			TagTestName:    result.TestName,
			TagUnit:        result.Unit,
		}
		if result.ReferenceRange != "" {
			tags[TagReferenceRange] = result.ReferenceRange
		}
		points = append(points, Point{
			Measurement: a.measurement,
			Tags:        tags,
			Value:       result.Value,
			Time:        ts,
		})
	}
	return points, nil
}

// Store writes every result of record in one batch. Any failure is logged
// and reported as false.
func (a *Adapter) Store(ctx context.Context, record bloodwork.Record) bool {
	points, err := a.Points(record)
	if err != nil {
		storageLogger.Error("error storing bloodwork record", "err", err)
		metrics.RecordStorageError("store")
		return false
	}
	if len(points) == 0 {
		storageLogger.Debug("record has no results, nothing to store", "date", record.TestDate)
		return true
	}

	if err := a.backend.WritePoints(ctx, points); err != nil {
		storageLogger.Error("error storing bloodwork record", "points", len(points), "err", err)
		metrics.RecordStorageError("store")
		return false
	}

	metrics.RecordStored(len(points))
	storageLogger.Info("stored bloodwork record", "date", record.TestDate, "points", len(points))
	return true
}

// Query returns results between the calendar dates of start and end, both
// inclusive, optionally restricted to testNames. A failed query yields an
// empty table; use QueryResult to tell the two apart.
func (a *Adapter) Query(ctx context.Context, start, end time.Time, testNames []string) Table {
	table, err := a.QueryResult(ctx, start, end, testNames)
	if err != nil {
		storageLogger.Error("error querying patient tests", "err", err)
		return Table{}
	}
	return table
}

// QueryResult is Query with the backend error exposed.
func (a *Adapter) QueryResult(ctx context.Context, start, end time.Time, testNames []string) (Table, error) {
	rows, err := a.backend.Query(ctx, a.measurement, Filter{
		Start:     dateOf(start),
		End:       dateOf(end),
		TestNames: testNames,
	})
	if err != nil {
		metrics.RecordStorageError("query")
		return nil, fmt.Errorf("query %s: %w", a.measurement, err)
	}
	return Table(rows), nil
}

// History returns the newest limit values of one test. limit <= 0 selects
// DefaultHistoryLimit. Failures yield an empty table.
func (a *Adapter) History(ctx context.Context, testName string, limit int) Table {
	table, err := a.HistoryResult(ctx, testName, limit)
	if err != nil {
		storageLogger.Error("error querying test history", "test", testName, "err", err)
		return Table{}
	}
	return table
}

// HistoryResult is History with the backend error exposed.
func (a *Adapter) HistoryResult(ctx context.Context, testName string, limit int) (Table, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := a.backend.Query(ctx, a.measurement, Filter{
		TestNames: []string{testName},
		Limit:     limit,
	})
	if err != nil {
		metrics.RecordStorageError("history")
		return nil, fmt.Errorf("history of %s: %w", testName, err)
	}
	return Table(rows), nil
}

// DeleteDate removes every result stamped at date (YYYY-MM-DD).
func (a *Adapter) DeleteDate(ctx context.Context, date string) bool {
	ts, err := time.Parse(bloodwork.StorageDateLayout, date)
	if err != nil {
		storageLogger.Error("error deleting date data", "date", date, "err", err)
		return false
	}

	n, err := a.backend.Delete(ctx, a.measurement, ts)
	if err != nil {
		storageLogger.Error("error deleting date data", "date", date, "err", err)
		metrics.RecordStorageError("delete")
		return false
	}

	storageLogger.Info("deleted date data", "date", date, "points", n)
	return true
}

// Ping checks that the backend is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.backend.Ping(ctx)
}

// Close releases the backend.
func (a *Adapter) Close() {
	a.backend.Close()
}

// dateOf truncates t to midnight UTC of its calendar date.
func dateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
