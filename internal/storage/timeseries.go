// Package storage persists test results as time-series points and reads
// them back for range and history queries.
package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultMeasurement is the measurement every result is written under.
const DefaultMeasurement = "bloodwork"

// Tag keys
const (
	TagPatientName    = "patient_name"
	TagTestName       = "test_name"
	TagUnit           = "unit"
	TagReferenceRange = "reference_range"
)

// DefaultHistoryLimit bounds History when no limit is given.
const DefaultHistoryLimit = 1000

// ErrUnknownTag is returned by backends for tags they have no column for.
var ErrUnknownTag = errors.New("unknown tag")

// Point is one timestamped value with its tags.
type Point struct {
	Measurement string
	Tags        map[string]string
	Value       float64
	Time        time.Time
}

// Filter narrows a query. Zero Start or End leave that side of the range
// open; an empty TestNames matches every test; Limit <= 0 means no limit.
type Filter struct {
	Start     time.Time
	End       time.Time
	TestNames []string
	Limit     int
}

// Row is one stored point as returned by queries.
type Row struct {
	Time           time.Time `json:"time"`
	PatientName    string    `json:"patient_name"`
	TestName       string    `json:"test_name"`
	Unit           string    `json:"unit"`
	ReferenceRange string    `json:"reference_range,omitempty"`
	Value          float64   `json:"value"`
}

// Table is a query result ordered newest first.
type Table []Row

// TimeSeries is the narrow write/query interface to the database engine.
// Implementations must be safe for concurrent use.
type TimeSeries interface {
	// WritePoints writes all points or none.
	WritePoints(ctx context.Context, points []Point) error
	// Query returns the points of measurement matching f, newest first.
	Query(ctx context.Context, measurement string, f Filter) ([]Row, error)
	// Delete removes every point of measurement stamped exactly at.
	Delete(ctx context.Context, measurement string, at time.Time) (int64, error)
	Ping(ctx context.Context) error
	Close()
}
