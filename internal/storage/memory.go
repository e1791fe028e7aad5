package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// Memory is a TimeSeries kept in process memory. It backs the server when
// no database is configured and stands in for one in tests.
type Memory struct {
	mu     sync.RWMutex
	points map[string][]Point
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{points: make(map[string][]Point)}
}

// WritePoints appends points; a point without a measurement fails the
// whole batch.
func (m *Memory) WritePoints(_ context.Context, points []Point) error {
	for i, p := range points {
		if p.Measurement == "" {
			return fmt.Errorf("point %d: measurement is required", i)
		}
		for key := range p.Tags {
			if !knownTag(key) {
				return fmt.Errorf("point %d: %w: %s", i, ErrUnknownTag, key)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}
	for _, p := range points {
		m.points[p.Measurement] = append(m.points[p.Measurement], clonePoint(p))
	}
	return nil
}

// Query returns matching rows, newest first. Rows at the same time keep
// insertion order.
func (m *Memory) Query(_ context.Context, measurement string, f Filter) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows := []Row{}
	for _, p := range m.points[measurement] {
		if !f.Start.IsZero() && p.Time.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && p.Time.After(f.End) {
			continue
		}
		if len(f.TestNames) > 0 && !slices.Contains(f.TestNames, p.Tags[TagTestName]) {
			continue
		}
		rows = append(rows, rowOf(p))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time.After(rows[j].Time)
	})

	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return rows, nil
}

// Delete removes the points of measurement stamped exactly at.
func (m *Memory) Delete(_ context.Context, measurement string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, fmt.Errorf("store is closed")
	}

	kept := m.points[measurement][:0]
	var removed int64
	for _, p := range m.points[measurement] {
		if p.Time.Equal(at) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	m.points[measurement] = kept
	return removed, nil
}

// Ping reports whether the store is still open.
func (m *Memory) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

// Close drops all points.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.points = nil
}

func knownTag(key string) bool {
	switch key {
	case TagPatientName, TagTestName, TagUnit, TagReferenceRange:
		return true
	}
	return false
}

func clonePoint(p Point) Point {
	tags := make(map[string]string, len(p.Tags))
	for k, v := range p.Tags {
		tags[k] = v
	}
	p.Tags = tags
	return p
}

func rowOf(p Point) Row {
	return Row{
		Time:           p.Time,
		PatientName:    p.Tags[TagPatientName],
		TestName:       p.Tags[TagTestName],
		Unit:           p.Tags[TagUnit],
		ReferenceRange: p.Tags[TagReferenceRange],
		Value:          p.Value,
	}
}
