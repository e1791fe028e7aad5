package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_WritePointsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.WritePoints(ctx, []Point{
		{Measurement: "bloodwork", Tags: map[string]string{TagTestName: "WBC"}, Value: 1, Time: day("2024-03-15")},
		{Measurement: "bloodwork", Tags: map[string]string{"colour": "red"}, Value: 2, Time: day("2024-03-15")},
	})
	require.ErrorIs(t, err, ErrUnknownTag)

	rows, err := m.Query(ctx, "bloodwork", Filter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = m.WritePoints(ctx, []Point{{Tags: map[string]string{}, Time: day("2024-03-15")}})
	assert.Error(t, err)
}

func TestMemory_WriteCopiesTags(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	tags := map[string]string{TagTestName: "WBC"}
	require.NoError(t, m.WritePoints(ctx, []Point{{Measurement: "bloodwork", Tags: tags, Time: day("2024-03-15")}}))
	tags[TagTestName] = "RBC"

	rows, err := m.Query(ctx, "bloodwork", Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "WBC", rows[0].TestName)
}

func TestMemory_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	points := []Point{
		{Measurement: "bloodwork", Tags: map[string]string{TagTestName: "A"}, Time: day("2024-01-01")},
		{Measurement: "bloodwork", Tags: map[string]string{TagTestName: "B"}, Time: day("2024-02-01")},
		{Measurement: "bloodwork", Tags: map[string]string{TagTestName: "C"}, Time: day("2024-02-01")},
	}
	require.NoError(t, m.WritePoints(ctx, points))

	rows, err := m.Query(ctx, "bloodwork", Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"B", "C", "A"}, []string{rows[0].TestName, rows[1].TestName, rows[2].TestName})

	rows, err = m.Query(ctx, "bloodwork", Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMemory_ClosedStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Close()

	assert.Error(t, m.Ping(ctx))
	assert.Error(t, m.WritePoints(ctx, nil))
	_, err := m.Query(ctx, "bloodwork", Filter{})
	assert.Error(t, err)
	_, err = m.Delete(ctx, "bloodwork", day("2024-03-15"))
	assert.Error(t, err)
}
