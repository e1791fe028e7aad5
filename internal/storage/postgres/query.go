package postgres

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/a3tai/mcp-bloodwork/internal/storage"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// tagColumns maps point tags to table columns.
var tagColumns = map[string]string{
	storage.TagPatientName:    "patient_name",
	storage.TagTestName:       "test_name",
	storage.TagUnit:           "unit",
	storage.TagReferenceRange: "reference_range",
}

// tableName validates a measurement and quotes it as a table identifier.
func tableName(measurement string) (string, error) {
	if !identifierPattern.MatchString(measurement) {
		return "", fmt.Errorf("invalid measurement name %q", measurement)
	}
	return pgx.Identifier{measurement}.Sanitize(), nil
}

func createTableSQL(table, measurement string) []string {
	index := pgx.Identifier{measurement + "_test_time_idx"}.Sanitize()
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			time            TIMESTAMPTZ      NOT NULL,
			patient_name    TEXT             NOT NULL DEFAULT '',
			test_name       TEXT             NOT NULL,
			unit            TEXT             NOT NULL DEFAULT '',
			reference_range TEXT,
			value           DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ` + index + ` ON ` + table + ` (test_name, time DESC)`,
	}
}

func insertSQL(table string) string {
	return `INSERT INTO ` + table + ` (time, patient_name, test_name, unit, reference_range, value)
		VALUES ($1, $2, $3, $4, $5, $6)`
}

// insertArgs maps a point onto the insert parameters.
func insertArgs(p storage.Point) ([]any, error) {
	for key := range p.Tags {
		if _, ok := tagColumns[key]; !ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrUnknownTag, key)
		}
	}

	var referenceRange *string
	if r, ok := p.Tags[storage.TagReferenceRange]; ok && r != "" {
		referenceRange = &r
	}

	return []any{
		p.Time,
		p.Tags[storage.TagPatientName],
		p.Tags[storage.TagTestName],
		p.Tags[storage.TagUnit],
		referenceRange,
		p.Value,
	}, nil
}

// selectSQL builds the range/test-name query, newest first.
func selectSQL(table string, f storage.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)

	param := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.Start.IsZero() {
		where = append(where, "time >= "+param(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "time <= "+param(f.End))
	}
	if len(f.TestNames) > 0 {
		where = append(where, "test_name = ANY("+param(f.TestNames)+")")
	}

	var b strings.Builder
	b.WriteString("SELECT time, patient_name, test_name, unit, COALESCE(reference_range, ''), value FROM ")
	b.WriteString(table)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY time DESC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + param(f.Limit))
	}

	return b.String(), args
}

func deleteSQL(table string) string {
	return `DELETE FROM ` + table + ` WHERE time = $1`
}
