package mcp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
	"github.com/a3tai/mcp-bloodwork/internal/ingest"
	"github.com/a3tai/mcp-bloodwork/internal/pdf"
	"github.com/a3tai/mcp-bloodwork/internal/storage"
)

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(bloodwork.StorageDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format: %q", field, value)
	}
	return t, nil
}

// splitNames splits a comma-separated list, dropping blanks.
func splitNames(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// describeIngestError adds guidance for the failures a caller can act on.
func describeIngestError(err error) string {
	switch {
	case errors.Is(err, ingest.ErrNoTables):
		return fmt.Sprintf("%v: the report text was readable but no results table was detected", err)
	case errors.Is(err, pdf.ErrUnreadable), errors.Is(err, pdf.ErrNoText):
		return fmt.Sprintf("%v: the file may be scanned or damaged", err)
	case errors.Is(err, pdf.ErrFileTooLarge):
		return fmt.Sprintf("%v: raise --max-file-size to accept larger reports", err)
	case errors.Is(err, ingest.ErrStoreFailed):
		return fmt.Sprintf("%v: results were parsed but could not be saved, check bloodwork_server_info", err)
	default:
		return err.Error()
	}
}

func formatIngestResponse(resp *ingest.Response) string {
	text := resp.Message + "\n"
	text += fmt.Sprintf("Upload ID: %s\n", resp.UploadID)
	text += fmt.Sprintf("File: %s\n", resp.Filename)
	text += fmt.Sprintf("Test date: %s\n", resp.TestDate)
	if resp.Name != nil {
		text += fmt.Sprintf("Patient: %s\n", *resp.Name)
	}

	text += fmt.Sprintf("\nResults (%d):\n", len(resp.Results))
	for i, r := range resp.Results {
		text += fmt.Sprintf("%d. %s: %s", i+1, r.TestName, formatValue(r.Value, r.Unit))
		if r.ReferenceRange != "" {
			text += fmt.Sprintf(" (reference: %s)", r.ReferenceRange)
		}
		text += "\n"
	}
	return text
}

func formatTable(header string, table storage.Table) string {
	if len(table) == 0 {
		return header + "\nNo results found\n"
	}

	text := fmt.Sprintf("%s (%d):\n", header, len(table))
	for _, row := range table {
		text += fmt.Sprintf("%s  %s: %s", row.Time.Format(bloodwork.StorageDateLayout), row.TestName, formatValue(row.Value, row.Unit))
		if row.ReferenceRange != "" {
			text += fmt.Sprintf(" (reference: %s)", row.ReferenceRange)
		}
		if row.PatientName != "" {
			text += fmt.Sprintf(" [%s]", row.PatientName)
		}
		text += "\n"
	}
	return text
}

func formatValue(value float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%g", value)
	}
	return fmt.Sprintf("%g %s", value, unit)
}
