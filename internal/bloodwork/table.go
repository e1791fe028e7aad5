package bloodwork

import "strings"

// DefaultHeaderMarkers mark the header row of a results table
// ("RESULTS" and "REFERENCE VALUES" in Albanian).
var DefaultHeaderMarkers = []string{"REZULTATI", "VLERAT REFERUESE"}

// Assembler walks extracted tables and collects every parsable result row.
type Assembler struct {
	// Markers overrides DefaultHeaderMarkers when non-empty. Markers are
	// matched against the upper-cased row text.
	Markers []string

	// OnRow, when set, is called once per candidate data row with the
	// outcome of parsing it.
	OnRow func(reason RejectReason)
}

// Assemble builds a Record from the tables of one report. fullText is the
// page text the tables were extracted from.
func (a Assembler) Assemble(fullText string, tables []RawTable, date string, patientName *string) Record {
	record := Record{
		PatientName: patientName,
		TestDate:    date,
		Results:     []TestResult{},
	}

	parserLogger.Debug("assembling record", "tables", len(tables), "text_length", len(fullText), "date", date)

	for tableIdx, table := range tables {
		start := 0
		if headerIdx, ok := a.FindHeaderRow(table); ok {
			start = headerIdx + 1
		} else {
			parserLogger.Warn("no header found in table, treating every row as data", "table", tableIdx+1)
		}

		for rowIdx := start; rowIdx < len(table); rowIdx++ {
			row := table[rowIdx]
			if len(row) < 2 {
				a.report(RejectTooFewCells)
				continue
			}
			result, reason := ClassifyStrings(row, date)
			a.report(reason)
			if reason == Accepted {
				record.Results = append(record.Results, result)
			}
		}
	}

	return record
}

func (a Assembler) report(reason RejectReason) {
	if a.OnRow != nil {
		a.OnRow(reason)
	}
}

// FindHeaderRow returns the index of the first row with at least two cells
// whose joined text contains a header marker.
func (a Assembler) FindHeaderRow(table RawTable) (int, bool) {
	markers := a.Markers
	if len(markers) == 0 {
		markers = DefaultHeaderMarkers
	}

	for i, row := range table {
		if len(row) < 2 {
			continue
		}
		text := strings.ToUpper(strings.Join(row, " "))
		for _, marker := range markers {
			if strings.Contains(text, strings.ToUpper(marker)) {
				return i, true
			}
		}
	}
	return 0, false
}
