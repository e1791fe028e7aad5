package descriptions

import "sort"

// Tool names
const (
	ToolIngest     = "bloodwork_ingest"
	ToolResults    = "bloodwork_results"
	ToolHistory    = "bloodwork_history"
	ToolDeleteDate = "bloodwork_delete_date"
	ToolServerInfo = "bloodwork_server_info"
)

// Tool descriptions with practical examples and use cases

const (
	IngestDescription = `Parse a lab report PDF and store every blood-test result it contains.

**When to use:** A new lab report has arrived and its results should become queryable.

**Why it's useful:** Finds the results table by its REZULTATI / VLERAT REFERUESE header, reads each row into test name, value, unit and reference range, and stamps all of them with the report date.

**Examples:**
• Store a report: "Ingest reports/2024-03-15.pdf for Arta Krasniqi"
• Skip the birthday when dating the report: "Ingest march.pdf with birthday 01/01/1990"

**Common workflows:**
1. Ingest report → bloodwork_results for the same date to review what was stored
2. Re-ingest after a parsing fix: bloodwork_delete_date → bloodwork_ingest

**Best practices:** Always pass the patient's birthday (DD/MM/YYYY) so it is never mistaken for the test date. Paths are relative to the configured report directory.`

	ResultsDescription = `Query stored results between two dates, newest first.

**When to use:** Reviewing a patient's results over a period or checking a handful of tests.

**Why it's useful:** Both dates are inclusive calendar days (YYYY-MM-DD); an optional comma-separated list narrows the query to specific tests.

**Examples:**
• Last year: "Results from 2024-01-01 to 2024-12-31"
• Selected tests: "WBC and Glukoza between 2023-06-01 and 2024-06-01"

**Best practices:** Use exact test names as they appear on the report.`

	HistoryDescription = `List the stored values of a single test over time, newest first.

**When to use:** Following one marker (e.g. Glukoza) across many reports.

**Why it's useful:** No date range needed; returns up to limit values (default 1000).

**Examples:**
• "History of Hemoglobina"
• "Last 5 WBC values"`

	DeleteDateDescription = `Delete every stored result stamped with one report date.

**When to use:** A report was ingested twice or with a wrong date.

**Why it's useful:** Removes all tests of that date in one call so the report can be ingested again.

**Examples:**
• "Delete results from 2024-03-15"

**Best practices:** Check bloodwork_results for the date first; deletion cannot be undone.`

	ServerInfoDescription = `Get server information, storage status and the available tools.

**When to use:** Start of a session, or when ingest or queries fail unexpectedly.

**Why it's useful:** Reports the version, the report directory, the upload size limit, which store results go to and whether it is reachable.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ToolIngest:     IngestDescription,
	ToolResults:    ResultsDescription,
	ToolHistory:    HistoryDescription,
	ToolDeleteDate: DeleteDateDescription,
	ToolServerInfo: ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns all tool names in alphabetical order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
