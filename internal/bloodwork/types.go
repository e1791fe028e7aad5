package bloodwork

// RawTable is one table grid produced by the extraction layer. Cells may
// hold several logical tokens stacked on separate lines.
type RawTable [][]string

// TestResult is a single parsed blood-test reading.
type TestResult struct {
	TestName       string  `json:"test_name"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	ReferenceRange string  `json:"reference_range"`
	TestDate       string  `json:"test_date"` // YYYY-MM-DD
}

// Record is the assembled result set of one uploaded report.
type Record struct {
	PatientName *string      `json:"patient_name,omitempty"`
	TestDate    string       `json:"test_date"`
	Results     []TestResult `json:"results"`
}

// Patient returns the patient name, or an empty string when unknown.
func (r Record) Patient() string {
	if r.PatientName == nil {
		return ""
	}
	return *r.PatientName
}

// Metadata is the patient information supplied alongside an upload.
type Metadata struct {
	Name     *string `json:"name,omitempty"`
	Birthday *string `json:"birthday,omitempty"` // DD/MM/YYYY
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
