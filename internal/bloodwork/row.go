package bloodwork

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// RejectReason explains why a row did not produce a TestResult. The empty
// reason means the row was accepted.
type RejectReason string

const (
	Accepted          RejectReason = ""
	RejectTooFewCells RejectReason = "fewer than 2 cells"
	RejectEmpty       RejectReason = "all cells empty"
	RejectOneCell     RejectReason = "at most one meaningful cell"
	RejectTooFewParts RejectReason = "fewer than 2 parts after filtering"
	RejectNoName      RejectReason = "empty test name"
	RejectNoValue     RejectReason = "no numeric value"
	RejectPanic       RejectReason = "malformed row"
)

var leadingNumber = regexp.MustCompile(`^(\d+\.?\d*)`)

// rowState is threaded through the parsing stages.
type rowState struct {
	cells    []string
	parts    []string
	result   TestResult
	hasValue bool
}

// rowStage is one step of the row heuristic. It either returns the updated
// state or a non-empty reason to drop the row.
type rowStage func(rowState) (rowState, RejectReason)

// rowPipeline lists the stages in the order they must run.
var rowPipeline = []struct {
	name string
	run  rowStage
}{
	{"require_cells", requireCells},
	{"require_meaningful", requireMeaningful},
	{"flatten", flattenParts},
	{"drop_index_tokens", dropIndexTokens},
	{"require_parts", requireParts},
	{"name", extractName},
	{"value", extractValue},
	{"unit", extractRowUnit},
}

// ClassifyStrings is Classify for rows without missing cells.
func ClassifyStrings(cells []string, date string) (TestResult, RejectReason) {
	ptrs := make([]*string, len(cells))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	return Classify(ptrs, date)
}

// Classify turns one raw table row into a TestResult, or reports why the
// row does not encode one. Missing cells are nil.
// It never panics; a failure inside any stage rejects the row.
func Classify(cells []*string, date string) (result TestResult, reason RejectReason) {
	defer func() {
		if r := recover(); r != nil {
			parserLogger.Warn("error parsing row", "row", printableCells(cells), "err", fmt.Sprint(r))
			result, reason = TestResult{}, RejectPanic
		}
	}()

	state := rowState{cells: trimCells(cells)}
	state.result.TestDate = date

	for _, stage := range rowPipeline {
		state, reason = stage.run(state)
		if reason != Accepted {
			parserLogger.Debug("skipping row", "stage", stage.name, "reason", string(reason), "row", state.cells)
			return TestResult{}, reason
		}
	}

	parserLogger.Debug("parsed row", "test", state.result.TestName, "value", state.result.Value, "unit", state.result.Unit)
	return state.result, Accepted
}

func trimCells(cells []*string) []string {
	clean := make([]string, len(cells))
	for i, cell := range cells {
		if cell != nil {
			clean[i] = strings.TrimSpace(*cell)
		}
	}
	return clean
}

func requireCells(s rowState) (rowState, RejectReason) {
	if len(s.cells) < 2 {
		return s, RejectTooFewCells
	}
	for _, cell := range s.cells {
		if cell != "" {
			return s, Accepted
		}
	}
	return s, RejectEmpty
}

func requireMeaningful(s rowState) (rowState, RejectReason) {
	meaningful := 0
	for _, cell := range s.cells {
		if cell != "" {
			meaningful++
		}
	}
	if meaningful <= 1 {
		return s, RejectOneCell
	}
	return s, Accepted
}

func flattenParts(s rowState) (rowState, RejectReason) {
	for _, cell := range s.cells {
		if cell == "" {
			continue
		}
		for _, part := range strings.Split(cell, "\n") {
			if part = strings.TrimSpace(part); part != "" {
				s.parts = append(s.parts, part)
			}
		}
	}
	return s, Accepted
}

// dropIndexTokens removes purely numeric tokens, which are row numbers left
// behind by the table extraction.
func dropIndexTokens(s rowState) (rowState, RejectReason) {
	filtered := s.parts[:0:0]
	for _, part := range s.parts {
		if isDigits(part) {
			continue
		}
		filtered = append(filtered, part)
	}
	s.parts = filtered
	return s, Accepted
}

func requireParts(s rowState) (rowState, RejectReason) {
	if len(s.parts) < 2 {
		return s, RejectTooFewParts
	}
	return s, Accepted
}

func extractName(s rowState) (rowState, RejectReason) {
	s.result.TestName = strings.TrimSpace(strings.ReplaceAll(s.parts[0], "*", ""))
	if s.result.TestName == "" {
		return s, RejectNoName
	}
	return s, Accepted
}

// extractValue takes the first numeric-leading token as the value. The rest
// of that token and every later token form the reference range; tokens
// before the value are ignored.
func extractValue(s rowState) (rowState, RejectReason) {
	var reference []string

	for _, part := range s.parts[1:] {
		if s.hasValue {
			reference = append(reference, part)
			continue
		}

		match := leadingNumber.FindString(part)
		if match == "" {
			continue
		}
		value, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}

		s.result.Value = value
		s.hasValue = true
		if remaining := strings.TrimSpace(part[len(match):]); remaining != "" {
			reference = append(reference, remaining)
		}
	}

	if !s.hasValue {
		return s, RejectNoValue
	}
	s.result.ReferenceRange = strings.Join(reference, " ")
	return s, Accepted
}

func extractRowUnit(s rowState) (rowState, RejectReason) {
	s.result.Unit = ExtractUnit(s.result.ReferenceRange)
	return s, Accepted
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func printableCells(cells []*string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		if cell != nil {
			out[i] = *cell
		}
	}
	return out
}
