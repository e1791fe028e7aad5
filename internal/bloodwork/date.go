package bloodwork

import (
	"regexp"
	"time"
)

var reportDatePattern = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)

// DateResolver picks the test date out of a report's text.
type DateResolver struct {
	// Now supplies the fallback date. Defaults to time.Now.
	Now func() time.Time
}

// Resolve returns the last DD/MM/YYYY date in fullText that is not the
// patient's birthday, formatted as YYYY-MM-DD. When there is no such date
// the current date is returned instead.
func (d DateResolver) Resolve(fullText string, birthday *string) string {
	var candidate string
	for _, match := range reportDatePattern.FindAllString(fullText, -1) {
		if birthday != nil && match == *birthday {
			continue
		}
		candidate = match
	}

	if candidate == "" {
		parserLogger.Warn("could not find test date, using current date")
		return d.now().Format(StorageDateLayout)
	}

	parsed, err := time.Parse(ReportDateLayout, candidate)
	if err != nil {
		parserLogger.Warn("test date is not a calendar date, using current date", "date", candidate, "err", err)
		return d.now().Format(StorageDateLayout)
	}

	return parsed.Format(StorageDateLayout)
}

func (d DateResolver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
