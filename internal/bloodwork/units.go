package bloodwork

import (
	"regexp"
	"strings"
)

// unitCatalogue is checked in order; the first contained entry wins.
var unitCatalogue = []string{
	"%",
	"mg/dL",
	"mg/dl",
	"U/L",
	"g/dL",
	"g/dl",
	"mmol/L",
	"μg/dL",
	"ng/mL",
	"mL/min",
}

var unitFallback = regexp.MustCompile(`[a-zA-Z/μ]+`)

// ExtractUnit returns the best-guess unit for a reference range string.
// Catalogue units take priority by catalogue order, not by position in the
// string; otherwise the first run of letters, slashes or μ is returned.
func ExtractUnit(referenceRange string) string {
	if referenceRange == "" {
		return ""
	}

	for _, unit := range unitCatalogue {
		if strings.Contains(referenceRange, unit) {
			return unit
		}
	}

	return unitFallback.FindString(referenceRange)
}
