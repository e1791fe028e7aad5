package bloodwork

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used for report and storage dates.
const (
	ReportDateLayout  = "02/01/2006"
	StorageDateLayout = "2006-01-02"
)

// NewMetadata trims the inputs and validates them.
func NewMetadata(name, birthday string) (Metadata, error) {
	m := Metadata{
		Name:     StringPtr(strings.TrimSpace(name)),
		Birthday: StringPtr(strings.TrimSpace(birthday)),
	}
	if err := m.Validate(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

// Validate checks the birthday format. A missing birthday is valid.
func (m Metadata) Validate() error {
	if m.Birthday == nil || *m.Birthday == "" {
		return nil
	}
	if _, err := time.Parse(ReportDateLayout, *m.Birthday); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBirthday, *m.Birthday)
	}
	return nil
}
