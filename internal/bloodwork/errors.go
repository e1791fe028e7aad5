package bloodwork

import "errors"

// ErrInvalidBirthday is returned when the supplied birthday is not DD/MM/YYYY.
var ErrInvalidBirthday = errors.New("birthday must be in DD/MM/YYYY format")
