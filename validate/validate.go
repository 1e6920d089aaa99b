// Package validate holds the input validation rules shared by the session and
// its transports.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmmsinno/lightrace/game/engine"
)

var (
	ErrNameRequired = errors.New("a name is required")
	ErrNameTooLong  = fmt.Errorf("names are limited to %d characters", engine.MaxNameLength)
	ErrNameInvalid  = errors.New("names may not contain control characters")
)

// PlayerName trims and validates a display name, returning the cleaned form.
func PlayerName(name string) (string, error) {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(cleaned) > engine.MaxNameLength {
		return "", ErrNameTooLong
	}
	for _, r := range cleaned {
		if unicode.IsControl(r) {
			return "", ErrNameInvalid
		}
	}
	return cleaned, nil
}
