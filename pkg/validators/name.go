package validators

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNameEmpty   = errors.New("name can't be empty")
	ErrNameTooLong = errors.New("name is too long")
	ErrNameInvalid = errors.New("name contains invalid characters")
)

const maxNameSize = 255

// NameValidator checks a display, folder or file name and returns it trimmed
func NameValidator(n string) (string, error) {
	n = strings.TrimSpace(n)
	if n == "" {
		return "", ErrNameEmpty
	}

	if len(n) > maxNameSize {
		return "", ErrNameTooLong
	}

	if !utf8.ValidString(n) {
		return "", ErrNameInvalid
	}

	for _, r := range n {
		if unicode.IsControl(r) {
			return "", ErrNameInvalid
		}
	}

	return n, nil
}
