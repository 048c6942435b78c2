package validators

import "strings"

// NormalizeFolderID turns the different ways clients say "no folder" into nil.
// It must be applied once at the HTTP boundary, everything past it only
// deals with nil or a real ID.
func NormalizeFolderID(raw *string) *string {
	if raw == nil {
		return nil
	}

	v := strings.TrimSpace(*raw)
	switch strings.ToLower(v) {
	case "", "null", "undefined", "none", "root":
		return nil
	}

	return &v
}
