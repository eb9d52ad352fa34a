package azsearch

import (
	"fmt"
	"strings"
)

const (
	// reservedFieldPrefix is claimed by the service for its own fields.
	reservedFieldPrefix = "azureSearch"

	maxFieldNameLength = 128
)

// ValidateFieldName checks name against the service's field naming rules:
// letters, numbers and underscores only, at most 128 characters, and not
// starting with the reserved "azureSearch" prefix. A nil return means the
// field is safe to submit.
func ValidateFieldName(name string) error {
	if strings.HasPrefix(name, reservedFieldPrefix) {
		return fmt.Errorf("%w: field %q cannot begin with %q",
			ErrValidation, name, reservedFieldPrefix)
	}
	if name == "" || !isFieldName(name) {
		return fmt.Errorf("%w: field %q can only contain letters, numbers and underscores",
			ErrValidation, name)
	}
	if len(name) > maxFieldNameLength {
		return fmt.Errorf("%w: field %q is longer than %d characters",
			ErrValidation, name, maxFieldNameLength)
	}
	return nil
}

// ValidateDocumentKey checks key against the service's document key rules:
// letters, numbers, dashes, underscores and equal signs, and the first
// character cannot be an underscore.
func ValidateDocumentKey(key string) error {
	if strings.HasPrefix(key, "_") {
		return fmt.Errorf("%w: document key %q cannot start with an underscore",
			ErrValidation, key)
	}
	if key == "" || !isDocumentKey(key) {
		return fmt.Errorf("%w: document key %q can only contain letters, numbers, dashes, underscores and equal signs",
			ErrValidation, key)
	}
	return nil
}

func isFieldName(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

func isDocumentKey(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; !isWordByte(c) && c != '-' && c != '=' {
			return false
		}
	}
	return true
}

func isWordByte(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '_'
}
