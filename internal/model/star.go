package model

import (
	"fmt"
	"strings"
	"unicode"
)

// StarIdentifier labels a target star. It only feeds titles and file names.
type StarIdentifier struct {
	CatalogID int64
	Name      string
}

// KIC returns the catalog ID zero-padded to nine digits, as used in Kepler
// product names.
func (s StarIdentifier) KIC() string {
	return fmt.Sprintf("%09d", s.CatalogID)
}

// CleanName returns Name with every non alphanumeric rune removed.
func (s StarIdentifier) CleanName() string {
	var b strings.Builder
	for _, r := range s.Name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DisplayName returns Name, or "KIC <id>" when no name is set.
func (s StarIdentifier) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("KIC %d", s.CatalogID)
}
