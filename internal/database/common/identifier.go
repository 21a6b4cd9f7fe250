// Package common holds helpers shared by the dialect adapters.
package common

import (
	"fmt"
	"regexp"
)

// identifierPattern matches table/column names safe to interpolate into SQL.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdentifier reports whether name is a safe SQL identifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// CheckIdentifiers validates every name and returns the first offender.
func CheckIdentifiers(names ...string) error {
	for _, name := range names {
		if !ValidIdentifier(name) {
			return fmt.Errorf("invalid identifier: %s", name)
		}
	}
	return nil
}
