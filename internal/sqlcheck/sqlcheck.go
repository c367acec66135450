// Package sqlcheck validates statements locally before submission, so an
// obvious syntax error costs neither time nor scanned bytes.
package sqlcheck

import (
	"errors"
	"fmt"
	"strings"

	"vitess.io/vitess/go/vt/sqlparser"
)

var (
	ErrEmptyQuery = errors.New("query cannot be empty")
	ErrSyntax     = errors.New("SQL syntax error")
)

// Validate parses the statement and rejects it on malformed syntax.
// The dialect is not an exact match for the warehouse's, so this only
// catches errors any SQL dialect would reject.
func Validate(sql string) error {
	if strings.TrimSpace(sql) == "" {
		return ErrEmptyQuery
	}
	parser := sqlparser.NewTestParser()
	if _, err := parser.Parse(sql); err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return nil
}

// IsSelect reports whether the statement is a plain read (SELECT or a
// set operation over SELECTs).
func IsSelect(sql string) (bool, error) {
	parser := sqlparser.NewTestParser()
	stmt, err := parser.Parse(sql)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	switch stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union:
		return true, nil
	default:
		return false, nil
	}
}
