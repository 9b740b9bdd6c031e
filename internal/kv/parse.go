// Package kv parses the "KEY: VALUE" result lines printed by the lookup scripts.
package kv

import (
	"strings"

	"github.com/felixgeelhaar/releng/internal/errors"
)

// Separator splits a result line into key and value
const Separator = ": "

// Parse converts result lines into a Record. Each line is split on the first
// Separator; a line without one aborts the whole parse.
func Parse(lines []string) (*Record, error) {
	record := NewRecord()
	for _, line := range lines {
		key, value, ok := strings.Cut(line, Separator)
		if !ok {
			return nil, errors.NewMalformedOutputError(line)
		}
		record.Set(key, value)
	}
	return record, nil
}
