// Package seed parses the bundled name catalogue into name records.
//
// The seed resource is a line-oriented text file where every data line is an
// SQL INSERT statement:
//
//	INSERT INTO TABLE_NAMES(_id,NAMES_NAME,NAMES_GENDER,NAMES_ALLOWED,NAMES_NOTES) VALUES (1,'Ana','F',1,'');
//
// Malformed lines are counted and skipped; they never abort a parse.
package seed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/neteinstein/pickaname/pkg/core"
)

// DefaultTable is the table name expected in seed INSERT statements.
const DefaultTable = "TABLE_NAMES"

const (
	valuesStartMarker = "VALUES ("
	valuesEndMarker   = ");"

	// minFields is id, name, gender, allowed, notes.
	minFields = 5

	maxLineSize = 1024 * 1024
)

// Line-level parse errors. They are recorded in Result.Failures, never returned.
var (
	ErrMalformedStatement = errors.New("malformed INSERT statement")
	ErrTooFewFields       = errors.New("insufficient fields")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidAllowed     = errors.New("invalid allowed flag")
)

// LineError describes a seed line that could not be parsed.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// Result holds the records parsed from a seed resource, in input order.
type Result struct {
	Records  []core.NameRecord
	Failures []LineError
}

// Succeeded returns the number of lines that produced a record.
func (r *Result) Succeeded() int {
	return len(r.Records)
}

// Failed returns the number of qualifying lines that could not be parsed.
func (r *Result) Failed() int {
	return len(r.Failures)
}

type options struct {
	prefix string
}

// Option configures Parse.
type Option func(*options)

// WithTable sets the table name a line must insert into to qualify.
func WithTable(table string) Option {
	return func(o *options) {
		if table != "" {
			o.prefix = statementPrefix(table)
		}
	}
}

func statementPrefix(table string) string {
	return "INSERT INTO " + table
}

// Parse reads the seed resource line by line.
// The returned error is only for read failures on r; in that case no
// partial result is returned.
func Parse(r io.Reader, opts ...Option) (*Result, error) {
	o := options{prefix: statementPrefix(DefaultTable)}
	for _, opt := range opts {
		opt(&o)
	}

	result := &Result{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		// Only lines that begin with the statement are data; indented ones are not.
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if !strings.HasPrefix(line, o.prefix) {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			result.Failures = append(result.Failures, LineError{Line: lineNo, Err: err})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}

	return result, nil
}

// ParseLine parses a single INSERT statement into a record.
// It does not check the statement prefix.
func ParseLine(line string) (core.NameRecord, error) {
	values, err := extractValues(line)
	if err != nil {
		return core.NameRecord{}, err
	}

	fields := SplitValues(values)
	if len(fields) < minFields {
		return core.NameRecord{}, fmt.Errorf("%w: got %d, want %d", ErrTooFewFields, len(fields), minFields)
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return core.NameRecord{}, fmt.Errorf("%w %q", ErrInvalidID, fields[0])
	}

	allowed, err := strconv.Atoi(fields[3])
	if err != nil {
		return core.NameRecord{}, fmt.Errorf("%w %q", ErrInvalidAllowed, fields[3])
	}

	return core.NameRecord{
		ID:         id,
		Name:       fields[1],
		GenderCode: fields[2],
		Allowed:    allowed,
		Notes:      fields[4],
	}, nil
}

// extractValues returns the text between the first "VALUES (" and the last ");".
func extractValues(line string) (string, error) {
	open := strings.Index(line, valuesStartMarker)
	if open < 0 {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedStatement, valuesStartMarker)
	}
	start := open + len(valuesStartMarker)

	end := strings.LastIndex(line, valuesEndMarker)
	if end < 0 {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedStatement, valuesEndMarker)
	}
	if end <= start {
		return "", fmt.Errorf("%w: empty VALUES clause", ErrMalformedStatement)
	}

	return line[start:end], nil
}

// SplitValues splits a VALUES clause on commas outside single quotes.
// Quote characters are dropped, every field is trimmed, and the trailing
// field is always emitted.
func SplitValues(values string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, ch := range values {
		switch {
		case ch == '\'':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}
