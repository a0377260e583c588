package deck

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arcanaland/deckpress/internal/card"
)

// Entry is one parsed deck-file line: an identifier and a print count
type Entry struct {
	Identifier card.Identifier
	Count      int
	Line       int // 1-based line (or CSV row) in the source file
}

// ParseError reports an invalid deck file with the offending location
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// Load parses a deck file into an ordered sequence of entries.
//
// Two formats are supported. CSV files carry a header row with `name` and
// `count` columns (case-insensitive); plain text files carry one entry per
// line as `<count> <name...>`, where a missing leading integer defaults the
// count to 1. Blank lines and lines starting with # are skipped in both
// formats. The file extension only picks the first parser to try; a
// detected CSV header is authoritative.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deck file: %w", err)
	}

	text := string(data)
	if hasNameHeader(text) || strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSV(path, text)
	}
	return loadText(path, text)
}

// hasNameHeader checks the first content line for a CSV header naming a
// `name` column. A detected header selects CSV parsing regardless of the
// file extension.
func hasNameHeader(text string) bool {
	line, ok := firstContentLine(text)
	if !ok {
		return false
	}
	fields, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return false
	}
	for _, f := range fields {
		if strings.EqualFold(strings.TrimSpace(f), "name") {
			return true
		}
	}
	return false
}

func firstContentLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return line, true
	}
	return "", false
}

func loadCSV(path, text string) ([]Entry, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Path: path, Line: 1, Msg: fmt.Sprintf("invalid CSV: %v", err)}
	}
	if len(records) == 0 {
		return nil, &ParseError{Path: path, Msg: "no deck entries"}
	}

	nameCol, countCol := -1, -1
	for i, field := range records[0] {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "name":
			nameCol = i
		case "count":
			countCol = i
		}
	}
	if nameCol < 0 {
		return nil, &ParseError{Path: path, Line: 1, Msg: "CSV header must contain a name column"}
	}

	var entries []Entry
	for i, row := range records[1:] {
		line := i + 2
		if nameCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		if name == "" {
			continue
		}

		count := 1
		if countCol >= 0 && countCol < len(row) && strings.TrimSpace(row[countCol]) != "" {
			count, err = parseCount(strings.TrimSpace(row[countCol]))
			if err != nil {
				return nil, &ParseError{Path: path, Line: line, Msg: err.Error()}
			}
		}

		id, err := card.ParseIdentifier(name)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Msg: err.Error()}
		}
		entries = append(entries, Entry{Identifier: id, Count: count, Line: line})
	}

	if len(entries) == 0 {
		return nil, &ParseError{Path: path, Msg: "no deck entries"}
	}
	return entries, nil
}

func loadText(path, text string) ([]Entry, error) {
	var entries []Entry
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		count := 1
		name := trimmed
		if first, rest, found := strings.Cut(trimmed, " "); found && isInteger(first) {
			c, err := parseCount(first)
			if err != nil {
				return nil, &ParseError{Path: path, Line: i + 1, Msg: err.Error()}
			}
			count = c
			name = strings.TrimSpace(rest)
		}

		id, err := card.ParseIdentifier(name)
		if err != nil {
			return nil, &ParseError{Path: path, Line: i + 1, Msg: err.Error()}
		}
		entries = append(entries, Entry{Identifier: id, Count: count, Line: i + 1})
	}

	if len(entries) == 0 {
		return nil, &ParseError{Path: path, Msg: "no deck entries"}
	}
	return entries, nil
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("count %q is not an integer", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("count must be positive, got %d", n)
	}
	return n, nil
}

// TotalCount sums the counts of all entries
func TotalCount(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Count
	}
	return total
}
