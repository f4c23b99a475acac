package loader

import (
	"encoding/csv"
	"strings"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
)

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// sniffDelimiter picks the candidate separator with the highest count in
// the header line, defaulting to comma on a tie (comma is first in
// delimiterCandidates and ">" is strict, so it wins ties naturally).
func sniffDelimiter(headerLine string) rune {
	best := ','
	bestCount := -1
	for _, c := range delimiterCandidates {
		count := strings.Count(headerLine, string(c))
		if count > bestCount {
			bestCount = count
			best = c
		}
	}
	return best
}

func delimitedLoad(data []byte) (*table.Table, schema.Schema, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	startIdx := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return nil, nil, &Error{Code: EmptyInput, Message: "no non-empty lines"}
	}

	delim := sniffDelimiter(lines[startIdx])
	remaining := strings.Join(lines[startIdx:], "\n")

	r := csv.NewReader(strings.NewReader(remaining))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = false

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, &Error{Code: Malformed, Message: err.Error()}
	}
	if len(records) == 0 {
		return nil, nil, &Error{Code: EmptyInput, Message: "no rows"}
	}

	header := records[0]
	rows := records[1:]
	if len(rows) == 0 {
		return nil, nil, &Error{Code: EmptyInput, Message: "header with no data rows"}
	}
	return buildTable(header, rows)
}
