package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
)

const sampleSize = 500

var whitespaceRe = regexp.MustCompile(`\s+`)

// identifierDenyList keeps integer/real columns that are obviously row
// identifiers out of the measure set, mirroring the teacher's
// classifyRole heuristics but expressed as one fixed pattern set per the
// spec rather than a cardinality-ratio guess.
var identifierDenyList = regexp.MustCompile(`^id$|^id_|_id$|cnpj|cpf|pi_|contrato`)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// buildTable is the shared header+string-grid -> Table pipeline every
// decoder (delimited, JSON, spreadsheet) funnels through: it normalizes
// column names, infers kinds by sampling, and converts raw strings into
// typed Values.
func buildTable(header []string, rows [][]string) (*table.Table, schema.Schema, error) {
	if len(header) == 0 {
		return nil, nil, &Error{Code: SchemaConflict, Message: "header row has no columns"}
	}

	labels := make([]string, len(header))
	keys := make([]string, len(header))
	suffixByKey := make(map[string]int)
	blankLabels := 0
	for i, h := range header {
		label := normalizeLabel(h)
		if label == "" {
			blankLabels++
			label = fmt.Sprintf("Column %d", i+1)
		}
		key := normalizeKey(label)
		if key == "" {
			key = fmt.Sprintf("column_%d", i+1)
		}
		if n, ok := suffixByKey[key]; ok {
			suffixByKey[key] = n + 1
			key = fmt.Sprintf("%s_%d", key, n+1)
		} else {
			suffixByKey[key] = 1
		}
		labels[i] = label
		keys[i] = key
	}
	if blankLabels == len(header) {
		return nil, nil, &Error{Code: SchemaConflict, Message: "every header cell is blank"}
	}

	rawCols := make([][]string, len(header))
	for c := range header {
		col := make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				col[r] = row[c]
			}
		}
		rawCols[c] = col
	}

	columns := make([]table.Column, len(header))
	entries := make(schema.Schema, len(header))
	for c := range header {
		kind := inferKind(rawCols[c])
		values := convertColumn(rawCols[c], kind)
		isMeasure := (kind == table.KindInteger || kind == table.KindReal) && !identifierDenyList.MatchString(keys[c])
		columns[c] = table.Column{Key: keys[c], Label: labels[c], Kind: kind, Values: values}
		entries[c] = schema.Entry{Key: keys[c], Label: labels[c], Kind: kind, IsMeasure: isMeasure}
	}
	return table.New(columns), entries, nil
}

func inferKind(raw []string) table.Kind {
	sample := make([]string, 0, sampleSize)
	for _, v := range raw {
		if strings.TrimSpace(v) == "" {
			continue
		}
		sample = append(sample, v)
		if len(sample) >= sampleSize {
			break
		}
	}
	if len(sample) == 0 {
		return table.KindText
	}

	intCount, numericCount, dateCount := 0, 0, 0
	for _, v := range sample {
		isInt := isInteger(v)
		if isInt {
			intCount++
		}
		if isInt || isReal(v) {
			numericCount++
		}
		if isDate(v) {
			dateCount++
		}
	}
	n := float64(len(sample))

	if float64(intCount)/n >= 0.9 {
		if isBooleanNumeric(sample) {
			return table.KindText
		}
		return table.KindInteger
	}
	if float64(numericCount)/n >= 0.9 {
		return table.KindReal
	}
	if float64(dateCount)/n >= 0.8 {
		return table.KindDate
	}
	return table.KindText
}

// isBooleanNumeric flags a numeric column whose sampled values are
// strictly 0 or 1, with at least 4 samples — the spec's "boolean text"
// special case that keeps such a column out of the measure set.
func isBooleanNumeric(sample []string) bool {
	if len(sample) < 4 {
		return false
	}
	for _, v := range sample {
		t := strings.TrimSpace(v)
		if t != "0" && t != "1" {
			return false
		}
	}
	return true
}

func isInteger(v string) bool {
	t := strings.TrimSpace(v)
	if t == "" {
		return false
	}
	_, err := strconv.ParseInt(t, 10, 64)
	return err == nil
}

func isReal(v string) bool {
	_, ok := parseRealLiteral(v)
	return ok
}

// parseRealLiteral normalizes the spec's accepted numeric literal forms
// (optional "R$" prefix, "," or "." as the decimal separator, and a
// Brazilian thousands-grouping "." when both appear) into a float64.
func parseRealLiteral(v string) (float64, bool) {
	t := strings.TrimSpace(v)
	t = strings.TrimPrefix(t, "R$")
	t = strings.TrimSpace(t)
	if t == "" {
		return 0, false
	}
	hasComma := strings.Contains(t, ",")
	hasDot := strings.Contains(t, ".")
	switch {
	case hasComma && hasDot:
		t = strings.ReplaceAll(t, ".", "")
		t = strings.ReplaceAll(t, ",", ".")
	case hasComma:
		t = strings.ReplaceAll(t, ",", ".")
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDate(v string) bool {
	t := strings.TrimSpace(v)
	if t == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, t); err == nil {
			return true
		}
	}
	return false
}

func parseDateLiteral(v string) (time.Time, bool) {
	t := strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func convertColumn(raw []string, kind table.Kind) []table.Value {
	values := make([]table.Value, len(raw))
	for i, v := range raw {
		if strings.TrimSpace(v) == "" {
			values[i] = table.AbsentValue
			continue
		}
		switch kind {
		case table.KindInteger:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				values[i] = table.AbsentValue
				continue
			}
			values[i] = table.Integer(n)
		case table.KindReal:
			f, ok := parseRealLiteral(v)
			if !ok {
				values[i] = table.AbsentValue
				continue
			}
			values[i] = table.Real(f)
		case table.KindDate:
			d, ok := parseDateLiteral(v)
			if !ok {
				values[i] = table.AbsentValue
				continue
			}
			values[i] = table.Date(d)
		default:
			values[i] = table.Text(strings.TrimSpace(v))
		}
	}
	return values
}

// normalizeLabel trims and collapses internal whitespace while preserving
// accented characters, per the spec's column-name normalization rule.
func normalizeLabel(h string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(h), " ")
}

// normalizeKey derives a stable identifier from a label: lowercased,
// with every rune that is not a letter or digit collapsed into a single
// underscore. normalizeKey(normalizeKey(x)) == normalizeKey(x): feeding
// an already-normalized key back in is a no-op, satisfying the spec's
// "normalization is a pure, idempotent function" invariant.
func normalizeKey(label string) string {
	var sb strings.Builder
	prevUnderscore := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			sb.WriteRune('_')
			prevUnderscore = true
		}
	}
	return strings.Trim(sb.String(), "_")
}
