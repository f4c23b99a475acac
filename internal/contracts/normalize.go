package contracts

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cpor-labs/cpor-portal/internal/table"
)

// columnCandidates lists, per semantic field, the column-key substrings
// accepted as a match, tried in order against the loader's normalized
// keys once keyFolder has removed their accents and underscores.
var columnCandidates = map[string][]string{
	"description":      {"descricao", "description", "objeto"},
	"ugr":              {"ugr"},
	"pi":               {"pi"},
	"supplier":         {"fornecedor", "supplier", "empresa"},
	"contractNumber":   {"contrato", "numerocontrato", "contractnumber"},
	"status":           {"status", "situacao"},
	"vigencyEnd":       {"vigencia", "fimvigencia", "datavigencia", "vigencyend"},
	"monthlyAverage":   {"mediamensal", "valormediomensal", "monthlyaverage"},
	"estimatedAnnual":  {"valorestimado", "estimado", "estimatedannual"},
	"executed":         {"valorexecutado", "executado", "executed"},
	"committedCurrent": {"empenhoatual", "empenhocorrente", "committedcurrent"},
	"committedCarry":   {"empenhosaldo", "empenhorestante", "committedcarry"},
}

var monthColumnRe = regexp.MustCompile(`^(\d{4})_?(0[1-9]|1[0-2])$|^(jan|fev|mar|abr|mai|jun|jul|ago|set|out|nov|dez)`)
var spaceRe = regexp.MustCompile(`\s+`)

// keyFolder strips the accents and '_' separators the loader's keys keep
// ("fim_da_vigência" -> "fimdavigencia"), so candidates are plain ASCII.
var keyFolder = strings.NewReplacer("_", "", "á", "a", "à", "a", "â", "a", "ã", "a", "é", "e", "ê", "e", "í", "i", "ó", "o", "ô", "o", "õ", "o", "ú", "u", "ü", "u", "ç", "c")

func findColumn(keys []string, candidates []string) (string, bool) {
	for _, cand := range candidates {
		for _, k := range keys {
			if strings.Contains(keyFolder.Replace(k), cand) {
				return k, true
			}
		}
	}
	return "", false
}

func monthColumns(keys []string) []string {
	var matches []string
	for _, k := range keys {
		if monthColumnRe.MatchString(k) {
			matches = append(matches, k)
		}
	}
	sort.Strings(matches)
	if len(matches) > 12 {
		matches = matches[:12]
	}
	return matches
}

func normalizeDescription(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.ToLower(s), " "))
}

func isTotalRow(norm string) bool {
	if norm == "total" || norm == "total geral" {
		return true
	}
	for _, prefix := range []string{"total da ", "total de ", "total "} {
		if strings.HasPrefix(norm, prefix) {
			return true
		}
	}
	return false
}

func cellText(view table.View, row int, key string) string {
	if key == "" {
		return ""
	}
	return view.Cell(row, key).Raw()
}

func cellNumber(view table.View, row int, key string) float64 {
	if key == "" {
		return 0
	}
	v, _ := view.Cell(row, key).Numeric()
	return v
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

func parseDate(v table.Value) (time.Time, bool) {
	if v.Absent {
		return time.Time{}, false
	}
	if v.Kind == table.KindDate {
		return v.Date, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v.Raw()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// classify derives a row's lifecycle status purely from its vigency end
// date and today, per the state machine: noDate -> future -> onTrack ->
// expiredCurrent -> expiredPrevious.
func classify(end *time.Time, today time.Time) LifecycleStatus {
	if end == nil {
		return StatusNoDate
	}
	switch {
	case end.Year() > today.Year():
		return StatusFuture
	case end.Year() == today.Year() && !end.Before(today):
		return StatusOnTrack
	case end.Year() == today.Year():
		return StatusExpiredCurrent
	default:
		return StatusExpiredPrevious
	}
}

// Normalize coerces every row of view into a Row, discarding rows whose
// normalized description is a "total" label (when no UGR is present),
// and returns the non-fatal warnings collected along the way. An
// ErrEmptyInput is returned when no row survives.
func Normalize(view table.View, today time.Time) ([]Row, []string, error) {
	keys := view.Keys()
	var warnings []string

	resolve := func(field string) string {
		k, ok := findColumn(keys, columnCandidates[field])
		if !ok {
			warnings = append(warnings, "missing column for "+field)
		}
		return k
	}

	descKey := resolve("description")
	ugrKey := resolve("ugr")
	piKey := resolve("pi")
	supplierKey := resolve("supplier")
	contractKey := resolve("contractNumber")
	statusKey := resolve("status")
	vigencyKey := resolve("vigencyEnd")
	monthlyAvgKey := resolve("monthlyAverage")
	estimatedKey := resolve("estimatedAnnual")
	executedKey := resolve("executed")
	committedCurrentKey := resolve("committedCurrent")
	committedCarryKey := resolve("committedCarry")

	monthKeys := monthColumns(keys)
	if len(monthKeys) < 12 {
		warnings = append(warnings, "fewer than 12 monthly columns detected")
	}

	rows := make([]Row, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		description := cellText(view, i, descKey)
		ugr := cellText(view, i, ugrKey)
		if isTotalRow(normalizeDescription(description)) && ugr == "" {
			continue
		}

		r := Row{
			Description:     description,
			UGR:             ugr,
			PI:              cellText(view, i, piKey),
			Supplier:        cellText(view, i, supplierKey),
			ContractNumber:  cellText(view, i, contractKey),
			Status:          cellText(view, i, statusKey),
			MonthlyAverage:  cellNumber(view, i, monthlyAvgKey),
			EstimatedAnnual: cellNumber(view, i, estimatedKey),
		}

		for m, mk := range monthKeys {
			if m >= 12 {
				break
			}
			r.Months[m] = cellNumber(view, i, mk)
		}

		if vigencyKey != "" {
			cell := view.Cell(i, vigencyKey)
			if t, ok := parseDate(cell); ok {
				r.VigencyEnd = &t
			} else if !cell.Absent {
				warnings = append(warnings, "unparseable vigency date on row "+strconv.Itoa(i))
			}
		}

		r.CommittedCurrent = cellNumber(view, i, committedCurrentKey)
		r.CommittedCarry = cellNumber(view, i, committedCarryKey)

		executedRaw := cellNumber(view, i, executedKey)
		var sumMonths float64
		for _, v := range r.Months {
			sumMonths += v
		}

		switch {
		case executedRaw != 0:
			r.Executed = executedRaw
		case sumMonths != 0:
			r.Executed = sumMonths
		default:
			r.Executed = r.CommittedCurrent + r.CommittedCarry
		}

		if r.CommittedCurrent != 0 {
			r.Committed = r.CommittedCurrent
		} else {
			r.Committed = r.CommittedCurrent + r.CommittedCarry
		}

		if r.EstimatedAnnual > 0 {
			r.ExecutionRate = r.Executed / r.EstimatedAnnual * 100
		}

		r.Lifecycle = classify(r.VigencyEnd, today)
		rows = append(rows, r)
	}

	if len(rows) == 0 {
		return nil, warnings, ErrEmptyInput
	}
	return rows, warnings, nil
}
