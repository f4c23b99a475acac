package pivot

import "regexp"

var currencyRe = regexp.MustCompile(currencyHeuristic)

// decideFormat implements step 7: currency iff the aggregator's declared
// format can be currency (sum/avg/min/max, never count/distinctCount)
// and at least one requested measure's label matches the currency-name
// heuristic.
func decideFormat(aggregator string, measureLabels []string) string {
	additive := aggregator == "sum" || aggregator == "avg" || aggregator == "min" || aggregator == "max"
	if !additive {
		return "number"
	}
	for _, l := range measureLabels {
		if currencyRe.MatchString(l) {
			return "currency"
		}
	}
	return "number"
}
