package loader

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
)

func jsonLoad(data []byte) (*table.Table, schema.Schema, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, &Error{Code: Malformed, Message: err.Error()}
	}

	var list []any
	switch v := raw.(type) {
	case []any:
		list = v
	case map[string]any:
		d, ok := v["data"]
		if !ok {
			return nil, nil, &Error{Code: Malformed, Message: "object input must have a \"data\" array"}
		}
		arr, ok := d.([]any)
		if !ok {
			return nil, nil, &Error{Code: Malformed, Message: "\"data\" must be an array"}
		}
		list = arr
	default:
		return nil, nil, &Error{Code: Malformed, Message: "expected a JSON array or {data:[...]}"}
	}
	if len(list) == 0 {
		return nil, nil, &Error{Code: EmptyInput, Message: "no rows"}
	}

	objs := make([]map[string]any, 0, len(list))
	headerSet := make(map[string]bool)
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, nil, &Error{Code: Malformed, Message: "every row must be a JSON object"}
		}
		objs = append(objs, obj)
		for k := range obj {
			headerSet[k] = true
		}
	}

	header := make([]string, 0, len(headerSet))
	for k := range headerSet {
		header = append(header, k)
	}
	sort.Strings(header)

	rows := make([][]string, len(objs))
	for i, obj := range objs {
		row := make([]string, len(header))
		for c, k := range header {
			row[c] = stringifyJSON(obj[k])
		}
		rows[i] = row
	}
	return buildTable(header, rows)
}

func stringifyJSON(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
