package optimize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Accepted spellings per canonical field. Solver output is normalized against
// these once, here; nothing downstream looks at raw keys.
var (
	tableauKeys   = []string{"tableau", "tableau_body", "tableauBody", "table"}
	rowNameKeys   = []string{"row_names", "rowNames", "rowname"}
	colNameKeys   = []string{"col_names", "colNames", "col_name"}
	phaseKeys     = []string{"phase", "ph"}
	stepKeys      = []string{"step", "st"}
	zKeys         = []string{"Z", "z"}
	breakdownKeys = []string{"breakdown", "Breakdown"}
	errorKeys     = []string{"error", "error_message"}
)

type object map[string]json.RawMessage

// pick returns the first present, non-null value among keys.
func (o object) pick(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

// ParseDocument decodes a result document, folding every accepted alias into the
// canonical schema.
func ParseDocument(data []byte) (*Document, error) {
	var root object
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing result document: %w", err)
	}

	doc := &Document{
		RunID:       decodeString(root["run_id"]),
		Orientation: decodeString(root["orientation"]),
		Note:        decodeString(root["note"]),
		Diagnostics: decodeStrings(root["diagnostics"]),
	}
	if v, ok := root.pick(errorKeys...); ok {
		doc.Error = decodeString(v)
	}

	if v, ok := root.pick("minimization"); ok {
		m, err := parseMinimization(v)
		if err != nil {
			return nil, fmt.Errorf("parsing minimization: %w", err)
		}
		doc.Minimization = m
	}

	if v, ok := root.pick("result"); ok {
		var r SimpleResult
		if err := json.Unmarshal(v, &r); err != nil {
			return nil, fmt.Errorf("parsing result: %w", err)
		}
		doc.Result = &r
	}

	if v, ok := root.pick(tableauKeys...); ok {
		doc.Tableau = decodeTableau(v)
		if names, ok := root.pick(rowNameKeys...); ok {
			doc.RowNames = decodeStrings(names)
		}
		if names, ok := root.pick(colNameKeys...); ok {
			doc.ColNames = decodeStrings(names)
		}
	}

	return doc, nil
}

func parseMinimization(data json.RawMessage) (*Minimization, error) {
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	m := &Minimization{}
	if v, ok := o.pick(zKeys...); ok {
		if err := json.Unmarshal(v, &m.Z); err != nil {
			return nil, fmt.Errorf("Z: %w", err)
		}
	}
	if v, ok := o.pick(breakdownKeys...); ok {
		m.Breakdown = decodeBreakdown(v)
	}
	if v, ok := o.pick("iterations"); ok {
		var raws []json.RawMessage
		if err := json.Unmarshal(v, &raws); err != nil {
			return nil, fmt.Errorf("iterations: %w", err)
		}
		for _, raw := range raws {
			m.Iterations = append(m.Iterations, decodeIteration(raw))
		}
	}
	return m, nil
}

func decodeIteration(data json.RawMessage) Iteration {
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return Iteration{}
	}
	it := Iteration{}
	if v, ok := o.pick(phaseKeys...); ok {
		it.Phase = decodeString(v)
	}
	if v, ok := o.pick(stepKeys...); ok {
		it.Step = decodeString(v)
	}
	if v, ok := o.pick(tableauKeys...); ok {
		it.Tableau = decodeTableau(v)
	}
	if v, ok := o.pick(rowNameKeys...); ok {
		it.RowNames = decodeStrings(v)
	}
	if v, ok := o.pick(colNameKeys...); ok {
		it.ColNames = decodeStrings(v)
	}
	return it
}

// decodeTableau returns nil when data is not an array of rows. Rows that are not
// arrays decode as nil rows; a cell that is not a number decodes as missing.
func decodeTableau(data json.RawMessage) [][]Number {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil
	}
	out := make([][]Number, 0, len(rows))
	for _, raw := range rows {
		var cells []json.RawMessage
		if err := json.Unmarshal(raw, &cells); err != nil {
			out = append(out, nil)
			continue
		}
		row := make([]Number, len(cells))
		for i, c := range cells {
			if err := json.Unmarshal(c, &row[i]); err != nil {
				row[i] = Number{}
			}
		}
		out = append(out, row)
	}
	return out
}

// decodeBreakdown accepts objects {name, units, cost} and positional arrays
// [name, units, cost]. Missing numbers read as zero.
func decodeBreakdown(data json.RawMessage) []BreakdownItem {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil
	}
	out := make([]BreakdownItem, 0, len(raws))
	for _, raw := range raws {
		var o object
		if err := json.Unmarshal(raw, &o); err == nil {
			out = append(out, BreakdownItem{
				Name:  decodeString(o["name"]),
				Units: decodeFloat(o["units"]),
				Cost:  decodeFloat(o["cost"]),
			})
			continue
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			continue
		}
		item := BreakdownItem{}
		if len(arr) > 0 {
			item.Name = decodeString(arr[0])
		}
		if len(arr) > 1 {
			item.Units = decodeFloat(arr[1])
		}
		if len(arr) > 2 {
			item.Cost = decodeFloat(arr[2])
		}
		out = append(out, item)
	}
	return out
}

func decodeFloat(data json.RawMessage) float64 {
	var n Number
	if err := n.UnmarshalJSON(data); err != nil {
		return 0
	}
	return n.Value
}

// decodeString renders strings, numbers and booleans as text.
func decodeString(data json.RawMessage) string {
	data = unbox(data)
	if isNull(data) {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(string(data))
}

func decodeStrings(data json.RawMessage) []string {
	if isNull(data) {
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		if s := decodeString(data); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(raws))
	for _, r := range raws {
		out = append(out, decodeString(r))
	}
	return out
}
