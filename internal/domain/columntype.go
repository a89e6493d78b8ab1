package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Coerced is the normalized form of a raw cell value. Value is nil when the
// cell is unset. OutOfSet lists option values that are not in the column's
// option list; they are kept, never dropped.
type Coerced struct {
	Value    any
	OutOfSet []string
}

// Coerce normalizes raw into the representation owned by t. Empty strings
// and nil clear the cell. Strings coming from a CLI are parsed the same way
// as typed JSON values.
func (t ColumnType) Coerce(raw any, options []ColumnOption) (Coerced, error) {
	if t.IsComputed() {
		return Coerced{}, Invalid("value", "%s columns are computed and read-only", t)
	}
	if isBlank(raw) {
		return Coerced{}, nil
	}
	switch t {
	case ColumnNumber, ColumnBudget, ColumnProgress:
		f, err := toFloat(raw)
		if err != nil {
			return Coerced{}, Invalid("value", "%s column expects a number: %v", t, err)
		}
		if t == ColumnProgress && (f < 0 || f > 100) {
			return Coerced{}, Invalid("value", "progress must be between 0 and 100, got %v", f)
		}
		return Coerced{Value: f}, nil
	case ColumnCheckbox:
		b, err := toBool(raw)
		if err != nil {
			return Coerced{}, Invalid("value", "checkbox column expects a boolean: %v", err)
		}
		return Coerced{Value: b}, nil
	case ColumnSelect, ColumnStatus:
		s, err := toScalarString(raw)
		if err != nil {
			return Coerced{}, Invalid("value", "%s column expects a single option: %v", t, err)
		}
		s = NormalizeOptionValue(s)
		if s == "" {
			return Coerced{}, nil
		}
		return Coerced{Value: s, OutOfSet: outOfSet([]string{s}, options)}, nil
	case ColumnMultiSelect:
		vals, err := toStringList(raw)
		if err != nil {
			return Coerced{}, Invalid("value", "multi_select column expects a list: %v", err)
		}
		if len(vals) == 0 {
			return Coerced{}, nil
		}
		return Coerced{Value: vals, OutOfSet: outOfSet(vals, options)}, nil
	case ColumnPerson, ColumnRelation:
		vals, err := toStringList(raw)
		if err != nil {
			return Coerced{}, Invalid("value", "%s column expects a list of ids: %v", t, err)
		}
		if len(vals) == 0 {
			return Coerced{}, nil
		}
		return Coerced{Value: vals}, nil
	case ColumnDate:
		s, err := toScalarString(raw)
		if err != nil {
			return Coerced{}, Invalid("value", "date column expects a date: %v", err)
		}
		d, err := ParseDay(s)
		if err != nil {
			return Coerced{}, Invalid("value", "%v", err)
		}
		return Coerced{Value: FormatDay(d)}, nil
	case ColumnFiles:
		switch v := raw.(type) {
		case []any:
			return Coerced{Value: v}, nil
		case []string:
			out := make([]any, len(v))
			for i, s := range v {
				out[i] = s
			}
			return Coerced{Value: out}, nil
		case string:
			return Coerced{Value: []any{v}}, nil
		case map[string]any:
			return Coerced{Value: []any{v}}, nil
		}
		return Coerced{}, Invalid("value", "files column expects a list, got %T", raw)
	case ColumnText, ColumnURL, ColumnEmail, ColumnPhone:
		s, err := toScalarString(raw)
		if err != nil {
			return Coerced{}, Invalid("value", "%s column expects text: %v", t, err)
		}
		return Coerced{Value: s}, nil
	}
	return Coerced{}, Invalid("type", "unknown column type %q", t)
}

// Decode turns a stored JSON payload back into the normalized Go value for t.
// Values written before a type change pass through unchanged rather than
// being dropped.
func (t ColumnType) Decode(payload []byte) (any, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode %s value: %w", t, err)
	}
	switch t {
	case ColumnMultiSelect, ColumnPerson, ColumnRelation:
		if list, ok := raw.([]any); ok {
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return raw, nil
				}
				out = append(out, s)
			}
			return out, nil
		}
	}
	return raw, nil
}

// Toggle flips a checkbox value; an unset cell becomes true.
func Toggle(current any) bool {
	b, _ := current.(bool)
	return !b
}

func isBlank(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toFloat(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q", v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return f, nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		return boolFromNumber(v)
	case int:
		return boolFromNumber(float64(v))
	case int64:
		return boolFromNumber(float64(v))
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("cannot parse %q", v)
		}
		return b, nil
	}
	return false, fmt.Errorf("unsupported type %T", raw)
}

func boolFromNumber(f float64) (bool, error) {
	switch f {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%v is neither 0 nor 1", f)
}

func toScalarString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return FormatDay(v), nil
	case *time.Time:
		if v == nil {
			return "", nil
		}
		return FormatDay(*v), nil
	}
	return "", fmt.Errorf("unsupported type %T", raw)
}

// toStringList accepts a list, or a comma-separated string as typed at a CLI.
// Blank entries are dropped and duplicates collapse to their first position.
func toStringList(raw any) ([]string, error) {
	var items []string
	switch v := raw.(type) {
	case []string:
		items = v
	case []any:
		for _, item := range v {
			s, err := toScalarString(item)
			if err != nil {
				return nil, err
			}
			items = append(items, s)
		}
	case string:
		items = strings.Split(v, ",")
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

func outOfSet(vals []string, options []ColumnOption) []string {
	var missing []string
	for _, v := range vals {
		found := false
		for _, o := range options {
			if o.Value == v {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, v)
		}
	}
	return missing
}
