package fields

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Storage and display layouts for dates and times.
const (
	DateLayout        = "2006-01-02"
	DateDisplayLayout = "02-01-2006"
	TimeLayout        = "15:04"
)

var dateInputLayouts = []string{DateLayout, DateDisplayLayout, "02/01/2006"}

var timeInputLayouts = []string{TimeLayout, "15:04:05", "15.04"}

// ValidationError reports a value that violates a field's constraints.
type ValidationError struct {
	Section Section
	Key     string
	Label   string
	Value   any
	Reason  string
	Allowed string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (%s.%s): %s: got %v, allowed %s",
		e.Label, e.Section, e.Key, e.Reason, e.Value, e.Allowed)
}

func (f FieldSpec) invalid(value any, reason string) *ValidationError {
	return &ValidationError{
		Section: f.Section,
		Key:     f.Key,
		Label:   f.Label,
		Value:   value,
		Reason:  reason,
		Allowed: f.Allowed(),
	}
}

// Normalize checks value against the field constraints and returns the
// canonical stored form:
//
//	text   string (trimmed, LF line endings)
//	number int when Integer, float64 otherwise
//	enum   the choice Value
//	multi  []string of choice Values, first occurrence order
//	date   string in DateLayout
//	time   string in TimeLayout
//
// Blank input normalizes to nil, meaning unset.
func (f FieldSpec) Normalize(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch f.Kind {
	case KindText:
		return f.normalizeText(value)
	case KindNumber:
		return f.normalizeNumber(value)
	case KindEnum:
		return f.normalizeEnum(value)
	case KindMulti:
		return f.normalizeMulti(value)
	case KindDate:
		return f.normalizeDate(value)
	case KindTime:
		return f.normalizeTime(value)
	default:
		return nil, f.invalid(value, "unsupported field kind")
	}
}

func (f FieldSpec) normalizeText(value any) (any, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	case int, int64, float64, bool:
		// Session files may carry an MRN or similar as a bare number.
		s = fmt.Sprint(v)
	default:
		return nil, f.invalid(value, "expected text")
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return nil, nil
	}
	if !f.Multiline && strings.Contains(s, "\n") {
		s = strings.Join(strings.Fields(s), " ")
	}
	return s, nil
}

func (f FieldSpec) normalizeNumber(value any) (any, error) {
	var n float64
	switch v := value.(type) {
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint64:
		n = float64(v)
	case float32:
		n = float64(v)
	case float64:
		n = v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, f.Unit))
		parsed, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return nil, f.invalid(value, "not a number")
		}
		n = parsed
	default:
		return nil, f.invalid(value, "expected a number")
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, f.invalid(value, "not a finite number")
	}
	if n < f.Min || n > f.Max {
		return nil, f.invalid(value, "out of range")
	}
	if f.Integer {
		if n != math.Trunc(n) {
			return nil, f.invalid(value, "must be a whole number")
		}
		return int(n), nil
	}
	return n, nil
}

func (f FieldSpec) matchChoice(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, c := range f.Choices {
		if c.Value == s {
			return c.Value, true
		}
	}
	for _, c := range f.Choices {
		if strings.EqualFold(c.Value, s) || strings.EqualFold(c.Label, s) {
			return c.Value, true
		}
	}
	return "", false
}

func (f FieldSpec) normalizeEnum(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, f.invalid(value, "expected one of the listed options")
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, ok := f.matchChoice(s)
	if !ok {
		return nil, f.invalid(value, "not an allowed option")
	}
	return v, nil
}

func (f FieldSpec) normalizeMulti(value any) (any, error) {
	var raw []string
	switch v := value.(type) {
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, f.invalid(value, "expected a list of options")
			}
			raw = append(raw, s)
		}
	case string:
		if strings.TrimSpace(v) != "" {
			raw = strings.Split(v, ",")
		}
	default:
		return nil, f.invalid(value, "expected a list of options")
	}

	seen := make(map[string]bool, len(raw))
	var out []string
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		v, ok := f.matchChoice(s)
		if !ok {
			return nil, f.invalid(s, "not in the vocabulary")
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (f FieldSpec) normalizeDate(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return nil, nil
		}
		return v.Format(DateLayout), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		for _, layout := range dateInputLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(DateLayout), nil
			}
		}
		return nil, f.invalid(value, "not a valid date")
	default:
		return nil, f.invalid(value, "expected a date")
	}
}

func (f FieldSpec) normalizeTime(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v.Format(TimeLayout), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		for _, layout := range timeInputLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(TimeLayout), nil
			}
		}
		return nil, f.invalid(value, "not a valid time")
	case int:
		// yaml.v3 decodes an unquoted 10:30 as a base-60 integer.
		if v < 0 || v >= 24*60 {
			return nil, f.invalid(value, "not a valid time")
		}
		return fmt.Sprintf("%02d:%02d", v/60, v%60), nil
	default:
		return nil, f.invalid(value, "expected a time")
	}
}

// Format returns the display form of a stored value, or the fallback label
// when the value is unset. Items is non-nil only for multi-select fields.
func (f FieldSpec) Format(value any) (text string, items []string, isFallback bool) {
	if value == nil {
		return f.Fallback, nil, true
	}
	switch f.Kind {
	case KindNumber:
		var s string
		switch v := value.(type) {
		case int:
			s = strconv.Itoa(v)
		case float64:
			s = formatNumber(v, f.Integer)
		default:
			s = fmt.Sprint(v)
		}
		if f.Unit != "" {
			s += " " + f.Unit
		}
		return s, nil, false
	case KindEnum:
		s, _ := value.(string)
		if label, ok := f.ChoiceLabel(s); ok {
			return label, nil, false
		}
		return s, nil, false
	case KindMulti:
		values, _ := value.([]string)
		if len(values) == 0 {
			return f.Fallback, nil, true
		}
		items = make([]string, len(values))
		for i, v := range values {
			if label, ok := f.ChoiceLabel(v); ok {
				items[i] = label
			} else {
				items[i] = v
			}
		}
		return strings.Join(items, ", "), items, false
	case KindDate:
		s, _ := value.(string)
		if t, err := time.Parse(DateLayout, s); err == nil {
			return t.Format(DateDisplayLayout), nil, false
		}
		return s, nil, false
	default:
		return fmt.Sprint(value), nil, false
	}
}

func formatNumber(n float64, integer bool) string {
	if integer {
		return strconv.Itoa(int(n))
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
