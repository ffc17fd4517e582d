package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

var formats = validator.New()

// Validate checks doc against the order schema and returns every violation found.
// A nil result means doc is structurally a valid order.
func Validate(doc any) []domain.Violation {
	return validateObject(Order, doc, "")
}

// CheckField evaluates a single rule against a value, as if it were the value of
// rule.Field in its parent object.
func CheckField(rule Rule, value any) []domain.Violation {
	return checkValue(rule, value, rule.Field)
}

func validateObject(obj *Object, v any, path string) []domain.Violation {
	m, ok := v.(map[string]any)
	if !ok {
		return []domain.Violation{typeViolation(path, KindObject, v)}
	}

	var out []domain.Violation
	for _, r := range obj.Rules {
		val, present := m[r.Field]
		fieldPath := join(path, r.Field)
		if !present {
			if r.Required {
				out = append(out, domain.Violation{Path: fieldPath, Rule: "required", Message: "is required"})
			}
			continue
		}
		out = append(out, checkValue(r, val, fieldPath)...)
	}

	unknown := lo.Filter(lo.Keys(m), func(k string, _ int) bool {
		_, known := obj.rule(k)
		return !known
	})
	sort.Strings(unknown)
	for _, k := range unknown {
		out = append(out, domain.Violation{
			Path:    join(path, k),
			Rule:    "additionalProperties",
			Message: fmt.Sprintf("unknown property in %s", obj.Name),
		})
	}
	return out
}

func checkValue(r Rule, v any, path string) []domain.Violation {
	switch r.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return []domain.Violation{typeViolation(path, r.Kind, v)}
		}
		return checkString(r, s, path)

	case KindInteger, KindNumber:
		d, ok, err := numberOf(v)
		if err != nil {
			return []domain.Violation{{Path: path, Rule: "type", Message: err.Error()}}
		}
		if !ok {
			return []domain.Violation{typeViolation(path, r.Kind, v)}
		}
		var out []domain.Violation
		if r.Kind == KindInteger && !d.IsInteger() {
			out = append(out, domain.Violation{Path: path, Rule: "type", Message: fmt.Sprintf("must be an integer, got %s", d)})
		}
		if r.Minimum != nil && d.LessThan(*r.Minimum) {
			out = append(out, domain.Violation{Path: path, Rule: "minimum", Message: fmt.Sprintf("must be >= %s, got %s", r.Minimum, d)})
		}
		return out

	case KindObject:
		return validateObject(r.Object, v, path)

	case KindArray:
		list, ok := v.([]any)
		if !ok {
			return []domain.Violation{typeViolation(path, r.Kind, v)}
		}
		var out []domain.Violation
		if len(list) < r.MinItems {
			out = append(out, domain.Violation{Path: path, Rule: "minItems", Message: fmt.Sprintf("must contain at least %d item(s)", r.MinItems)})
		}
		for i, el := range list {
			out = append(out, validateObject(r.Object, el, fmt.Sprintf("%s[%d]", path, i))...)
		}
		return out
	}
	return nil
}

func checkString(r Rule, s, path string) []domain.Violation {
	var out []domain.Violation
	if r.MinLength > 0 && utf8.RuneCountInString(s) < r.MinLength {
		out = append(out, domain.Violation{Path: path, Rule: "minLength", Message: fmt.Sprintf("must be at least %d character(s)", r.MinLength)})
	}
	if r.Pattern != nil && !r.Pattern.MatchString(s) {
		out = append(out, domain.Violation{Path: path, Rule: "pattern", Message: fmt.Sprintf("%q does not match %s", s, r.Pattern)})
	}
	if len(r.Enum) > 0 && !lo.Contains(r.Enum, s) {
		out = append(out, domain.Violation{Path: path, Rule: "enum", Message: fmt.Sprintf("%q is not one of %v", s, r.Enum)})
	}
	switch r.Format {
	case FormatEmail:
		if err := formats.Var(s, "required,email"); err != nil {
			out = append(out, domain.Violation{Path: path, Rule: "format", Message: fmt.Sprintf("%q is not a valid email", s)})
		}
	case FormatDateTime:
		if _, err := domain.ParseTimestamp(s); err != nil {
			out = append(out, domain.Violation{Path: path, Rule: "format", Message: fmt.Sprintf("%q is not an RFC 3339 date-time", s)})
		}
	}
	return out
}

// numberOf accepts only exact representations: json.Number from a UseNumber decoder
// or a decimal produced by the XML converter.
func numberOf(v any) (decimal.Decimal, bool, error) {
	switch n := v.(type) {
	case json.Number:
		d, err := domain.ParseDecimal(n.String())
		if err != nil {
			return decimal.Zero, false, err
		}
		return d, true, nil
	case decimal.Decimal:
		return n, true, nil
	}
	return decimal.Zero, false, nil
}

func typeViolation(path string, want Kind, got any) domain.Violation {
	return domain.Violation{
		Path:    path,
		Rule:    "type",
		Message: fmt.Sprintf("must be %s, got %s", want, describe(got)),
	}
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string %q", t)
	case bool:
		return "boolean"
	case json.Number, decimal.Decimal:
		return fmt.Sprintf("number %v", t)
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
