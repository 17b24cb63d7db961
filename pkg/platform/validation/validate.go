// Package validation normalizes and validates inbound storefront payloads.
//
// Validate is pure and deterministic: it either returns a fully normalized
// copy of the payload, containing only the fields its schema declares, or a
// *dErrors.Error with CodeValidation naming the first offending field and the
// constraint it broke. Feeding the output back in yields the same output.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain"
	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
)

// Constraint names reported in validation errors.
const (
	ConstraintRequired  = "required"
	ConstraintType      = "type"
	ConstraintMinLength = "min_length"
	ConstraintMaxLength = "max_length"
	ConstraintFormat    = "format"
	ConstraintPositive  = "gt_zero"
	ConstraintNonNeg    = "gte_zero"
	ConstraintInteger   = "integer"
	ConstraintMinItems  = "min_items"
	ConstraintMaxItems  = "max_items"
	ConstraintUnknown   = "unknown"
)

// Input is a normalized payload. String kinds hold string, KindNumber holds
// float64, KindInteger holds int64 and KindList holds []map[string]any.
type Input map[string]any

// Validate normalizes raw against the schema registered for rt.
func Validate(rt ResourceType, raw map[string]any) (Input, error) {
	schema, ok := schemas[rt]
	if !ok {
		return nil, dErrors.NewField(dErrors.CodeValidation, "resource", ConstraintUnknown,
			fmt.Sprintf("unknown resource type %q", rt))
	}
	if raw == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	out, err := validateObject(schema.Fields, raw, "")
	if err != nil {
		return nil, err
	}
	return Input(out), nil
}

func validateObject(fields []Field, raw map[string]any, prefix string) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		path := prefix + f.Name
		v, err := validateField(f, raw[f.Name], path)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[f.Name] = v
		}
	}
	return out, nil
}

// validateField returns nil (and no error) for absent optional fields.
func validateField(f Field, raw any, path string) (any, error) {
	if raw == nil {
		if f.Required {
			return nil, fieldErr(path, ConstraintRequired, "is required")
		}
		return nil, nil
	}

	switch f.Kind {
	case KindText, KindEmail, KindPassword, KindPhone, KindURL, KindID:
		return validateString(f, raw, path)
	case KindNumber:
		return validateNumber(f, raw, path)
	case KindInteger:
		return validateInteger(f, raw, path)
	case KindList:
		return validateList(f, raw, path)
	default:
		return nil, fieldErr(path, ConstraintType, "has an unsupported kind")
	}
}

func validateString(f Field, raw any, path string) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fieldErr(path, ConstraintType, "must be a string")
	}

	switch f.Kind {
	case KindText:
		s = NormalizeText(s)
	case KindEmail:
		s = NormalizeEmail(s)
	case KindPhone:
		s = NormalizePhone(s)
	case KindURL, KindID:
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if f.Required {
			return nil, fieldErr(path, ConstraintRequired, "is required")
		}
		return nil, nil
	}

	// Size -> Syntax, matching the order used by request Validate methods.
	n := utf8.RuneCountInString(s)
	if f.MaxLen > 0 && n > f.MaxLen {
		return nil, fieldErr(path, ConstraintMaxLength, fmt.Sprintf("must be at most %d characters", f.MaxLen))
	}
	if n < f.MinLen {
		return nil, fieldErr(path, ConstraintMinLength, fmt.Sprintf("must be at least %d characters", f.MinLen))
	}

	switch f.Kind {
	case KindEmail:
		if !isEmail(s) {
			return nil, fieldErr(path, ConstraintFormat, "must be a valid email address")
		}
	case KindPhone:
		if d := countDigits(s); d < 7 || d > 15 {
			return nil, fieldErr(path, ConstraintFormat, "must contain 7 to 15 digits")
		}
	case KindURL:
		if !isHTTPURL(s) {
			return nil, fieldErr(path, ConstraintFormat, "must be a valid http(s) URL")
		}
	case KindID:
		id, err := domain.ParseProductID(s)
		if err != nil {
			return nil, fieldErr(path, ConstraintFormat, "must be a valid identifier")
		}
		s = id.String()
	}
	return s, nil
}

func validateNumber(f Field, raw any, path string) (any, error) {
	v, ok := toFloat(raw)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fieldErr(path, ConstraintType, "must be a number")
	}
	if err := checkSign(f, v, path); err != nil {
		return nil, err
	}
	return v, nil
}

func validateInteger(f Field, raw any, path string) (any, error) {
	v, ok := toFloat(raw)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fieldErr(path, ConstraintType, "must be a number")
	}
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return nil, fieldErr(path, ConstraintInteger, "must be a whole number")
	}
	if err := checkSign(f, v, path); err != nil {
		return nil, err
	}
	return int64(v), nil
}

func checkSign(f Field, v float64, path string) error {
	if f.Positive && v <= 0 {
		return fieldErr(path, ConstraintPositive, "must be greater than 0")
	}
	if f.NonNegative && v < 0 {
		return fieldErr(path, ConstraintNonNeg, "must be 0 or greater")
	}
	return nil
}

func validateList(f Field, raw any, path string) (any, error) {
	var elems []any
	switch list := raw.(type) {
	case []any:
		elems = list
	case []map[string]any:
		elems = make([]any, len(list))
		for i := range list {
			elems[i] = list[i]
		}
	default:
		return nil, fieldErr(path, ConstraintType, "must be a list")
	}

	if f.MaxLen > 0 && len(elems) > f.MaxLen {
		return nil, fieldErr(path, ConstraintMaxItems, fmt.Sprintf("must contain at most %d items", f.MaxLen))
	}
	if len(elems) < f.MinLen || (f.Required && len(elems) == 0) {
		return nil, fieldErr(path, ConstraintMinItems, fmt.Sprintf("must contain at least %d items", max(f.MinLen, 1)))
	}

	out := make([]map[string]any, 0, len(elems))
	for i, elem := range elems {
		obj, ok := elem.(map[string]any)
		if !ok {
			if in, isInput := elem.(Input); isInput {
				obj = in
			} else {
				return nil, fieldErr(fmt.Sprintf("%s[%d]", path, i), ConstraintType, "must be an object")
			}
		}
		item, err := validateObject(f.Items, obj, fmt.Sprintf("%s[%d].", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// toFloat accepts decoded JSON numbers, Go numeric types and numeric strings.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	host := s[at+1:]
	dot := strings.LastIndexByte(host, '.')
	return dot > 0 && dot < len(host)-1
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func fieldErr(field, constraint, msg string) error {
	return dErrors.NewField(dErrors.CodeValidation, field, constraint, msg)
}
