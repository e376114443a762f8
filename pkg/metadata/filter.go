package metadata

import (
	"fmt"
	"strings"

	"github.com/orneryd/nornicvec/pkg/nvecerr"
)

// Matches reports whether data satisfies filter: every field of filter is
// evaluated against data as an implicit AND.
func Matches(data, filter Record) (bool, error) {
	for _, f := range filter.Fields {
		ok, err := evaluateField(data, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evaluateField(data Record, f Field) (bool, error) {
	switch f.Key {
	case "$and":
		return evaluateCombinator(data, f.Value, true)
	case "$or":
		return evaluateCombinator(data, f.Value, false)
	}

	dval, ok := data.Get(f.Key)
	if !ok {
		return false, nil
	}

	if f.Value.Kind == KindSubMap {
		opRecord, err := Parse(f.Value.Raw)
		if err != nil {
			return false, fmt.Errorf("%w: %v", nvecerr.ErrMalformedFilter, err)
		}
		for _, opField := range opRecord.Fields {
			ok, err := evaluateOperator(dval, opField)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}

	return valuesEqual(dval, f.Value), nil
}

// evaluateCombinator implements $and (all=true) and $or (all=false) over
// an array of sub-mappings, each re-parsed and evaluated against data.
func evaluateCombinator(data Record, v Value, all bool) (bool, error) {
	if v.Kind != KindArray {
		return false, fmt.Errorf("%w: $and/$or requires an array value", nvecerr.ErrMalformedFilter)
	}
	for _, item := range v.Items {
		if item.Kind != KindSubMap {
			return false, fmt.Errorf("%w: $and/$or array items must be sub-mappings", nvecerr.ErrMalformedFilter)
		}
		sub, err := Parse(item.Raw)
		if err != nil {
			return false, fmt.Errorf("%w: %v", nvecerr.ErrMalformedFilter, err)
		}
		ok, err := Matches(data, sub)
		if err != nil {
			return false, err
		}
		if all && !ok {
			return false, nil
		}
		if !all && ok {
			return true, nil
		}
	}
	return all, nil
}

func evaluateOperator(dval Value, op Field) (bool, error) {
	switch op.Key {
	case "$gte":
		cmp, ok := ordinalCompare(dval, op.Value)
		return ok && cmp >= 0, nil
	case "$lte":
		cmp, ok := ordinalCompare(dval, op.Value)
		return ok && cmp <= 0, nil
	case "$ne":
		return !valuesEqual(dval, op.Value), nil
	case "$prefix":
		return dval.Kind == KindString && op.Value.Kind == KindString && strings.HasPrefix(dval.Str, op.Value.Str), nil
	case "$contains":
		return dval.Kind == KindArray && arrayContains(dval, op.Value), nil
	default:
		return false, fmt.Errorf("%w: %q", nvecerr.ErrUnknownOperator, op.Key)
	}
}

// ordinalCompare compares two like-kinded scalar values: integers
// numerically, strings by byte order. Mismatched kinds are incomparable.
func ordinalCompare(a, b Value) (int, bool) {
	if a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case KindInt:
		switch {
		case a.Int < b.Int:
			return -1, true
		case a.Int > b.Int:
			return 1, true
		default:
			return 0, true
		}
	case KindString:
		return strings.Compare(a.Str, b.Str), true
	default:
		return 0, false
	}
}

// valuesEqual implements spec.md's equality rule: integers by value,
// strings by byte equality, and — when dval is an array — membership of
// fval within it.
func valuesEqual(dval, fval Value) bool {
	switch dval.Kind {
	case KindInt:
		return fval.Kind == KindInt && dval.Int == fval.Int
	case KindString:
		return fval.Kind == KindString && dval.Str == fval.Str
	case KindArray:
		return arrayContains(dval, fval)
	default:
		return false
	}
}

func arrayContains(arr, needle Value) bool {
	for _, item := range arr.Items {
		if item.Kind == needle.Kind && valuesEqual(item, needle) {
			return true
		}
	}
	return false
}
