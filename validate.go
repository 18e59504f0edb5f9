// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"math"
	"math/big"
)

///////////////////////////////////////////////////////////////////////////////

// isValidDatum checks a datum against a schema.  It runs on every write
// and inside union branch selection, so it allocates nothing and keeps no
// state between calls.
func isValidDatum(schema Schema, datum any) bool {
	switch s := schema.(type) {
	case *PrimitiveSchema:
		if s.logical == LogicalDecimal {
			return isNumericDatum(datum)
		}
		return isValidPrimitive(s.kind, datum)
	case *ArraySchema:
		items, ok := datum.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if !isValidDatum(s.elem, item) {
				return false
			}
		}
		return true
	case *MapSchema:
		values, ok := datum.(map[string]any)
		if !ok {
			return false
		}
		for _, value := range values {
			if !isValidDatum(s.values, value) {
				return false
			}
		}
		return true
	case *UnionSchema:
		for _, branch := range s.branches {
			if isValidDatum(branch, datum) {
				return true
			}
		}
		return false
	case *EnumSchema:
		symbol, ok := datum.(string)
		return ok && s.HasSymbol(symbol)
	case *FixedSchema:
		if s.logical == LogicalDecimal {
			return isNumericDatum(datum)
		}
		raw, ok := datum.([]byte)
		return ok && len(raw) == s.size
	case *RecordSchema:
		values, ok := datum.(map[string]any)
		if !ok {
			return false
		}
		for _, field := range s.fields {
			value, present := values[field.name]
			if !present {
				if !field.hasDefault {
					return false
				}
				continue
			}
			if !isValidDatum(field.typ, value) {
				return false
			}
		}
		return true
	}
	return false
}

func isValidPrimitive(kind SchemaKind, datum any) bool {
	switch kind {
	case KindNull:
		return datum == nil
	case KindBoolean:
		_, ok := datum.(bool)
		return ok
	case KindInt:
		n, ok := integerDatum(datum)
		return ok && n >= math.MinInt32 && n <= math.MaxInt32
	case KindLong:
		_, ok := integerDatum(datum)
		return ok
	case KindFloat:
		switch datum.(type) {
		case float32, int, int32, int64:
			return true
		}
		return false
	case KindDouble:
		switch datum.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case KindBytes:
		_, ok := datum.([]byte)
		return ok
	case KindString:
		_, ok := datum.(string)
		return ok
	}
	return false
}

// integerDatum widens the accepted integer forms to int64.
func integerDatum(datum any) (int64, bool) {
	switch v := datum.(type) {
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func isNumericDatum(datum any) bool {
	switch datum.(type) {
	case *big.Rat, float64, float32, int, int32, int64:
		return true
	}
	return false
}
