// Copyright (c) 2025 Neomantra Corp
// Bridges JSON text and codec datums for the command-line tools.

package jsonval

import (
	"fmt"
	"math/big"

	"github.com/valyala/fastjson"

	avro "github.com/NimbleMarkets/avro-go"
)

///////////////////////////////////////////////////////////////////////////////

// FromJSON converts a parsed JSON value into the datum shape the schema
// dictates.
func FromJSON(schema avro.Schema, value *fastjson.Value) (any, error) {
	switch s := schema.(type) {
	case *avro.PrimitiveSchema:
		return fromJSONPrimitive(s, value)
	case *avro.ArraySchema:
		if value.Type() != fastjson.TypeArray {
			return nil, conversionError(schema, value)
		}
		items := value.GetArray()
		out := make([]any, 0, len(items))
		for _, item := range items {
			converted, err := FromJSON(s.Element(), item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	case *avro.MapSchema:
		return fromJSONObject(value, func(key string, item *fastjson.Value) (any, error) {
			return FromJSON(s.ValueType(), item)
		})
	case *avro.UnionSchema:
		for _, branch := range s.Branches() {
			if converted, err := FromJSON(branch, value); err == nil {
				return converted, nil
			}
		}
		return nil, conversionError(schema, value)
	case *avro.EnumSchema:
		symbol := string(value.GetStringBytes())
		if !s.HasSymbol(symbol) {
			return nil, conversionError(schema, value)
		}
		return symbol, nil
	case *avro.FixedSchema:
		if s.LogicalType() == avro.LogicalDecimal {
			return fromJSONNumber(value, schema)
		}
		raw := []byte(string(value.GetStringBytes()))
		if len(raw) != s.Size() {
			return nil, conversionError(schema, value)
		}
		return raw, nil
	case *avro.RecordSchema:
		fieldsByName := s.FieldsByName()
		return fromJSONObject(value, func(key string, item *fastjson.Value) (any, error) {
			field := fieldsByName[key]
			if field == nil {
				return nil, fmt.Errorf("unknown field %q", key)
			}
			return FromJSON(field.Type(), item)
		})
	}
	return nil, conversionError(schema, value)
}

func fromJSONPrimitive(s *avro.PrimitiveSchema, value *fastjson.Value) (any, error) {
	if s.LogicalType() == avro.LogicalDecimal {
		return fromJSONNumber(value, s)
	}
	switch s.Kind() {
	case avro.KindNull:
		if value.Type() != fastjson.TypeNull {
			return nil, conversionError(s, value)
		}
		return nil, nil
	case avro.KindBoolean:
		if value.Type() != fastjson.TypeTrue && value.Type() != fastjson.TypeFalse {
			return nil, conversionError(s, value)
		}
		return value.GetBool(), nil
	case avro.KindInt:
		n, err := value.Int64()
		if err != nil {
			return nil, conversionError(s, value)
		}
		return int32(n), nil
	case avro.KindLong:
		n, err := value.Int64()
		if err != nil {
			return nil, conversionError(s, value)
		}
		return n, nil
	case avro.KindFloat:
		f, err := value.Float64()
		if err != nil {
			return nil, conversionError(s, value)
		}
		return float32(f), nil
	case avro.KindDouble:
		f, err := value.Float64()
		if err != nil {
			return nil, conversionError(s, value)
		}
		return f, nil
	case avro.KindBytes:
		if value.Type() != fastjson.TypeString {
			return nil, conversionError(s, value)
		}
		return []byte(string(value.GetStringBytes())), nil
	case avro.KindString:
		if value.Type() != fastjson.TypeString {
			return nil, conversionError(s, value)
		}
		return string(value.GetStringBytes()), nil
	}
	return nil, conversionError(s, value)
}

func fromJSONNumber(value *fastjson.Value, schema avro.Schema) (any, error) {
	f, err := value.Float64()
	if err != nil {
		return nil, conversionError(schema, value)
	}
	return f, nil
}

func fromJSONObject(value *fastjson.Value, convert func(string, *fastjson.Value) (any, error)) (any, error) {
	obj, err := value.Object()
	if err != nil {
		return nil, fmt.Errorf("expected JSON object: %s", err.Error())
	}
	out := make(map[string]any, obj.Len())
	var visitErr error
	obj.Visit(func(key []byte, item *fastjson.Value) {
		if visitErr != nil {
			return
		}
		converted, err := convert(string(key), item)
		if err != nil {
			visitErr = err
			return
		}
		out[string(key)] = converted
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return out, nil
}

func conversionError(schema avro.Schema, value *fastjson.Value) error {
	return fmt.Errorf("cannot convert JSON %s to %s", value.Type(), schema.Kind())
}

///////////////////////////////////////////////////////////////////////////////

// ToJSON converts a decoded datum into a value encoding/json can marshal.
// Byte sequences render as strings of byte values; decimals render as
// their rational string.
func ToJSON(datum any) any {
	switch v := datum.(type) {
	case []byte:
		return string(v)
	case *big.Rat:
		if v.IsInt() {
			return v.Num().String()
		}
		return v.RatString()
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, ToJSON(item))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = ToJSON(item)
		}
		return out
	default:
		return datum
	}
}
