// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"fmt"

	"github.com/segmentio/encoding/json"
	"github.com/valyala/fastjson"
)

///////////////////////////////////////////////////////////////////////////////

// ParseSchema parses schema JSON into a Schema.  Named types defined earlier
// in the same document may be referenced by name or fullname.
func ParseSchema(text string) (Schema, error) {
	var parser fastjson.Parser
	value, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchema, err.Error())
	}
	return parseSchemaValue(value, "", make(map[string]Schema))
}

func parseSchemaValue(value *fastjson.Value, namespace string, names map[string]Schema) (Schema, error) {
	switch value.Type() {
	case fastjson.TypeString:
		return parseSchemaName(string(value.GetStringBytes()), namespace, names)
	case fastjson.TypeArray:
		branches := make([]Schema, 0, len(value.GetArray()))
		for _, branchValue := range value.GetArray() {
			branch, err := parseSchemaValue(branchValue, namespace, names)
			if err != nil {
				return nil, err
			}
			branches = append(branches, branch)
		}
		return NewUnionSchema(branches...), nil
	case fastjson.TypeObject:
		return parseSchemaObject(value, namespace, names)
	default:
		return nil, fmt.Errorf("%w: schema must be a string, array or object", ErrInvalidSchema)
	}
}

// parseSchemaName resolves a bare type name: a primitive kind or a
// previously declared named type.
func parseSchemaName(name string, namespace string, names map[string]Schema) (Schema, error) {
	if kind, err := SchemaKindFromString(name); err == nil && kind.IsPrimitive() {
		return NewPrimitiveSchema(kind), nil
	}
	if schema, ok := names[fullname(name, namespace)]; ok {
		return schema, nil
	}
	if schema, ok := names[name]; ok {
		return schema, nil
	}
	return nil, fmt.Errorf("%w: undefined type %q", ErrInvalidSchema, name)
}

func parseSchemaObject(value *fastjson.Value, namespace string, names map[string]Schema) (Schema, error) {
	typeValue := value.Get("type")
	if typeValue == nil {
		return nil, fmt.Errorf("%w: missing type attribute", ErrInvalidSchema)
	}
	if typeValue.Type() != fastjson.TypeString {
		// {"type": {...}} and {"type": [...]} nest a full declaration.
		return parseSchemaValue(typeValue, namespace, names)
	}
	typeName := string(typeValue.GetStringBytes())

	if ns := value.Get("namespace"); ns != nil {
		namespace = string(ns.GetStringBytes())
	}

	kind, err := SchemaKindFromString(typeName)
	if err != nil {
		return parseSchemaName(typeName, namespace, names)
	}

	switch {
	case kind.IsPrimitive():
		return parseAnnotatedPrimitive(kind, value)
	case kind == KindArray:
		items := value.Get("items")
		if items == nil {
			return nil, fmt.Errorf("%w: array missing items", ErrInvalidSchema)
		}
		elem, err := parseSchemaValue(items, namespace, names)
		if err != nil {
			return nil, err
		}
		return NewArraySchema(elem), nil
	case kind == KindMap:
		valuesAttr := value.Get("values")
		if valuesAttr == nil {
			return nil, fmt.Errorf("%w: map missing values", ErrInvalidSchema)
		}
		valueSchema, err := parseSchemaValue(valuesAttr, namespace, names)
		if err != nil {
			return nil, err
		}
		return NewMapSchema(valueSchema), nil
	case kind == KindEnum:
		return parseEnum(value, namespace, names)
	case kind == KindFixed:
		return parseFixed(value, namespace, names)
	case kind.IsRecordLike():
		return parseRecord(kind, value, namespace, names)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchemaKind, typeName)
	}
}

func parseAnnotatedPrimitive(kind SchemaKind, value *fastjson.Value) (Schema, error) {
	logical := string(value.GetStringBytes("logicalType"))
	if logical != LogicalDecimal || kind != KindBytes {
		// Unrecognized logical types fall back to the raw primitive.
		return NewPrimitiveSchema(kind), nil
	}
	precision, scale, err := parseDecimalAttrs(value)
	if err != nil {
		return nil, err
	}
	schema := NewDecimalSchema(precision, scale)
	schema.extra = map[string]any{
		"logicalType": LogicalDecimal, "precision": precision, "scale": scale,
	}
	return schema, nil
}

func parseDecimalAttrs(value *fastjson.Value) (precision int, scale int, err error) {
	precisionValue := value.Get("precision")
	if precisionValue == nil {
		return 0, 0, fmt.Errorf("%w: decimal requires precision", ErrDecimalOutOfRange)
	}
	precision = precisionValue.GetInt()
	scale = value.GetInt("scale")
	if precision <= 0 || scale < 0 || scale > precision {
		return 0, 0, fmt.Errorf("%w: precision %d, scale %d", ErrDecimalOutOfRange, precision, scale)
	}
	return precision, scale, nil
}

func parseEnum(value *fastjson.Value, namespace string, names map[string]Schema) (Schema, error) {
	name := string(value.GetStringBytes("name"))
	if name == "" {
		return nil, fmt.Errorf("%w: enum missing name", ErrInvalidSchema)
	}
	symbolValues := value.GetArray("symbols")
	if symbolValues == nil {
		return nil, fmt.Errorf("%w: enum %q missing symbols", ErrInvalidSchema, name)
	}
	symbols := make([]string, 0, len(symbolValues))
	seen := make(map[string]bool, len(symbolValues))
	for _, symbolValue := range symbolValues {
		symbol := string(symbolValue.GetStringBytes())
		if symbol == "" || seen[symbol] {
			return nil, fmt.Errorf("%w: enum %q has invalid or duplicate symbol", ErrInvalidSchema, name)
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}
	schema := NewEnumSchema(name, namespace, symbols)
	names[schema.Fullname()] = schema
	return schema, nil
}

func parseFixed(value *fastjson.Value, namespace string, names map[string]Schema) (Schema, error) {
	name := string(value.GetStringBytes("name"))
	if name == "" {
		return nil, fmt.Errorf("%w: fixed missing name", ErrInvalidSchema)
	}
	sizeValue := value.Get("size")
	if sizeValue == nil {
		return nil, fmt.Errorf("%w: fixed %q missing size", ErrInvalidSchema, name)
	}
	size := sizeValue.GetInt()
	if size <= 0 {
		return nil, fmt.Errorf("%w: fixed %q size must be positive", ErrInvalidSchema, name)
	}

	var schema *FixedSchema
	if string(value.GetStringBytes("logicalType")) == LogicalDecimal {
		precision, scale, err := parseDecimalAttrs(value)
		if err != nil {
			return nil, err
		}
		schema = NewFixedDecimalSchema(name, namespace, size, precision, scale)
		schema.extra = map[string]any{
			"logicalType": LogicalDecimal, "precision": precision, "scale": scale,
		}
	} else {
		schema = NewFixedSchema(name, namespace, size)
	}
	names[schema.Fullname()] = schema
	return schema, nil
}

func parseRecord(kind SchemaKind, value *fastjson.Value, namespace string, names map[string]Schema) (Schema, error) {
	name := string(value.GetStringBytes("name"))
	if kind != KindRequest && name == "" {
		return nil, fmt.Errorf("%w: record missing name", ErrInvalidSchema)
	}

	// Register before parsing fields so recursive references resolve.
	schema := newRecordLike(kind, name, namespace, nil)
	if kind != KindRequest {
		names[schema.Fullname()] = schema
	}

	fieldValues := value.GetArray("fields")
	if fieldValues == nil {
		return nil, fmt.Errorf("%w: record %q missing fields", ErrInvalidSchema, name)
	}
	fields := make([]*Field, 0, len(fieldValues))
	byName := make(map[string]*Field, len(fieldValues))
	for _, fieldValue := range fieldValues {
		field, err := parseField(fieldValue, namespace, names)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", name, err)
		}
		if byName[field.name] != nil {
			return nil, fmt.Errorf("%w: record %q duplicates field %q", ErrInvalidSchema, name, field.name)
		}
		fields = append(fields, field)
		byName[field.name] = field
	}
	schema.fields = fields
	schema.byName = byName
	return schema, nil
}

func parseField(value *fastjson.Value, namespace string, names map[string]Schema) (*Field, error) {
	name := string(value.GetStringBytes("name"))
	if name == "" {
		return nil, fmt.Errorf("%w: field missing name", ErrInvalidSchema)
	}
	typeValue := value.Get("type")
	if typeValue == nil {
		return nil, fmt.Errorf("%w: field %q missing type", ErrInvalidSchema, name)
	}
	fieldType, err := parseSchemaValue(typeValue, namespace, names)
	if err != nil {
		return nil, err
	}
	if defaultValue := value.Get("default"); defaultValue != nil {
		return NewFieldWithDefault(name, fieldType, jsonToAny(defaultValue)), nil
	}
	return NewField(name, fieldType), nil
}

// jsonToAny converts a fastjson value into plain Go data:
// nil, bool, int64, float64, string, []any, map[string]any.
func jsonToAny(value *fastjson.Value) any {
	switch value.Type() {
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeString:
		return string(value.GetStringBytes())
	case fastjson.TypeNumber:
		if i, err := value.Int64(); err == nil {
			return i
		}
		f, _ := value.Float64()
		return f
	case fastjson.TypeArray:
		items := value.GetArray()
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, jsonToAny(item))
		}
		return out
	case fastjson.TypeObject:
		out := make(map[string]any)
		obj, _ := value.Object()
		obj.Visit(func(key []byte, item *fastjson.Value) {
			out[string(key)] = jsonToAny(item)
		})
		return out
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Schema JSON rendering

type schemaJSONDecl struct {
	Type        string          `json:"type"`
	Name        string          `json:"name,omitempty"`
	Namespace   string          `json:"namespace,omitempty"`
	LogicalType string          `json:"logicalType,omitempty"`
	Precision   int             `json:"precision,omitempty"`
	Scale       int             `json:"scale,omitempty"`
	Size        int             `json:"size,omitempty"`
	Items       any             `json:"items,omitempty"`
	Values      any             `json:"values,omitempty"`
	Symbols     []string        `json:"symbols,omitempty"`
	Fields      []fieldJSONDecl `json:"fields,omitempty"`
}

type fieldJSONDecl struct {
	Name    string `json:"name"`
	Type    any    `json:"type"`
	Default *any   `json:"default,omitempty"`
}

// schemaJSON renders a Schema as schema JSON text.
func schemaJSON(schema Schema) string {
	tree := schemaTree(schema, make(map[string]bool))
	out, err := json.Marshal(tree)
	if err != nil {
		return schema.Kind().String()
	}
	return string(out)
}

// schemaTree builds the marshal tree; repeated named types render as their
// fullname so recursive records terminate.
func schemaTree(schema Schema, seen map[string]bool) any {
	switch s := schema.(type) {
	case *PrimitiveSchema:
		if s.logical == "" {
			return s.kind.String()
		}
		return schemaJSONDecl{
			Type: s.kind.String(), LogicalType: s.logical,
			Precision: s.precision, Scale: s.scale,
		}
	case *ArraySchema:
		return schemaJSONDecl{Type: "array", Items: schemaTree(s.elem, seen)}
	case *MapSchema:
		return schemaJSONDecl{Type: "map", Values: schemaTree(s.values, seen)}
	case *UnionSchema:
		branches := make([]any, 0, len(s.branches))
		for _, branch := range s.branches {
			branches = append(branches, schemaTree(branch, seen))
		}
		return branches
	case *EnumSchema:
		if seen[s.Fullname()] {
			return s.Fullname()
		}
		seen[s.Fullname()] = true
		return schemaJSONDecl{Type: "enum", Name: s.name, Namespace: s.namespace, Symbols: s.symbols}
	case *FixedSchema:
		if seen[s.Fullname()] {
			return s.Fullname()
		}
		seen[s.Fullname()] = true
		return schemaJSONDecl{
			Type: "fixed", Name: s.name, Namespace: s.namespace, Size: s.size,
			LogicalType: s.logical, Precision: s.precision, Scale: s.scale,
		}
	case *RecordSchema:
		if s.kind.IsNamed() {
			if seen[s.Fullname()] {
				return s.Fullname()
			}
			seen[s.Fullname()] = true
		}
		fields := make([]fieldJSONDecl, 0, len(s.fields))
		for _, field := range s.fields {
			decl := fieldJSONDecl{Name: field.name, Type: schemaTree(field.typ, seen)}
			if field.hasDefault {
				defValue := field.defValue
				decl.Default = &defValue
			}
			fields = append(fields, decl)
		}
		return schemaJSONDecl{Type: s.kind.String(), Name: s.name, Namespace: s.namespace, Fields: fields}
	}
	return schema.Kind().String()
}
