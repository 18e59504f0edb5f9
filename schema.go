// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"fmt"
	"strconv"
)

///////////////////////////////////////////////////////////////////////////////

// SchemaKind tags every Schema with its wire shape.
type SchemaKind uint8

const (
	KindNull SchemaKind = iota
	KindBoolean
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBytes
	KindString
	KindArray
	KindMap
	KindUnion
	KindEnum
	KindFixed
	KindRecord
	KindError   // treated as a record
	KindRequest // treated as a record
)

var kindNames = []string{
	"null", "boolean", "int", "long", "float", "double", "bytes", "string",
	"array", "map", "union", "enum", "fixed", "record", "error", "request",
}

// String returns the schema type name as it appears in schema JSON.
func (k SchemaKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// SchemaKindFromString returns the SchemaKind for a schema type name.
func SchemaKindFromString(str string) (SchemaKind, error) {
	for i, name := range kindNames {
		if name == str {
			return SchemaKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSchemaKind, str)
}

// IsPrimitive returns true for the eight primitive kinds.
func (k SchemaKind) IsPrimitive() bool {
	return k <= KindString
}

// IsRecordLike returns true for the three kinds that share the record wire shape.
func (k SchemaKind) IsRecordLike() bool {
	return k == KindRecord || k == KindError || k == KindRequest
}

// IsNamed returns true for kinds that carry a fullname.
func (k SchemaKind) IsNamed() bool {
	return k == KindEnum || k == KindFixed || k == KindRecord || k == KindError
}

// LogicalDecimal is the only logical type the codec recognizes.
const LogicalDecimal = "decimal"

///////////////////////////////////////////////////////////////////////////////

// Schema is a parsed, immutable schema declaration.  Schemas outlive any
// encoder or decoder that references them; the codec holds only borrowed
// references.  Kind-specific structure is reached by asserting to the
// concrete types below.
type Schema interface {
	// Kind returns the schema's type tag.
	Kind() SchemaKind

	// Fullname returns the namespace-qualified name for named schemas,
	// and the type name for everything else.
	Fullname() string

	// LogicalType returns the logical type annotation, or "".
	LogicalType() string

	// Attribute returns a structural attribute by name ("type", "name",
	// "size", ...) as a string, or "" when the schema has no such attribute.
	Attribute(name string) string

	// String renders the schema as schema JSON.
	String() string
}

// IsValidDatum reports whether datum conforms to schema.  See validate.go.
func IsValidDatum(schema Schema, datum any) bool {
	return isValidDatum(schema, datum)
}

///////////////////////////////////////////////////////////////////////////////

// PrimitiveSchema covers null, boolean, int, long, float, double, bytes
// and string, optionally annotated with the decimal logical type on bytes.
type PrimitiveSchema struct {
	kind      SchemaKind
	logical   string
	precision int
	scale     int
	extra     map[string]any
}

// NewPrimitiveSchema creates a plain primitive schema.
func NewPrimitiveSchema(kind SchemaKind) *PrimitiveSchema {
	return &PrimitiveSchema{kind: kind}
}

// NewDecimalSchema creates a bytes schema annotated as a decimal.
func NewDecimalSchema(precision int, scale int) *PrimitiveSchema {
	return &PrimitiveSchema{
		kind:      KindBytes,
		logical:   LogicalDecimal,
		precision: precision,
		scale:     scale,
	}
}

func (s *PrimitiveSchema) Kind() SchemaKind    { return s.kind }
func (s *PrimitiveSchema) Fullname() string    { return s.kind.String() }
func (s *PrimitiveSchema) LogicalType() string { return s.logical }

// Precision returns the decimal precision, or 0 when not a decimal.
func (s *PrimitiveSchema) Precision() int { return s.precision }

// Scale returns the decimal scale.
func (s *PrimitiveSchema) Scale() int { return s.scale }

// ExtraAttrs returns any non-structural attributes kept from the declaration.
func (s *PrimitiveSchema) ExtraAttrs() map[string]any { return s.extra }

func (s *PrimitiveSchema) Attribute(name string) string {
	switch name {
	case "type":
		return s.kind.String()
	case "logicalType":
		return s.logical
	case "precision":
		return decimalAttrString(s.logical, s.precision)
	case "scale":
		return decimalAttrString(s.logical, s.scale)
	}
	return ""
}

func (s *PrimitiveSchema) String() string { return schemaJSON(s) }

func decimalAttrString(logical string, v int) string {
	if logical != LogicalDecimal {
		return ""
	}
	return strconv.Itoa(v)
}

///////////////////////////////////////////////////////////////////////////////

// ArraySchema is an ordered sequence of one element schema.
type ArraySchema struct {
	elem Schema
}

// NewArraySchema creates an array schema with the given element schema.
func NewArraySchema(elem Schema) *ArraySchema {
	return &ArraySchema{elem: elem}
}

func (s *ArraySchema) Kind() SchemaKind    { return KindArray }
func (s *ArraySchema) Fullname() string    { return "array" }
func (s *ArraySchema) LogicalType() string { return "" }

// Element returns the element schema.
func (s *ArraySchema) Element() Schema { return s.elem }

func (s *ArraySchema) Attribute(name string) string {
	if name == "type" {
		return "array"
	}
	return ""
}

func (s *ArraySchema) String() string { return schemaJSON(s) }

///////////////////////////////////////////////////////////////////////////////

// MapSchema is a string-keyed mapping of one value schema.
type MapSchema struct {
	values Schema
}

// NewMapSchema creates a map schema with the given value schema.
func NewMapSchema(values Schema) *MapSchema {
	return &MapSchema{values: values}
}

func (s *MapSchema) Kind() SchemaKind    { return KindMap }
func (s *MapSchema) Fullname() string    { return "map" }
func (s *MapSchema) LogicalType() string { return "" }

// ValueType returns the value schema.
func (s *MapSchema) ValueType() Schema { return s.values }

func (s *MapSchema) Attribute(name string) string {
	if name == "type" {
		return "map"
	}
	return ""
}

func (s *MapSchema) String() string { return schemaJSON(s) }

///////////////////////////////////////////////////////////////////////////////

// UnionSchema is a sum type over its branch schemas.
type UnionSchema struct {
	branches []Schema
}

// NewUnionSchema creates a union schema over branches.
func NewUnionSchema(branches ...Schema) *UnionSchema {
	return &UnionSchema{branches: branches}
}

func (s *UnionSchema) Kind() SchemaKind    { return KindUnion }
func (s *UnionSchema) Fullname() string    { return "union" }
func (s *UnionSchema) LogicalType() string { return "" }

// Branches returns the branch schemas in declared order.
func (s *UnionSchema) Branches() []Schema { return s.branches }

// BranchAt returns the branch schema at index i, or nil when out of range.
func (s *UnionSchema) BranchAt(i int) Schema {
	if i < 0 || i >= len(s.branches) {
		return nil
	}
	return s.branches[i]
}

func (s *UnionSchema) Attribute(name string) string {
	if name == "type" {
		return "union"
	}
	return ""
}

func (s *UnionSchema) String() string { return schemaJSON(s) }

///////////////////////////////////////////////////////////////////////////////

// EnumSchema is a named set of symbols.
type EnumSchema struct {
	name      string
	namespace string
	symbols   []string
	indexOf   map[string]int
}

// NewEnumSchema creates an enum schema.  Symbol order is the wire order.
func NewEnumSchema(name string, namespace string, symbols []string) *EnumSchema {
	indexOf := make(map[string]int, len(symbols))
	for i, sym := range symbols {
		indexOf[sym] = i
	}
	return &EnumSchema{name: name, namespace: namespace, symbols: symbols, indexOf: indexOf}
}

func (s *EnumSchema) Kind() SchemaKind    { return KindEnum }
func (s *EnumSchema) Fullname() string    { return fullname(s.name, s.namespace) }
func (s *EnumSchema) LogicalType() string { return "" }

// Symbols returns the declared symbols in wire order.
func (s *EnumSchema) Symbols() []string { return s.symbols }

// SymbolAt returns the symbol at index i and whether i is in range.
func (s *EnumSchema) SymbolAt(i int) (string, bool) {
	if i < 0 || i >= len(s.symbols) {
		return "", false
	}
	return s.symbols[i], true
}

// SymbolIndex returns the wire index of a symbol, or -1 if undeclared.
func (s *EnumSchema) SymbolIndex(symbol string) int {
	if i, ok := s.indexOf[symbol]; ok {
		return i
	}
	return -1
}

// HasSymbol returns true if symbol is declared.
func (s *EnumSchema) HasSymbol(symbol string) bool {
	_, ok := s.indexOf[symbol]
	return ok
}

func (s *EnumSchema) Attribute(name string) string {
	switch name {
	case "type":
		return "enum"
	case "name":
		return s.name
	case "namespace":
		return s.namespace
	case "fullname":
		return s.Fullname()
	}
	return ""
}

func (s *EnumSchema) String() string { return schemaJSON(s) }

///////////////////////////////////////////////////////////////////////////////

// FixedSchema is a named, fixed-size byte sequence, optionally annotated
// with the decimal logical type.
type FixedSchema struct {
	name      string
	namespace string
	size      int
	logical   string
	precision int
	scale     int
	extra     map[string]any
}

// NewFixedSchema creates a fixed schema of the given byte size.
func NewFixedSchema(name string, namespace string, size int) *FixedSchema {
	return &FixedSchema{name: name, namespace: namespace, size: size}
}

// NewFixedDecimalSchema creates a fixed schema annotated as a decimal.
func NewFixedDecimalSchema(name string, namespace string, size int, precision int, scale int) *FixedSchema {
	return &FixedSchema{
		name: name, namespace: namespace, size: size,
		logical: LogicalDecimal, precision: precision, scale: scale,
	}
}

func (s *FixedSchema) Kind() SchemaKind    { return KindFixed }
func (s *FixedSchema) Fullname() string    { return fullname(s.name, s.namespace) }
func (s *FixedSchema) LogicalType() string { return s.logical }

// Size returns the fixed byte size.
func (s *FixedSchema) Size() int { return s.size }

// Precision returns the decimal precision, or 0 when not a decimal.
func (s *FixedSchema) Precision() int { return s.precision }

// Scale returns the decimal scale.
func (s *FixedSchema) Scale() int { return s.scale }

// ExtraAttrs returns any non-structural attributes kept from the declaration.
func (s *FixedSchema) ExtraAttrs() map[string]any { return s.extra }

func (s *FixedSchema) Attribute(name string) string {
	switch name {
	case "type":
		return "fixed"
	case "name":
		return s.name
	case "namespace":
		return s.namespace
	case "fullname":
		return s.Fullname()
	case "size":
		return strconv.Itoa(s.size)
	case "logicalType":
		return s.logical
	case "precision":
		return decimalAttrString(s.logical, s.precision)
	case "scale":
		return decimalAttrString(s.logical, s.scale)
	}
	return ""
}

func (s *FixedSchema) String() string { return schemaJSON(s) }

///////////////////////////////////////////////////////////////////////////////

// Field is one named, typed slot of a record schema.
type Field struct {
	name       string
	typ        Schema
	hasDefault bool
	defValue   any
}

// NewField creates a field with no default.
func NewField(name string, typ Schema) *Field {
	return &Field{name: name, typ: typ}
}

// NewFieldWithDefault creates a field carrying a default declaration.
// The default is held in parsed-JSON form (nil, bool, int64, float64,
// string, []any, map[string]any) and materialized by the decoder.
func NewFieldWithDefault(name string, typ Schema, defValue any) *Field {
	return &Field{name: name, typ: typ, hasDefault: true, defValue: defValue}
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Type returns the field's schema.
func (f *Field) Type() Schema { return f.typ }

// HasDefault returns true if the field declares a default.
func (f *Field) HasDefault() bool { return f.hasDefault }

// DefaultValue returns the declared default in parsed-JSON form.
func (f *Field) DefaultValue() any { return f.defValue }

///////////////////////////////////////////////////////////////////////////////

// RecordSchema is a named sequence of fields.  The same shape backs the
// record, error and request kinds.
type RecordSchema struct {
	kind      SchemaKind
	name      string
	namespace string
	fields    []*Field
	byName    map[string]*Field
}

// NewRecordSchema creates a record schema with the given fields.
func NewRecordSchema(name string, namespace string, fields []*Field) *RecordSchema {
	return newRecordLike(KindRecord, name, namespace, fields)
}

// NewErrorSchema creates an error schema, a record used as an error declaration.
func NewErrorSchema(name string, namespace string, fields []*Field) *RecordSchema {
	return newRecordLike(KindError, name, namespace, fields)
}

// NewRequestSchema creates a request schema, the anonymous record of a
// message's parameters.
func NewRequestSchema(fields []*Field) *RecordSchema {
	return newRecordLike(KindRequest, "", "", fields)
}

func newRecordLike(kind SchemaKind, name string, namespace string, fields []*Field) *RecordSchema {
	byName := make(map[string]*Field, len(fields))
	for _, field := range fields {
		byName[field.name] = field
	}
	return &RecordSchema{kind: kind, name: name, namespace: namespace, fields: fields, byName: byName}
}

func (s *RecordSchema) Kind() SchemaKind    { return s.kind }
func (s *RecordSchema) Fullname() string    { return fullname(s.name, s.namespace) }
func (s *RecordSchema) LogicalType() string { return "" }

// Fields returns the fields in declared (wire) order.
func (s *RecordSchema) Fields() []*Field { return s.fields }

// FieldsByName returns the name-to-field mapping.
func (s *RecordSchema) FieldsByName() map[string]*Field { return s.byName }

// Field returns the named field, or nil.
func (s *RecordSchema) Field(name string) *Field { return s.byName[name] }

func (s *RecordSchema) Attribute(name string) string {
	switch name {
	case "type":
		return s.kind.String()
	case "name":
		return s.name
	case "namespace":
		return s.namespace
	case "fullname":
		return s.Fullname()
	}
	return ""
}

func (s *RecordSchema) String() string { return schemaJSON(s) }

///////////////////////////////////////////////////////////////////////////////

// fullname joins a namespace and a name.  Names that already contain a dot
// are taken as fully qualified.
func fullname(name string, namespace string) string {
	if namespace == "" || containsDot(name) {
		return name
	}
	return namespace + "." + name
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}
