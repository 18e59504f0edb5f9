// Copyright (c) 2025 Neomantra Corp

package avro

import "fmt"

var (
	ErrDatumTypeMismatch  = fmt.Errorf("datum does not conform to schema")
	ErrSchemaIncompatible = fmt.Errorf("writer and reader schemas are incompatible")
	ErrDecimalOutOfRange  = fmt.Errorf("decimal out of range for precision")
	ErrUnknownSchemaKind  = fmt.Errorf("unknown schema kind")
	ErrMissingDefault     = fmt.Errorf("reader field missing from writer with no default")
	ErrBadSymbol          = fmt.Errorf("enum symbol not declared by schema")
	ErrBadBranchIndex     = fmt.Errorf("union branch index out of range")
	ErrInvalidSchema      = fmt.Errorf("invalid schema declaration")
	ErrNotLittleEndian    = fmt.Errorf("host wire byte order is not little-endian")
	ErrStreamReadOnly     = fmt.Errorf("stream does not support writing")
	ErrStreamWriteOnly    = fmt.Errorf("stream does not support reading")
	ErrStreamNotSeekable  = fmt.Errorf("stream does not support seeking")
)

func datumMismatchError(schema Schema, datum any) error {
	return fmt.Errorf("%w: %T against %s", ErrDatumTypeMismatch, datum, schema.Kind())
}

func incompatibleError(writer Schema, reader Schema) error {
	return fmt.Errorf("%w: writer %s, reader %s", ErrSchemaIncompatible, writer.Kind(), reader.Kind())
}
