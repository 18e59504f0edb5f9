// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"fmt"
	"io"
	"math"
)

///////////////////////////////////////////////////////////////////////////////

// DecoderOption configures a new Decoder.
type DecoderOption func(*Decoder)

// WithReaderSchema resolves data against a reader's schema differing from
// the writer's.  Without it, the reader's schema is the writer's schema.
func WithReaderSchema(schema Schema) DecoderOption {
	return func(d *Decoder) { d.reader = schema }
}

// WithDecoderLongCodec selects the varint backend.
func WithDecoderLongCodec(longs LongCodec) DecoderOption {
	return func(d *Decoder) { d.longs = longs }
}

// Decoder reads datums from a stream written under a writer's schema,
// resolving them against a reader's schema.  It borrows the schemas and
// the stream.  A single Decoder must not be shared across goroutines; it
// drives a mutable stream cursor.
type Decoder struct {
	writer Schema
	reader Schema
	stream Stream
	longs  LongCodec
}

// NewDecoder creates a Decoder bound to the writer's schema and a stream.
func NewDecoder(writerSchema Schema, stream Stream, opts ...DecoderOption) (*Decoder, error) {
	if err := checkWireByteOrder(); err != nil {
		return nil, err
	}
	decoder := &Decoder{
		writer: writerSchema,
		stream: stream,
		longs:  NativeLongCodec(),
	}
	for _, opt := range opts {
		opt(decoder)
	}
	if decoder.reader == nil {
		decoder.reader = writerSchema
	}
	if !SchemasMatch(decoder.writer, decoder.reader) {
		return nil, incompatibleError(decoder.writer, decoder.reader)
	}
	return decoder, nil
}

// WriterSchema returns the writer's schema the Decoder is bound to.
func (d *Decoder) WriterSchema() Schema {
	return d.writer
}

// ReaderSchema returns the reader's schema data resolves against.
func (d *Decoder) ReaderSchema() Schema {
	return d.reader
}

// Read consumes one datum from the stream, shaped by the reader's schema.
func (d *Decoder) Read() (any, error) {
	return d.read(d.writer, d.reader)
}

// Skip consumes one datum from the stream without materializing it.
func (d *Decoder) Skip() error {
	return d.skip(d.writer)
}

///////////////////////////////////////////////////////////////////////////////

func (d *Decoder) read(writer Schema, reader Schema) (any, error) {
	if !SchemasMatch(writer, reader) {
		return nil, incompatibleError(writer, reader)
	}

	// A reader union absorbs a non-union writer: resolve against the first
	// compatible reader branch.
	if readerUnion, ok := reader.(*UnionSchema); ok && writer.Kind() != KindUnion {
		for _, branch := range readerUnion.branches {
			if SchemasMatch(writer, branch) {
				return d.read(writer, branch)
			}
		}
		return nil, incompatibleError(writer, reader)
	}

	switch w := writer.(type) {
	case *PrimitiveSchema:
		if w.logical == LogicalDecimal {
			raw, err := readBytes(d.stream, d.longs)
			if err != nil {
				return nil, err
			}
			return decodeDecimal(raw, w.scale), nil
		}
		return d.readPrimitive(w.kind, reader.Kind())
	case *ArraySchema:
		readerElem := reader.(*ArraySchema).elem
		items := make([]any, 0)
		err := d.readBlocked(func() error {
			item, err := d.read(w.elem, readerElem)
			if err != nil {
				return err
			}
			items = append(items, item)
			return nil
		})
		return items, err
	case *MapSchema:
		readerValues := reader.(*MapSchema).values
		values := make(map[string]any)
		err := d.readBlocked(func() error {
			key, err := readString(d.stream, d.longs)
			if err != nil {
				return err
			}
			value, err := d.read(w.values, readerValues)
			if err != nil {
				return err
			}
			values[key] = value
			return nil
		})
		return values, err
	case *UnionSchema:
		index, err := d.longs.DecodeLong(d.stream)
		if err != nil {
			return nil, err
		}
		branch := w.BranchAt(int(index))
		if branch == nil {
			return nil, fmt.Errorf("%w: %d of %d branches", ErrBadBranchIndex, index, len(w.branches))
		}
		// The reader's schema is unchanged; union absorption above handles it.
		return d.read(branch, reader)
	case *EnumSchema:
		index, err := d.longs.DecodeLong(d.stream)
		if err != nil {
			return nil, err
		}
		symbol, ok := w.SymbolAt(int(index))
		if !ok {
			return nil, fmt.Errorf("%w: index %d of %d symbols", ErrBadSymbol, index, len(w.symbols))
		}
		if readerEnum, ok := reader.(*EnumSchema); ok && !readerEnum.HasSymbol(symbol) {
			return nil, fmt.Errorf("%w: %q not declared by reader", ErrBadSymbol, symbol)
		}
		return symbol, nil
	case *FixedSchema:
		raw, err := d.stream.Read(w.size)
		if err != nil {
			return nil, err
		}
		if w.logical == LogicalDecimal {
			return decodeDecimal(raw, w.scale), nil
		}
		return raw, nil
	case *RecordSchema:
		return d.readRecord(w, reader.(*RecordSchema))
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownSchemaKind, writer)
}

func (d *Decoder) readPrimitive(wKind SchemaKind, rKind SchemaKind) (any, error) {
	switch wKind {
	case KindNull:
		return nil, nil
	case KindBoolean:
		return readBoolean(d.stream)
	case KindInt, KindLong:
		n, err := d.longs.DecodeLong(d.stream)
		if err != nil {
			return nil, err
		}
		return promoteInteger(n, rKind), nil
	case KindFloat:
		f, err := readFloat(d.stream)
		if err != nil {
			return nil, err
		}
		if rKind == KindDouble {
			return float64(f), nil
		}
		return f, nil
	case KindDouble:
		return readDouble(d.stream)
	case KindBytes:
		return readBytes(d.stream, d.longs)
	case KindString:
		return readString(d.stream, d.longs)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSchemaKind, wKind)
}

// promoteInteger shapes a decoded integer per the reader's numeric kind.
func promoteInteger(n int64, rKind SchemaKind) any {
	switch rKind {
	case KindInt:
		return int32(n)
	case KindFloat:
		return float32(n)
	case KindDouble:
		return float64(n)
	default:
		return n
	}
}

func (d *Decoder) readRecord(writer *RecordSchema, reader *RecordSchema) (any, error) {
	record := make(map[string]any, len(reader.fields))
	for _, writerField := range writer.fields {
		readerField := reader.byName[writerField.name]
		if readerField == nil {
			// The reader does not want this field; consume and drop it.
			if err := d.skip(writerField.typ); err != nil {
				return nil, err
			}
			continue
		}
		value, err := d.read(writerField.typ, readerField.typ)
		if err != nil {
			// Unwrapped, so stream errors such as io.EOF reach the caller unchanged.
			return nil, err
		}
		record[writerField.name] = value
	}
	for _, readerField := range reader.fields {
		if writer.byName[readerField.name] != nil {
			continue
		}
		if !readerField.hasDefault {
			return nil, fmt.Errorf("%w: field %q", ErrMissingDefault, readerField.name)
		}
		value, err := defaultDatum(readerField.typ, readerField.defValue)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", readerField.name, err)
		}
		record[readerField.name] = value
	}
	return record, nil
}

// readBlocked consumes container blocks until the zero terminator, calling
// readItem once per item.  Negative-count blocks carry a byte size, which
// is read and discarded since every item is materialized anyway.
func (d *Decoder) readBlocked(readItem func() error) error {
	for {
		count, err := d.longs.DecodeLong(d.stream)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if count < 0 {
			count = -count
			if _, err := d.longs.DecodeLong(d.stream); err != nil {
				return err
			}
		}
		for i := int64(0); i < count; i++ {
			if err := readItem(); err != nil {
				return err
			}
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// Skip

func (d *Decoder) skip(writer Schema) error {
	switch w := writer.(type) {
	case *PrimitiveSchema:
		return d.skipPrimitive(w.kind)
	case *ArraySchema:
		return d.skipBlocked(func() error { return d.skip(w.elem) })
	case *MapSchema:
		return d.skipBlocked(func() error {
			if err := d.skipPrimitive(KindString); err != nil {
				return err
			}
			return d.skip(w.values)
		})
	case *UnionSchema:
		index, err := d.longs.DecodeLong(d.stream)
		if err != nil {
			return err
		}
		branch := w.BranchAt(int(index))
		if branch == nil {
			return fmt.Errorf("%w: %d of %d branches", ErrBadBranchIndex, index, len(w.branches))
		}
		return d.skip(branch)
	case *EnumSchema:
		_, err := d.longs.DecodeLong(d.stream)
		return err
	case *FixedSchema:
		return d.skipAhead(int64(w.size))
	case *RecordSchema:
		for _, field := range w.fields {
			if err := d.skip(field.typ); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %T", ErrUnknownSchemaKind, writer)
}

func (d *Decoder) skipPrimitive(kind SchemaKind) error {
	switch kind {
	case KindNull:
		return nil
	case KindBoolean:
		return d.skipAhead(1)
	case KindInt, KindLong:
		_, err := d.longs.DecodeLong(d.stream)
		return err
	case KindFloat:
		return d.skipAhead(4)
	case KindDouble:
		return d.skipAhead(8)
	case KindBytes, KindString:
		length, err := d.longs.DecodeLong(d.stream)
		if err != nil {
			return err
		}
		return d.skipAhead(length)
	}
	return fmt.Errorf("%w: %s", ErrUnknownSchemaKind, kind)
}

// skipBlocked consumes container blocks without materializing items.
// A block carrying a byte size is skipped in one seek.
func (d *Decoder) skipBlocked(skipItem func() error) error {
	for {
		count, err := d.longs.DecodeLong(d.stream)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if count < 0 {
			size, err := d.longs.DecodeLong(d.stream)
			if err != nil {
				return err
			}
			if err := d.skipAhead(size); err != nil {
				return err
			}
			continue
		}
		for i := int64(0); i < count; i++ {
			if err := skipItem(); err != nil {
				return err
			}
		}
	}
}

func (d *Decoder) skipAhead(n int64) error {
	_, err := d.stream.Seek(n, io.SeekCurrent)
	return err
}

///////////////////////////////////////////////////////////////////////////////
// Default-value reader

// defaultDatum materializes a field default, declared in parsed-JSON form,
// into the datum shape its schema dictates.  For unions the default is
// typed by the first branch.
func defaultDatum(schema Schema, declared any) (any, error) {
	switch s := schema.(type) {
	case *PrimitiveSchema:
		return defaultPrimitive(s, declared)
	case *ArraySchema:
		items, ok := declared.([]any)
		if !ok {
			return nil, defaultMismatch(schema, declared)
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			value, err := defaultDatum(s.elem, item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case *MapSchema:
		declaredMap, ok := declared.(map[string]any)
		if !ok {
			return nil, defaultMismatch(schema, declared)
		}
		out := make(map[string]any, len(declaredMap))
		for key, item := range declaredMap {
			value, err := defaultDatum(s.values, item)
			if err != nil {
				return nil, err
			}
			out[key] = value
		}
		return out, nil
	case *UnionSchema:
		if len(s.branches) == 0 {
			return nil, defaultMismatch(schema, declared)
		}
		return defaultDatum(s.branches[0], declared)
	case *EnumSchema:
		symbol, ok := declared.(string)
		if !ok || !s.HasSymbol(symbol) {
			return nil, defaultMismatch(schema, declared)
		}
		return symbol, nil
	case *FixedSchema:
		text, ok := declared.(string)
		if !ok || len(text) != s.size {
			return nil, defaultMismatch(schema, declared)
		}
		return []byte(text), nil
	case *RecordSchema:
		declaredMap, ok := declared.(map[string]any)
		if !ok {
			return nil, defaultMismatch(schema, declared)
		}
		out := make(map[string]any, len(s.fields))
		for _, field := range s.fields {
			item, present := declaredMap[field.name]
			if !present {
				if !field.hasDefault {
					return nil, fmt.Errorf("%w: field %q", ErrMissingDefault, field.name)
				}
				item = field.defValue
			}
			value, err := defaultDatum(field.typ, item)
			if err != nil {
				return nil, err
			}
			out[field.name] = value
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownSchemaKind, schema)
}

func defaultPrimitive(s *PrimitiveSchema, declared any) (any, error) {
	switch s.kind {
	case KindNull:
		if declared != nil {
			return nil, defaultMismatch(s, declared)
		}
		return nil, nil
	case KindBoolean:
		if v, ok := declared.(bool); ok {
			return v, nil
		}
	case KindInt:
		if n, ok := defaultInteger(declared); ok {
			return int32(n), nil
		}
	case KindLong:
		if n, ok := defaultInteger(declared); ok {
			return n, nil
		}
	case KindFloat:
		if n, ok := defaultNumber(declared); ok {
			return float32(n), nil
		}
	case KindDouble:
		if n, ok := defaultNumber(declared); ok {
			return n, nil
		}
	case KindBytes:
		// Bytes defaults are declared as strings of byte values.
		if text, ok := declared.(string); ok {
			return []byte(text), nil
		}
	case KindString:
		if text, ok := declared.(string); ok {
			return text, nil
		}
	}
	return nil, defaultMismatch(s, declared)
}

func defaultNumber(declared any) (float64, bool) {
	switch v := declared.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func defaultInteger(declared any) (int64, bool) {
	switch v := declared.(type) {
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) {
			return int64(v), true
		}
	}
	return 0, false
}

func defaultMismatch(schema Schema, declared any) error {
	return fmt.Errorf("%w: default %T does not fit %s", ErrDatumTypeMismatch, declared, schema.Kind())
}
