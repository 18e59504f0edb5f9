// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"fmt"
	"sort"
)

///////////////////////////////////////////////////////////////////////////////

// EncoderOption configures a new Encoder.
type EncoderOption func(*Encoder)

// WithEncoderLongCodec selects the varint backend.  The default is the
// native int64 backend; both backends are wire-identical.
func WithEncoderLongCodec(longs LongCodec) EncoderOption {
	return func(e *Encoder) { e.longs = longs }
}

// WithBlockSizePrefix makes container blocks use the negative-count form,
// carrying a byte size so readers can skip the block without decoding it.
func WithBlockSizePrefix() EncoderOption {
	return func(e *Encoder) { e.sizedBlocks = true }
}

// Encoder writes datums conforming to one writer's schema onto a stream.
// It is stateless between Write calls and borrows both the schema and the
// stream.  A single Encoder must not be shared across goroutines; separate
// Encoders over separate streams are independent.
type Encoder struct {
	schema      Schema
	stream      Stream
	longs       LongCodec
	sizedBlocks bool
}

// NewEncoder creates an Encoder bound to a writer's schema and a stream.
func NewEncoder(schema Schema, stream Stream, opts ...EncoderOption) (*Encoder, error) {
	if err := checkWireByteOrder(); err != nil {
		return nil, err
	}
	encoder := &Encoder{
		schema: schema,
		stream: stream,
		longs:  NativeLongCodec(),
	}
	for _, opt := range opts {
		opt(encoder)
	}
	return encoder, nil
}

// Schema returns the writer's schema the Encoder is bound to.
func (e *Encoder) Schema() Schema {
	return e.schema
}

// Write validates datum against the writer's schema and appends its binary
// encoding to the stream.  A failed write leaves the stream position
// undefined; callers needing transactional boundaries must layer them above.
func (e *Encoder) Write(datum any) error {
	if !isValidDatum(e.schema, datum) {
		return datumMismatchError(e.schema, datum)
	}
	return e.write(e.stream, e.schema, datum)
}

///////////////////////////////////////////////////////////////////////////////

func (e *Encoder) write(stream Stream, schema Schema, datum any) error {
	switch s := schema.(type) {
	case *PrimitiveSchema:
		if s.logical == LogicalDecimal {
			return e.writeDecimalBytes(stream, s, datum)
		}
		return e.writePrimitive(stream, s.kind, datum)
	case *ArraySchema:
		items := datum.([]any)
		return e.writeBlocked(stream, len(items), func(blockStream Stream) error {
			for _, item := range items {
				if err := e.write(blockStream, s.elem, item); err != nil {
					return err
				}
			}
			return nil
		})
	case *MapSchema:
		values := datum.(map[string]any)
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys) // deterministic output; wire order is unconstrained
		return e.writeBlocked(stream, len(keys), func(blockStream Stream) error {
			for _, key := range keys {
				if err := writeString(blockStream, e.longs, key); err != nil {
					return err
				}
				if err := e.write(blockStream, s.values, values[key]); err != nil {
					return err
				}
			}
			return nil
		})
	case *UnionSchema:
		for i, branch := range s.branches {
			if isValidDatum(branch, datum) {
				if err := writeLong(stream, e.longs, int64(i)); err != nil {
					return err
				}
				return e.write(stream, branch, datum)
			}
		}
		return datumMismatchError(s, datum)
	case *EnumSchema:
		index := s.SymbolIndex(datum.(string))
		if index < 0 {
			return fmt.Errorf("%w: %q", ErrBadSymbol, datum)
		}
		return writeLong(stream, e.longs, int64(index))
	case *FixedSchema:
		if s.logical == LogicalDecimal {
			unscaled, err := decimalUnscaled(datum, s.precision, s.scale)
			if err != nil {
				return err
			}
			raw, err := encodeDecimalFixed(unscaled, s.size)
			if err != nil {
				return err
			}
			_, err = stream.Write(raw)
			return err
		}
		_, err := stream.Write(datum.([]byte))
		return err
	case *RecordSchema:
		values := datum.(map[string]any)
		for _, field := range s.fields {
			fieldValue, present := values[field.name]
			if !present {
				materialized, err := defaultDatum(field.typ, field.defValue)
				if err != nil {
					return fmt.Errorf("field %q: %w", field.name, err)
				}
				fieldValue = materialized
			}
			if err := e.write(stream, field.typ, fieldValue); err != nil {
				// Unwrapped, so stream errors reach the caller unchanged.
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %T", ErrUnknownSchemaKind, schema)
}

func (e *Encoder) writePrimitive(stream Stream, kind SchemaKind, datum any) error {
	switch kind {
	case KindNull:
		return nil
	case KindBoolean:
		return writeBoolean(stream, datum.(bool))
	case KindInt, KindLong:
		n, _ := integerDatum(datum)
		return writeLong(stream, e.longs, n)
	case KindFloat:
		return writeFloat(stream, floatDatum(datum))
	case KindDouble:
		return writeDouble(stream, doubleDatum(datum))
	case KindBytes:
		return writeBytes(stream, e.longs, datum.([]byte))
	case KindString:
		return writeString(stream, e.longs, datum.(string))
	}
	return fmt.Errorf("%w: %s", ErrUnknownSchemaKind, kind)
}

func (e *Encoder) writeDecimalBytes(stream Stream, s *PrimitiveSchema, datum any) error {
	unscaled, err := decimalUnscaled(datum, s.precision, s.scale)
	if err != nil {
		return err
	}
	return writeBytes(stream, e.longs, encodeDecimalMinimal(unscaled))
}

// writeBlocked emits a container: one block of count items when non-empty,
// then the zero terminator.  With the size-prefix option, the block uses
// the negative-count form and carries its byte size.
func (e *Encoder) writeBlocked(stream Stream, count int, emit func(Stream) error) error {
	if count > 0 {
		if e.sizedBlocks {
			scratch := NewBufferStream()
			if err := emit(scratch); err != nil {
				return err
			}
			if err := writeLong(stream, e.longs, int64(-count)); err != nil {
				return err
			}
			if err := writeLong(stream, e.longs, int64(scratch.Len())); err != nil {
				return err
			}
			if _, err := stream.Write(scratch.Bytes()); err != nil {
				return err
			}
		} else {
			if err := writeLong(stream, e.longs, int64(count)); err != nil {
				return err
			}
			if err := emit(stream); err != nil {
				return err
			}
		}
	}
	return writeLong(stream, e.longs, 0)
}

// floatDatum widens the accepted float forms to float32.
func floatDatum(datum any) float32 {
	switch v := datum.(type) {
	case float32:
		return v
	case int:
		return float32(v)
	case int32:
		return float32(v)
	case int64:
		return float32(v)
	}
	return 0
}

// doubleDatum widens the accepted double forms to float64.
func doubleDatum(datum any) float64 {
	switch v := datum.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
