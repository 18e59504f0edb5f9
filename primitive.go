// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

///////////////////////////////////////////////////////////////////////////////

// The wire format is little-endian.  Floats are emitted through explicit
// binary.LittleEndian packing, so output is host-independent; the probe
// below asserts at construction time that the packing really produces
// wire order, per the format's platform-compatibility requirement.
func checkWireByteOrder() error {
	var probe [4]byte
	binary.LittleEndian.PutUint32(probe[:], math.Float32bits(1.0))
	if probe != [4]byte{0x00, 0x00, 0x80, 0x3F} {
		return ErrNotLittleEndian
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Primitive writers

func writeBoolean(stream Stream, v bool) error {
	b := []byte{0x00}
	if v {
		b[0] = 0x01
	}
	_, err := stream.Write(b)
	return err
}

func writeLong(stream Stream, longs LongCodec, n int64) error {
	_, err := stream.Write(longs.EncodeLong(n))
	return err
}

func writeFloat(stream Stream, v float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	_, err := stream.Write(buf[:])
	return err
}

func writeDouble(stream Stream, v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := stream.Write(buf[:])
	return err
}

// writeBytes emits a long length prefix followed by the raw bytes.
func writeBytes(stream Stream, longs LongCodec, v []byte) error {
	if err := writeLong(stream, longs, int64(len(v))); err != nil {
		return err
	}
	_, err := stream.Write(v)
	return err
}

func writeString(stream Stream, longs LongCodec, v string) error {
	if !utf8.ValidString(v) {
		return fmt.Errorf("%w: string is not valid UTF-8", ErrDatumTypeMismatch)
	}
	return writeBytes(stream, longs, []byte(v))
}

///////////////////////////////////////////////////////////////////////////////
// Primitive readers

func readBoolean(stream Stream) (bool, error) {
	b, err := stream.Read(1)
	if err != nil {
		return false, err
	}
	return b[0] == 0x01, nil
}

func readFloat(stream Stream) (float32, error) {
	b, err := stream.Read(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func readDouble(stream Stream) (float64, error) {
	b, err := stream.Read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func readBytes(stream Stream, longs LongCodec) ([]byte, error) {
	length, err := longs.DecodeLong(stream)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative bytes length %d", ErrDatumTypeMismatch, length)
	}
	return stream.Read(int(length))
}

func readString(stream Stream, longs LongCodec) (string, error) {
	raw, err := readBytes(stream, longs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
