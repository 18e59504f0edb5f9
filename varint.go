// Copyright (c) 2025 Neomantra Corp

package avro

import "math/big"

///////////////////////////////////////////////////////////////////////////////

// LongCodec is the pluggable integer backend behind every varint on the
// wire.  The choice of backend is made once at Encoder/Decoder construction
// and both backends produce bit-identical output.
type LongCodec interface {
	// EncodeLong returns the zig-zag varint encoding of n.
	EncodeLong(n int64) []byte

	// DecodeLong consumes one zig-zag varint from the stream.
	DecodeLong(stream Stream) (int64, error)
}

// varintContinueBit flags every encoded byte except the last.
const varintContinueBit = 0x80

///////////////////////////////////////////////////////////////////////////////

// nativeLongCodec encodes over the host's int64.
type nativeLongCodec struct{}

// NativeLongCodec returns the default LongCodec, backed by int64 arithmetic.
func NativeLongCodec() LongCodec {
	return nativeLongCodec{}
}

func (nativeLongCodec) EncodeLong(n int64) []byte {
	u := uint64((n << 1) ^ (n >> 63))
	buf := make([]byte, 0, 10)
	for u >= varintContinueBit {
		buf = append(buf, byte(u)|varintContinueBit)
		u >>= 7
	}
	return append(buf, byte(u))
}

func (nativeLongCodec) DecodeLong(stream Stream) (int64, error) {
	var u uint64
	var shift uint
	for {
		b, err := stream.Read(1)
		if err != nil {
			return 0, err
		}
		u |= uint64(b[0]&0x7F) << shift
		if b[0]&varintContinueBit == 0 {
			break
		}
		shift += 7
	}
	return int64((u >> 1) ^ -(u & 1)), nil
}

///////////////////////////////////////////////////////////////////////////////

// bigLongCodec encodes through math/big, for hosts that cannot carry the
// full signed 64-bit range natively.  Wire output matches nativeLongCodec
// bit for bit.
type bigLongCodec struct{}

// BigLongCodec returns the math/big-backed LongCodec.
func BigLongCodec() LongCodec {
	return bigLongCodec{}
}

func (bigLongCodec) EncodeLong(n int64) []byte {
	v := big.NewInt(n)
	// zig-zag: (n << 1) XOR (n >> 63)
	shifted := new(big.Int).Lsh(v, 1)
	sign := new(big.Int).Rsh(v, 63)
	u := new(big.Int).Xor(shifted, sign)
	u.And(u, maxUint64Mask)

	buf := make([]byte, 0, 10)
	for u.Cmp(bigContinue) >= 0 {
		var low big.Int
		low.And(u, bigLow7)
		buf = append(buf, byte(low.Uint64())|varintContinueBit)
		u.Rsh(u, 7)
	}
	return append(buf, byte(u.Uint64()))
}

func (bigLongCodec) DecodeLong(stream Stream) (int64, error) {
	u := new(big.Int)
	var shift uint
	for {
		b, err := stream.Read(1)
		if err != nil {
			return 0, err
		}
		group := big.NewInt(int64(b[0] & 0x7F))
		u.Or(u, group.Lsh(group, shift))
		if b[0]&varintContinueBit == 0 {
			break
		}
		shift += 7
	}
	// un-zig-zag: (u >> 1) XOR -(u AND 1)
	half := new(big.Int).Rsh(u, 1)
	parity := new(big.Int).And(u, bigOne)
	parity.Neg(parity)
	half.Xor(half, parity)
	return half.Int64(), nil
}

var (
	bigOne        = big.NewInt(1)
	bigLow7       = big.NewInt(0x7F)
	bigContinue   = big.NewInt(varintContinueBit)
	maxUint64Mask = new(big.Int).SetUint64(^uint64(0))
)
