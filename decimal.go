// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"fmt"
	"math/big"
)

///////////////////////////////////////////////////////////////////////////////

// The decimal logical type carries an unscaled integer u on the wire, where
// the application value is u / 10^scale.  The wire form is the shortest
// two's-complement byte string representing u (at least one byte).

var bigTen = big.NewInt(10)

// decimalUnscaled converts an application datum to its unscaled integer,
// rounding half away from zero, and range-checks it against precision.
func decimalUnscaled(datum any, precision int, scale int) (*big.Int, error) {
	rat, err := decimalRat(datum)
	if err != nil {
		return nil, err
	}
	scaled := new(big.Rat).Mul(rat, new(big.Rat).SetInt(pow10(scale)))
	unscaled := ratRoundHalfAway(scaled)

	limit := pow10(precision)
	if new(big.Int).Abs(unscaled).Cmp(limit) >= 0 {
		return nil, fmt.Errorf("%w: |%s| >= 10^%d", ErrDecimalOutOfRange, unscaled.String(), precision)
	}
	return unscaled, nil
}

// decimalRat widens the accepted numeric datum forms to a rational.
func decimalRat(datum any) (*big.Rat, error) {
	switch v := datum.(type) {
	case *big.Rat:
		return v, nil
	case float64:
		rat := new(big.Rat)
		if _, ok := rat.SetString(fmt.Sprintf("%v", v)); !ok {
			return nil, fmt.Errorf("%w: non-finite float", ErrDecimalOutOfRange)
		}
		return rat, nil
	case float32:
		return decimalRat(float64(v))
	case int:
		return new(big.Rat).SetInt64(int64(v)), nil
	case int32:
		return new(big.Rat).SetInt64(int64(v)), nil
	case int64:
		return new(big.Rat).SetInt64(v), nil
	default:
		return nil, fmt.Errorf("%w: non-numeric %T", ErrDecimalOutOfRange, datum)
	}
}

// ratRoundHalfAway rounds a rational to the nearest integer, ties away
// from zero.
func ratRoundHalfAway(r *big.Rat) *big.Int {
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()

	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	rem.Lsh(rem, 1)
	if rem.Cmp(den) >= 0 {
		quo.Add(quo, bigOne)
	}
	if r.Sign() < 0 {
		quo.Neg(quo)
	}
	return quo
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

///////////////////////////////////////////////////////////////////////////////

// encodeDecimalMinimal returns the shortest two's-complement byte string
// representing unscaled: no redundant 0x00 for non-negatives whose next
// byte's high bit is clear, no redundant 0xFF for negatives whose next
// byte's high bit is set.
func encodeDecimalMinimal(unscaled *big.Int) []byte {
	size := 1
	for !fitsSignedBytes(unscaled, size) {
		size++
	}
	return twosComplementBytes(unscaled, size)
}

// encodeDecimalFixed returns unscaled sign-extended to exactly size bytes.
func encodeDecimalFixed(unscaled *big.Int, size int) ([]byte, error) {
	if !fitsSignedBytes(unscaled, size) {
		return nil, fmt.Errorf("%w: %s does not fit in %d bytes", ErrDecimalOutOfRange, unscaled.String(), size)
	}
	return twosComplementBytes(unscaled, size), nil
}

// fitsSignedBytes reports whether v is representable in size bytes of
// two's complement.
func fitsSignedBytes(v *big.Int, size int) bool {
	limit := new(big.Int).Lsh(bigOne, uint(8*size-1))
	if v.Sign() < 0 {
		return new(big.Int).Neg(limit).Cmp(v) <= 0
	}
	return v.Cmp(limit) < 0
}

// twosComplementBytes packs v into size bytes, big-endian.
func twosComplementBytes(v *big.Int, size int) []byte {
	out := make([]byte, size)
	if v.Sign() >= 0 {
		v.FillBytes(out)
		return out
	}
	wrapped := new(big.Int).Add(v, new(big.Int).Lsh(bigOne, uint(8*size)))
	wrapped.FillBytes(out)
	return out
}

// decodeDecimal interprets raw as a big-endian two's-complement integer
// and applies the scale, returning the application value as a rational.
func decodeDecimal(raw []byte, scale int) *big.Rat {
	unscaled := new(big.Int).SetBytes(raw)
	if len(raw) > 0 && raw[0]&0x80 != 0 {
		unscaled.Sub(unscaled, new(big.Int).Lsh(bigOne, uint(8*len(raw))))
	}
	rat := new(big.Rat).SetInt(unscaled)
	if scale > 0 {
		rat.Quo(rat, new(big.Rat).SetInt(pow10(scale)))
	}
	return rat
}
