// Copyright (c) 2025 Neomantra Corp

package avro_test

import (
	"math"

	avro "github.com/NimbleMarkets/avro-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Primitives", func() {
	roundTrip := func(schemaText string, datum any) any {
		schema := mustParse(schemaText)
		return decodeDatum(schema, encodeDatum(schema, datum))
	}

	Context("round-trips", func() {
		It("null is zero bytes on the wire", func() {
			schema := mustParse(`"null"`)
			Expect(encodeDatum(schema, nil)).To(BeEmpty())
			Expect(decodeDatum(schema, nil)).To(BeNil())
		})

		It("booleans are single bytes", func() {
			schema := mustParse(`"boolean"`)
			Expect(encodeDatum(schema, true)).To(Equal([]byte{0x01}))
			Expect(encodeDatum(schema, false)).To(Equal([]byte{0x00}))
			Expect(roundTrip(`"boolean"`, true)).To(Equal(true))
			Expect(roundTrip(`"boolean"`, false)).To(Equal(false))
		})

		It("ints round-trip at the boundaries", func() {
			for _, n := range []int32{0, 1, -1, math.MaxInt32, math.MinInt32} {
				Expect(roundTrip(`"int"`, n)).To(Equal(n))
			}
		})

		It("longs round-trip at the boundaries", func() {
			for _, n := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
				Expect(roundTrip(`"long"`, n)).To(Equal(n))
			}
		})

		It("floats round-trip including non-finite values", func() {
			for _, f := range []float32{0, 1.5, -2.25, math.MaxFloat32, math.SmallestNonzeroFloat32} {
				Expect(roundTrip(`"float"`, f)).To(Equal(f))
			}
			nan := roundTrip(`"float"`, float32(math.NaN())).(float32)
			Expect(math.IsNaN(float64(nan))).To(BeTrue())
			Expect(roundTrip(`"float"`, float32(math.Inf(1)))).To(Equal(float32(math.Inf(1))))
			Expect(roundTrip(`"float"`, float32(math.Inf(-1)))).To(Equal(float32(math.Inf(-1))))

			negZero := roundTrip(`"float"`, float32(math.Copysign(0, -1))).(float32)
			Expect(math.Signbit(float64(negZero))).To(BeTrue())
		})

		It("doubles round-trip including non-finite values", func() {
			for _, f := range []float64{0, 1.5, -2.25, math.MaxFloat64, math.SmallestNonzeroFloat64} {
				Expect(roundTrip(`"double"`, f)).To(Equal(f))
			}
			nan := roundTrip(`"double"`, math.NaN()).(float64)
			Expect(math.IsNaN(nan)).To(BeTrue())
			Expect(roundTrip(`"double"`, math.Inf(1))).To(Equal(math.Inf(1)))

			negZero := roundTrip(`"double"`, math.Copysign(0, -1)).(float64)
			Expect(math.Signbit(negZero)).To(BeTrue())
		})

		It("floats are four little-endian bytes", func() {
			Expect(encodeDatum(mustParse(`"float"`), float32(1.0))).To(
				Equal([]byte{0x00, 0x00, 0x80, 0x3F}))
		})

		It("doubles are eight little-endian bytes", func() {
			Expect(encodeDatum(mustParse(`"double"`), float64(1.0))).To(
				Equal([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F}))
		})

		It("strings and bytes round-trip, including empty", func() {
			Expect(roundTrip(`"string"`, "")).To(Equal(""))
			Expect(roundTrip(`"string"`, "héllo")).To(Equal("héllo"))
			Expect(roundTrip(`"bytes"`, []byte{})).To(Equal([]byte{}))
			Expect(roundTrip(`"bytes"`, []byte{0x00, 0xFF, 0x7F})).To(Equal([]byte{0x00, 0xFF, 0x7F}))
		})

		It("strings are length-prefixed UTF-8", func() {
			Expect(encodeDatum(mustParse(`"string"`), "hi")).To(Equal([]byte{0x04, 'h', 'i'}))
		})
	})

	Context("validation", func() {
		It("rejects a mistyped datum at write time", func() {
			stream := avro.NewBufferStream()
			encoder, err := avro.NewEncoder(mustParse(`"int"`), stream)
			Expect(err).To(BeNil())
			Expect(encoder.Write("nope")).To(MatchError(avro.ErrDatumTypeMismatch))
		})

		It("rejects an out-of-range int at write time", func() {
			stream := avro.NewBufferStream()
			encoder, err := avro.NewEncoder(mustParse(`"int"`), stream)
			Expect(err).To(BeNil())
			Expect(encoder.Write(int64(math.MaxInt32) + 1)).To(MatchError(avro.ErrDatumTypeMismatch))
		})

		It("accepts integer-valued inputs for int and long", func() {
			Expect(roundTrip(`"int"`, 41).(int32)).To(Equal(int32(41)))
			Expect(roundTrip(`"long"`, int32(41)).(int64)).To(Equal(int64(41)))
		})
	})
})
