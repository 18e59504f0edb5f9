// Copyright (c) 2025 Neomantra Corp

package avro_test

import (
	avro "github.com/NimbleMarkets/avro-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseSchema", func() {
	Context("accepting", func() {
		It("parses bare primitive names", func() {
			for _, name := range []string{"null", "boolean", "int", "long", "float", "double", "bytes", "string"} {
				schema := mustParse(`"` + name + `"`)
				Expect(schema.Kind().String()).To(Equal(name))
			}
		})

		It("parses the object form of a primitive", func() {
			Expect(mustParse(`{"type":"long"}`).Kind()).To(Equal(avro.KindLong))
		})

		It("parses arrays, maps and unions", func() {
			array, ok := mustParse(`{"type":"array","items":"long"}`).(*avro.ArraySchema)
			Expect(ok).To(BeTrue())
			Expect(array.Element().Kind()).To(Equal(avro.KindLong))

			mapSchema, ok := mustParse(`{"type":"map","values":"string"}`).(*avro.MapSchema)
			Expect(ok).To(BeTrue())
			Expect(mapSchema.ValueType().Kind()).To(Equal(avro.KindString))

			union, ok := mustParse(`["null","int","string"]`).(*avro.UnionSchema)
			Expect(ok).To(BeTrue())
			Expect(union.Branches()).To(HaveLen(3))
			Expect(union.BranchAt(1).Kind()).To(Equal(avro.KindInt))
			Expect(union.BranchAt(3)).To(BeNil())
		})

		It("parses enums with symbol lookups", func() {
			schema := mustParse(`{"type":"enum","name":"Suit","namespace":"cards","symbols":["S","H","C","D"]}`)
			enum, ok := schema.(*avro.EnumSchema)
			Expect(ok).To(BeTrue())
			Expect(enum.Fullname()).To(Equal("cards.Suit"))
			Expect(enum.SymbolIndex("H")).To(Equal(1))
			Expect(enum.SymbolIndex("X")).To(Equal(-1))
			Expect(enum.HasSymbol("D")).To(BeTrue())
			symbol, ok := enum.SymbolAt(2)
			Expect(ok).To(BeTrue())
			Expect(symbol).To(Equal("C"))
		})

		It("parses fixed and decimal annotations", func() {
			fixed, ok := mustParse(`{"type":"fixed","name":"Quad","size":4}`).(*avro.FixedSchema)
			Expect(ok).To(BeTrue())
			Expect(fixed.Size()).To(Equal(4))
			Expect(fixed.LogicalType()).To(Equal(""))

			decimal, ok := mustParse(`{"type":"bytes","logicalType":"decimal","precision":5,"scale":2}`).(*avro.PrimitiveSchema)
			Expect(ok).To(BeTrue())
			Expect(decimal.Kind()).To(Equal(avro.KindBytes))
			Expect(decimal.LogicalType()).To(Equal(avro.LogicalDecimal))
			Expect(decimal.Precision()).To(Equal(5))
			Expect(decimal.Scale()).To(Equal(2))
			Expect(decimal.Attribute("precision")).To(Equal("5"))
		})

		It("defaults decimal scale to zero", func() {
			decimal := mustParse(`{"type":"bytes","logicalType":"decimal","precision":5}`).(*avro.PrimitiveSchema)
			Expect(decimal.Scale()).To(Equal(0))
		})

		It("ignores unrecognized logical types", func() {
			schema := mustParse(`{"type":"long","logicalType":"timestamp-millis"}`)
			Expect(schema.Kind()).To(Equal(avro.KindLong))
			Expect(schema.LogicalType()).To(Equal(""))
		})

		It("parses records with fields and defaults", func() {
			schema := mustParse(`{"type":"record","name":"R","namespace":"ns","fields":[
				{"name":"a","type":"int"},
				{"name":"b","type":"string","default":"x"}]}`)
			record, ok := schema.(*avro.RecordSchema)
			Expect(ok).To(BeTrue())
			Expect(record.Fullname()).To(Equal("ns.R"))
			Expect(record.Fields()).To(HaveLen(2))
			Expect(record.Field("a").HasDefault()).To(BeFalse())
			Expect(record.Field("b").HasDefault()).To(BeTrue())
			Expect(record.Field("b").DefaultValue()).To(Equal("x"))
			Expect(record.FieldsByName()).To(HaveKey("a"))
		})

		It("resolves named references within one document", func() {
			schema := mustParse(`{"type":"record","name":"Node","fields":[
				{"name":"next","type":["null","Node"]}]}`)
			record := schema.(*avro.RecordSchema)
			union := record.Field("next").Type().(*avro.UnionSchema)
			Expect(union.BranchAt(1)).To(BeIdenticalTo(schema))
		})

		It("round-trips through String", func() {
			texts := []string{
				`"long"`,
				`{"type":"array","items":"string"}`,
				`["null","double"]`,
				`{"type":"enum","name":"E","symbols":["A","B"]}`,
				`{"type":"record","name":"R","fields":[{"name":"a","type":"int","default":3}]}`,
			}
			for _, text := range texts {
				schema := mustParse(text)
				again := mustParse(schema.String())
				Expect(again.String()).To(Equal(schema.String()))
			}
		})
	})

	Context("rejecting", func() {
		It("rejects malformed JSON", func() {
			_, err := avro.ParseSchema(`{"type":`)
			Expect(err).To(MatchError(avro.ErrInvalidSchema))
		})

		It("rejects unknown type names", func() {
			_, err := avro.ParseSchema(`"quux"`)
			Expect(err).To(MatchError(avro.ErrInvalidSchema))
		})

		It("rejects a decimal without precision", func() {
			_, err := avro.ParseSchema(`{"type":"bytes","logicalType":"decimal","scale":2}`)
			Expect(err).To(MatchError(avro.ErrDecimalOutOfRange))
		})

		It("rejects a decimal whose scale exceeds its precision", func() {
			_, err := avro.ParseSchema(`{"type":"bytes","logicalType":"decimal","precision":2,"scale":3}`)
			Expect(err).To(MatchError(avro.ErrDecimalOutOfRange))
		})

		It("rejects duplicate enum symbols", func() {
			_, err := avro.ParseSchema(`{"type":"enum","name":"E","symbols":["A","A"]}`)
			Expect(err).To(MatchError(avro.ErrInvalidSchema))
		})

		It("rejects duplicate record fields", func() {
			_, err := avro.ParseSchema(`{"type":"record","name":"R","fields":[
				{"name":"a","type":"int"},{"name":"a","type":"int"}]}`)
			Expect(err).To(MatchError(avro.ErrInvalidSchema))
		})

		It("rejects structural omissions", func() {
			for _, text := range []string{
				`{"type":"array"}`,
				`{"type":"map"}`,
				`{"type":"enum","name":"E"}`,
				`{"type":"fixed","name":"F"}`,
				`{"type":"fixed","size":4}`,
				`{"type":"record","name":"R"}`,
				`{"items":"int"}`,
			} {
				_, err := avro.ParseSchema(text)
				Expect(err).ToNot(BeNil(), "expected error for %s", text)
			}
		})
	})
})
