// Copyright (c) 2025 Neomantra Corp

package avro_test

import (
	"io"

	avro "github.com/NimbleMarkets/avro-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decoder", func() {
	Context("schema resolution", func() {
		It("defaults the reader's schema to the writer's", func() {
			schema := mustParse(`"long"`)
			decoder, err := avro.NewDecoder(schema, avro.NewBufferStreamBytes([]byte{0x02}))
			Expect(err).To(BeNil())
			Expect(decoder.ReaderSchema()).To(Equal(schema))
		})

		It("refuses an incompatible pair at construction", func() {
			_, err := avro.NewDecoder(mustParse(`"string"`), avro.NewBufferStream(),
				avro.WithReaderSchema(mustParse(`"int"`)))
			Expect(err).To(MatchError(avro.ErrSchemaIncompatible))
		})

		It("promotes int to long, float and double", func() {
			wire := encodeDatum(mustParse(`"int"`), int32(41))
			Expect(decodeDatum(mustParse(`"int"`), wire,
				avro.WithReaderSchema(mustParse(`"long"`)))).To(Equal(int64(41)))
			Expect(decodeDatum(mustParse(`"int"`), wire,
				avro.WithReaderSchema(mustParse(`"float"`)))).To(Equal(float32(41)))
			Expect(decodeDatum(mustParse(`"int"`), wire,
				avro.WithReaderSchema(mustParse(`"double"`)))).To(Equal(float64(41)))
		})

		It("promotes long to float and double", func() {
			wire := encodeDatum(mustParse(`"long"`), int64(1)<<30)
			Expect(decodeDatum(mustParse(`"long"`), wire,
				avro.WithReaderSchema(mustParse(`"float"`)))).To(Equal(float32(1 << 30)))
			Expect(decodeDatum(mustParse(`"long"`), wire,
				avro.WithReaderSchema(mustParse(`"double"`)))).To(Equal(float64(1 << 30)))
		})

		It("promotes float to double", func() {
			wire := encodeDatum(mustParse(`"float"`), float32(1.5))
			Expect(decodeDatum(mustParse(`"float"`), wire,
				avro.WithReaderSchema(mustParse(`"double"`)))).To(Equal(float64(1.5)))
		})

		It("selects the writer's branch by wire tag under an unchanged reader", func() {
			writer := mustParse(`["null","int","string"]`)
			wire := encodeDatum(writer, "hey")
			Expect(decodeDatum(writer, wire)).To(Equal("hey"))
		})

		It("absorbs a non-union writer into a reader union", func() {
			writer := mustParse(`"string"`)
			reader := mustParse(`["int","string"]`)
			wire := encodeDatum(writer, "s")
			Expect(decodeDatum(writer, wire, avro.WithReaderSchema(reader))).To(Equal("s"))
		})

		It("fails a union branch index outside the writer's union", func() {
			decoder, err := avro.NewDecoder(mustParse(`["null","int"]`),
				avro.NewBufferStreamBytes([]byte{0x08}))
			Expect(err).To(BeNil())
			_, err = decoder.Read()
			Expect(err).To(MatchError(avro.ErrBadBranchIndex))
		})
	})

	Context("containers", func() {
		It("decodes negative-count blocks with byte sizes", func() {
			schema := mustParse(`{"type":"array","items":"int"}`)
			// count -3, byte size 3, items 1 2 3, terminator
			wire := []byte{0x05, 0x06, 0x02, 0x04, 0x06, 0x00}
			Expect(decodeDatum(schema, wire)).To(Equal([]any{int32(1), int32(2), int32(3)}))
		})

		It("decodes multiple blocks into one sequence", func() {
			schema := mustParse(`{"type":"array","items":"int"}`)
			wire := []byte{0x02, 0x02, 0x02, 0x04, 0x00} // block of 1, block of 1, terminator
			Expect(decodeDatum(schema, wire)).To(Equal([]any{int32(1), int32(2)}))
		})

		It("decodes an empty container", func() {
			Expect(decodeDatum(mustParse(`{"type":"array","items":"int"}`), []byte{0x00})).To(
				Equal([]any{}))
			Expect(decodeDatum(mustParse(`{"type":"map","values":"int"}`), []byte{0x00})).To(
				Equal(map[string]any{}))
		})
	})

	Context("skip", func() {
		skipPosition := func(schemaText string, datum any, opts ...avro.EncoderOption) {
			schema := mustParse(schemaText)
			wire := encodeDatum(schema, datum, opts...)

			full := avro.NewBufferStreamBytes(wire)
			reader, err := avro.NewDecoder(schema, full)
			Expect(err).To(BeNil())
			_, err = reader.Read()
			Expect(err).To(BeNil())

			skipped := avro.NewBufferStreamBytes(wire)
			skipper, err := avro.NewDecoder(schema, skipped)
			Expect(err).To(BeNil())
			Expect(skipper.Skip()).To(BeNil())

			Expect(skipped.Tell()).To(Equal(full.Tell()))
		}

		It("advances exactly as far as a full read", func() {
			skipPosition(`"long"`, int64(123456789))
			skipPosition(`"string"`, "skip me")
			skipPosition(`"double"`, 2.5)
			skipPosition(`{"type":"array","items":"string"}`, []any{"a", "bb", "ccc"})
			skipPosition(`{"type":"map","values":"long"}`, map[string]any{"k1": int64(1), "k2": int64(2)})
			skipPosition(`{"type":"record","name":"R","fields":[
				{"name":"a","type":"int"},{"name":"b","type":["null","string"]}]}`,
				map[string]any{"a": int32(1), "b": "x"})
			skipPosition(`{"type":"fixed","name":"Quad","size":4}`, []byte{9, 9, 9, 9})
			skipPosition(`{"type":"enum","name":"E","symbols":["A","B"]}`, "B")
		})

		It("skips size-prefixed blocks by seeking", func() {
			skipPosition(`{"type":"array","items":"string"}`, []any{"a", "bb", "ccc"},
				avro.WithBlockSizePrefix())
		})

		It("drops writer fields the reader does not declare", func() {
			writer := mustParse(`{"type":"record","name":"R","fields":[
				{"name":"a","type":"int"},{"name":"b","type":"string"}]}`)
			reader := mustParse(`{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)

			stream := avro.NewBufferStreamBytes(encodeDatum(writer, map[string]any{"a": int32(7), "b": "drop"}))
			decoder, err := avro.NewDecoder(writer, stream, avro.WithReaderSchema(reader))
			Expect(err).To(BeNil())

			datum, err := decoder.Read()
			Expect(err).To(BeNil())
			Expect(datum).To(Equal(map[string]any{"a": int32(7)}))

			// The dropped field's bytes were consumed.
			_, err = decoder.Read()
			Expect(err).To(Equal(io.EOF))
		})
	})

	Context("defaults", func() {
		It("fails when a missing reader field has no default", func() {
			writer := mustParse(`{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
			reader := mustParse(`{"type":"record","name":"R","fields":[
				{"name":"a","type":"int"},{"name":"b","type":"string"}]}`)

			decoder, err := avro.NewDecoder(writer, avro.NewBufferStreamBytes([]byte{0x0A}),
				avro.WithReaderSchema(reader))
			Expect(err).To(BeNil())
			_, err = decoder.Read()
			Expect(err).To(MatchError(avro.ErrMissingDefault))
		})

		It("materializes defaults across kinds", func() {
			writer := mustParse(`{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
			reader := mustParse(`{"type":"record","name":"R","fields":[
				{"name":"a","type":"int"},
				{"name":"n","type":"long","default":9},
				{"name":"f","type":"double","default":1.5},
				{"name":"u","type":["null","string"],"default":null},
				{"name":"e","type":{"type":"enum","name":"E","symbols":["ON","OFF"]},"default":"OFF"},
				{"name":"xs","type":{"type":"array","items":"int"},"default":[1,2]},
				{"name":"kv","type":{"type":"map","values":"string"},"default":{"k":"v"}}]}`)

			datum := decodeDatum(writer, []byte{0x0A}, avro.WithReaderSchema(reader))
			Expect(datum).To(Equal(map[string]any{
				"a":  int32(5),
				"n":  int64(9),
				"f":  1.5,
				"u":  nil,
				"e":  "OFF",
				"xs": []any{int32(1), int32(2)},
				"kv": map[string]any{"k": "v"},
			}))
		})

		It("types a union default by the first branch", func() {
			writer := mustParse(`{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
			reader := mustParse(`{"type":"record","name":"R","fields":[
				{"name":"a","type":"int"},
				{"name":"s","type":["string","null"],"default":"fallback"}]}`)

			datum := decodeDatum(writer, []byte{0x0A}, avro.WithReaderSchema(reader))
			Expect(datum).To(Equal(map[string]any{"a": int32(5), "s": "fallback"}))
		})
	})

	Context("named types", func() {
		It("returns the writer's symbol for an enum index", func() {
			schema := mustParse(`{"type":"enum","name":"E","symbols":["A","B","C"]}`)
			Expect(decodeDatum(schema, []byte{0x02})).To(Equal("B"))
		})

		It("fails when the reader's enum lacks the writer's symbol", func() {
			writer := mustParse(`{"type":"enum","name":"E","symbols":["A","B"]}`)
			reader := mustParse(`{"type":"enum","name":"E","symbols":["A"]}`)

			decoder, err := avro.NewDecoder(writer, avro.NewBufferStreamBytes([]byte{0x02}),
				avro.WithReaderSchema(reader))
			Expect(err).To(BeNil())
			_, err = decoder.Read()
			Expect(err).To(MatchError(avro.ErrBadSymbol))
		})

		It("fails on an enum index outside the writer's symbols", func() {
			schema := mustParse(`{"type":"enum","name":"E","symbols":["A","B"]}`)
			decoder, err := avro.NewDecoder(schema, avro.NewBufferStreamBytes([]byte{0x08}))
			Expect(err).To(BeNil())
			_, err = decoder.Read()
			Expect(err).To(MatchError(avro.ErrBadSymbol))
		})

		It("reads exactly size bytes for fixed", func() {
			schema := mustParse(`{"type":"fixed","name":"Quad","size":4}`)
			Expect(decodeDatum(schema, []byte{4, 3, 2, 1})).To(Equal([]byte{4, 3, 2, 1}))
		})
	})

	Context("booleans", func() {
		It("treats only 0x01 as true", func() {
			schema := mustParse(`"boolean"`)
			Expect(decodeDatum(schema, []byte{0x01})).To(Equal(true))
			Expect(decodeDatum(schema, []byte{0x00})).To(Equal(false))
			Expect(decodeDatum(schema, []byte{0x02})).To(Equal(false))
		})
	})
})
