// Copyright (c) 2025 Neomantra Corp

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"

	avro "github.com/NimbleMarkets/avro-go"
	"github.com/NimbleMarkets/avro-go/internal/jsonval"
)

///////////////////////////////////////////////////////////////////////////////

var (
	verbose bool

	schemaFilename string
	readerFilename string // optional reader's schema for resolution
	outFilename    string

	forceZstdInput = false // force input to be zstd, irrespective of filename suffix
	sizedBlocks    = false // emit size-prefixed container blocks
)

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func requireNoErrorWithoutPrint(err error) {
	if err != nil {
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(schemaCmd)

	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&schemaFilename, "schema", "s", "", "Writer's schema file")
	dumpCmd.Flags().StringVarP(&readerFilename, "reader", "r", "", "Reader's schema file (defaults to the writer's)")
	dumpCmd.Flags().BoolVarP(&forceZstdInput, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")
	dumpCmd.MarkFlagRequired("schema")

	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVarP(&schemaFilename, "schema", "s", "", "Writer's schema file")
	encodeCmd.Flags().StringVarP(&outFilename, "out", "o", "-", "Destination file, '-' for stdout")
	encodeCmd.Flags().BoolVarP(&sizedBlocks, "sized-blocks", "b", false, "Emit size-prefixed container blocks")
	encodeCmd.MarkFlagRequired("schema")

	err := rootCmd.Execute()
	requireNoErrorWithoutPrint(err)
}

///////////////////////////////////////////////////////////////////////////////

var rootCmd = &cobra.Command{
	Use:   "avro-go-file",
	Short: "avro-go-file processes raw Avro binary streams",
	Long:  "avro-go-file processes raw Avro binary streams",
}

///////////////////////////////////////////////////////////////////////////////

var schemaCmd = &cobra.Command{
	Use:   "schema file...",
	Short: `Parses the specified schema files and prints them as schema JSON`,
	Long:  `Parses the specified schema files and prints them as schema JSON`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, sourceFile := range args {
			schema, err := loadSchema(sourceFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
				continue
			}
			fmt.Fprintln(os.Stdout, schema.String())
		}
	},
}

func loadSchema(filename string) (avro.Schema, error) {
	text, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return avro.ParseSchema(string(text))
}

///////////////////////////////////////////////////////////////////////////////

var dumpCmd = &cobra.Command{
	Use:   "dump file...",
	Short: `Decodes the specified files and prints each datum as a JSON line`,
	Long:  `Decodes the specified files and prints each datum as a JSON line`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		writerSchema, err := loadSchema(schemaFilename)
		requireNoError(err)

		opts := []avro.DecoderOption{}
		if readerFilename != "" {
			readerSchema, err := loadSchema(readerFilename)
			requireNoError(err)
			opts = append(opts, avro.WithReaderSchema(readerSchema))
		}

		for _, sourceFile := range args {
			if err := dumpFile(writerSchema, sourceFile, opts); err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

func dumpFile(writerSchema avro.Schema, sourceFile string, opts []avro.DecoderOption) error {
	stream, closer, err := avro.OpenStream(sourceFile, forceZstdInput)
	if err != nil {
		return err
	}
	defer closer()

	decoder, err := avro.NewDecoder(writerSchema, stream, opts...)
	if err != nil {
		return err
	}

	numDatums := 0
	for {
		datum, err := decoder.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		line, err := json.Marshal(jsonval.ToJSON(datum))
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(line))
		numDatums++
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%s: %d datums, %s\n",
			sourceFile, numDatums, humanize.Bytes(uint64(stream.Tell())))
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

var encodeCmd = &cobra.Command{
	Use:   "encode file...",
	Short: `Encodes files of JSON lines as a raw Avro binary stream`,
	Long:  `Encodes files of JSON lines as a raw Avro binary stream`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		writerSchema, err := loadSchema(schemaFilename)
		requireNoError(err)

		stream, closer, err := avro.CreateStream(outFilename, false)
		requireNoError(err)
		defer closer()

		opts := []avro.EncoderOption{}
		if sizedBlocks {
			opts = append(opts, avro.WithBlockSizePrefix())
		}
		encoder, err := avro.NewEncoder(writerSchema, stream, opts...)
		requireNoError(err)

		numDatums := 0
		for _, sourceFile := range args {
			n, err := encodeFile(encoder, writerSchema, sourceFile)
			requireNoError(err)
			numDatums += n
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "%d datums, %s\n",
				numDatums, humanize.Bytes(uint64(stream.Tell())))
		}
	},
}

func encodeFile(encoder *avro.Encoder, writerSchema avro.Schema, sourceFile string) (int, error) {
	file, err := os.Open(sourceFile)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var parser fastjson.Parser
	numDatums := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		value, err := parser.ParseBytes(line)
		if err != nil {
			return numDatums, err
		}
		datum, err := jsonval.FromJSON(writerSchema, value)
		if err != nil {
			return numDatums, err
		}
		if err := encoder.Write(datum); err != nil {
			return numDatums, err
		}
		numDatums++
	}
	return numDatums, scanner.Err()
}
