// Copyright (c) 2025 Neomantra Corp

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/valyala/fastjson"

	avro "github.com/NimbleMarkets/avro-go"
	"github.com/NimbleMarkets/avro-go/internal/jsonval"
)

///////////////////////////////////////////////////////////////////////////////

type Config struct {
	SchemaFilename string
	Files          []string
	Verbose        bool
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	var config Config
	var showHelp bool

	pflag.StringVarP(&config.SchemaFilename, "schema", "s", "", "Schema file to validate against")
	pflag.BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	config.Files = pflag.Args()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s -s <schema> file1 file2 ...\n\n", os.Args[0])
		fmt.Fprintf(os.Stdout, "Validates files of JSON datum lines against a schema.\n\n")
		pflag.PrintDefaults()
		os.Exit(0)
	}

	requireValOrExit(config.SchemaFilename, "missing required --schema")
	if len(config.Files) == 0 {
		fmt.Fprintf(os.Stderr, "requires at least one file argument\n")
		os.Exit(1)
	}

	if err := run(config); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

// requireValOrExit exits with an error message if `val` is empty.
func requireValOrExit(val string, errstr string) {
	if val == "" {
		fmt.Fprintf(os.Stderr, "%s\n", errstr)
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

func run(config Config) error {
	schemaText, err := os.ReadFile(config.SchemaFilename)
	if err != nil {
		return err
	}
	schema, err := avro.ParseSchema(string(schemaText))
	if err != nil {
		return err
	}

	numBad := 0
	for _, filename := range config.Files {
		bad, err := validateFile(schema, filename, config.Verbose)
		if err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
		numBad += bad
	}
	if numBad > 0 {
		return fmt.Errorf("%d invalid datums", numBad)
	}
	return nil
}

func validateFile(schema avro.Schema, filename string, verbose bool) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var parser fastjson.Parser
	numBad, lineNum := 0, 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		value, err := parser.ParseBytes(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s:%d: bad JSON: %s\n", filename, lineNum, err.Error())
			numBad++
			continue
		}
		datum, err := jsonval.FromJSON(schema, value)
		if err != nil || !avro.IsValidDatum(schema, datum) {
			fmt.Fprintf(os.Stderr, "%s:%d: does not conform to schema\n", filename, lineNum)
			numBad++
			continue
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "%s:%d: ok\n", filename, lineNum)
		}
	}
	return numBad, scanner.Err()
}
