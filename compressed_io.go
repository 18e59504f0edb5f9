// Copyright (c) 2025 Neomantra Corp
// Stream compression helpers.
//
// Raw Avro binary data compresses well and commonly travels as
// `.avro.zst`; these helpers open files (or stdin/stdout) as codec-ready
// Streams, layering zstd where the name or the leading frame magic says so.

package avro

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

///////////////////////////////////////////////////////////////////////////////

// zstdMagic leads every zstd frame.
var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

func zstdFilename(filename string) bool {
	return strings.HasSuffix(filename, ".zst") || strings.HasSuffix(filename, ".zstd")
}

// CreateStream opens filename for encoding, or os.Stdout when filename is
// "-", returning an append-only Stream and a closing function to defer.
// Output is zstd-compressed when useZstd is true or the filename carries a
// zstd suffix.
func CreateStream(filename string, useZstd bool) (Stream, func(), error) {
	sink := io.Writer(os.Stdout)
	closeFile := func() {}
	if filename != "-" {
		file, err := os.Create(filename)
		if err != nil {
			return nil, nil, err
		}
		sink = file
		closeFile = func() { file.Close() }
	}

	if !useZstd && !zstdFilename(filename) {
		return NewWriterStream(sink), closeFile, nil
	}
	zstdWriter, err := zstd.NewWriter(sink)
	if err != nil {
		closeFile()
		return nil, nil, err
	}
	closeAll := func() {
		zstdWriter.Close()
		closeFile()
	}
	return NewWriterStream(zstdWriter), closeAll, nil
}

// OpenStream opens filename for decoding, or os.Stdin when filename is
// "-", returning a forward-only Stream and a closing function to defer.
// Input is zstd-decompressed when useZstd is true, when the filename
// carries a zstd suffix, or when the stream leads with the zstd frame
// magic.
func OpenStream(filename string, useZstd bool) (Stream, func(), error) {
	source := io.Reader(os.Stdin)
	closeFile := func() {}
	if filename != "-" {
		file, err := os.Open(filename)
		if err != nil {
			return nil, nil, err
		}
		source = file
		closeFile = func() { file.Close() }
	}

	buffered := bufio.NewReader(source)
	if zstdFilename(filename) {
		useZstd = true
	}
	if !useZstd {
		// Peek errors mean a short stream; the decoder surfaces those.
		head, err := buffered.Peek(len(zstdMagic))
		useZstd = err == nil && [4]byte(head) == zstdMagic
	}

	if !useZstd {
		return NewReaderStream(buffered), closeFile, nil
	}
	zstdReader, err := zstd.NewReader(buffered)
	if err != nil {
		closeFile()
		return nil, nil, err
	}
	closeAll := func() {
		zstdReader.Close()
		closeFile()
	}
	return NewReaderStream(zstdReader), closeAll, nil
}
