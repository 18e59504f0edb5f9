// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"io"
	"os"
)

///////////////////////////////////////////////////////////////////////////////

// Stream is the byte source/sink the codec reads from and writes to.
// Streams are owned by the caller; encoders and decoders only borrow them.
// Whence values for Seek are the standard io.SeekStart/SeekCurrent/SeekEnd.
type Stream interface {
	// Read returns exactly n bytes or an error.  A short source must
	// surface io.ErrUnexpectedEOF (or io.EOF when nothing was read).
	Read(n int) ([]byte, error)

	// Write appends p to the stream.
	Write(p []byte) (int, error)

	// Seek moves the cursor and returns the new absolute position.
	Seek(offset int64, whence int) (int64, error)

	// Tell returns the current cursor position.
	Tell() int64
}

///////////////////////////////////////////////////////////////////////////////

// BufferStream is an in-memory, seekable Stream.
type BufferStream struct {
	buf []byte
	pos int64
}

// NewBufferStream creates an empty BufferStream, ready for encoding.
func NewBufferStream() *BufferStream {
	return &BufferStream{}
}

// NewBufferStreamBytes creates a BufferStream positioned at the start of data.
// The stream takes no copy; the caller must not mutate data while decoding.
func NewBufferStreamBytes(data []byte) *BufferStream {
	return &BufferStream{buf: data}
}

// Bytes returns the full contents of the stream, independent of the cursor.
func (b *BufferStream) Bytes() []byte {
	return b.buf
}

// Len returns the total number of bytes held by the stream.
func (b *BufferStream) Len() int {
	return len(b.buf)
}

func (b *BufferStream) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	remain := int64(len(b.buf)) - b.pos
	if remain <= 0 && n > 0 {
		return nil, io.EOF
	}
	if int64(n) > remain {
		b.pos = int64(len(b.buf))
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, b.buf[b.pos:b.pos+int64(n)])
	b.pos += int64(n)
	return out, nil
}

func (b *BufferStream) Write(p []byte) (int, error) {
	// Writes land at the cursor, overwriting then extending.
	end := b.pos + int64(len(p))
	if end > int64(len(b.buf)) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *BufferStream) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = b.pos + offset
	case io.SeekEnd:
		next = int64(len(b.buf)) + offset
	default:
		return b.pos, ErrStreamNotSeekable
	}
	if next < 0 {
		return b.pos, ErrStreamNotSeekable
	}
	b.pos = next
	return b.pos, nil
}

func (b *BufferStream) Tell() int64 {
	return b.pos
}

///////////////////////////////////////////////////////////////////////////////

// FileStream adapts an os.File to the Stream interface.
// The file remains owned by the caller and is not closed by the stream.
type FileStream struct {
	file *os.File
}

// NewFileStream creates a FileStream over an open file.
func NewFileStream(file *os.File) *FileStream {
	return &FileStream{file: file}
}

func (f *FileStream) Read(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(f.file, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FileStream) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

func (f *FileStream) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

func (f *FileStream) Tell() int64 {
	pos, err := f.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	return pos
}

///////////////////////////////////////////////////////////////////////////////

// ReaderStream adapts a forward-only io.Reader (such as a zstd decompressor)
// to the Stream interface.  Seeking is supported only forward from the
// current position, by discarding bytes; that is all the skip path needs.
type ReaderStream struct {
	reader io.Reader
	pos    int64
}

// NewReaderStream creates a ReaderStream over reader.
func NewReaderStream(reader io.Reader) *ReaderStream {
	return &ReaderStream{reader: reader}
}

func (r *ReaderStream) Read(n int) ([]byte, error) {
	out := make([]byte, n)
	numRead, err := io.ReadFull(r.reader, out)
	r.pos += int64(numRead)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReaderStream) Write(p []byte) (int, error) {
	return 0, ErrStreamReadOnly
}

func (r *ReaderStream) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekCurrent || offset < 0 {
		return r.pos, ErrStreamNotSeekable
	}
	discarded, err := io.CopyN(io.Discard, r.reader, offset)
	r.pos += discarded
	return r.pos, err
}

func (r *ReaderStream) Tell() int64 {
	return r.pos
}

///////////////////////////////////////////////////////////////////////////////

// WriterStream adapts an append-only io.Writer (such as a zstd compressor)
// to the Stream interface.
type WriterStream struct {
	writer io.Writer
	pos    int64
}

// NewWriterStream creates a WriterStream over writer.
func NewWriterStream(writer io.Writer) *WriterStream {
	return &WriterStream{writer: writer}
}

func (w *WriterStream) Read(n int) ([]byte, error) {
	return nil, ErrStreamWriteOnly
}

func (w *WriterStream) Write(p []byte) (int, error) {
	numWritten, err := w.writer.Write(p)
	w.pos += int64(numWritten)
	return numWritten, err
}

func (w *WriterStream) Seek(offset int64, whence int) (int64, error) {
	return w.pos, ErrStreamNotSeekable
}

func (w *WriterStream) Tell() int64 {
	return w.pos
}
