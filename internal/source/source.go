package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// StdinPath selects standard input instead of a file
const StdinPath = "-"

// DefaultMaxLineBytes bounds a single log line; access lines with long user agents fit easily
const DefaultMaxLineBytes = 1024 * 1024

var gzipMagic = []byte{0x1f, 0x8b}

// reader couples a (possibly decompressing) reader with the underlying file
type reader struct {
	io.Reader
	closers []io.Closer
}

func (r *reader) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open opens a log file for reading. Gzip content is detected from the magic bytes and
// decompressed transparently. "-" reads standard input.
func Open(path string) (io.ReadCloser, error) {
	var file io.ReadCloser
	if path == StdinPath {
		file = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
	}

	buffered := bufio.NewReader(file)
	header, err := buffered.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, fmt.Errorf("failed to read log file %s: %w", path, err)
	}

	if !bytes.Equal(header, gzipMagic) {
		return &reader{Reader: buffered, closers: []io.Closer{file}}, nil
	}

	gzipReader, err := gzip.NewReader(buffered)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
	}

	return &reader{Reader: gzipReader, closers: []io.Closer{file, gzipReader}}, nil
}

// LineReader yields lines of any length. Lines over the byte limit are consumed and
// reported as oversized instead of buffered, so a single huge line cannot stop the scan.
type LineReader struct {
	r         *bufio.Reader
	max       int
	line      []byte
	oversized bool
	err       error
}

// Lines returns a LineReader over r keeping at most maxLineBytes per line
func Lines(r io.Reader, maxLineBytes int) *LineReader {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}

	return &LineReader{
		r:   bufio.NewReaderSize(r, min(64*1024, maxLineBytes)),
		max: maxLineBytes,
	}
}

// Next advances to the following line and reports whether there is one
func (l *LineReader) Next() bool {
	if l.err != nil {
		return false
	}

	l.line = l.line[:0]
	l.oversized = false
	partial := false

	for {
		chunk, err := l.r.ReadSlice('\n')
		if len(chunk) > 0 {
			partial = true
		}

		// Keep room for a trailing \r\n until the terminator is stripped
		if !l.oversized {
			l.line = append(l.line, chunk...)
			if len(l.line) > l.max+2 {
				l.oversized = true
				l.line = l.line[:0]
			}
		}

		switch {
		case err == nil:
			l.finish()
			return true
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			l.err = io.EOF
			if !partial {
				return false
			}
			l.finish()
			return true
		default:
			l.err = err
			return false
		}
	}
}

func (l *LineReader) finish() {
	l.line = bytes.TrimSuffix(l.line, []byte{'\n'})
	l.line = bytes.TrimSuffix(l.line, []byte{'\r'})
	if len(l.line) > l.max {
		l.oversized = true
		l.line = l.line[:0]
	}
}

// Text returns the current line without its terminator; empty for oversized lines
func (l *LineReader) Text() string {
	return string(l.line)
}

// Oversized reports whether the current line exceeded the limit and was dropped
func (l *LineReader) Oversized() bool {
	return l.oversized
}

// Err returns the first read error other than io.EOF
func (l *LineReader) Err() error {
	if errors.Is(l.err, io.EOF) {
		return nil
	}
	return l.err
}
