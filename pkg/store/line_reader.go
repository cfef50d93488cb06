package store

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

const (
	// Sequence lines can be enormous in unwrapped FASTA files.
	lineScanBuffer = 64 * 1024
	maxLineSize    = 64 << 20
)

// LineReader iterates over the logical lines of a plain or gzip-compressed
// text file. Compression is selected by the .gz filename suffix. Lines are
// yielded with the trailing newline and any carriage returns removed.
type LineReader struct {
	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
}

// OpenLineReader opens path for line-at-a-time reading. A missing or
// unreadable file is an error, never a silent empty stream.
func OpenLineReader(path string) (*LineReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	lr := &LineReader{file: file}
	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		lr.gz = gz
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, lineScanBuffer), maxLineSize)
	lr.scanner = scanner
	return lr, nil
}

// Scan advances to the next line. It returns false at end of stream or on
// a read error; check Err after a false return.
func (r *LineReader) Scan() bool {
	return r.scanner.Scan()
}

// Bytes returns the current line with line-ending bytes stripped. The
// returned slice is only valid until the next call to Scan.
func (r *LineReader) Bytes() []byte {
	return bytes.TrimRight(r.scanner.Bytes(), "\r")
}

// Err returns the first error encountered while scanning, if any.
func (r *LineReader) Err() error {
	return r.scanner.Err()
}

// Close releases the underlying file and, for compressed inputs, the
// decompressor.
func (r *LineReader) Close() error {
	if r.gz != nil {
		if err := r.gz.Close(); err != nil {
			r.file.Close()
			return err
		}
	}
	return r.file.Close()
}
