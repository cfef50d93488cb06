package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAllLines(t *testing.T, path string) []string {
	t.Helper()
	lr, err := OpenLineReader(path)
	require.NoError(t, err)
	defer lr.Close()

	var lines []string
	for lr.Scan() {
		lines = append(lines, string(lr.Bytes()))
	}
	require.NoError(t, lr.Err())
	return lines
}

func TestLineReader_Plain(t *testing.T) {
	path := writeTestFile(t, "plain.txt", "one\ntwo\n\nfour\n")
	assert.Equal(t, []string{"one", "two", "", "four"}, readAllLines(t, path))
}

func TestLineReader_CRLF(t *testing.T) {
	path := writeTestFile(t, "crlf.txt", "one\r\ntwo\r\n")
	assert.Equal(t, []string{"one", "two"}, readAllLines(t, path))
}

func TestLineReader_NoTrailingNewline(t *testing.T) {
	path := writeTestFile(t, "chopped.txt", "one\ntwo")
	assert.Equal(t, []string{"one", "two"}, readAllLines(t, path))
}

func TestLineReader_Gzip(t *testing.T) {
	path := writeTestGzip(t, "lines.txt.gz", "one\ntwo\n")
	assert.Equal(t, []string{"one", "two"}, readAllLines(t, path))
}

func TestLineReader_MissingFile(t *testing.T) {
	_, err := OpenLineReader(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLineReader_NotGzip(t *testing.T) {
	// A .gz suffix on a plain file is an open error, not silent garbage.
	path := writeTestFile(t, "fake.gz", "not actually gzip\n")
	_, err := OpenLineReader(path)
	require.Error(t, err)
}
