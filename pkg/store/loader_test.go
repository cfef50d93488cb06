package store

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func writeTestGzip(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestLoadFile_Fasta(t *testing.T) {
	path := writeTestFile(t, "two.fasta",
		">seq1\nGATTACA\n>seq2\nCGCGCGCGCGCGCGCGCGCGCGCGCGCG\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	assert.Equal(t, 2, s.Size())
	assert.Equal(t, "GATTACA", string(s.Get("seq1")))
	assert.Equal(t, "CGCGCGCGCGCGCGCGCGCGCGCGCGCG", string(s.Get("seq2")))
	assert.Equal(t, 11, s.StoredSize("seq1")) // tag + header + ceil(7/4)
	assert.Equal(t, DNAFasta, s.Format())
}

func TestLoadFile_MultilineSequences(t *testing.T) {
	path := writeTestFile(t, "wrapped.fasta",
		">seq1 descriptive text after space\nGATT\nACA\n\n>seq2\nAC\nGT\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	assert.Equal(t, 2, s.Size())
	assert.Equal(t, "GATTACA", string(s.Get("seq1")))
	assert.Equal(t, "ACGT", string(s.Get("seq2")))
	assert.False(t, s.Has("seq1 descriptive text after space"))
}

func TestLoadFile_Fastq(t *testing.T) {
	path := writeTestFile(t, "reads.fastq",
		"@seq1\nGATTACA\n+\n!''*.~~\n@seq2\nTTAACCGG\n+\n!''*+,-.\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	assert.Equal(t, 2, s.Size())

	rec, ok := s.GetFastq("seq1")
	require.True(t, ok)
	assert.Equal(t, "GATTACA", string(rec.Sequence))
	assert.Equal(t, "!''*.~~", string(rec.Quality))

	// Get on a FASTQ record returns its sequence.
	assert.Equal(t, "TTAACCGG", string(s.Get("seq2")))
	assert.Equal(t, "!''*+,-.", string(s.GetQuality("seq2")))
	assert.Equal(t, DNAFastq, s.Format())
}

func TestLoadFile_QualityAtSignHazard(t *testing.T) {
	// Quality strings made entirely of '@' must not be mistaken for
	// record headers.
	path := writeTestFile(t, "hazard.fastq",
		"@r1\nACGT\n+\n@@@@\n@r2\nTGCA\n+\n!!!!\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	assert.Equal(t, 2, s.Size())
	rec, ok := s.GetFastq("r1")
	require.True(t, ok)
	assert.Equal(t, "@@@@", string(rec.Quality))
	rec, ok = s.GetFastq("r2")
	require.True(t, ok)
	assert.Equal(t, "TGCA", string(rec.Sequence))
}

func TestLoadFile_Gzip(t *testing.T) {
	path := writeTestGzip(t, "two.fasta.gz",
		">seq1\nGATTACA\n>seq2\nACGTACGT\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	assert.Equal(t, 2, s.Size())
	assert.Equal(t, "GATTACA", string(s.Get("seq1")))
}

func TestLoadFile_CRLF(t *testing.T) {
	path := writeTestFile(t, "crlf.fastq",
		"@seq1\r\nGATTACA\r\n+\r\n!''*.~~\r\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	rec, ok := s.GetFastq("seq1")
	require.True(t, ok)
	assert.Equal(t, "GATTACA", string(rec.Sequence))
	assert.Equal(t, "!''*.~~", string(rec.Quality))
}

func TestLoadFile_NoTrailingNewline(t *testing.T) {
	path := writeTestFile(t, "chopped.fasta", ">seq1\nGATTACA")

	s := New()
	require.NoError(t, s.LoadFile(path))
	assert.Equal(t, "GATTACA", string(s.Get("seq1")))
}

func TestLoadFile_LeadingBlankLines(t *testing.T) {
	path := writeTestFile(t, "padded.fasta", "\n\n>seq1\nGATTACA\n")

	s := New()
	require.NoError(t, s.LoadFile(path))
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, "GATTACA", string(s.Get("seq1")))
}

func TestLoadFile_SkipsEmptyHeader(t *testing.T) {
	path := writeTestFile(t, "anon.fasta", ">\nGATTACA\n>seq2\nACGT\n")

	s := New()
	require.NoError(t, s.LoadFile(path))
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, "ACGT", string(s.Get("seq2")))
}

func TestLoadFile_SkipsMalformedFastqGroup(t *testing.T) {
	// The second group's separator line is missing its '+'; the group is
	// dropped, the surrounding records survive.
	path := writeTestFile(t, "bad.fastq",
		"@r1\nACGT\n+\n!!!!\n@r2\nTGCA\nXXXX\n????\n@r3\nGGCC\n+\n####\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	assert.True(t, s.Has("r1"))
	assert.False(t, s.Has("r2"))
	assert.True(t, s.Has("r3"))
}

func TestLoadFile_SkipsPartialTrailingFastq(t *testing.T) {
	path := writeTestFile(t, "partial.fastq",
		"@r1\nACGT\n+\n!!!!\n@r2\nTGCA\n+\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	assert.Equal(t, 1, s.Size())
	assert.True(t, s.Has("r1"))
}

func TestLoadFile_UnknownFormat(t *testing.T) {
	path := writeTestFile(t, "notes.txt", "this is not a sequence file\n")

	s := New()
	err := s.LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestLoadFile_EmptyFile(t *testing.T) {
	path := writeTestFile(t, "empty.fasta", "")

	s := New()
	err := s.LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestLoadFile_MissingFile(t *testing.T) {
	s := New()
	err := s.LoadFile(filepath.Join(t.TempDir(), "nope.fasta"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFile_ProteinClassification(t *testing.T) {
	path := writeTestFile(t, "protein.fasta",
		">prot1\nMKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQ\n")

	s := New()
	require.NoError(t, s.LoadFile(path))

	assert.Equal(t, ProteinFasta, s.Format())
	assert.Equal(t, "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQ", string(s.Get("prot1")))
}

func TestLoadFile_RNAClassification(t *testing.T) {
	path := writeTestFile(t, "rna.fasta", ">rna1\nGAUUACA\n")

	s := New()
	require.NoError(t, s.LoadFile(path))
	assert.Equal(t, RNAFasta, s.Format())
}

func TestLoadFile_DuplicateKeyLastWins(t *testing.T) {
	path := writeTestFile(t, "dup.fasta", ">seq1\nAAAA\n>seq1\nCCCC\n")

	s := New()
	require.NoError(t, s.LoadFile(path))
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, "CCCC", string(s.Get("seq1")))
}

func TestLoadFile_MergesIntoExisting(t *testing.T) {
	first := writeTestFile(t, "a.fasta", ">seq1\nAAAA\n")
	second := writeTestFile(t, "b.fasta", ">seq2\nCCCC\n")

	s := New()
	require.NoError(t, s.LoadFile(first))
	require.NoError(t, s.LoadFile(second))

	assert.Equal(t, 2, s.Size())
	assert.Equal(t, "AAAA", string(s.Get("seq1")))
	assert.Equal(t, "CCCC", string(s.Get("seq2")))
}

// synthesizeFasta builds a FASTA file comfortably past the parallel
// threshold, returning the path and the per-id sequences.
func synthesizeFasta(t *testing.T, n int) (string, map[string]string) {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	bases := []byte("ACGTN")

	var buf bytes.Buffer
	want := make(map[string]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("read%d", i)
		seq := make([]byte, 120+rng.Intn(120))
		for j := range seq {
			seq[j] = bases[rng.Intn(len(bases))]
		}
		fmt.Fprintf(&buf, ">%s trimmed comment\n", id)
		// Wrap sequence lines at 70 columns.
		for off := 0; off < len(seq); off += 70 {
			end := off + 70
			if end > len(seq) {
				end = len(seq)
			}
			buf.Write(seq[off:end])
			buf.WriteByte('\n')
		}
		want[id] = string(seq)
	}
	require.Greater(t, buf.Len(), parallelThreshold)
	return writeTestFile(t, "big.fasta", buf.String()), want
}

// synthesizeFastq builds a FASTQ file past the parallel threshold whose
// quality strings all begin with '@' to stress boundary verification.
func synthesizeFastq(t *testing.T, n int) (string, map[string]string) {
	t.Helper()
	rng := rand.New(rand.NewSource(99))
	bases := []byte("ACGT")

	var buf bytes.Buffer
	want := make(map[string]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("read%d", i)
		seq := make([]byte, 150)
		qual := make([]byte, 150)
		for j := range seq {
			seq[j] = bases[rng.Intn(len(bases))]
			qual[j] = '@'
		}
		fmt.Fprintf(&buf, "@%s\n%s\n+\n%s\n", id, seq, qual)
		want[id] = string(seq)
	}
	require.Greater(t, buf.Len(), parallelThreshold)
	return writeTestFile(t, "big.fastq", buf.String()), want
}

func TestLoadFile_ParallelMatchesSerial_Fasta(t *testing.T) {
	path, want := synthesizeFasta(t, 6000)

	serial := NewWithConfig(StoreConfig{MaxWorkers: 1})
	require.NoError(t, serial.LoadFile(path))
	parallel := NewWithConfig(StoreConfig{MaxWorkers: 4})
	require.NoError(t, parallel.LoadFile(path))

	require.Equal(t, len(want), serial.Size())
	require.Equal(t, serial.Size(), parallel.Size())
	for id, seq := range want {
		require.Equal(t, seq, string(serial.Get(id)), "serial %s", id)
		require.Equal(t, seq, string(parallel.Get(id)), "parallel %s", id)
	}
}

func TestLoadFile_ParallelMatchesSerial_Fastq(t *testing.T) {
	path, want := synthesizeFastq(t, 5000)

	serial := NewWithConfig(StoreConfig{MaxWorkers: 1})
	require.NoError(t, serial.LoadFile(path))
	parallel := NewWithConfig(StoreConfig{MaxWorkers: 4})
	require.NoError(t, parallel.LoadFile(path))

	require.Equal(t, len(want), serial.Size())
	require.Equal(t, serial.Size(), parallel.Size())
	for id, seq := range want {
		rec, ok := parallel.GetFastq(id)
		require.True(t, ok, "missing %s", id)
		require.Equal(t, seq, string(rec.Sequence))
		require.Equal(t, 150, len(rec.Quality))
	}
	assert.Equal(t, DNAFastq, parallel.Format())
}

func TestRecordID(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{">seq1", "seq1"},
		{">seq1 with comment", "seq1"},
		{"@read/1 len=4", "read/1"},
		{">seq1\tfield", "seq1\tfield"}, // tabs stay in the identifier
		{">", ""},
	}
	for _, tc := range cases {
		if got := string(recordID([]byte(tc.header))); got != tc.want {
			t.Errorf("recordID(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
