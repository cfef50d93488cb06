package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/traceon/traceon/pkg/codec"
)

// Files below this size parse on a single worker; partitioning overhead
// dominates for small inputs. Gzip streams also parse on a single worker
// because they cannot seek.
const parallelThreshold = 1 << 20

// rawRecord is a parsed but not yet encoded record.
type rawRecord struct {
	id   []byte
	seq  []byte
	qual []byte
}

// keyedRecord pairs a store key with its encoded record, ready to merge.
type keyedRecord struct {
	key string
	rec Record
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 1 {
		return n
	}
	return 1
}

// LoadFile bulk-loads a FASTA or FASTQ file, plain or gzip-compressed,
// into the store. Records merge with last-write-wins semantics on key;
// existing records under other keys are untouched. Large plain files are
// partitioned on record boundaries and parsed by one worker per CPU.
//
// Per-record malformations (partial trailing FASTQ groups, headers with
// empty identifiers) are skipped silently. Unopenable paths and files
// whose first non-empty line starts with neither '>' nor '@' are errors.
func (s *Store) LoadFile(path string) error {
	isFastq, err := detectFormat(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	workers := s.workers()
	if strings.HasSuffix(path, ".gz") || info.Size() < parallelThreshold {
		workers = 1
	}

	var (
		recs  []keyedRecord
		first rawRecord
	)
	if workers <= 1 {
		recs, first, err = loadSerial(path, isFastq)
	} else {
		recs, first, err = loadParallel(path, info.Size(), isFastq, workers)
	}
	if err != nil {
		return err
	}

	format := classifyFormat(first)

	s.mu.Lock()
	for _, r := range recs {
		s.records[r.key] = r.rec
	}
	if len(recs) > 0 {
		s.format = format
	}
	s.mu.Unlock()

	s.logger.Info("loaded sequence file",
		"path", path,
		"records", len(recs),
		"format", format.String(),
		"workers", workers)
	return nil
}

// detectFormat reads the first non-empty line to pick FASTA or FASTQ.
func detectFormat(path string) (isFastq bool, err error) {
	lr, err := OpenLineReader(path)
	if err != nil {
		return false, err
	}
	defer lr.Close()

	for lr.Scan() {
		line := lr.Bytes()
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '>':
			return false, nil
		case '@':
			return true, nil
		default:
			return false, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
		}
	}
	if err := lr.Err(); err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return false, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// classifyFormat derives the advisory store-wide format from the file's
// first record, inspected before encoding.
func classifyFormat(first rawRecord) FileFormat {
	if len(first.qual) > 0 {
		switch {
		case codec.HasRNA(first.seq):
			return RNAFastq
		case codec.IsNucleotide(first.seq):
			return DNAFastq
		default:
			return ProteinFastq
		}
	}
	switch {
	case codec.HasRNA(first.seq):
		return RNAFasta
	case codec.IsNucleotide(first.seq):
		return DNAFasta
	default:
		return ProteinFasta
	}
}

// loadSerial parses the whole file on one worker through a LineReader.
// This is the only path for gzip inputs, which cannot seek.
func loadSerial(path string, isFastq bool) ([]keyedRecord, rawRecord, error) {
	lr, err := OpenLineReader(path)
	if err != nil {
		return nil, rawRecord{}, err
	}
	defer lr.Close()

	var raws []rawRecord
	if isFastq {
		raws, err = parseFastqStream(lr)
	} else {
		raws, err = parseFastaStream(lr)
	}
	if err != nil {
		return nil, rawRecord{}, fmt.Errorf("read %s: %w", path, err)
	}

	var first rawRecord
	if len(raws) > 0 {
		first = raws[0]
	}
	return encodeRecords(raws), first, nil
}

// loadParallel partitions [0, size) into record-aligned chunks and parses
// and encodes them concurrently, one private result slice per worker.
func loadParallel(path string, size int64, isFastq bool, workers int) ([]keyedRecord, rawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rawRecord{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bounds, err := chunkBoundaries(f, size, isFastq, workers)
	if err != nil {
		return nil, rawRecord{}, fmt.Errorf("read %s: %w", path, err)
	}

	results := make([][]keyedRecord, len(bounds)-1)
	var first rawRecord

	var g errgroup.Group
	for i := 0; i < len(bounds)-1; i++ {
		i := i
		start, end := bounds[i], bounds[i+1]
		if start >= end {
			continue
		}
		g.Go(func() error {
			chunk := make([]byte, end-start)
			if _, err := io.ReadFull(io.NewSectionReader(f, start, end-start), chunk); err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			var raws []rawRecord
			if isFastq {
				raws = parseChunkFastq(chunk)
			} else {
				raws = parseChunkFasta(chunk)
			}
			if i == 0 && len(raws) > 0 {
				first = raws[0]
			}
			results[i] = encodeRecords(raws)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, rawRecord{}, err
	}

	var merged []keyedRecord
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, first, nil
}

// chunkBoundaries returns workers+1 offsets partitioning [0, size) such
// that every chunk begins at the first byte of a record. Offsets are
// non-decreasing; duplicate boundaries yield empty chunks.
func chunkBoundaries(f *os.File, size int64, isFastq bool, workers int) ([]int64, error) {
	bounds := make([]int64, 0, workers+1)
	bounds = append(bounds, 0)
	for k := 1; k < workers; k++ {
		off, err := nextRecordStart(f, size, int64(k)*size/int64(workers), isFastq)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, off)
	}
	return append(bounds, size), nil
}

// nextRecordStart scans forward from approx for the first line that starts
// a record: a '>' line for FASTA, or for FASTQ an '@' line that passes the
// four-line verification. Returns size when no record start remains.
func nextRecordStart(f *os.File, size, approx int64, isFastq bool) (int64, error) {
	if approx >= size {
		return size, nil
	}
	sigil := byte('>')
	if isFastq {
		sigil = '@'
	}

	r := bufio.NewReaderSize(io.NewSectionReader(f, approx, size-approx), lineScanBuffer)
	off := approx
	for {
		// Consume through the end of the current, possibly partial, line.
		line, err := r.ReadBytes('\n')
		off += int64(len(line))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return size, nil
			}
			return 0, err
		}

		b, err := r.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return size, nil
			}
			return 0, err
		}
		if b[0] != sigil {
			continue
		}
		if !isFastq {
			return off, nil
		}
		ok, err := verifyFastqStart(f, off, size)
		if err != nil {
			return 0, err
		}
		if ok {
			return off, nil
		}
	}
}

// verifyFastqStart reports whether off begins a real FASTQ record. An '@'
// line only qualifies when three more lines follow and the third starts
// with '+'; quality strings may legally contain '@' and masquerade as
// headers otherwise.
func verifyFastqStart(f *os.File, off, size int64) (bool, error) {
	r := bufio.NewReaderSize(io.NewSectionReader(f, off, size-off), lineScanBuffer)
	var plus []byte
	for i := 0; i < 4; i++ {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return false, err
			}
			if i < 3 || len(line) == 0 {
				return false, nil
			}
		}
		if i == 2 {
			plus = bytes.TrimRight(line, "\r\n")
		}
	}
	return len(plus) > 0 && plus[0] == '+', nil
}

// parseChunkFasta parses a record-aligned FASTA chunk. Blank lines are
// ignored; a header with no identifier drops the record that follows it.
func parseChunkFasta(chunk []byte) []rawRecord {
	var recs []rawRecord
	var id, seq []byte
	haveID := false
	flush := func() {
		if haveID {
			recs = append(recs, rawRecord{id: id, seq: seq})
		}
	}

	for len(chunk) > 0 {
		line, _ := takeLine(&chunk)
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			id = recordID(line)
			seq = nil
			haveID = len(bytes.TrimSpace(id)) > 0
		} else if haveID {
			seq = append(seq, line...)
		}
	}
	flush()
	return recs
}

// parseChunkFastq parses a record-aligned FASTQ chunk in groups of four
// lines. Groups with a malformed plus line or an empty identifier are
// skipped, as is a partial trailing group.
func parseChunkFastq(chunk []byte) []rawRecord {
	var recs []rawRecord
	for len(chunk) > 0 {
		header, _ := takeLine(&chunk)
		if len(header) == 0 || header[0] != '@' {
			continue
		}
		seq, ok := takeLine(&chunk)
		if !ok {
			break
		}
		plus, ok := takeLine(&chunk)
		if !ok {
			break
		}
		qual, ok := takeLine(&chunk)
		if !ok {
			break
		}
		if len(plus) == 0 || plus[0] != '+' {
			continue
		}
		id := recordID(header)
		if len(bytes.TrimSpace(id)) == 0 {
			continue
		}
		recs = append(recs, rawRecord{id: id, seq: seq, qual: qual})
	}
	return recs
}

// parseFastaStream is the LineReader twin of parseChunkFasta.
func parseFastaStream(lr *LineReader) ([]rawRecord, error) {
	var recs []rawRecord
	var id, seq []byte
	haveID := false
	flush := func() {
		if haveID {
			recs = append(recs, rawRecord{id: id, seq: seq})
		}
	}

	for lr.Scan() {
		line := lr.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			id = append([]byte(nil), recordID(line)...)
			seq = nil
			haveID = len(bytes.TrimSpace(id)) > 0
		} else if haveID {
			seq = append(seq, line...)
		}
	}
	flush()
	return recs, lr.Err()
}

// parseFastqStream is the LineReader twin of parseChunkFastq.
func parseFastqStream(lr *LineReader) ([]rawRecord, error) {
	var recs []rawRecord
	for lr.Scan() {
		header := lr.Bytes()
		if len(header) == 0 || header[0] != '@' {
			continue
		}
		id := append([]byte(nil), recordID(header)...)
		if !lr.Scan() {
			break
		}
		seq := append([]byte(nil), lr.Bytes()...)
		if !lr.Scan() {
			break
		}
		plus := lr.Bytes()
		plusOK := len(plus) > 0 && plus[0] == '+'
		if !lr.Scan() {
			break
		}
		qual := append([]byte(nil), lr.Bytes()...)
		if !plusOK || len(bytes.TrimSpace(id)) == 0 {
			continue
		}
		recs = append(recs, rawRecord{id: id, seq: seq, qual: qual})
	}
	return recs, lr.Err()
}

// encodeRecords encodes parsed records into store records. A FASTQ record
// whose quality string is empty degrades to a FASTA record, keeping the
// invariant that stored quality payloads are non-empty.
func encodeRecords(raws []rawRecord) []keyedRecord {
	out := make([]keyedRecord, 0, len(raws))
	for _, r := range raws {
		rec := Record{Kind: KindFasta, Seq: codec.Encode(r.seq, codec.Generic)}
		if len(r.qual) > 0 {
			rec.Kind = KindFastq
			rec.Qual = codec.Encode(r.qual, codec.QualityScore)
		}
		out = append(out, keyedRecord{key: string(r.id), rec: rec})
	}
	return out
}

// takeLine removes the next line from *chunk, stripping the newline and
// any trailing carriage returns. The second return is false once the
// chunk is exhausted.
func takeLine(chunk *[]byte) ([]byte, bool) {
	b := *chunk
	if len(b) == 0 {
		return nil, false
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		*chunk = b[i+1:]
		b = b[:i]
	} else {
		*chunk = nil
	}
	return bytes.TrimRight(b, "\r"), true
}

// recordID extracts the identifier from a header line: the bytes after
// the sigil up to the first space, or the whole remainder when the header
// has no space. Tabs are part of the identifier.
func recordID(header []byte) []byte {
	id := header[1:]
	if i := bytes.IndexByte(id, ' '); i >= 0 {
		id = id[:i]
	}
	return id
}
