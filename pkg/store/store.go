package store

import (
	"log/slog"
	"sync"

	"github.com/traceon/traceon/pkg/codec"
)

// Store is an in-memory keyed store for encoded sequence records. It is
// populated either record by record with Set, in bulk from a FASTA/FASTQ
// file with LoadFile, or from a binary container with Restore.
//
// All methods are safe for concurrent use. Readers share the lock;
// writers (Set, LoadFile's merge, Clear, Restore) are serialized.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	format  FileFormat
	config  StoreConfig
	logger  *slog.Logger
}

// New creates an empty store with default configuration.
func New() *Store {
	return NewWithConfig(StoreConfig{})
}

// NewWithConfig creates an empty store with the given configuration.
func NewWithConfig(config StoreConfig) *Store {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		records: make(map[string]Record),
		format:  DNAFasta,
		config:  config,
		logger:  logger,
	}
}

// Set encodes value and stores it under key as a FASTA record, replacing
// any previous record for that key.
func (s *Store) Set(key string, value []byte) {
	encoded := codec.Encode(value, codec.Generic)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = Record{Kind: KindFasta, Seq: encoded}
}

// Get returns the decoded sequence for key, or empty bytes if the key is
// absent or its payload cannot be decoded. For FASTQ records the sequence
// part is returned.
func (s *Store) Get(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	decoded, err := codec.Decode(rec.Seq)
	if err != nil {
		return nil
	}
	return decoded
}

// GetFastq returns the decoded sequence and quality for key. The second
// return value is false when the key is absent or holds a FASTA record.
func (s *Store) GetFastq(key string) (FastqRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok || rec.Kind != KindFastq {
		return FastqRecord{}, false
	}
	seq, err := codec.Decode(rec.Seq)
	if err != nil {
		return FastqRecord{}, false
	}
	qual, err := codec.Decode(rec.Qual)
	if err != nil {
		return FastqRecord{}, false
	}
	return FastqRecord{Sequence: seq, Quality: qual}, true
}

// GetQuality returns the decoded quality string for key, or empty bytes
// for absent keys and FASTA records.
func (s *Store) GetQuality(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok || rec.Kind != KindFastq {
		return nil
	}
	decoded, err := codec.Decode(rec.Qual)
	if err != nil {
		return nil
	}
	return decoded
}

// Has reports whether a record exists under key.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[key]
	return ok
}

// Size returns the number of stored records.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// StoredSize returns the encoded size in bytes of the record under key,
// summing both payloads for FASTQ records. Absent keys report zero.
func (s *Store) StoredSize(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return 0
	}
	return len(rec.Seq) + len(rec.Qual)
}

// Format returns the advisory format detected by the last LoadFile or
// Restore. Stores populated only via Set report DNA_FASTA.
func (s *Store) Format() FileFormat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.format
}

// Clear removes all records and resets the detected format.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.records = make(map[string]Record)
	s.format = DNAFasta
}

// workers returns the loader parallelism for a plain file.
func (s *Store) workers() int {
	if s.config.MaxWorkers > 0 {
		return s.config.MaxWorkers
	}
	return defaultWorkers()
}
