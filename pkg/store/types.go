package store

import "log/slog"

// RecordKind discriminates the two record variants held by the store.
type RecordKind uint8

const (
	KindFasta RecordKind = 0 // encoded sequence only
	KindFastq RecordKind = 1 // encoded sequence plus encoded quality
)

// Record is a stored record. Payloads are always codec-encoded; raw
// sequence bytes never live in the store. Qual is nil for FASTA records
// and non-empty for FASTQ records.
type Record struct {
	Kind RecordKind
	Seq  []byte
	Qual []byte
}

// FastqRecord is a fully decoded FASTQ record as returned by GetFastq.
type FastqRecord struct {
	Sequence []byte
	Quality  []byte
}

// FileFormat is the advisory store-wide classification of the most
// recently loaded file. It is recorded in the container header.
type FileFormat uint8

const (
	DNAFasta FileFormat = iota
	RNAFasta
	ProteinFasta
	DNAFastq
	RNAFastq
	ProteinFastq
)

func (f FileFormat) String() string {
	switch f {
	case DNAFasta:
		return "DNA_FASTA"
	case RNAFasta:
		return "RNA_FASTA"
	case ProteinFasta:
		return "PROTEIN_FASTA"
	case DNAFastq:
		return "DNA_FASTQ"
	case RNAFastq:
		return "RNA_FASTQ"
	case ProteinFastq:
		return "PROTEIN_FASTQ"
	default:
		return "UNKNOWN"
	}
}

// IsFastq reports whether the format carries quality strings.
func (f FileFormat) IsFastq() bool {
	return f == DNAFastq || f == RNAFastq || f == ProteinFastq
}

// StoreConfig holds configuration for the sequence store.
type StoreConfig struct {
	// MaxWorkers caps loader parallelism. Zero means one worker per CPU.
	MaxWorkers int
	// Logger receives load/save/restore summaries. Nil means slog.Default().
	Logger *slog.Logger
}

// Errors
var (
	ErrUnknownFormat = &StoreError{"unknown sequence format"}
	ErrBadContainer  = &StoreError{"bad container"}
)

// StoreError represents a sequence store error.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
