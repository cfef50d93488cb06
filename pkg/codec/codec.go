package codec

// Type tags. Every non-empty encoded payload starts with exactly one of
// these bytes, which makes payloads self-describing: Decode needs no
// external metadata to pick the right decoder.
const (
	TagNucleotide = 0x01 // 2-bit packed nucleotide with N-position table
	TagRLE        = 0x12 // run-length encoded bytes (quality strings)
	TagVerbatim   = 0x21 // raw bytes (protein or unclassified)
)

// Hint selects the encoding path when the content alone should not decide.
type Hint int

const (
	// Generic sniffs the payload and picks 2-bit packing for nucleotide
	// sequences, verbatim bytes for everything else.
	Generic Hint = iota
	// QualityScore forces run-length encoding. Quality strings compress
	// poorly under 2-bit packing and would frequently pass the nucleotide
	// sniff by accident.
	QualityScore
)

// ErrMalformedPayload reports a structural inconsistency found while
// decoding, such as a truncated N-position table. It indicates corruption.
var ErrMalformedPayload = &CodecError{"malformed payload"}

// CodecError represents a codec error.
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}

// Encode serializes data into a tagged, self-describing payload.
// Empty input encodes to an empty payload with no tag.
func Encode(data []byte, hint Hint) []byte {
	if len(data) == 0 {
		return nil
	}
	if hint == QualityScore {
		return encodeRLE(data)
	}
	if IsNucleotide(data) {
		return encodeNucleotide(data)
	}
	return encodeVerbatim(data)
}

// Decode reverses Encode, dispatching on the leading type tag.
// Empty input and unknown tags decode to empty output without error;
// a structurally inconsistent payload returns ErrMalformedPayload.
//
// Nucleotide payloads decode to uppercase DNA: lowercase input comes back
// uppercased and U/u comes back as T. N positions are restored exactly.
func Decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	payload := data[1:]
	switch data[0] {
	case TagNucleotide:
		return decodeNucleotide(payload)
	case TagRLE:
		return decodeRLE(payload), nil
	case TagVerbatim:
		return append([]byte(nil), payload...), nil
	default:
		return nil, nil
	}
}

// IsNucleotide reports whether data looks like a nucleotide sequence:
// more than 80% of its alphabetic bytes, case-insensitively, must be in
// {A,C,G,T,U,N}. Non-alphabetic bytes are ignored. Empty input is not
// a nucleotide sequence.
func IsNucleotide(data []byte) bool {
	alpha, nuc := 0, 0
	for _, b := range data {
		c := b | 0x20
		if c < 'a' || c > 'z' {
			continue
		}
		alpha++
		switch c {
		case 'a', 'c', 'g', 't', 'u', 'n':
			nuc++
		}
	}
	return alpha > 0 && float64(nuc)/float64(alpha) > 0.8
}

// HasRNA reports whether data contains a uracil base.
func HasRNA(data []byte) bool {
	for _, b := range data {
		if b == 'U' || b == 'u' {
			return true
		}
	}
	return false
}

func encodeVerbatim(data []byte) []byte {
	out := make([]byte, 1+len(data))
	out[0] = TagVerbatim
	copy(out[1:], data)
	return out
}
