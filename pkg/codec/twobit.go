package codec

import "encoding/binary"

// 2-bit payload layout (after the tag byte):
//
//	[OriginalLength(4, BE)][NCount(4, BE)][packed bases][N positions...]
//
// Four bases pack into each byte, first base in the most significant bits.
// A=00 C=01 G=10 T/U=11; any other byte (including N) packs as 00 and, for
// N specifically, its index is recorded in the tail so decoding can restore
// it. OriginalLength is authoritative: padding bits in the final packed
// byte are ignored on decode.

const twoBitHeaderSize = 8

func baseToBits(base byte) byte {
	switch base {
	case 'A', 'a':
		return 0b00
	case 'C', 'c':
		return 0b01
	case 'G', 'g':
		return 0b10
	case 'T', 't', 'U', 'u':
		return 0b11
	default:
		return 0b00
	}
}

func bitsToBase(bits byte) byte {
	switch bits {
	case 0b00:
		return 'A'
	case 0b01:
		return 'C'
	case 0b10:
		return 'G'
	default:
		return 'T'
	}
}

func encodeNucleotide(data []byte) []byte {
	var nPositions []uint32
	for i, b := range data {
		if b == 'N' || b == 'n' {
			nPositions = append(nPositions, uint32(i))
		}
	}

	packedSize := (len(data) + 3) / 4
	out := make([]byte, 1+twoBitHeaderSize+packedSize+4*len(nPositions))
	out[0] = TagNucleotide
	binary.BigEndian.PutUint32(out[1:], uint32(len(data)))
	binary.BigEndian.PutUint32(out[5:], uint32(len(nPositions)))

	packed := out[1+twoBitHeaderSize:]
	for i, b := range data {
		packed[i/4] |= baseToBits(b) << ((3 - i%4) * 2)
	}

	tail := out[1+twoBitHeaderSize+packedSize:]
	for i, pos := range nPositions {
		binary.BigEndian.PutUint32(tail[4*i:], pos)
	}
	return out
}

func decodeNucleotide(data []byte) ([]byte, error) {
	if len(data) < twoBitHeaderSize {
		return nil, nil
	}
	originalLength := int(binary.BigEndian.Uint32(data[0:4]))
	nCount := int(binary.BigEndian.Uint32(data[4:8]))
	packedSize := (originalLength + 3) / 4

	if len(data) < twoBitHeaderSize+packedSize+4*nCount {
		return nil, ErrMalformedPayload
	}

	packed := data[twoBitHeaderSize:]
	out := make([]byte, originalLength)
	for i := range out {
		out[i] = bitsToBase((packed[i/4] >> ((3 - i%4) * 2)) & 0b11)
	}

	tail := data[twoBitHeaderSize+packedSize:]
	for i := 0; i < nCount; i++ {
		pos := binary.BigEndian.Uint32(tail[4*i:])
		if int(pos) < len(out) {
			out[pos] = 'N'
		}
	}
	return out, nil
}
