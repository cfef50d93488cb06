// Package codec encodes biological sequence payloads into compact,
// self-describing binary form.
//
// Every non-empty encoded payload begins with a one-byte type tag that
// identifies the codec needed to decode it, so payloads round-trip without
// any external metadata. Three encodings exist:
//
//	0x01  2-bit packed nucleotide. Header of two big-endian uint32s
//	      (original length, N count), then ceil(len/4) packed bytes with
//	      four bases per byte (A=00 C=01 G=10 T/U=11, MSB first), then one
//	      big-endian uint32 per N position. Decoding uppercases and
//	      normalizes U to T; N positions are restored exactly.
//
//	0x12  Run-length encoding as (count, byte) pairs, count in [1, 255].
//	      Used for quality strings, which tend to contain long runs.
//
//	0x21  Verbatim bytes, for protein sequences and anything that fails
//	      the nucleotide sniff.
//
// Under the Generic hint the encoder sniffs content: a payload whose
// alphabetic bytes are more than 80% ACGTUN (case-insensitive) takes the
// 2-bit path, everything else is stored verbatim. The QualityScore hint
// forces RLE.
//
// Decoding is tolerant by design: empty payloads and unknown tags decode
// to empty output without error, while a payload whose declared lengths
// disagree with its actual size fails with ErrMalformedPayload.
package codec
