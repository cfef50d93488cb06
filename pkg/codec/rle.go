package codec

// RLE payload layout (after the tag byte): a sequence of (count, byte)
// pairs, count in [1, 255]. Runs longer than 255 split into consecutive
// pairs. Worst case (no repeats) doubles the input size.

func encodeRLE(data []byte) []byte {
	out := make([]byte, 1, 1+len(data)/2)
	out[0] = TagRLE
	for i := 0; i < len(data); {
		b := data[i]
		count := byte(1)
		for i+1 < len(data) && data[i+1] == b && count < 255 {
			count++
			i++
		}
		out = append(out, count, b)
		i++
	}
	return out
}

func decodeRLE(data []byte) []byte {
	out := make([]byte, 0, len(data))
	// A trailing unpaired byte is ignored.
	for i := 0; i+1 < len(data); i += 2 {
		count, b := int(data[i]), data[i+1]
		for j := 0; j < count; j++ {
			out = append(out, b)
		}
	}
	return out
}
