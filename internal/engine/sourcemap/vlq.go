// Package sourcemap decodes, encodes and composes revision 3 source map mappings.
package sourcemap

import (
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Segment is one decoded mapping. SourceIndex is -1 for a segment that maps to nothing
// and NameIndex is -1 when the segment carries no name.
type Segment struct {
	GeneratedColumn int
	SourceIndex     int
	OriginalLine    int
	OriginalColumn  int
	NameIndex       int
}

// Line holds the segments of one generated line, ordered by generated column.
type Line []Segment

// Decode parses a mappings string into absolute positions.
func Decode(mappings string) ([]Line, error) {
	var (
		lines      []Line
		current    Line
		sourceIdx  int
		origLine   int
		origCol    int
		nameIdx    int
		generated  int
		fields     [5]int
		fieldCount int
	)

	for pos := 0; pos <= len(mappings); {
		if pos == len(mappings) || mappings[pos] == ';' {
			lines = append(lines, current)
			current = nil
			generated = 0
			pos++
			continue
		}
		if mappings[pos] == ',' {
			pos++
			continue
		}

		fieldCount = 0
		for pos < len(mappings) && mappings[pos] != ',' && mappings[pos] != ';' {
			if fieldCount == len(fields) {
				return nil, zerr.With(zerr.Wrap(domain.ErrInvalidMappings, "too many fields"), "offset", pos)
			}
			value, next, err := decodeVLQ(mappings, pos)
			if err != nil {
				return nil, err
			}
			fields[fieldCount] = value
			fieldCount++
			pos = next
		}

		generated += fields[0]
		seg := Segment{GeneratedColumn: generated, SourceIndex: -1, NameIndex: -1}

		switch fieldCount {
		case 1:
		case 4, 5:
			sourceIdx += fields[1]
			origLine += fields[2]
			origCol += fields[3]
			seg.SourceIndex = sourceIdx
			seg.OriginalLine = origLine
			seg.OriginalColumn = origCol
			if fieldCount == 5 {
				nameIdx += fields[4]
				seg.NameIndex = nameIdx
			}
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidMappings, "bad segment length"), "fields", fieldCount)
		}

		current = append(current, seg)
	}

	return lines, nil
}

// Encode turns decoded lines back into a mappings string.
func Encode(lines []Line) string {
	var (
		sb        strings.Builder
		buf       []byte
		sourceIdx int
		origLine  int
		origCol   int
		nameIdx   int
	)

	for i, line := range lines {
		if i > 0 {
			sb.WriteByte(';')
		}
		generated := 0
		for j, seg := range line {
			if j > 0 {
				sb.WriteByte(',')
			}
			buf = encodeVLQ(buf[:0], seg.GeneratedColumn-generated)
			generated = seg.GeneratedColumn

			if seg.SourceIndex >= 0 {
				buf = encodeVLQ(buf, seg.SourceIndex-sourceIdx)
				buf = encodeVLQ(buf, seg.OriginalLine-origLine)
				buf = encodeVLQ(buf, seg.OriginalColumn-origCol)
				sourceIdx = seg.SourceIndex
				origLine = seg.OriginalLine
				origCol = seg.OriginalColumn

				if seg.NameIndex >= 0 {
					buf = encodeVLQ(buf, seg.NameIndex-nameIdx)
					nameIdx = seg.NameIndex
				}
			}
			sb.Write(buf)
		}
	}

	return sb.String()
}

// Each base 64 digit carries five value bits and a continuation bit.
// The lowest bit of the first digit is the sign.
func encodeVLQ(encoded []byte, value int) []byte {
	var vlq int
	if value < 0 {
		vlq = ((-value) << 1) | 1
	} else {
		vlq = value << 1
	}

	for {
		digit := vlq & 31
		vlq >>= 5
		if vlq != 0 {
			digit |= 32
		}
		encoded = append(encoded, base64Alphabet[digit])
		if vlq == 0 {
			return encoded
		}
	}
}

func decodeVLQ(encoded string, start int) (int, int, error) {
	shift := 0
	vlq := 0

	for {
		if start >= len(encoded) {
			return 0, 0, zerr.With(zerr.Wrap(domain.ErrInvalidMappings, "unterminated value"), "offset", start)
		}
		index := strings.IndexByte(base64Alphabet, encoded[start])
		if index < 0 {
			return 0, 0, zerr.With(zerr.Wrap(domain.ErrInvalidMappings, "invalid character"), "offset", start)
		}

		vlq |= (index & 31) << shift
		start++
		shift += 5

		if (index & 32) == 0 {
			break
		}
	}

	value := vlq >> 1
	if (vlq & 1) != 0 {
		value = -value
	}
	return value, start, nil
}
