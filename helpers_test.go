package csvbits

import (
	"math/rand"
	"strings"
	"testing"
)

// =============================================================================
// Test Helper Functions
// =============================================================================

// maskFromPositions builds a 64-bit mask with the given bit positions set.
func maskFromPositions(positions ...int) uint64 {
	var m uint64
	for _, p := range positions {
		m |= uint64(1) << p
	}
	return m
}

// maskPositions lists the set bit positions of a mask in ascending order.
func maskPositions(m uint64) []int {
	var positions []int
	for i := 0; i < 64; i++ {
		if m&(uint64(1)<<i) != 0 {
			positions = append(positions, i)
		}
	}
	return positions
}

// genCSV deterministically generates a CSV buffer with the given number of
// records and fields, mixing plain, quoted and escaped fields.
func genCSV(records, fields int) []byte {
	var sb strings.Builder
	for r := 0; r < records; r++ {
		for f := 0; f < fields; f++ {
			if f > 0 {
				sb.WriteByte(',')
			}
			switch (r + f) % 4 {
			case 0:
				sb.WriteString("plainvalue")
			case 1:
				sb.WriteString(`"quoted,value"`)
			case 2:
				sb.WriteString(`"esc""aped"`)
			default:
				sb.WriteString("v")
			}
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// naiveTokenize is a byte-at-a-time reference tokenizer with the same
// contract as Tokenize: structural commas and newlines outside quoted
// fields, a synthetic RecordEnd when the input lacks a trailing newline,
// and ErrUnterminatedQuote with no boundaries for an unclosed quote.
func naiveTokenize(buf []byte) ([]Boundary, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	var bounds []Boundary
	inQuotes := false
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '"':
			if inQuotes && i+1 < len(buf) && buf[i+1] == '"' {
				i++ // escaped quote
				continue
			}
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				bounds = append(bounds, Boundary{Offset: i, Kind: FieldEnd})
			}
		case '\n':
			if !inQuotes {
				bounds = append(bounds, Boundary{Offset: i, Kind: RecordEnd})
			}
		}
	}
	if inQuotes {
		return nil, ErrUnterminatedQuote
	}
	if buf[len(buf)-1] != '\n' {
		bounds = append(bounds, Boundary{Offset: len(buf), Kind: RecordEnd})
	}
	return bounds, nil
}

// randomCSVBytes draws a random buffer from an alphabet that stresses the
// quote and newline handling.
func randomCSVBytes(rng *rand.Rand, length int) []byte {
	alphabet := []byte{'a', 'b', ',', '"', '"', '\n', '\r'}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return buf
}

// requireBoundariesEqual fails the test when two boundary sequences differ.
func requireBoundariesEqual(t *testing.T, want, got []Boundary, input []byte) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("input %q: got %d boundaries, want %d\ngot:  %v\nwant: %v",
			input, len(got), len(want), got, want)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("input %q: boundary %d = %v, want %v", input, i, got[i], want[i])
		}
	}
}
