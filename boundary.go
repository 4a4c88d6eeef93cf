package csvbits

import (
	"fmt"
	"math/bits"
)

// =============================================================================
// Delimiter Masking and Boundary Extraction
// =============================================================================

// BoundaryKind distinguishes the two structural delimiter roles.
type BoundaryKind uint8

const (
	// FieldEnd marks a structural separator: the byte at Offset terminates
	// a field within a record.
	FieldEnd BoundaryKind = iota

	// RecordEnd marks a structural newline, or the synthetic terminator at
	// end-of-input: the byte at Offset terminates both a field and a record.
	RecordEnd
)

// String returns the kind's name.
func (k BoundaryKind) String() string {
	switch k {
	case FieldEnd:
		return "FieldEnd"
	case RecordEnd:
		return "RecordEnd"
	default:
		return fmt.Sprintf("BoundaryKind(%d)", uint8(k))
	}
}

// Boundary reports one structural delimiter. Offset is the absolute byte
// offset of the delimiter in the input; the synthetic terminal RecordEnd of
// an input without a trailing newline carries Offset == len(input).
type Boundary struct {
	Offset int
	Kind   BoundaryKind
}

// maskStructural clears separator and newline bits that fall inside quoted
// fields. Pure and stateless, per window.
func maskStructural(comma, newline, inside uint64) (validComma, validNewline uint64) {
	return comma &^ inside, newline &^ inside
}

// appendBoundaries emits the window's boundaries in position order, merging
// both masks as it scans. Extraction repeatedly takes the lowest set bit via
// trailing-zero count and clears it; ties cannot occur because a byte
// belongs to at most one category.
func appendBoundaries(dst []Boundary, base int, commas, newlines uint64) []Boundary {
	combined := commas | newlines
	for combined != 0 {
		pos := bits.TrailingZeros64(combined)
		bit := uint64(1) << pos

		kind := FieldEnd
		if newlines&bit != 0 {
			kind = RecordEnd
		}
		dst = append(dst, Boundary{Offset: base + pos, Kind: kind})

		combined &^= bit
	}
	return dst
}
