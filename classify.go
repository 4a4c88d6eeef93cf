package csvbits

// =============================================================================
// Byte Classification and Bitset Assembly
// =============================================================================
//
// Every input byte maps to exactly one of four structural categories: comma,
// quote, newline, or other. Classification is table-driven so that no
// per-byte conditional branching occurs: a byte indexes a 256-entry category
// table derived from a pair of 16-entry nibble tables (the high nibble
// selects candidate categories, the low nibble confirms the exact byte, and
// the two lookups combine with AND). Each category owns a distinct bit, so
// two bytes that share a nibble row and a nibble column can never alias into
// a false positive.
//
// The nibble construction keeps the tables compatible with 16-lane vector
// shuffles; the derived 256-entry table is the portable form used here.
// Correctness never depends on hardware vector support.

// Structural category bits. classOther is the implicit zero value; it is
// never consulted downstream.
const (
	classOther   = 0
	classComma   = 1 << 0
	classQuote   = 1 << 1
	classNewline = 1 << 2
)

// Batching constants.
const (
	// windowSize is the number of bytes resolved per pipeline step.
	windowSize = 64

	// batchSize is the number of bytes classified per lookup batch.
	batchSize = 16

	// batchesPerWindow is the number of classification batches per window.
	batchesPerWindow = windowSize / batchSize
)

// Table maps bytes to structural categories for one separator choice. The
// zero Table classifies nothing; construct one with NewTable. A Table is
// immutable after construction and safe for concurrent use.
type Table struct {
	separator byte
	classes   [256]byte
}

// NewTable builds a classification table for the given single-byte field
// separator. The quote ('"') and newline ('\n') categories are fixed; the
// separator takes the comma category. Separators that collide with the
// fixed categories, with the carriage return content policy, or with the
// zero padding byte are rejected with ErrInvalidSeparator.
func NewTable(separator byte) (*Table, error) {
	switch separator {
	case '"', '\n', '\r', 0:
		return nil, ErrInvalidSeparator
	}

	var lo, hi [16]byte
	assign := func(b, class byte) {
		hi[b>>4] |= class
		lo[b&0x0f] |= class
	}
	assign(separator, classComma)
	assign('"', classQuote)
	assign('\n', classNewline)

	t := &Table{separator: separator}
	for b := 0; b < 256; b++ {
		t.classes[b] = hi[b>>4] & lo[b&0x0f]
	}
	return t, nil
}

// Separator returns the byte occupying the comma category.
func (t *Table) Separator() byte {
	return t.separator
}

// defaultTable drives the base RFC 4180 behavior (comma separator).
var defaultTable = func() *Table {
	t, err := NewTable(',')
	if err != nil {
		panic(err)
	}
	return t
}()

// classifyBatch maps each byte of a batchSize-byte batch to its category.
// Pure function of the batch contents; no side effects.
// Precondition: len(batch) >= batchSize.
func (t *Table) classifyBatch(batch []byte) [batchSize]byte {
	var classes [batchSize]byte
	for i := 0; i < batchSize; i++ {
		classes[i] = t.classes[batch[i]]
	}
	return classes
}

// packBatch folds batch categories into one 16-bit lane vector per retained
// category, bit i set iff byte i of the batch belongs to that category.
// classOther has no vector: it is the implicit complement.
func packBatch(classes [batchSize]byte) (comma, quote, newline uint16) {
	for i := 0; i < batchSize; i++ {
		c := uint16(classes[i])
		comma |= (c & classComma) << i
		quote |= ((c & classQuote) >> 1) << i
		newline |= ((c & classNewline) >> 2) << i
	}
	return comma, quote, newline
}

// windowMasks assembles the three 64-bit class bitsets for one full
// windowSize-byte window, bit 0 corresponding to the window's first byte.
// Precondition: len(window) >= windowSize.
func (t *Table) windowMasks(window []byte) (comma, quote, newline uint64) {
	for b := 0; b < batchesPerWindow; b++ {
		base := b * batchSize
		c, q, n := packBatch(t.classifyBatch(window[base : base+batchSize]))
		comma |= uint64(c) << base
		quote |= uint64(q) << base
		newline |= uint64(n) << base
	}
	return comma, quote, newline
}

// windowMasksPadded handles the final window when fewer than windowSize
// bytes remain. The tail is copied into a zeroed stack buffer and the result
// is clipped with a validity mask, so a position at or beyond end-of-input
// can never surface as a structural bit.
func (t *Table) windowMasksPadded(data []byte) (comma, quote, newline uint64) {
	var padded [windowSize]byte
	copy(padded[:], data)

	comma, quote, newline = t.windowMasks(padded[:])

	valid := uint64(1)<<len(data) - 1
	return comma & valid, quote & valid, newline & valid
}
