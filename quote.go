package csvbits

import "math/bits"

// =============================================================================
// Quote Resolution
// =============================================================================
//
// The quote resolver is the carry-dependent stage of the pipeline. For each
// window it must decide which raw quote bits are structural (real field
// delimiters) and which belong to "" escape pairs, then derive the
// inside-quotes mask that suppresses commas and newlines inside quoted
// fields. Both decisions can straddle window edges: an escape pair may be
// split across two windows, and the in/out-of-quote parity runs through the
// whole input. That state travels in scanState.
//
// Escape pairing is greedy left to right within each run of adjacent quotes:
// a run of even length is entirely escape pairs, a run of odd length keeps
// its final quote as structural. Within a run every byte is a quote, so the
// choice of which quote in an odd run is the structural one cannot affect
// how commas or newlines are masked; only the run's parity matters.

// Alternating-position constants for run-length parity analysis.
const (
	evenBits = 0x5555555555555555
	oddBits  = 0xaaaaaaaaaaaaaaaa
)

// scanState is the carry threaded between window-steps. A fresh (zero)
// value starts every parse. It is owned by a single parse and never shared.
type scanState struct {
	// escapeCarry records that the previous window ended in an unpaired
	// quote whose partner may be the first byte of the current window.
	escapeCarry bool

	// insideQuotes is the quote parity entering the next window, broadcast
	// to all 64 bits: 0 outside a quoted field, ^0 inside.
	insideQuotes uint64
}

// structuralQuotes removes escaped quote pairs from a raw quote mask under
// greedy left-to-right pairing. A run reaching bit 63 leaves its final quote
// unresolved when the run length is odd (the partner may be the first byte
// of the next window); that quote is reported through trailingOdd and is
// excluded from the returned mask.
func structuralQuotes(q uint64) (valid uint64, trailingOdd bool) {
	runStarts := q &^ (q << 1)

	// One carry-propagating add per start-position parity collapses each
	// run into a single bit just past its end. Comparing the parity of the
	// end position against the start position exposes odd-length runs; the
	// bit below each odd end is the run's structural quote. A run ending at
	// bit 63 overflows the add and marks nothing, which is exactly the
	// deferred case handled via trailingOdd.
	endsFromEven := (q + (runStarts & evenBits)) &^ q
	endsFromOdd := (q + (runStarts & oddBits)) &^ q
	afterOddRun := (endsFromEven & oddBits) | (endsFromOdd & evenBits)

	valid = (afterOddRun >> 1) & q
	trailingOdd = bits.LeadingZeros64(^q)&1 == 1
	return valid, trailingOdd
}

// prefixXor computes the left-inclusive parity scan of x: bit i of the
// result is the XOR of bits 0 through i of x. Standard doubling shift-XOR
// reduction; a pure bitwise identity with no lookups.
func prefixXor(x uint64) uint64 {
	x ^= x << 1
	x ^= x << 2
	x ^= x << 4
	x ^= x << 8
	x ^= x << 16
	x ^= x << 32
	return x
}

// resolveQuotes turns a window's raw quote mask into the structural quote
// mask and the inside-quotes mask, consuming and producing carry state.
//
// The inside-quotes mask marks every position from an opening structural
// quote up to, but not including, its closing quote (inclusive prefix
// convention: the opening quote's own bit is set). Quote positions never
// hold commas or newlines, so the convention at quote bits cannot change
// how delimiters are masked; it is fixed here and relied on by the tests.
func resolveQuotes(q uint64, st *scanState) (valid, inside uint64) {
	if st.escapeCarry {
		st.escapeCarry = false
		if q&1 != 0 {
			// The carried quote pairs with bit 0: both are escaped.
			q &^= 1
		} else {
			// The carried quote was structural after all. Its toggle was
			// deferred past the previous window's last byte, so it lands on
			// the parity entering this window.
			st.insideQuotes = ^st.insideQuotes
		}
	}

	valid, trailingOdd := structuralQuotes(q)
	if trailingOdd {
		// The window's final quote stays unresolved until the next window
		// (or until end-of-input, where the driver settles it).
		st.escapeCarry = true
	}

	inside = prefixXor(valid) ^ st.insideQuotes
	st.insideQuotes = uint64(int64(inside) >> 63)
	return valid, inside
}
