// Package csvbits locates CSV field and record boundaries in a byte buffer
// without materializing or copying field content. Bytes are classified in
// table-driven batches, assembled into per-window 64-bit bitsets, and the
// structurally significant separators and newlines are extracted after
// escaped quotes and quoted regions have been masked out.
//
// The tokenizer targets RFC 4180 CSV: comma-separated fields, double-quote
// quoted fields, "" escaping. A line feed is the sole record terminator; a
// carriage return is ordinary field content (the Reader layer trims the
// trailing CR of CRLF-terminated records when it materializes fields). An
// input that does not end in a newline is closed by a synthetic RecordEnd
// at offset len(input).
package csvbits

import "sync"

// avgFieldLen sizes boundary pre-allocation: roughly one delimiter per ten
// input bytes.
const avgFieldLen = 10

// Tokenize scans buf and returns every structural delimiter in strictly
// increasing offset order. buf is borrowed for the duration of the call and
// is never mutated or retained.
//
// If the input ends inside an open quoted field, Tokenize returns
// (nil, ErrUnterminatedQuote). No boundary list is produced for malformed
// input, partial or otherwise.
func Tokenize(buf []byte) ([]Boundary, error) {
	return TokenizeWithTable(buf, defaultTable)
}

// TokenizeWithTable is Tokenize with a substituted classification table,
// allowing a non-comma single-byte separator.
func TokenizeWithTable(buf []byte, t *Table) ([]Boundary, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	dst := make([]Boundary, 0, estimateBoundaries(len(buf)))
	dst, err := appendTokens(dst, buf, t)
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// TokenizeFunc invokes fn for each boundary in offset order and stops early
// if fn returns an error, returning that error. fn is never invoked for
// malformed input: the whole buffer is resolved before the first callback,
// so the unterminated-quote policy of Tokenize holds here as well.
func TokenizeFunc(buf []byte, fn func(Boundary) error) error {
	bp := boundaryPool.Get().(*[]Boundary)
	defer boundaryPool.Put(bp)

	bounds, err := appendTokens((*bp)[:0], buf, defaultTable)
	*bp = bounds[:0]
	if err != nil {
		return err
	}

	for _, b := range bounds {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

// boundaryPool recycles scratch boundary slices for the callback and
// zero-copy row APIs, whose boundary sequences never escape to the caller.
// Pooled slices are exclusively owned between Get and Put; no carry state
// is ever shared across parses.
var boundaryPool = sync.Pool{
	New: func() any {
		s := make([]Boundary, 0, 256)
		return &s
	},
}

// estimateBoundaries guesses a boundary count for pre-allocation.
func estimateBoundaries(bufLen int) int {
	n := bufLen / avgFieldLen
	if n < 4 {
		n = 4
	}
	return n
}

// appendTokens is the window driver: it folds the classify → bitset →
// resolve → mask → extract pipeline left to right over buf in windowSize
// steps, threading carry state between steps and appending boundaries to
// dst. On ErrUnterminatedQuote it returns dst truncated to length zero so
// pooled callers keep their capacity.
func appendTokens(dst []Boundary, buf []byte, t *Table) ([]Boundary, error) {
	if len(buf) == 0 {
		return dst, nil
	}

	var st scanState
	for offset := 0; offset < len(buf); offset += windowSize {
		var comma, quote, newline uint64
		if remaining := len(buf) - offset; remaining >= windowSize {
			comma, quote, newline = t.windowMasks(buf[offset : offset+windowSize])
		} else {
			comma, quote, newline = t.windowMasksPadded(buf[offset:])
		}

		_, inside := resolveQuotes(quote, &st)
		validComma, validNewline := maskStructural(comma, newline, inside)
		dst = appendBoundaries(dst, offset, validComma, validNewline)
	}

	// A quote still deferred past the final window had no partner: it was
	// structural, and its toggle belongs to the final parity.
	if st.escapeCarry {
		st.insideQuotes = ^st.insideQuotes
	}
	if st.insideQuotes != 0 {
		return dst[:0], ErrUnterminatedQuote
	}

	if buf[len(buf)-1] != '\n' {
		dst = append(dst, Boundary{Offset: len(buf), Kind: RecordEnd})
	}
	return dst, nil
}
