package csvbits

import "io"

// =============================================================================
// Record Materialization
// =============================================================================

// Reader materializes CSV records from an io.Reader on top of the
// structural tokenizer. The whole input is buffered on first use; chunked
// or unbounded streaming input is out of scope.
//
// Materialization policy: surrounding quotes are stripped, escaped double
// quotes collapse to one, CRLF inside quoted fields normalizes to LF, and
// one trailing carriage return is trimmed from each record's final field
// (CRLF record terminators). Blank lines are skipped.
type Reader struct {
	// Comma is the field separator. It is set to ',' by NewReader and must
	// be a single ASCII byte other than '"', '\r' or '\n'.
	Comma rune

	// FieldsPerRecord is the number of expected fields per record. If
	// positive, every record must have exactly that many fields. If zero,
	// it is set to the field count of the first record, which later records
	// must then match. If negative, no check is made.
	FieldsPerRecord int

	// ReuseRecord controls whether Read may return a slice sharing the
	// backing array of the previous call's record.
	ReuseRecord bool

	r io.Reader

	buf         []byte
	rows        [][]FieldRef
	next        int // index of the next row to materialize
	record      int // 1-based number of the most recently returned record
	lastRecord  []string
	initialized bool
}

// NewReader returns a Reader with default RFC 4180 settings reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{Comma: ',', r: r}
}

// Read returns the next record as a slice of owned field strings. At end of
// input it returns (nil, io.EOF). A record failing the FieldsPerRecord
// check is returned together with a *ParseError wrapping ErrFieldCount.
func (r *Reader) Read() ([]string, error) {
	if !r.initialized {
		if err := r.initialize(); err != nil {
			return nil, err
		}
	}

	for r.next < len(r.rows) {
		row := r.rows[r.next]
		r.next++

		if r.isBlankRow(row) {
			continue
		}

		record := r.materialize(row)
		r.record++
		if err := r.checkFieldCount(record); err != nil {
			return record, err
		}
		return record, nil
	}
	return nil, io.EOF
}

// ReadAll reads all remaining records. A successful call returns err ==
// nil, not io.EOF.
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// initialize buffers the input and runs the structural pipeline once.
func (r *Reader) initialize() error {
	r.initialized = true

	if r.Comma < 1 || r.Comma > 0x7f {
		return ErrInvalidSeparator
	}
	table, err := NewTable(byte(r.Comma))
	if err != nil {
		return err
	}

	buf, err := io.ReadAll(r.r)
	if err != nil {
		return err
	}

	rows, err := RowsWithTable(buf, table)
	if err != nil {
		return err
	}

	r.buf = buf
	r.rows = rows
	return nil
}

// checkFieldCount enforces the FieldsPerRecord contract.
func (r *Reader) checkFieldCount(record []string) error {
	switch {
	case r.FieldsPerRecord > 0:
		if len(record) != r.FieldsPerRecord {
			return &ParseError{Record: r.record, Err: ErrFieldCount}
		}
	case r.FieldsPerRecord == 0:
		r.FieldsPerRecord = len(record)
	}
	return nil
}

// isBlankRow reports whether a row is an empty line: a single field whose
// raw bytes are empty once a CRLF terminator's carriage return is trimmed.
// A quoted empty field ("") is a real record, not a blank line.
func (r *Reader) isBlankRow(row []FieldRef) bool {
	return len(row) == 1 && len(trimTrailingCR(row[0].Bytes(r.buf))) == 0
}

// materialize decodes one row of raw field ranges into owned strings.
func (r *Reader) materialize(row []FieldRef) []string {
	record := r.allocateRecord(len(row))
	for i, ref := range row {
		raw := ref.Bytes(r.buf)
		if i == len(row)-1 {
			raw = trimTrailingCR(raw)
		}
		record[i] = decodeField(raw)
	}
	return record
}

// allocateRecord returns a record slice, reusing the previous one if
// ReuseRecord is enabled.
func (r *Reader) allocateRecord(fieldCount int) []string {
	if r.ReuseRecord && cap(r.lastRecord) >= fieldCount {
		r.lastRecord = r.lastRecord[:fieldCount]
		return r.lastRecord
	}
	record := make([]string, fieldCount)
	if r.ReuseRecord {
		r.lastRecord = record
	}
	return record
}

// trimTrailingCR drops one carriage return preceding the record terminator,
// normalizing CRLF-terminated records.
func trimTrailingCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

// decodeField converts one raw field into its owned string value. A field
// wrapped in quotes is unwrapped and unescaped; anything else is taken
// verbatim.
func decodeField(raw []byte) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return unescapeQuoted(raw[1 : len(raw)-1])
	}
	return string(raw)
}

// unescapeQuoted rewrites quoted-field content: "" becomes " and CRLF
// becomes LF.
func unescapeQuoted(content []byte) string {
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		b := content[i]
		switch {
		case b == '"' && i+1 < len(content) && content[i+1] == '"':
			out = append(out, '"')
			i++
		case b == '\r' && i+1 < len(content) && content[i+1] == '\n':
			out = append(out, '\n')
			i++
		default:
			out = append(out, b)
		}
	}
	return string(out)
}
