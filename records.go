package csvbits

// =============================================================================
// Zero-Copy Row Extraction
// =============================================================================

// FieldRef is the byte range [Start, End) of one raw field within the input
// buffer, surrounding quotes included verbatim. Consecutive fields are
// separated by exactly one delimiter byte.
type FieldRef struct {
	Start int
	End   int
}

// Bytes returns the field's raw bytes within buf. The result aliases buf.
func (f FieldRef) Bytes(buf []byte) []byte {
	return buf[f.Start:f.End]
}

// Len returns the raw field length in bytes.
func (f FieldRef) Len() int {
	return f.End - f.Start
}

// Rows tokenizes buf and groups the boundary sequence into rows of raw
// field ranges. No field content is copied; every FieldRef aliases buf.
// Blank lines are retained as single empty fields — skipping them is a
// materialization policy and belongs to the Reader layer.
func Rows(buf []byte) ([][]FieldRef, error) {
	return RowsWithTable(buf, defaultTable)
}

// RowsWithTable is Rows with a substituted classification table.
func RowsWithTable(buf []byte, t *Table) ([][]FieldRef, error) {
	bp := boundaryPool.Get().(*[]Boundary)
	defer boundaryPool.Put(bp)

	bounds, err := appendTokens((*bp)[:0], buf, t)
	*bp = bounds[:0]
	if err != nil {
		return nil, err
	}
	if len(bounds) == 0 {
		return nil, nil
	}

	records := 0
	for _, b := range bounds {
		if b.Kind == RecordEnd {
			records++
		}
	}

	rows := make([][]FieldRef, 0, records)
	var fields []FieldRef
	start := 0
	for _, b := range bounds {
		fields = append(fields, FieldRef{Start: start, End: b.Offset})
		start = b.Offset + 1
		if b.Kind == RecordEnd {
			rows = append(rows, fields)
			fields = nil
		}
	}
	return rows, nil
}
