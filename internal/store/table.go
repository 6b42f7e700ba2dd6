package store

// Metadata columns appended to every result row.
const (
	ColPageURL    = "_page_url"
	ColLoadedAt   = "_loaded_at"
	ColLocation   = "_location"
	ColTerm       = "_term"
	ColIsComplete = "_is_complete"
)

// LoadedAtLayout formats _loaded_at. It is fixed width so stored values
// sort lexically.
const LoadedAtLayout = "2006-01-02T15:04:05.000000Z"

// MetadataColumns lists the metadata columns in table order.
var MetadataColumns = []string{ColPageURL, ColLoadedAt, ColLocation, ColTerm, ColIsComplete}

func isMetadata(col string) bool {
	for _, c := range MetadataColumns {
		if c == col {
			return true
		}
	}
	return false
}

// Table is a flat, column-ordered batch of rows. Cells are strings or nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Value returns the cell at row/col, or nil when either is out of range.
func (t *Table) Value(row int, col string) any {
	i := t.Index(col)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][i]
}

// Strings renders row as strings, with nil as "".
func (t *Table) Strings(row int) []string {
	out := make([]string, len(t.Columns))
	for i := range t.Columns {
		if i >= len(t.Rows[row]) {
			continue
		}
		if s, ok := t.Rows[row][i].(string); ok {
			out[i] = s
		}
	}
	return out
}
