package search

import (
	"github.com/tidwall/gjson"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/store"
)

// JSONColumns are business fields holding nested structures. They are
// always stored as compact JSON text, "null" when absent.
var JSONColumns = []string{"categories", "coordinates", "transactions", "location"}

func isJSONColumn(col string) bool {
	for _, c := range JSONColumns {
		if c == col {
			return true
		}
	}
	return false
}

type record struct {
	page   int
	fields map[string]gjson.Result
}

// Table flattens the result set into one row per business. Columns are
// the union of business fields in first-seen order, followed by the
// metadata columns.
func (rs *ResultSet) Table() *store.Table {
	var (
		columns []string
		seen    = make(map[string]bool)
		records []record
	)
	add := func(col string) {
		if !seen[col] {
			seen[col] = true
			columns = append(columns, col)
		}
	}

	for i, page := range rs.Pages {
		for _, raw := range page.Businesses {
			parsed := gjson.ParseBytes(raw)
			if !parsed.IsObject() {
				continue
			}
			rec := record{page: i, fields: make(map[string]gjson.Result)}
			parsed.ForEach(func(key, value gjson.Result) bool {
				add(key.String())
				rec.fields[key.String()] = value
				return true
			})
			records = append(records, rec)
		}
	}
	for _, col := range JSONColumns {
		add(col)
	}

	t := &store.Table{
		Columns: append(columns, store.MetadataColumns...),
		Rows:    make([][]any, 0, len(records)),
	}

	loadedAt := rs.LoadedAt.Format(store.LoadedAtLayout)
	complete := completeLabel(rs.Complete)
	for _, rec := range records {
		row := make([]any, 0, len(t.Columns))
		for _, col := range columns {
			row = append(row, cell(col, rec.fields[col]))
		}
		row = append(row, rs.Pages[rec.page].URL, loadedAt, rs.Location, rs.Term.Label(), complete)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// cell converts a business field to its stored text form.
func cell(col string, v gjson.Result) any {
	if isJSONColumn(col) {
		if !v.Exists() {
			return "null"
		}
		return compact(v)
	}

	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.String:
		return v.Str
	case gjson.JSON:
		return compact(v)
	default:
		return v.Raw
	}
}

// compact strips insignificant whitespace from objects and arrays.
// Scalars are returned as their raw JSON text.
func compact(v gjson.Result) string {
	if v.Type != gjson.JSON {
		return v.Raw
	}
	return v.Get("@ugly").Raw
}

// completeLabel renders the _is_complete flag.
func completeLabel(complete bool) string {
	if complete {
		return "True"
	}
	return "False"
}
