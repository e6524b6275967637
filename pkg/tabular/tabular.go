package tabular

import "sort"

// Row is one flat record extracted from the scalar fields of a single
// JSON object.
type Row map[string]any

// Dataset is an ordered collection of rows that belong to the same table.
// Rows may carry different field sets. The column union is accumulated in
// first-observed order, with the fields of each appended row considered in
// sorted order to keep the header deterministic.
type Dataset struct {
	rows    []Row
	columns []string
	seen    map[string]struct{}
}

func NewDataset() *Dataset {
	return &Dataset{seen: map[string]struct{}{}}
}

func (d *Dataset) Append(r Row) {
	fields := make([]string, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		if _, ok := d.seen[f]; !ok {
			d.seen[f] = struct{}{}
			d.columns = append(d.columns, f)
		}
	}

	d.rows = append(d.rows, r)
}

func (d *Dataset) Rows() []Row {
	return d.rows
}

func (d *Dataset) Columns() []string {
	return d.columns
}

func (d *Dataset) Len() int {
	return len(d.rows)
}

func (d *Dataset) Empty() bool {
	return len(d.rows) == 0
}
