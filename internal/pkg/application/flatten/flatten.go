package flatten

import (
	"sort"

	"github.com/openroyale/clan-exporter/pkg/tabular"
)

const RootTable string = "root"

// Flatten walks a decoded JSON document depth first and groups the scalar
// fields of every object into a bucket named after the dot joined path at
// which the object was found. Array elements are treated as peer instances
// of the same table and do not extend the path.
func Flatten(doc any) map[string]*tabular.Dataset {
	out := map[string]*tabular.Dataset{}
	flattenInto(doc, RootTable, out)
	return out
}

func flattenInto(v any, path string, out map[string]*tabular.Dataset) {
	switch value := v.(type) {
	case map[string]any:
		row := tabular.Row{}

		// decoded objects have no stable key order, so iterate sorted
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			switch value[k].(type) {
			case map[string]any, []any:
				flattenInto(value[k], path+"."+k, out)
			default:
				row[k] = value[k]
			}
		}

		// objects without any scalar fields contribute no row of their own
		if len(row) > 0 {
			dataset, ok := out[path]
			if !ok {
				dataset = tabular.NewDataset()
				out[path] = dataset
			}
			dataset.Append(row)
		}
	case []any:
		for _, item := range value {
			flattenInto(item, path, out)
		}
	}

	// scalars outside of an object cannot form a row and are dropped
}
