package csvfiles

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/openroyale/clan-exporter/pkg/tabular"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// SanitizeName turns a table name into a filesystem safe file name stem.
func SanitizeName(tableName string) string {
	return unsafeChars.ReplaceAllString(tableName, "_")
}

// Write stores each non empty dataset as <outputDir>/<sanitized name>.csv
// and returns the paths that were written. Empty tables are skipped.
func Write(ctx context.Context, outputDir string, tables map[string]*tabular.Dataset) ([]string, error) {
	log := logging.GetFromContext(ctx)

	err := os.MkdirAll(outputDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(tables))

	for _, name := range names {
		dataset := tables[name]

		if dataset.Empty() {
			log.Info("skipping empty table", "table", name)
			continue
		}

		filePath := filepath.Join(outputDir, SanitizeName(name)+".csv")

		err = writeDataset(filePath, dataset)
		if err != nil {
			return written, err
		}

		log.Info("saved table", "table", name, "path", filePath, "rows", dataset.Len())
		written = append(written, filePath)
	}

	return written, nil
}

func writeDataset(filePath string, dataset *tabular.Dataset) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	columns := dataset.Columns()

	err = w.Write(columns)
	if err != nil {
		return fmt.Errorf("failed to write header for %s: %w", filePath, err)
	}

	record := make([]string, len(columns))

	for _, row := range dataset.Rows() {
		for i, col := range columns {
			value, ok := row[col]
			if !ok {
				record[i] = ""
				continue
			}
			record[i] = formatValue(value)
		}

		err = w.Write(record)
		if err != nil {
			return fmt.Errorf("failed to write row to %s: %w", filePath, err)
		}
	}

	w.Flush()

	return w.Error()
}

func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}
