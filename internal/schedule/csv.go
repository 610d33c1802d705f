package schedule

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"tourneyreel/internal/services"
)

type table struct {
	columns map[string]int
	rows    [][]string
}

// readTable reads a CSV export with a header row. Trailing blank rows, which
// spreadsheet exports often carry, are discarded.
func readTable(r io.Reader, operation string) (table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table{}, services.Wrap(services.ErrValidation, "schedule", operation, "empty CSV", nil)
	}
	if err != nil {
		return table{}, services.Wrap(services.ErrValidation, "schedule", operation, "read header", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeHeader(name)
		if _, dup := columns[key]; !dup && key != "" {
			columns[key] = i
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return table{}, services.Wrap(services.ErrValidation, "schedule", operation, "read rows", err)
	}
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return table{columns: columns, rows: rows}, nil
}

func (t table) require(operation string, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := t.columns[normalizeHeader(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrValidation, "schedule", operation,
			fmt.Sprintf("missing column(s): %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}

func (t table) has(name string) bool {
	_, ok := t.columns[normalizeHeader(name)]
	return ok
}

func (t table) cell(row []string, name string) string {
	idx, ok := t.columns[normalizeHeader(name)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
