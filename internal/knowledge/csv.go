package knowledge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Dataset column names.
const (
	ColumnCategory    = "Issue_Category"
	ColumnIssue       = "Customer_Issue"
	ColumnRemediation = "Tech_Response"
)

// ReadCSV parses a dataset with a header row. The three required columns may
// appear in any position; other columns are ignored. Rows whose three fields
// are all blank are skipped.
func ReadCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("knowledge csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("knowledge csv: read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		// Exported spreadsheets often carry a BOM on the first cell.
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, col := range []string{ColumnCategory, ColumnIssue, ColumnRemediation} {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("knowledge csv: missing column(s): %s", strings.Join(missing, ", "))
	}

	field := func(rec []string, col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("knowledge csv: %w", err)
		}
		if e, ok := newEntry(field(rec, ColumnCategory), field(rec, ColumnIssue), field(rec, ColumnRemediation)); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// newEntry trims the three fields; ok is false for an all-blank row.
func newEntry(category, issue, remediation string) (Entry, bool) {
	e := Entry{
		Category:    strings.TrimSpace(category),
		IssueLabel:  strings.TrimSpace(issue),
		Remediation: strings.TrimSpace(remediation),
	}
	if e.Category == "" && e.IssueLabel == "" && e.Remediation == "" {
		return Entry{}, false
	}
	return e, true
}
