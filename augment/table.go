package augment

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Table is a header plus data rows of string cells. Data rows may be
// shorter than the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// cell returns row[idx], treating positions past the end as empty.
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// ReadTable parses CSV from r. The first record is the header. Bare quotes
// inside unquoted cells are kept as text. A blank line between records is
// an error; trailing blank lines are ignored.
func ReadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		off := reader.InputOffset()
		if blankLineAt(data, off) {
			line := bytes.Count(data[:off], []byte("\n")) + 1
			return nil, fmt.Errorf("failed to read CSV: blank line %d", line)
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		records = append(records, record)
	}
	if len(records) < 1 {
		return nil, errors.New("CSV file is empty or missing header")
	}

	return &Table{
		Header: records[0],
		Rows:   records[1:],
	}, nil
}

// blankLineAt reports whether data holds an empty line at off that is
// followed by more content.
func blankLineAt(data []byte, off int64) bool {
	rest := data[off:]
	if !bytes.HasPrefix(rest, []byte("\n")) && !bytes.HasPrefix(rest, []byte("\r\n")) {
		return false
	}
	return len(bytes.TrimLeft(rest, "\r\n")) > 0
}

// WriteTable writes the header and rows as CSV.
func WriteTable(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}
