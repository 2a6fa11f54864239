package comments

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Header is the exact column layout of a comments CSV.
var Header = []string{"name", "title of comment", "content of comment"}

// Comment is one review to post on the product page.
type Comment struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ReadFile loads comments from a CSV file. The file must exist and carry
// Header as its first row.
func ReadFile(path string) ([]Comment, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("CSV file %s not found", path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses comments from CSV in r. Rows with missing trailing cells are
// padded with empty values; Submitter rejects them when they lack a name or
// content.
func Read(r io.Reader) ([]Comment, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, errors.New("CSV file is empty or missing header")
	}
	if !equalHeader(records[0]) {
		return nil, fmt.Errorf("invalid CSV headers: expected %q, got %q", Header, records[0])
	}

	comments := make([]Comment, 0, len(records)-1)
	for _, row := range records[1:] {
		for len(row) < len(Header) {
			row = append(row, "")
		}
		comments = append(comments, Comment{Name: row[0], Title: row[1], Content: row[2]})
	}
	return comments, nil
}

// WriteFile stores comments as CSV in the layout Read expects.
func WriteFile(path string, comments []Comment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, comments); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Write(w io.Writer, comments []Comment) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, c := range comments {
		if err := writer.Write([]string{c.Name, c.Title, c.Content}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func equalHeader(got []string) bool {
	if len(got) != len(Header) {
		return false
	}
	for i := range Header {
		// tolerate a UTF-8 BOM on the first cell
		if strings.TrimPrefix(got[i], "\ufeff") != Header[i] {
			return false
		}
	}
	return true
}
