// Package augment injects <img> markup into a CSV description column from a
// comma separated list of image URLs.
package augment

import (
	"fmt"
	"strings"
)

const (
	DefaultImageColumn       = "images_url"
	DefaultDescriptionColumn = "description"
	DefaultStyle             = "max-width: 100%; height: auto; margin: 10px 0; display: block;"
)

// Placement decides where generated images go relative to the description.
type Placement string

const (
	PlacementAppend  Placement = "append"
	PlacementPrepend Placement = "prepend"
)

// Valid reports whether p performs an insertion. Other values are accepted
// by Augment but leave descriptions unchanged.
func (p Placement) Valid() bool {
	return p == PlacementAppend || p == PlacementPrepend
}

// Options configures Augment. Zero values fall back to the defaults above
// and PlacementAppend.
type Options struct {
	ImageColumn       string
	DescriptionColumn string
	Style             string
	Placement         Placement
}

func (o Options) withDefaults() Options {
	if o.ImageColumn == "" {
		o.ImageColumn = DefaultImageColumn
	}
	if o.DescriptionColumn == "" {
		o.DescriptionColumn = DefaultDescriptionColumn
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Placement == "" {
		o.Placement = PlacementAppend
	}
	return o
}

// RowReport describes what happened to one data row.
type RowReport struct {
	// Line is the 1-based line of the row in the file, header being line 1.
	Line   int
	Images int
}

// ParseImageURLs splits raw on commas, trims each piece and drops empties.
// Order is preserved.
func ParseImageURLs(raw string) []string {
	if raw == "" {
		return nil
	}
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// AcceptURL reports whether u can be rendered: an absolute http(s) URL or
// anything containing a slash, which is taken as a relative path.
func AcceptURL(u string) bool {
	return strings.HasPrefix(u, "http://") ||
		strings.HasPrefix(u, "https://") ||
		strings.Contains(u, "/")
}

// RenderFragments builds one <img> element per accepted URL. Numbering
// counts accepted URLs only and starts at 1 for every call.
func RenderFragments(urls []string, style string) []string {
	var tags []string
	for _, u := range urls {
		if !AcceptURL(u) {
			continue
		}
		tags = append(tags, fmt.Sprintf(`<img src="%s" alt="Product Image %d" style="%s" />`, u, len(tags)+1, style))
	}
	return tags
}

// Merge places the joined fragments into description according to p.
func Merge(description string, fragments []string, p Placement) string {
	if len(fragments) == 0 {
		return description
	}
	images := strings.Join(fragments, "\n")
	hasText := strings.TrimSpace(description) != ""

	switch p {
	case PlacementAppend:
		if hasText {
			return description + "\n\n" + images
		}
		return description + images
	case PlacementPrepend:
		if hasText {
			return images + "\n\n" + description
		}
		return images
	default:
		return description
	}
}

// Augment returns a copy of t with image markup merged into the description
// column of every row that has at least one accepted URL. Both columns must
// be present in the header; nothing is processed otherwise.
func Augment(t *Table, opts Options) (*Table, error) {
	out, _, err := augment(t, opts)
	return out, err
}

func augment(t *Table, opts Options) (*Table, []RowReport, error) {
	opts = opts.withDefaults()

	imgIdx := t.ColumnIndex(opts.ImageColumn)
	if imgIdx < 0 {
		return nil, nil, missingColumn(opts.ImageColumn)
	}
	descIdx := t.ColumnIndex(opts.DescriptionColumn)
	if descIdx < 0 {
		return nil, nil, missingColumn(opts.DescriptionColumn)
	}

	out := t.Clone()
	reports := make([]RowReport, 0, len(out.Rows))
	for i, row := range out.Rows {
		fragments := RenderFragments(ParseImageURLs(cell(row, imgIdx)), opts.Style)
		reports = append(reports, RowReport{Line: i + 2, Images: len(fragments)})
		if len(fragments) == 0 {
			continue
		}

		merged := Merge(cell(row, descIdx), fragments, opts.Placement)
		if merged == cell(row, descIdx) {
			continue
		}
		for len(row) <= descIdx {
			row = append(row, "")
		}
		row[descIdx] = merged
		out.Rows[i] = row
	}

	return out, reports, nil
}
