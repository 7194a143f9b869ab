// Package xlsx reads an Excel workbook into raw records for the cleaning
// pipeline. Sales exports frequently arrive as .xlsx rather than CSV; this
// adapter keeps the core indifferent to the difference.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"cleanse/internal/schema"
)

// Options configures the XLSX reader.
type Options struct {
	// Sheet names the worksheet to read; empty selects the first sheet.
	Sheet string

	// HeaderMap maps source header names to canonical column names, applied
	// after the default canonicalization (lowercase, spaces to underscores).
	HeaderMap map[string]string
}

// Parser reads XLSX input according to Options.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// ReadAll parses the selected sheet into raw records. The first row is always
// treated as the header; cells arrive as the display strings excelize
// produces, which is exactly the free-form text the normalizer expects.
func (p *Parser) ReadAll(r io.Reader) ([]schema.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}
	defer f.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := p.canonicalHeader(rows[0])
	known := make(map[string]struct{}, len(schema.Columns))
	for _, c := range schema.Columns {
		known[c] = struct{}{}
	}

	out := make([]schema.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(schema.RawRecord, len(schema.Columns))
		for i, col := range header {
			if _, ok := known[col]; !ok {
				continue
			}
			v := ""
			if i < len(row) {
				v = row[i]
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *Parser) canonicalHeader(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		orig := strings.TrimSpace(h)
		canonical := strings.ReplaceAll(strings.ToLower(orig), " ", "_")
		if m, ok := p.opt.HeaderMap[orig]; ok && m != "" {
			canonical = m
		} else if m, ok := p.opt.HeaderMap[canonical]; ok && m != "" {
			canonical = m
		}
		out[i] = canonical
	}
	return out
}
