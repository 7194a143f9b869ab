// Package csv reads a delimited text export into raw records for the
// cleaning pipeline. The reader is deliberately lenient: real-world sales
// exports carry BOMs, stray quotes, ragged rows, and legacy single-byte
// encodings, and a cell the reader cannot make sense of should degrade to
// text the normalizer classifies, not abort the batch.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"cleanse/internal/schema"
)

// Options configures the CSV reader. All fields are optional; zero values get
// sensible defaults.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	// Without a header, columns are taken positionally in schema.Columns
	// order.
	HasHeader bool

	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical column names, applied
	// after the default canonicalization (lowercase, spaces to underscores).
	HeaderMap map[string]string

	// Encoding names a legacy source encoding to decode from. Supported:
	// "windows-1252", "latin-1"/"iso-8859-1". Empty means UTF-8.
	Encoding string
}

// Parser reads CSV input according to Options. It is safe to reuse across
// inputs but is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// ReadAll parses the whole input into raw records. Rows shorter than the
// header are padded with empty cells; extra cells are ignored. Only the eight
// canonical columns are retained.
func (p *Parser) ReadAll(r io.Reader) ([]schema.RawRecord, error) {
	if p.opt.Encoding != "" {
		enc, err := lookupEncoding(p.opt.Encoding)
		if err != nil {
			return nil, err
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}

	header := schema.Columns
	if p.opt.HasHeader {
		raw, err := cr.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read header: %w", err)
		}
		header = p.canonicalHeader(raw)
	}

	known := make(map[string]struct{}, len(schema.Columns))
	for _, c := range schema.Columns {
		known[c] = struct{}{}
	}

	var out []schema.RawRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		rec := make(schema.RawRecord, len(schema.Columns))
		for i, col := range header {
			if _, ok := known[col]; !ok {
				continue
			}
			v := ""
			if i < len(row) {
				v = row[i]
			}
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	return out, nil
}

// canonicalHeader normalizes raw header cells to canonical column names:
// strip the BOM on the first cell, trim, lowercase, replace spaces with
// underscores, then apply the configured HeaderMap on the original trimmed
// form and the canonical form.
func (p *Parser) canonicalHeader(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
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

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	}
	return nil, fmt.Errorf("csv: unsupported encoding %q", name)
}
