// Package config defines the canonical, JSON-serializable configuration model
// for the cleaning application. It is intentionally small, explicit, and
// dependency-free so that pipelines can be loaded from disk and passed through
// the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":      "cafe_sales",
//	  "source":   { "kind": "file", "file": { "path": "data/sales.csv" } },
//	  "parser":   { "kind": "csv", "options": { "has_header": true } },
//	  "cleaning": { "completion_mode": "strict", "workers": 4 },
//	  "storage":  { "kind": "sqlite", "db": { "dsn": "clean.db", "table": "cleaned_sales" } }
//	}
package config

import "encoding/json"

// Pipeline describes one full cleaning run in JSON. It is the top-level
// object decoded from a pipeline file.
type Pipeline struct {
	// Job labels metrics, logs, and the run report.
	Job string `json:"job"`

	// Source describes where input data comes from.
	Source Source `json:"source"`

	// Parser configures how raw bytes become raw records (CSV or XLSX).
	Parser Parser `json:"parser"`

	// Cleaning configures the five-stage cleaning core.
	Cleaning Cleaning `json:"cleaning"`

	// Storage describes where cleaned records are written.
	Storage Storage `json:"storage"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// Parser selects how to parse the raw source into rows.
type Parser struct {
	// Kind selects the parser implementation: "csv" or "xlsx".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys: has_header (bool), comma (string), trim_space
	// (bool), encoding (string), header_map (object). For XLSX: sheet
	// (string), header_map (object).
	Options Options `json:"options"`
}

// Cleaning configures the cleaning core.
type Cleaning struct {
	// CompletionMode selects the terminal policy: "strict" (default) or
	// "average_fill".
	CompletionMode string `json:"completion_mode"`

	// Workers bounds per-record parallelism within a stage; <= 1 runs
	// sequentially.
	Workers int `json:"workers,omitempty"`

	// Catalog optionally overrides the built-in item -> price table. Fixed
	// domain data in production; overridable for tests and other menus.
	Catalog map[string]float64 `json:"catalog,omitempty"`
}

// Storage selects the sink used to persist cleaned records.
type Storage struct {
	// Kind selects the storage implementation: "sqlite", "postgres",
	// "mysql", or "none" to skip persistence.
	Kind string `json:"kind"`

	// DB carries the database sink options.
	DB DBConfig `json:"db"`

	// BatchSize bounds rows per insert batch; 0 picks a default.
	BatchSize int `json:"batch_size,omitempty"`
}

// DBConfig configures a database sink.
type DBConfig struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn"`

	// Table is the destination table name (schema-qualified where the
	// backend supports it, e.g. "public.cleaned_sales").
	Table string `json:"table"`

	// AutoCreateTable creates the destination table if it does not exist.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It performs only
// minimal type coercion and returns provided defaults when a key is absent or
// of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a
// string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Useful for single-character parser settings such as a CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object decodes to a non-nil, empty Options map. This removes the
// need to nil-check Options at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
