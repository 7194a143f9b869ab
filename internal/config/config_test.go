package config

import (
	"encoding/json"
	"reflect"
	"testing"
)

/*
TestPipelineDecode decodes a representative pipeline file and checks the
typed model, including free-form parser options.
*/
func TestPipelineDecode(t *testing.T) {
	src := `{
	  "job": "cafe_sales",
	  "source": { "kind": "file", "file": { "path": "data/sales.csv" } },
	  "parser": {
	    "kind": "csv",
	    "options": {
	      "has_header": true,
	      "comma": ";",
	      "encoding": "windows-1252",
	      "header_map": { "Transaction ID": "transaction_id" }
	    }
	  },
	  "cleaning": {
	    "completion_mode": "average_fill",
	    "workers": 4,
	    "catalog": { "bagel": 2.25 }
	  },
	  "storage": {
	    "kind": "postgres",
	    "db": { "dsn": "postgres://localhost/sales", "table": "public.cleaned_sales", "auto_create_table": true },
	    "batch_size": 200
	  }
	}`

	var p Pipeline
	if err := json.Unmarshal([]byte(src), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if p.Job != "cafe_sales" || p.Source.Kind != "file" || p.Source.File.Path != "data/sales.csv" {
		t.Fatalf("source decoded wrong: %+v", p)
	}
	if p.Parser.Kind != "csv" {
		t.Fatalf("parser.kind=%q", p.Parser.Kind)
	}
	if !p.Parser.Options.Bool("has_header", false) {
		t.Fatalf("has_header lost")
	}
	if got := p.Parser.Options.Rune("comma", ','); got != ';' {
		t.Fatalf("comma=%q; want ';'", got)
	}
	if got := p.Parser.Options.String("encoding", ""); got != "windows-1252" {
		t.Fatalf("encoding=%q", got)
	}
	hm := p.Parser.Options.StringMap("header_map")
	if !reflect.DeepEqual(hm, map[string]string{"Transaction ID": "transaction_id"}) {
		t.Fatalf("header_map=%v", hm)
	}
	if p.Cleaning.CompletionMode != "average_fill" || p.Cleaning.Workers != 4 {
		t.Fatalf("cleaning decoded wrong: %+v", p.Cleaning)
	}
	if p.Cleaning.Catalog["bagel"] != 2.25 {
		t.Fatalf("catalog=%v", p.Cleaning.Catalog)
	}
	if p.Storage.Kind != "postgres" || !p.Storage.DB.AutoCreateTable || p.Storage.BatchSize != 200 {
		t.Fatalf("storage decoded wrong: %+v", p.Storage)
	}
}

/*
TestOptionsDefaults verifies the typed accessors fall back to defaults for
missing keys and for values of the wrong type, and that null/missing options
decode to a usable empty map.
*/
func TestOptionsDefaults(t *testing.T) {
	o := Options{"n": 3.0, "s": "x", "b": true}

	if got := o.String("missing", "d"); got != "d" {
		t.Fatalf("String missing=%q", got)
	}
	if got := o.String("n", "d"); got != "d" {
		t.Fatalf("String wrong-type=%q", got)
	}
	if got := o.Bool("s", true); got != true {
		t.Fatalf("Bool wrong-type=%v", got)
	}
	if got := o.Rune("missing", '\t'); got != '\t' {
		t.Fatalf("Rune missing=%q", got)
	}
	if got := o.StringMap("missing"); got == nil || len(got) != 0 {
		t.Fatalf("StringMap missing=%v; want empty non-nil", got)
	}

	var p Parser
	if err := json.Unmarshal([]byte(`{"kind":"csv","options":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Options == nil {
		t.Fatalf("null options must decode to an empty map")
	}
	if got := p.Options.Bool("has_header", true); got != true {
		t.Fatalf("default lookup on empty options=%v", got)
	}
}
