package config

import (
	"strings"
	"testing"
)

func validPipeline() Pipeline {
	return Pipeline{
		Job:      "cafe_sales",
		Source:   Source{Kind: "file", File: SourceFile{Path: "data/sales.csv"}},
		Parser:   Parser{Kind: "csv"},
		Cleaning: Cleaning{CompletionMode: "strict"},
		Storage: Storage{
			Kind: "sqlite",
			DB:   DBConfig{DSN: "clean.db", Table: "cleaned_sales"},
		},
	}
}

func hasIssue(issues []Issue, sev IssueSeverity, path string) bool {
	for _, i := range issues {
		if i.Severity == sev && i.Path == path {
			return true
		}
	}
	return false
}

/*
TestValidatePipeline exercises the static checks: a well-formed pipeline
yields no issues, and each broken field surfaces at its dotted path with the
right severity.
*/
func TestValidatePipeline(t *testing.T) {
	if issues := ValidatePipeline(validPipeline()); len(issues) != 0 {
		t.Fatalf("valid pipeline produced issues: %v", issues)
	}

	tests := []struct {
		name   string
		mutate func(*Pipeline)
		sev    IssueSeverity
		path   string
	}{
		{"empty job warns", func(p *Pipeline) { p.Job = " " }, SeverityWarning, "job"},
		{"empty source kind", func(p *Pipeline) { p.Source.Kind = "" }, SeverityError, "source.kind"},
		{"unknown source kind warns", func(p *Pipeline) { p.Source.Kind = "s3" }, SeverityWarning, "source.kind"},
		{"file source needs path", func(p *Pipeline) { p.Source.File.Path = "" }, SeverityError, "source.file.path"},
		{"empty parser kind", func(p *Pipeline) { p.Parser.Kind = "" }, SeverityError, "parser.kind"},
		{"unsupported parser kind", func(p *Pipeline) { p.Parser.Kind = "parquet" }, SeverityError, "parser.kind"},
		{"bad completion mode", func(p *Pipeline) { p.Cleaning.CompletionMode = "drop" }, SeverityError, "cleaning.completion_mode"},
		{"negative workers", func(p *Pipeline) { p.Cleaning.Workers = -1 }, SeverityError, "cleaning.workers"},
		{"empty catalog item", func(p *Pipeline) { p.Cleaning.Catalog = map[string]float64{"": 1} }, SeverityError, "cleaning.catalog"},
		{"non-positive price warns", func(p *Pipeline) { p.Cleaning.Catalog = map[string]float64{"tea": 0} }, SeverityWarning, "cleaning.catalog.tea"},
		{"unsupported storage kind", func(p *Pipeline) { p.Storage.Kind = "redis" }, SeverityError, "storage.kind"},
		{"db sink needs dsn", func(p *Pipeline) { p.Storage.DB.DSN = "" }, SeverityError, "storage.db.dsn"},
		{"db sink needs table", func(p *Pipeline) { p.Storage.DB.Table = "" }, SeverityError, "storage.db.table"},
		{"negative batch size", func(p *Pipeline) { p.Storage.BatchSize = -5 }, SeverityError, "storage.batch_size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validPipeline()
			tc.mutate(&p)
			issues := ValidatePipeline(p)
			if !hasIssue(issues, tc.sev, tc.path) {
				t.Fatalf("issues=%v; want %s at %s", issues, tc.sev, tc.path)
			}
		})
	}
}

/*
TestValidateStorageNone verifies that kind "none" (and empty) skips the
database checks entirely.
*/
func TestValidateStorageNone(t *testing.T) {
	for _, kind := range []string{"", "none"} {
		p := validPipeline()
		p.Storage = Storage{Kind: kind}
		if issues := ValidatePipeline(p); len(issues) != 0 {
			t.Fatalf("kind=%q: issues=%v; want none", kind, issues)
		}
	}
}

/*
TestIssueError checks the formatted issue string used when an Issue is
surfaced as an error.
*/
func TestIssueError(t *testing.T) {
	i := Issue{Severity: SeverityError, Path: "parser.kind", Message: "bad"}
	got := i.Error()
	if !strings.Contains(got, "error") || !strings.Contains(got, "parser.kind") || !strings.Contains(got, "bad") {
		t.Fatalf("Error()=%q", got)
	}
}
