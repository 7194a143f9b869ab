package cleaner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cleanse/internal/catalog"
	"cleanse/internal/metrics"
	"cleanse/internal/schema"
)

// MalformedRecordError reports a batch that violates the transaction_id
// precondition (a missing or duplicated identifier). It is fatal: the
// pipeline refuses to run on such a batch.
type MalformedRecordError struct {
	Line   int    // 1-based record position in the input batch
	ID     string // offending transaction_id, "" when missing
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("record %d: %s: transaction_id %q", e.Line, e.Reason, e.ID)
}

// Config configures a pipeline run.
type Config struct {
	// Catalog is the item<->price reference table; nil selects the default
	// menu catalog. Injected so tests can substitute alternate catalogs.
	Catalog *catalog.Catalog

	// Mode is the terminal completion strategy; empty selects strict.
	Mode Mode

	// Workers bounds per-record parallelism within stages 1-4. Values <= 1
	// run sequentially.
	Workers int

	// Job labels metrics and the run report; empty selects "cleanse".
	Job string
}

// Result holds the outcome of one run: the record set as it stood after each
// stage, the final set, and the run report.
type Result struct {
	Final  []*schema.Transaction
	Report Report

	snapshots map[string][]*schema.Transaction
}

// Snapshot returns a deep copy of the record set taken right after the named
// stage ("normalize", "impute_price", "infer_item", "resolve_arithmetic",
// "complete"). It returns nil for unknown names.
func (r *Result) Snapshot(name string) []*schema.Transaction {
	return r.snapshots[name]
}

// Pipeline runs the five cleaning stages in strict sequence over a fully
// materialized batch. Data flows forward only: stage N's whole output set is
// stage N+1's whole input set, because the completion policy needs aggregate
// statistics over the entire intermediate set.
type Pipeline struct {
	cfg        Config
	normalizer Normalizer
	stages     []Stage
}

// New assembles a pipeline from the configuration, applying defaults for
// unset fields.
func New(cfg Config) *Pipeline {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeStrict
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Job == "" {
		cfg.Job = "cleanse"
	}
	return &Pipeline{
		cfg:        cfg,
		normalizer: Normalizer{Workers: cfg.Workers},
		stages: []Stage{
			PriceImputer{Catalog: cfg.Catalog, Workers: cfg.Workers},
			ItemInferencer{Catalog: cfg.Catalog, Workers: cfg.Workers},
			ArithmeticResolver{Workers: cfg.Workers},
			CompletionPolicy{Mode: cfg.Mode},
		},
	}
}

// Run validates the batch precondition, executes the stages, and returns the
// per-stage snapshots plus the final cleaned set. A precondition violation
// surfaces as *MalformedRecordError and nothing else runs.
func (p *Pipeline) Run(ctx context.Context, raws []schema.RawRecord) (*Result, error) {
	if err := checkTransactionIDs(raws); err != nil {
		return nil, err
	}

	res := &Result{snapshots: make(map[string][]*schema.Transaction, len(p.stages)+1)}
	res.Report.RunID = uuid.NewString()
	res.Report.Mode = p.cfg.Mode
	res.Report.Input = len(raws)
	start := time.Now()

	stageStart := time.Now()
	recs := p.normalizer.Run(ctx, raws)
	p.record(res, p.normalizer.Name(), len(raws), recs, nil, time.Since(stageStart))

	for _, s := range p.stages {
		prev := res.snapshots[res.Report.Stages[len(res.Report.Stages)-1].Name]
		stageStart = time.Now()
		recs = s.Apply(ctx, recs)
		p.record(res, s.Name(), len(prev), recs, prev, time.Since(stageStart))
	}

	res.Final = recs
	res.Report.Output = len(recs)
	res.Report.Dropped = res.Report.Input - res.Report.Output
	if res.Report.Input > 0 {
		res.Report.DroppedFraction = float64(res.Report.Dropped) / float64(res.Report.Input)
	}
	res.Report.Duration = time.Since(start)
	metrics.RecordRows(p.cfg.Job, "input", int64(res.Report.Input))
	metrics.RecordRows(p.cfg.Job, "output", int64(res.Report.Output))
	metrics.RecordRows(p.cfg.Job, "dropped", int64(res.Report.Dropped))
	return res, nil
}

// record snapshots a stage's output and appends its stats to the report.
// prev is the previous stage's snapshot, used to count changed records; nil
// for the first stage.
func (p *Pipeline) record(res *Result, name string, in int, out []*schema.Transaction, prev []*schema.Transaction, d time.Duration) {
	snap := cloneAll(out)
	res.snapshots[name] = snap
	st := StageStats{Name: name, In: in, Out: len(out), Duration: d}
	if prev != nil {
		st.Changed = countChanged(prev, snap)
	}
	res.Report.Stages = append(res.Report.Stages, st)
	metrics.RecordStage(p.cfg.Job, name, d)
}

// checkTransactionIDs enforces the batch-level precondition over the raw
// input: every record carries a transaction_id and no identifier repeats.
// Comparison happens on the trimmed, lowercased form, matching how the
// normalizer will canonicalize identifiers.
func checkTransactionIDs(raws []schema.RawRecord) error {
	seen := make(map[string]int, len(raws))
	for i, raw := range raws {
		id := strings.ToLower(strings.TrimSpace(raw[schema.ColTransactionID]))
		if IsAnomaly(id) {
			return &MalformedRecordError{Line: i + 1, Reason: "missing transaction_id"}
		}
		if first, dup := seen[id]; dup {
			return &MalformedRecordError{
				Line:   i + 1,
				ID:     id,
				Reason: fmt.Sprintf("duplicate of record %d", first),
			}
		}
		seen[id] = i + 1
	}
	return nil
}

func cloneAll(recs []*schema.Transaction) []*schema.Transaction {
	out := make([]*schema.Transaction, len(recs))
	for i, t := range recs {
		out[i] = t.Clone()
	}
	return out
}
