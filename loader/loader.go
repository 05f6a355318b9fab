// Package loader implements the batch loader (spec.md §4.10): validate,
// acquire a session, load vertices then edges in sorted-label order inside
// one transaction, commit or roll back, release the session. Grounded on two
// sources: the teacher's StoreVertex/StoreEdge single-item write path
// (reused per-chunk via querytemplate+param+executor) and
// hardyvala-itsm-platform-mps-final's sdk/dal.DAL orchestrator shape
// (pooled handle + builder + injectable onProgress hook).
package loader

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
	"github.com/standardbeagle/ageSchemaClient-sub007/core"
	"github.com/standardbeagle/ageSchemaClient-sub007/executor"
	"github.com/standardbeagle/ageSchemaClient-sub007/param"
	"github.com/standardbeagle/ageSchemaClient-sub007/querytemplate"
	"github.com/standardbeagle/ageSchemaClient-sub007/schema"
	"github.com/standardbeagle/ageSchemaClient-sub007/session"
	"github.com/standardbeagle/ageSchemaClient-sub007/txn"
)

// Phase names a stage reported through the OnProgress hook.
type Phase string

const (
	PhaseVertices Phase = "vertices"
	PhaseEdges    Phase = "edges"
)

// Options controls one Load call (spec.md §4.10).
type Options struct {
	BatchSize       int
	Validate        bool
	ContinueOnError bool
	GraphName       string
	OnProgress      func(phase Phase, done, total int)
}

// DefaultOptions matches spec.md §4.10's stated defaults.
func DefaultOptions() Options {
	return Options{BatchSize: 1000, Validate: true, ContinueOnError: false}
}

// ErrorRecord names one failed chunk.
type ErrorRecord struct {
	Label   string
	Kind    string // "vertex", "edge", "validation", "acquire", "transaction", "rollback" or "commit"
	Chunk   int
	Message string
}

// LoadResult is the public outcome of a Load call; Load itself never returns
// a Go error (spec.md §7: "the public load method never throws").
type LoadResult struct {
	Success     bool
	VertexCount int
	EdgeCount   int
	Errors      []ErrorRecord
	Warnings    []string
	DurationMs  int64
}

// Loader runs batch loads against one pool/schema pair.
type Loader struct {
	pool *session.Pool
	sch  *schema.Schema
}

// New wraps pool for schema-validated batch loads.
func New(pool *session.Pool, sch *schema.Schema) *Loader {
	return &Loader{pool: pool, sch: sch}
}

// Load runs the algorithm of spec.md §4.10 over data.
func (l *Loader) Load(ctx context.Context, data *schema.GraphData, opts Options) (result LoadResult) {
	start := time.Now()

	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}

	if opts.Validate {
		vr := schema.Validate(data, l.sch, schema.Options{FailFast: false, CheckReferentialIntegrity: true})
		if !vr.Valid {
			for _, verr := range vr.Errors {
				wrapped := ageerr.ForBatchLoader(ageerr.PhaseValidation, "schema", verr.Error(), nil)
				result.Errors = append(result.Errors, ErrorRecord{Kind: "validation", Message: wrapped.Error()})
			}
			result.Success = false
			result.DurationMs = time.Since(start).Milliseconds()
			return result
		}
	}

	sess, err := l.pool.Acquire(ctx)
	if err != nil {
		wrapped := ageerr.ForBatchLoader(ageerr.PhaseTransaction, "acquire", "failed to acquire session", err)
		result.Errors = append(result.Errors, ErrorRecord{Kind: "acquire", Message: wrapped.Error()})
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}
	defer func() {
		if relErr := l.pool.Release(ctx, sess); relErr != nil {
			wrapped := ageerr.ForBatchLoader(ageerr.PhaseCleanup, "release", "session release failed", relErr)
			result.Warnings = append(result.Warnings, wrapped.Error())
		}
	}()

	tx, err := txn.Begin(ctx, sess, txn.Options{})
	if err != nil {
		wrapped := ageerr.ForBatchLoader(ageerr.PhaseTransaction, "begin", "failed to begin transaction", err)
		result.Errors = append(result.Errors, ErrorRecord{Kind: "transaction", Message: wrapped.Error()})
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	bridge := param.New(sess)
	exec := executor.New(sess).InTransaction(tx)

	abort := l.loadVertices(ctx, data, opts, bridge, exec, &result)
	if !abort {
		abort = l.loadEdges(ctx, data, opts, bridge, exec, &result)
	}

	if abort {
		if rbErr := tx.Rollback(); rbErr != nil {
			wrapped := ageerr.ForBatchLoader(ageerr.PhaseCleanup, "rollback", "rollback failed", rbErr)
			result.Errors = append(result.Errors, ErrorRecord{Kind: "rollback", Message: wrapped.Error()})
		}
		result.Success = false
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	if err := tx.Commit(); err != nil {
		wrapped := ageerr.ForBatchLoader(ageerr.PhaseTransaction, "commit", "commit failed", err)
		result.Errors = append(result.Errors, ErrorRecord{Kind: "commit", Message: wrapped.Error()})
		result.Success = false
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	result.Success = true
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

func (l *Loader) loadVertices(ctx context.Context, data *schema.GraphData, opts Options, bridge *param.Bridge, exec *executor.Executor, result *LoadResult) (abort bool) {
	labels := sortedLabelKeys(data.Vertices)
	total := 0
	for _, label := range labels {
		total += len(data.Vertices[label])
	}
	done := 0

	for _, label := range labels {
		rows := data.Vertices[label]
		vl := l.sch.Vertices[label]
		propNames := vertexPropertyNames(vl, rows)
		chunks := chunk(rows, opts.BatchSize)
		for i, c := range chunks {
			if err := bridge.SetVertexChunk(ctx, label, c); err != nil {
				if l.recordFailure(result, "vertex", label, i, err, opts) {
					return true
				}
				continue
			}
			body, err := querytemplate.VertexCreateTemplate(label, propNames)
			if err != nil {
				if l.recordFailure(result, "vertex", label, i, err, opts) {
					return true
				}
				continue
			}
			res, err := exec.ExecuteCypher(ctx, body, nil, opts.GraphName, executor.DefaultOptions())
			if err != nil {
				if l.recordFailure(result, "vertex", label, i, err, opts) {
					return true
				}
				continue
			}
			result.VertexCount += countFromResult(res, "created_vertices")
			done += len(c)
			if opts.OnProgress != nil {
				opts.OnProgress(PhaseVertices, done, total)
			}
		}
	}
	return false
}

func (l *Loader) loadEdges(ctx context.Context, data *schema.GraphData, opts Options, bridge *param.Bridge, exec *executor.Executor, result *LoadResult) (abort bool) {
	labels := sortedEdgeLabelKeys(data.Edges)
	total := 0
	for _, label := range labels {
		total += len(data.Edges[label])
	}
	done := 0

	for _, label := range labels {
		records := data.Edges[label]
		el := l.sch.Edges[label]
		propNames := edgePropertyNames(el, records)
		chunks := chunkEdges(records, opts.BatchSize)
		for i, c := range chunks {
			rows := edgeRecordsToRows(c)
			if err := bridge.SetEdgeChunk(ctx, label, rows); err != nil {
				if l.recordFailure(result, "edge", label, i, err, opts) {
					return true
				}
				continue
			}
			var from, to string
			if el != nil {
				from, to = el.FromLabel, el.ToLabel
			}
			body, err := querytemplate.EdgeCreateTemplate(label, from, to, propNames)
			if err != nil {
				if l.recordFailure(result, "edge", label, i, err, opts) {
					return true
				}
				continue
			}
			res, err := exec.ExecuteCypher(ctx, body, nil, opts.GraphName, executor.DefaultOptions())
			if err != nil {
				if l.recordFailure(result, "edge", label, i, err, opts) {
					return true
				}
				continue
			}
			result.EdgeCount += countFromResult(res, "created_edges")
			done += len(c)
			if opts.OnProgress != nil {
				opts.OnProgress(PhaseEdges, done, total)
			}
		}
	}
	return false
}

// recordFailure appends err to the result and tells the caller whether to
// abort the whole load (continueOnError=false) or skip to the next chunk
// (spec.md §4.10 step 4(d)/5; open question (c): each failing chunk is
// skipped inside the same transaction, which still commits).
func (l *Loader) recordFailure(result *LoadResult, kind, label string, chunkIdx int, err error, opts Options) (abort bool) {
	phase := ageerr.PhaseVertices
	if kind == "edge" {
		phase = ageerr.PhaseEdges
	}
	wrapped := ageerr.ForBatchLoader(phase, label, fmt.Sprintf("%s chunk %d for label %q failed", kind, chunkIdx, label), err)
	rec := ErrorRecord{Label: label, Kind: kind, Chunk: chunkIdx, Message: wrapped.Error()}
	if !opts.ContinueOnError {
		result.Errors = append(result.Errors, rec)
		return true
	}
	result.Errors = append(result.Errors, rec)
	result.Warnings = append(result.Warnings, fmt.Sprintf("skipped %s chunk %d for label %q: %s", kind, chunkIdx, label, wrapped.Error()))
	return false
}

func sortedLabelKeys(m map[string][]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedEdgeLabelKeys(m map[string][]schema.EdgeRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func chunk(rows []map[string]interface{}, size int) [][]map[string]interface{} {
	var out [][]map[string]interface{}
	for i := 0; i < len(rows); i += size {
		end := i + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[i:end])
	}
	return out
}

func chunkEdges(records []schema.EdgeRecord, size int) [][]schema.EdgeRecord {
	var out [][]schema.EdgeRecord
	for i := 0; i < len(records); i += size {
		end := i + size
		if end > len(records) {
			end = len(records)
		}
		out = append(out, records[i:end])
	}
	return out
}

func edgeRecordsToRows(records []schema.EdgeRecord) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		row := map[string]interface{}{"from": r.From, "to": r.To}
		for k, v := range r.Properties {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows
}

func vertexPropertyNames(vl *schema.VertexLabel, rows []map[string]interface{}) []string {
	if vl != nil {
		names := make([]string, 0, len(vl.Properties))
		for p := range vl.Properties {
			names = append(names, p)
		}
		sort.Strings(names)
		return names
	}
	return unionKeys(rows)
}

func edgePropertyNames(el *schema.EdgeLabel, records []schema.EdgeRecord) []string {
	seen := map[string]struct{}{}
	if el != nil {
		for p := range el.Properties {
			seen[p] = struct{}{}
		}
	}
	for _, r := range records {
		for k := range r.Properties {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func unionKeys(rows []map[string]interface{}) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// countFromResult reads the RETURN count(...) AS column scalar the vertex/edge
// templates emit (querytemplate.VertexCreateTemplate/EdgeCreateTemplate),
// already decoded to a float64 by the executor's dynamic-type decoder.
func countFromResult(res *core.QueryResult, column string) int {
	if res == nil || len(res.Rows) == 0 {
		return 0
	}
	v, ok := res.Rows[0][column]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
