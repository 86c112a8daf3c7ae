// Package importer runs one envelope through parsing, validation and
// commit, and reports what it found.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tigerroll/tamato/pkg/taric/batch"
	"github.com/tigerroll/tamato/pkg/taric/commit"
	"github.com/tigerroll/tamato/pkg/taric/core/metrics"
	"github.com/tigerroll/tamato/pkg/taric/core/tx"
	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/parse"
	"github.com/tigerroll/tamato/pkg/taric/storage"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
	"github.com/tigerroll/tamato/pkg/taric/validator"
)

var log = logger.For("importer")

// Status summarises an import run.
type Status string

const (
	StatusFailed                Status = "FAILED"
	StatusCompletedWithWarnings Status = "COMPLETED_WITH_WARNINGS"
	StatusCompleted             Status = "COMPLETED"
)

// Deps are the collaborators of a run. Issues, Recorder and Tracer are
// optional.
type Deps struct {
	Records     storage.Records
	Workbaskets storage.Workbaskets
	TxManager   tx.TransactionManager
	Issues      batch.IssueStore
	Recorder    metrics.Recorder
	Tracer      metrics.Tracer
}

// Params select what to import and where.
type Params struct {
	Batch *batch.ImportBatch
	// XML is read when set; XMLString otherwise.
	XML       io.Reader
	XMLString string
	// WorkbasketID overrides the batch's workbasket. When neither is set a
	// new workbasket titled Title (default: the batch name) is created.
	WorkbasketID string
	Title        string
	Author       string
}

// TaricImporter is the result of one run.
type TaricImporter struct {
	batchID      string
	workbasketID string
	transactions []*parse.ParsedTransaction
	committed    bool
	issues       []domain.Issue
}

// Run imports params.XML into a workbasket. Data problems are reported as
// issues on the returned importer; errors are returned only for missing
// arguments, unreadable XML and storage failures.
func Run(ctx context.Context, deps Deps, params Params) (*TaricImporter, error) {
	if err := deps.check(params); err != nil {
		return nil, err
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	if deps.Tracer == nil {
		deps.Tracer = metrics.NoopTracer{}
	}

	start := time.Now()
	ctx, end := deps.Tracer.Start(ctx, "taric.import", map[string]string{
		"batch.id":   params.Batch.ID,
		"batch.name": params.Batch.Name,
	})
	imp, err := run(ctx, deps, params)
	end(err)
	if err != nil {
		return nil, err
	}

	deps.Recorder.ObserveImport(string(imp.Status()), imp.MessageCount(), time.Since(start))
	for _, i := range imp.issues {
		deps.Recorder.RecordIssue(string(i.Severity), i.ObjectType)
	}
	log.Infof("batch %s: %s, %d transactions, %d issues", params.Batch.Name, imp.Status(), len(imp.transactions), len(imp.issues))
	return imp, nil
}

func (d Deps) check(params Params) error {
	switch {
	case params.Batch == nil:
		return exception.NewImportErrorf("importer", "batch is required", exception.ErrMissingArgument)
	case params.XML == nil && params.XMLString == "":
		return exception.NewImportErrorf("importer", "xml is required", exception.ErrMissingArgument)
	case d.Records == nil || d.Workbaskets == nil || d.TxManager == nil:
		return exception.NewImportErrorf("importer", "records, workbaskets and transaction manager are required", exception.ErrMissingArgument)
	}
	return nil
}

func run(ctx context.Context, deps Deps, params Params) (*TaricImporter, error) {
	wbID, err := workbasket(ctx, deps.Workbaskets, params)
	if err != nil {
		return nil, err
	}
	imp := &TaricImporter{batchID: params.Batch.ID, workbasketID: wbID}

	r := params.XML
	if r == nil {
		r = strings.NewReader(params.XMLString)
	}
	if imp.transactions, err = parse.Envelope(r); err != nil {
		return nil, exception.NewImportErrorf("importer", "batch %s", params.Batch.Name, err)
	}

	v := validator.New(deps.Records, storage.View{WorkbasketID: wbID})
	if err := v.Validate(ctx, imp.transactions); err != nil {
		return nil, fmt.Errorf("validate batch %s: %w", params.Batch.Name, err)
	}

	engine := commit.NewEngine(deps.TxManager, deps.Records, deps.Workbaskets, deps.Recorder)
	if imp.committed, err = engine.Commit(ctx, wbID, imp.transactions); err != nil {
		return nil, fmt.Errorf("commit batch %s: %w", params.Batch.Name, err)
	}

	imp.issues = collect(imp.transactions)
	if deps.Issues != nil {
		if err := deps.Issues.AddIssues(ctx, params.Batch.ID, imp.issues); err != nil {
			return nil, err
		}
	}
	return imp, nil
}

func workbasket(ctx context.Context, wbs storage.Workbaskets, params Params) (string, error) {
	switch {
	case params.WorkbasketID != "":
		return params.WorkbasketID, nil
	case params.Batch.WorkbasketID != nil:
		return *params.Batch.WorkbasketID, nil
	}
	title, author := params.Title, params.Author
	if title == "" {
		title = params.Batch.Name
	}
	if author == "" {
		author = params.Batch.Author
	}
	wb, err := wbs.CreateWorkbasket(ctx, title, author)
	if err != nil {
		return "", err
	}
	return wb.ID, nil
}

func collect(txns []*parse.ParsedTransaction) []domain.Issue {
	var out []domain.Issue
	for _, t := range txns {
		for _, m := range t.Messages {
			out = append(out, m.Object.Issues()...)
		}
	}
	return out
}

// BatchID returns the imported batch.
func (i *TaricImporter) BatchID() string { return i.batchID }

// WorkbasketID returns the workbasket the run wrote to.
func (i *TaricImporter) WorkbasketID() string { return i.workbasketID }

// Committed reports whether anything was written.
func (i *TaricImporter) Committed() bool { return i.committed }

// Transactions returns the parsed transactions in document order.
func (i *TaricImporter) Transactions() []*parse.ParsedTransaction { return i.transactions }

// MessageCount returns the number of parsed messages.
func (i *TaricImporter) MessageCount() int {
	n := 0
	for _, t := range i.transactions {
		n += len(t.Messages)
	}
	return n
}

// Issues returns the run's issues in document order, only those of
// severity when it is set.
func (i *TaricImporter) Issues(severity domain.Severity) []domain.Issue {
	if severity == "" {
		return append([]domain.Issue(nil), i.issues...)
	}
	var out []domain.Issue
	for _, issue := range i.issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// CanSave reports whether the run raised no ERROR.
func (i *TaricImporter) CanSave() bool {
	return commit.CanSave(i.transactions)
}

// Status summarises the run.
func (i *TaricImporter) Status() Status {
	switch {
	case !i.CanSave():
		return StatusFailed
	case len(i.Issues(domain.SeverityWarning)) > 0:
		return StatusCompletedWithWarnings
	}
	return StatusCompleted
}
