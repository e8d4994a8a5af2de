package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/studyhub/internal/contentstore"
	"github.com/dgallion1/studyhub/internal/parser"
	"github.com/dgallion1/studyhub/internal/sheet"
)

// Worker processes a single sheet job.
type Worker struct {
	renderer *Renderer
	store    *contentstore.Client
	log      *slog.Logger

	maxConcurrentRender int
	maxConcurrentStore  int
	maxFormulaBytes     int
	pdfFallback         bool

	// backoff is the wait before retry attempt n.
	backoff func(attempt int) time.Duration
}

// NewWorker creates a worker. store may be nil, in which case nothing is
// published. maxFormulaBytes bounds each entry's formula text; zero means
// sheet.MaxFormulaBytes.
func NewWorker(r *Renderer, store *contentstore.Client, log *slog.Logger, maxRender, maxStore, maxFormulaBytes int, pdfFallback bool) *Worker {
	return &Worker{
		renderer:            r,
		store:               store,
		log:                 log,
		maxConcurrentRender: max(maxRender, 1),
		maxConcurrentStore:  max(maxStore, 1),
		maxFormulaBytes:     maxFormulaBytes,
		pdfFallback:         pdfFallback,
		backoff:             Backoff,
	}
}

// Process runs parse, validate, render and publish for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	s, err := w.parse(job)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetSheet(s)
	job.SetTotalEntries(len(s.Entries))
	log.Info("parsed sheet", "title", s.Title, "entries", len(s.Entries))

	if len(s.Entries) == 0 {
		job.AddError("no formulas found")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Validate. Entries with errors are reported and skipped.
	job.SetStatus(StatusParsing, "validating")
	problems := sheet.ValidateLimit(s, w.maxFormulaBytes)
	job.AddProblems(problems)
	rejected := make(map[*sheet.Entry]bool)
	for _, p := range problems {
		if p.Severity != sheet.SeverityError {
			continue
		}
		for _, e := range s.Entries {
			if e.Line == p.Line && e.ID == p.ID {
				rejected[e] = true
			}
		}
	}
	var entries []*sheet.Entry
	for _, e := range s.Entries {
		if !rejected[e] {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		job.AddError("every formula failed validation")
		job.SetStatus(StatusFailed, "validating")
		return
	}

	// Phase 3: Render with bounded concurrency.
	job.SetStatus(StatusRendering, "rendering")
	results := w.render(ctx, job, entries)
	job.SetResults(results)
	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	hadErrors := len(rejected) > 0
	if w.store == nil {
		w.finish(job, log, hadErrors, start)
		return
	}

	// Phase 4: Publish to the content store.
	job.SetStatus(StatusStoring, "storing")
	stored, storeErrors := w.publish(ctx, job, log, results)
	job.AddStored(stored)
	log.Info("publish complete", "stored", stored, "total", len(results))

	if stored == 0 && storeErrors > 0 {
		job.SetStatus(StatusFailed, "storing")
		return
	}
	w.finish(job, log, hadErrors || storeErrors > 0, start)
}

func (w *Worker) parse(job *Job) (*sheet.Sheet, error) {
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		return nil, err
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = w.pdfFallback
	}
	s, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return nil, err
	}
	if job.Title != "" {
		s.Title = job.Title
	}
	return s, nil
}

func (w *Worker) render(ctx context.Context, job *Job, entries []*sheet.Entry) []Result {
	results := make([]Result, len(entries))
	sem := make(chan struct{}, w.maxConcurrentRender)
	var wg sync.WaitGroup

	for i, e := range entries {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, e *sheet.Entry) {
			defer func() { <-sem; wg.Done() }()
			out := w.renderer.Render(e.Text, job.Options)
			results[i] = Result{
				Entry: *e,
				HTML:  out.HTML,
				Plain: out.Plain,
				Empty: out.HTML == "",
			}
			job.IncrRendered()
		}(i, e)
	}
	wg.Wait()
	return results
}

func (w *Worker) publish(ctx context.Context, job *Job, log *slog.Logger, results []Result) (stored, failed int) {
	sem := make(chan struct{}, w.maxConcurrentStore)
	type storeResult struct {
		key string
		err error
	}
	out := make(chan storeResult, len(results))

	for _, r := range results {
		sem <- struct{}{}
		go func(r Result) {
			defer func() { <-sem }()
			rec := contentstore.Record{
				ID:        r.ID,
				TopicID:   r.TopicID,
				Text:      r.Text,
				Label:     r.Label,
				Variables: r.Variables,
				HTML:      r.HTML,
				Plain:     r.Plain,
				Size:      string(job.Options.Size),
				JobID:     job.ID,
				UpdatedAt: time.Now().UTC(),
			}
			out <- storeResult{key: contentstore.Key(r.TopicID, r.ID), err: w.putWithRetry(ctx, log, rec)}
		}(r)
	}

	for range results {
		r := <-out
		if r.err != nil {
			log.Error("store failed", "key", r.key, "error", r.err)
			job.AddError(fmt.Sprintf("store %s: %s", r.key, r.err))
			failed++
			continue
		}
		stored++
	}
	return stored, failed
}

func (w *Worker) putWithRetry(ctx context.Context, log *slog.Logger, rec contentstore.Record) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.store.PutFormula(ctx, rec)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("retryable store error", "formula_id", rec.ID, "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (w *Worker) finish(job *Job, log *slog.Logger, hadErrors bool, start time.Time) {
	if st := w.renderer.Stats(); st != nil {
		st.Since(OpSheet, start)
	}
	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("job finished", "status", job.Snapshot().Status, "duration", time.Since(start))
}
