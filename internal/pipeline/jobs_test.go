package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/studyhub/internal/render"
	"github.com/dgallion1/studyhub/internal/sheet"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("physics.csv", "Physics", render.Options{Size: render.Large}, []byte("x"))
	if len(job.ID) != 26 {
		t.Errorf("expected 26 character id, got %q", job.ID)
	}
	if job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("expected queued job, got %s/%s", job.Status, job.Phase)
	}
	if string(job.FileData()) != "x" {
		t.Errorf("expected file data kept, got %q", job.FileData())
	}
	snap := job.Snapshot()
	if snap.Size != "large" || snap.Title != "Physics" || snap.ContentHash == "" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusParsing, "validating"},
		{StatusRendering, "rendering"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	tests := map[JobStatus]bool{
		StatusQueued:    false,
		StatusParsing:   false,
		StatusRendering: false,
		StatusStoring:   false,
		StatusCompleted: true,
		StatusPartial:   true,
		StatusFailed:    true,
	}
	for s, want := range tests {
		if got := s.Done(); got != want {
			t.Errorf("%s.Done() = %v, want %v", s, got, want)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("store a failed")
	job.AddError("store b failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "store a failed" {
		t.Errorf("expected first error %q, got %q", "store a failed", snap.Progress.Errors[0])
	}
}

func TestJob_Counters(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.SetTotalEntries(42)
	job.IncrRendered()
	job.IncrRendered()
	job.IncrRendered()
	job.AddStored(2)
	job.AddStored(1)

	snap := job.Snapshot()
	if snap.Progress.TotalEntries != 42 {
		t.Errorf("expected 42 total entries, got %d", snap.Progress.TotalEntries)
	}
	if snap.Progress.Rendered != 3 {
		t.Errorf("expected 3 rendered, got %d", snap.Progress.Rendered)
	}
	if snap.Progress.Stored != 3 {
		t.Errorf("expected 3 stored, got %d", snap.Progress.Stored)
	}
}

func TestJob_Problems(t *testing.T) {
	job := &Job{ID: "problems-test"}
	job.AddProblems([]sheet.Problem{{Message: "a", Severity: sheet.SeverityWarning}})
	job.AddProblems([]sheet.Problem{{Message: "b", Severity: sheet.SeverityError}})

	if got := job.Snapshot().Progress.Problems; got != 2 {
		t.Errorf("expected 2 problems counted, got %d", got)
	}
	ps := job.Problems()
	ps[0].Message = "changed"
	if job.Problems()[0].Message != "a" {
		t.Error("expected Problems to return a copy")
	}
}

func TestJob_SetSheetDropsFileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	job.SetFileData([]byte("file content here"))
	if string(job.FileData()) != "file content here" {
		t.Fatalf("expected file data, got %q", job.FileData())
	}
	s := &sheet.Sheet{Title: "t"}
	job.SetSheet(s)
	if job.FileData() != nil {
		t.Error("expected file data released after parsing")
	}
	if job.Sheet() != s {
		t.Error("expected sheet stored")
	}
}

func TestJob_ResultsCopy(t *testing.T) {
	job := &Job{ID: "results-test"}
	job.SetResults([]Result{{Entry: sheet.Entry{ID: "f1"}, Plain: "x"}})
	rs := job.Results()
	rs[0].Plain = "changed"
	if job.Results()[0].Plain != "x" {
		t.Error("expected Results to return a copy")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
