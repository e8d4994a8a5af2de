package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/studyhub/internal/render"
	"github.com/dgallion1/studyhub/internal/sheet"
)

// JobStatus represents the state of a sheet job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusRendering JobStatus = "rendering"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Job tracks one uploaded formula sheet through parse, render and publish.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus      `json:"status"`
	Phase    string         `json:"phase"`
	Filename string         `json:"filename"`
	Title    string         `json:"title"`
	Options  render.Options `json:"-"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	sheet    *sheet.Sheet
	results  []Result
	problems []sheet.Problem
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalEntries int      `json:"total_entries"`
	Rendered     int      `json:"rendered"`
	Stored       int      `json:"stored"`
	Problems     int      `json:"problems"`
	Errors       []string `json:"errors"`
}

// Result is one rendered sheet entry.
type Result struct {
	sheet.Entry
	HTML  string `json:"html"`
	Plain string `json:"plain"`
	Empty bool   `json:"empty,omitempty"`
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename, title string, opts render.Options, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          NewID(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Title:       title,
		Options:     opts,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.lastUpdate()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) lastUpdate() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddProblems records sheet validation findings.
func (j *Job) AddProblems(problems []sheet.Problem) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.problems = append(j.problems, problems...)
	j.Progress.Problems = len(j.problems)
	j.UpdatedAt = time.Now()
}

// Problems returns the validation findings.
func (j *Job) Problems() []sheet.Problem {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]sheet.Problem(nil), j.problems...)
}

// SetTotalEntries records how many entries the sheet holds.
func (j *Job) SetTotalEntries(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalEntries = n
	j.UpdatedAt = time.Now()
}

// IncrRendered atomically increments the rendered count.
func (j *Job) IncrRendered() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Rendered++
	j.UpdatedAt = time.Now()
}

// AddStored adds to the published count.
func (j *Job) AddStored(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Stored += n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetSheet stores the parsed sheet and drops the raw upload.
func (j *Job) SetSheet(s *sheet.Sheet) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sheet = s
	j.fileData = nil
}

// Sheet returns the parsed sheet, or nil before parsing finished.
func (j *Job) Sheet() *sheet.Sheet {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sheet
}

// SetResults stores the rendered entries in sheet order.
func (j *Job) SetResults(results []Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = results
	j.UpdatedAt = time.Now()
}

// Results returns a copy of the rendered entries.
func (j *Job) Results() []Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Result(nil), j.results...)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Size        string    `json:"size"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.Progress
	progress.Errors = append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		Size:        string(j.Options.Size),
		ContentHash: j.ContentHash,
		Progress:    progress,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
