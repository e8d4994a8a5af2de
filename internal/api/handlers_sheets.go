package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/studyhub/internal/handout"
	"github.com/dgallion1/studyhub/internal/parser"
	"github.com/dgallion1/studyhub/internal/pipeline"
	"github.com/dgallion1/studyhub/internal/sheet"
	"github.com/go-chi/chi/v5"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Server) handleSheetUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := s.renderOptions(r.FormValue("size"), r.FormValue("color"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := pipeline.NewJob(filename, r.FormValue("title"), opts, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, submitted(job))
}

func (s *Server) handleBatchUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := s.renderOptions(r.FormValue("size"), r.FormValue("color"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		data, err := s.readPart(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(filename, "", opts, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}
		results = append(results, submitted(job))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file too large or read error")
	}
	return data, nil
}

func submitted(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/sheets/%s/status", snap.ID),
	}
}

// jobFor looks up the job named in the URL, replying 404 when it is unknown.
func (s *Server) jobFor(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

func (s *Server) handleSheetStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobFor(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// finishedJob is jobFor that also replies 409 while the job is still running.
func (s *Server) finishedJob(w http.ResponseWriter, r *http.Request) (*pipeline.Job, pipeline.JobSnapshot) {
	job := s.jobFor(w, r)
	if job == nil {
		return nil, pipeline.JobSnapshot{}
	}
	snap := job.Snapshot()
	if !snap.Status.Done() {
		jsonError(w, fmt.Sprintf("job is still %s", snap.Status), http.StatusConflict)
		return nil, snap
	}
	return job, snap
}

func (s *Server) handleSheetResult(w http.ResponseWriter, r *http.Request) {
	job, snap := s.finishedJob(w, r)
	if job == nil {
		return
	}
	results := job.Results()
	if results == nil {
		results = []pipeline.Result{}
	}
	problems := job.Problems()
	if problems == nil {
		problems = []sheet.Problem{}
	}
	title := snap.Title
	if sh := job.Sheet(); sh != nil {
		title = sh.Title
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"title":    title,
		"size":     snap.Size,
		"entries":  results,
		"problems": problems,
		"errors":   snap.Progress.Errors,
	})
}

func (s *Server) handleSheetHandout(w http.ResponseWriter, r *http.Request) {
	job, _ := s.finishedJob(w, r)
	if job == nil {
		return
	}
	sh := job.Sheet()
	results := job.Results()
	if sh == nil || len(results) == 0 {
		jsonError(w, "job has no rendered formulas", http.StatusConflict)
		return
	}

	// Only entries that passed validation go into the handout.
	accepted := &sheet.Sheet{Title: sh.Title}
	for i := range results {
		accepted.Entries = append(accepted.Entries, &results[i].Entry)
	}

	var buf bytes.Buffer
	if err := handout.Write(&buf, accepted, s.renderer.Symbols()); err != nil {
		s.log.Error("handout failed", "job_id", job.ID, "error", err)
		jsonError(w, "failed to build handout", http.StatusInternalServerError)
		return
	}

	name := strings.TrimSuffix(job.Filename, filepath.Ext(job.Filename)) + ".docx"
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(buf.Bytes())
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
