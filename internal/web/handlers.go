package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/JonMunkholm/fileparser/internal/core"
	"github.com/JonMunkholm/fileparser/internal/logging"
)

const (
	// multipartOverhead is allowed on top of the file ceiling for boundaries
	// and part headers, so an exactly-at-limit file is not cut off.
	multipartOverhead = 1 << 20

	// multipartMemory is kept in memory before parts spill to disk.
	multipartMemory = 8 << 20

	serviceName = "File Parser & Summary Generator"
)

// ServiceInfo is the JSON body of GET /.
type ServiceInfo struct {
	Service        string                                 `json:"service"`
	Version        string                                 `json:"version"`
	SupportedTypes []core.FileType                        `json:"supported_types"`
	MaxFileSize    int64                                  `json:"max_file_size"`
	Endpoints      *orderedmap.OrderedMap[string, string] `json:"endpoints"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status   string             `json:"status"`
	Version  string             `json:"version"`
	Analysis core.LimiterStatus `json:"analysis"`
}

// SubmitResponse acknowledges an accepted upload.
type SubmitResponse struct {
	JobID   string         `json:"job_id"`
	Status  core.JobStatus `json:"status"`
	Message string         `json:"message"`
}

// DeleteResponse confirms a removed job.
type DeleteResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// handleRoot serves service info, or the dashboard for browsers.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		s.handleDashboard(w, r)
		return
	}

	endpoints := orderedmap.New[string, string]()
	endpoints.Set("POST /parse-file", "Upload a file for background analysis")
	endpoints.Set("GET /jobs/{job_id}", "Check a job's status and result")
	endpoints.Set("GET /jobs", "List all jobs, optionally ?status=")
	endpoints.Set("DELETE /jobs/{job_id}", "Delete a job")
	endpoints.Set("GET /health", "Service health")
	endpoints.Set("GET /ws", "Live job updates over websocket")

	writeJSON(w, http.StatusOK, ServiceInfo{
		Service:        serviceName,
		Version:        core.Version,
		SupportedTypes: s.service.SupportedTypes(),
		MaxFileSize:    s.service.MaxFileSize(),
		Endpoints:      endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  core.Version,
		Analysis: s.service.LimiterStatus(),
	})
}

// handleParseFile accepts a multipart upload in the "file" field and
// schedules its analysis. The response carries only the job id.
func (s *Server) handleParseFile(w http.ResponseWriter, r *http.Request) {
	maxSize := s.service.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, fmt.Errorf("%w: %v", core.ErrPayloadTooLarge, err), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	// One byte past the ceiling is enough for Submit to reject it.
	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusInternalServerError)
		return
	}

	rec, err := s.service.Submit(r.Context(), header.Filename, content)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitResponse{
		JobID:   rec.ID,
		Status:  rec.Status,
		Message: fmt.Sprintf("File '%s' accepted. Processing started.", header.Filename),
	})
}

// handleListJobs lists jobs in creation order, optionally filtered by ?status=.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	status := core.JobStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status != "" && !status.Valid() {
		respondError(w, r, fmt.Errorf("%w: %q", core.ErrInvalidStatus, status), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Jobs(status))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Job(chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if err := s.service.Delete(jobID); err != nil {
		respondError(w, r, err, 0)
		return
	}

	logging.FromContext(r.Context()).Info("job deleted via api", "job_id", jobID)
	writeJSON(w, http.StatusOK, DeleteResponse{
		Message: fmt.Sprintf("Job '%s' deleted", jobID),
		JobID:   jobID,
	})
}
