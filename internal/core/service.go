package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/fileparser/internal/config"
	"github.com/JonMunkholm/fileparser/internal/logging"
)

// Version is reported by the HTTP and MCP front ends.
const Version = "2.0.0"

// ErrShuttingDown is returned by Submit once Shutdown has begun.
var ErrShuttingDown = errors.New("service is shutting down")

// DefaultMaxFileSize is the upload ceiling used when none is configured (5 MiB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// ServiceConfig holds the settings Service needs.
type ServiceConfig struct {
	MaxFileSize    int64
	SupportedTypes []string
	MaxConcurrent  int
	SpoolDir       string
	SpoolScope     string // subdirectory of SpoolDir owned by this process
	Limits         Limits
}

// ServiceConfigFrom extracts the service settings from application config.
func ServiceConfigFrom(c *config.Config) ServiceConfig {
	return ServiceConfig{
		MaxFileSize:    c.Upload.MaxFileSize,
		SupportedTypes: c.Upload.SupportedTypes,
		MaxConcurrent:  c.Upload.MaxConcurrent,
		SpoolDir:       c.Upload.SpoolDir,
		Limits:         LimitsFromConfig(c.Analysis),
	}
}

// Option customizes a Service.
type Option func(*Service)

// WithStore replaces the default in-memory store.
func WithStore(store JobStore) Option {
	return func(s *Service) { s.store = store }
}

// Service schedules file analysis jobs and answers queries about them.
type Service struct {
	store   JobStore
	limiter *AnalysisLimiter
	spool   *Spool
	events  *EventHub

	// publishMu pairs each store write with its event, so subscribers see
	// a job's events in the order the store applied them.
	publishMu sync.Mutex

	limits      Limits
	maxFileSize int64
	enabled     map[FileType]bool

	// baseCtx is cancelled when Shutdown gives up waiting, releasing jobs
	// still queued for a slot.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewService creates a Service. Unset config values fall back to defaults.
func NewService(cfg ServiceConfig, opts ...Option) (*Service, error) {
	spool, err := NewSpool(cfg.SpoolDir, cfg.SpoolScope)
	if err != nil {
		return nil, err
	}

	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}

	var enabled map[FileType]bool
	if len(cfg.SupportedTypes) > 0 {
		enabled = make(map[FileType]bool, len(cfg.SupportedTypes))
		for _, t := range cfg.SupportedTypes {
			enabled[FileType(strings.ToLower(strings.TrimSpace(t)))] = true
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		limiter:     NewAnalysisLimiter(cfg.MaxConcurrent),
		spool:       spool,
		limits:      cfg.Limits,
		maxFileSize: cfg.MaxFileSize,
		enabled:     enabled,
		baseCtx:     ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	s.events = NewEventHub()
	return s, nil
}

// Submit validates an upload, records a pending job and starts its analysis
// in the background. It returns as soon as the job exists; analysis failures
// are reported only through the job record.
func (s *Service) Submit(ctx context.Context, filename string, content []byte) (JobRecord, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return JobRecord{}, ErrShuttingDown
	}
	s.wg.Add(1)
	s.mu.RUnlock()

	started := false
	defer func() {
		if !started {
			s.wg.Done()
		}
	}()

	if len(content) == 0 {
		return JobRecord{}, fmt.Errorf("%w: %q", ErrEmptyFile, filename)
	}
	if int64(len(content)) > s.maxFileSize {
		return JobRecord{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, len(content), s.maxFileSize)
	}

	def, err := DetectFileType(filename, content, s.enabled)
	if err != nil {
		return JobRecord{}, err
	}

	id := uuid.NewString()
	path, err := s.spool.Write(id, content)
	if err != nil {
		return JobRecord{}, fmt.Errorf("submit %q: %w", filename, err)
	}

	rec := JobRecord{
		ID:        id,
		Status:    StatusPending,
		FileType:  def.Info.Type,
		Filename:  filename,
		SizeKB:    sizeKB(len(content)),
		CreatedAt: time.Now().UTC(),
		Progress:  Progress{Stage: StagePending, Message: "queued"},
	}
	s.publishMu.Lock()
	if _, err := s.store.Create(rec); err != nil {
		s.publishMu.Unlock()
		_ = s.spool.Release(id)
		return JobRecord{}, fmt.Errorf("submit %q: %w", filename, err)
	}
	s.events.Publish(eventFor(rec))
	s.publishMu.Unlock()

	logger := logging.ForJob(ctx, id, string(def.Info.Type))
	logger.Info("job submitted", "filename", filename, "size_kb", rec.SizeKB)

	started = true
	go s.run(jobRun{
		id:       id,
		path:     path,
		filename: filename,
		sizeKB:   rec.SizeKB,
		def:      def,
		logger:   logger,
	})

	return rec, nil
}

// Job returns the current record for id, or ErrNotFound.
func (s *Service) Job(id string) (JobRecord, error) {
	return s.store.Get(id)
}

// Jobs lists records in creation order. An empty status lists all of them.
func (s *Service) Jobs(status JobStatus) []JobRecord {
	all := s.store.List()
	if status == "" {
		return all
	}
	out := make([]JobRecord, 0, len(all))
	for _, rec := range all {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}

// Delete removes a job. A job still running finishes its current stage,
// discards its work and never reappears.
func (s *Service) Delete(id string) error {
	s.publishMu.Lock()
	if err := s.store.Delete(id); err != nil {
		s.publishMu.Unlock()
		return err
	}
	s.events.Publish(Event{Type: EventJobDeleted, JobID: id})
	s.publishMu.Unlock()

	slog.Info("job deleted", "job_id", id)
	return nil
}

// Events returns the hub carrying job notifications.
func (s *Service) Events() *EventHub {
	return s.events
}

// LimiterStatus reports analysis slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// MaxFileSize returns the upload ceiling in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// SupportedTypes lists the enabled file types that have an analyzer.
func (s *Service) SupportedTypes() []FileType {
	var out []FileType
	for _, def := range All() {
		if s.enabled == nil || s.enabled[def.Info.Type] {
			out = append(out, def.Info.Type)
		}
	}
	return out
}

// Shutdown stops accepting submissions and waits for in-flight jobs.
// If ctx ends first, jobs still waiting for a slot are released and fail.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if err := s.limiter.WaitForDrain(ctx); err != nil {
		s.cancel()
		status := s.limiter.Status()
		slog.Warn("shutdown interrupted analyses",
			"active", status.Active,
			"waiting", status.Waiting,
		)
		return fmt.Errorf("waiting for analyses: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("waiting for jobs: %w", ctx.Err())
	}
}
