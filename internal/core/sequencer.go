package core

// sequencer.go drives one job through its stages:
//
//	pending -> reading -> parsing -> generating_summary -> completed
//
// Every transition goes through the store. If the job was deleted meanwhile,
// the store answers ErrNotFound and the sequencer quietly stops.

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type jobRun struct {
	id       string
	path     string
	filename string
	sizeKB   float64
	def      AnalyzerDefinition
	logger   *slog.Logger
}

func (s *Service) run(j jobRun) {
	start := time.Now()
	defer s.wg.Done()
	defer func() {
		if err := s.spool.Release(j.id); err != nil {
			j.logger.Warn("spool release failed", "error", err)
		}
	}()

	label := j.def.Info.Label

	if err := s.limiter.Acquire(s.baseCtx); err != nil {
		// Shutdown gave up on queued jobs. They still pass through
		// processing so every failed record has a start time.
		if s.advance(j, func(r *JobRecord) {
			now := time.Now().UTC()
			r.Status = StatusProcessing
			r.StartedAt = &now
			r.Progress = Progress{Stage: StagePending, Message: "Analysis cancelled before it started"}
		}) {
			s.fail(j, fmt.Errorf("waiting for analysis slot: %w", err))
		}
		return
	}
	defer s.limiter.Release()
	j.logger.Debug("analysis slot acquired", "active", s.limiter.ActiveCount())

	if !s.advance(j, func(r *JobRecord) {
		now := time.Now().UTC()
		r.Status = StatusProcessing
		r.StartedAt = &now
		r.Progress = Progress{Stage: StageReading, Message: fmt.Sprintf("Reading %s file...", label)}
	}) {
		return
	}

	content, err := loadSpooled(j.path, j.def.Info.StrictUTF8)
	if err != nil {
		s.fail(j, err)
		return
	}

	if !s.advance(j, func(r *JobRecord) {
		r.Progress = Progress{Stage: StageParsing, Message: fmt.Sprintf("Parsing %s file...", label)}
	}) {
		return
	}

	facts, err := safeParse(j.def, content, s.limits)
	if err != nil {
		s.fail(j, err)
		return
	}

	if !s.advance(j, func(r *JobRecord) {
		r.Progress = Progress{Stage: StageGeneratingSummary, Message: "Generating summary..."}
	}) {
		return
	}

	body, err := safeSummarize(j.def, facts)
	if err != nil {
		s.fail(j, err)
		return
	}

	result := &Result{
		Filename: j.filename,
		FileType: j.def.Info.Type,
		SizeKB:   j.sizeKB,
		Summary:  buildSummary(label, j.filename, j.sizeKB, body, s.limits.SummaryMaxChars),
		KeyInfo:  facts,
	}

	if s.advance(j, func(r *JobRecord) {
		now := time.Now().UTC()
		r.Status = StatusCompleted
		r.CompletedAt = &now
		r.Result = result
		r.Progress = Progress{Stage: StageCompleted, Message: "Process completed!"}
	}) {
		j.logger.Info("job completed", "duration_ms", time.Since(start).Milliseconds())
	}
}

// advance applies one transition. It reports whether the job should continue.
func (s *Service) advance(j jobRun, mutate func(*JobRecord)) bool {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	rec, err := s.store.Update(j.id, mutate)
	switch {
	case errors.Is(err, ErrNotFound):
		j.logger.Info("job deleted during analysis, discarding work")
		return false
	case err != nil:
		j.logger.Error("job update failed", "error", err)
		return false
	}
	s.events.Publish(eventFor(rec))
	return !rec.Status.Terminal() || rec.Status == StatusCompleted
}

func (s *Service) fail(j jobRun, cause error) {
	msg := cause.Error()
	j.logger.Warn("job failed", "error", cause, "code", MapError(cause).Code)
	s.advance(j, func(r *JobRecord) {
		now := time.Now().UTC()
		r.Status = StatusFailed
		r.CompletedAt = &now
		r.Error = &msg
		r.Progress = Progress{Stage: StageFailed, Message: msg}
	})
}

// loadSpooled reads the spooled upload and decodes it to a string. A byte
// order mark selects the encoding and is stripped. In strict mode invalid
// UTF-8 fails with ErrDecode; otherwise it becomes U+FFFD.
func loadSpooled(path string, strict bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read spooled upload: %w", err)
	}

	var t transform.Transformer
	if strict {
		t = unicode.BOMOverride(encoding.UTF8Validator)
	} else {
		t = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}

	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(out), nil
}

func safeParse(def AnalyzerDefinition, content string, limits Limits) (facts any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s analyzer panicked: %v", ErrParse, def.Info.Type, r)
		}
	}()
	return def.Parse(content, limits)
}

func safeSummarize(def AnalyzerDefinition, facts any) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s summary panicked: %v", ErrParse, def.Info.Type, r)
		}
	}()
	return def.Summarize(facts), nil
}

// buildSummary prefixes the analyzer's text with the file description and
// caps the whole at maxChars runes.
func buildSummary(label, filename string, kb float64, body string, maxChars int) string {
	summary := fmt.Sprintf("File %s '%s' (%.1f KB).", label, filename, kb)
	if body != "" {
		summary += " " + body
	}
	return truncateRunes(summary, maxChars)
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
