// Package core provides the job engine behind the file analysis service.
//
// It owns everything between "bytes arrived" and "facts are queryable",
// independent of HTTP or MCP. The web server, the MCP tool binary and the
// tests all drive the same [Service].
//
// # Architecture
//
//   - Analyzer Registry: format analyzers register an [AnalyzerDefinition]
//     at init time; [DetectFileType] picks one per upload.
//   - Service: validates uploads, creates jobs and answers queries.
//   - Sequencer: one goroutine per job walks the fixed stage sequence,
//     bounded by an [AnalysisLimiter].
//   - Job Store: the only shared mutable state; see [JobStore].
//   - Spool: per-job copies of uploaded bytes, swept by the [Janitor].
//
// # Analyzer Registry
//
// Analyzers live in the analyzers subpackage and register themselves:
//
//	core.Register(core.AnalyzerDefinition{
//	    Info:      core.AnalyzerInfo{Type: core.FileTypeCSV, Label: "CSV", Extensions: []string{".csv"}},
//	    Parse:     ParseCSV,
//	    Summarize: SummarizeCSV,
//	})
//
// # Job Lifecycle
//
//  1. [Service.Submit] rejects empty, oversized and unsupported uploads
//     without creating a record, then spools the bytes and returns a
//     pending [JobRecord].
//  2. The sequencer waits for a slot, then moves the job through reading,
//     parsing and generating_summary to completed, or to failed.
//  3. Every transition is an atomic [JobStore] update and is published on
//     the [EventHub].
//  4. [Service.Delete] is terminal even mid-flight: the sequencer's next
//     update sees [ErrNotFound] and discards its work.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: upload errors (size, type, encoding, empty, malformed)
//   - PARSE001: analyzer failures
//   - JOB001-JOB002: unknown job, bad status filter
//   - RATE001: rate limiting
package core
