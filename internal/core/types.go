package core

import (
	"math"
	"time"

	"github.com/JonMunkholm/fileparser/internal/config"
)

// FileType identifies which analyzer handles an upload.
type FileType string

const (
	FileTypeSQL  FileType = "sql"
	FileTypeJSON FileType = "json"
	FileTypeText FileType = "txt"
	FileTypeCSV  FileType = "csv"
)

// JobStatus is the coarse lifecycle state of a job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// rank orders statuses so the store can reject backward moves.
// Both terminal states share the top rank.
func (s JobStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether no further transitions may occur.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is one of the four known statuses.
func (s JobStatus) Valid() bool {
	return s.rank() >= 0
}

// Stage is the fine-grained progress annotation within a status.
type Stage string

const (
	StagePending           Stage = "pending"
	StageReading           Stage = "reading"
	StageParsing           Stage = "parsing"
	StageGeneratingSummary Stage = "generating_summary"
	StageCompleted         Stage = "completed"
	StageFailed            Stage = "failed"
)

// Progress is the latest stage and a human-readable note about it.
type Progress struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// Result is the payload of a completed job.
type Result struct {
	Filename string   `json:"filename"`
	FileType FileType `json:"file_type"`
	SizeKB   float64  `json:"size_kb"`
	Summary  string   `json:"summary"`
	// KeyInfo is built once by an analyzer and never mutated afterwards,
	// so copies of a record may share it.
	KeyInfo any `json:"key_info"`
}

// JobRecord is the authoritative state of one analysis job.
type JobRecord struct {
	ID          string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	FileType    FileType   `json:"file_type"`
	Filename    string     `json:"filename"`
	SizeKB      float64    `json:"file_size_kb"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Progress    Progress   `json:"progress"`
	Result      *Result    `json:"result"`
	Error       *string    `json:"error"`
}

// clone returns a copy that shares no mutable pointers with r.
func (r JobRecord) clone() JobRecord {
	out := r
	if r.StartedAt != nil {
		t := *r.StartedAt
		out.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	if r.Result != nil {
		res := *r.Result
		out.Result = &res
	}
	if r.Error != nil {
		e := *r.Error
		out.Error = &e
	}
	return out
}

// Limits are the analyzer tunables.
type Limits struct {
	CSVSampleRows     int
	CSVPreviewRows    int
	MainColumns       int
	KeyFieldSample    int
	MaxKeyFields      int
	MaxImportantLines int
	LineSnippetChars  int
	SummaryMaxChars   int
}

// DefaultLimits matches the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		CSVSampleRows:     1000,
		CSVPreviewRows:    3,
		MainColumns:       5,
		KeyFieldSample:    10,
		MaxKeyFields:      10,
		MaxImportantLines: 10,
		LineSnippetChars:  100,
		SummaryMaxChars:   500,
	}
}

// LimitsFromConfig converts the analysis config section.
func LimitsFromConfig(c config.AnalysisConfig) Limits {
	return Limits{
		CSVSampleRows:     c.CSVSampleRows,
		CSVPreviewRows:    c.CSVPreviewRows,
		MainColumns:       c.MainColumns,
		KeyFieldSample:    c.KeyFieldSample,
		MaxKeyFields:      c.MaxKeyFields,
		MaxImportantLines: c.MaxImportantLines,
		LineSnippetChars:  c.LineSnippetChars,
		SummaryMaxChars:   c.SummaryMaxChars,
	}
}

// sizeKB converts a byte count to kilobytes rounded to two decimals.
func sizeKB(n int) float64 {
	return math.Round(float64(n)/1024*100) / 100
}
