// Package analyzers registers the format-specific analyzers with the core
// registry. Import it for side effects wherever a core.Service runs.
package analyzers

import "github.com/JonMunkholm/fileparser/internal/core"

func init() {
	core.Register(core.AnalyzerDefinition{
		Info:      core.AnalyzerInfo{Type: core.FileTypeSQL, Label: "SQL", Extensions: []string{".sql"}},
		Parse:     ParseSQL,
		Summarize: SummarizeSQL,
	})
	core.Register(core.AnalyzerDefinition{
		Info:      core.AnalyzerInfo{Type: core.FileTypeJSON, Label: "JSON", Extensions: []string{".json"}, StrictUTF8: true},
		Parse:     ParseJSON,
		Summarize: SummarizeJSON,
	})
	core.Register(core.AnalyzerDefinition{
		Info:      core.AnalyzerInfo{Type: core.FileTypeText, Label: "TXT", Extensions: []string{".txt"}},
		Parse:     ParseText,
		Summarize: SummarizeText,
	})
	core.Register(core.AnalyzerDefinition{
		Info:      core.AnalyzerInfo{Type: core.FileTypeCSV, Label: "CSV", Extensions: []string{".csv"}},
		Parse:     ParseCSV,
		Summarize: SummarizeCSV,
	})
}
