package core

import (
	"strconv"
	"strings"
	"testing"
)

// registerFakes replaces the registry with simple analyzers for the four
// types. parse, when non-nil, overrides the text analyzer's Parse.
func registerFakes(t *testing.T, parse func(string, Limits) (any, error)) {
	t.Helper()
	Clear()
	t.Cleanup(Clear)

	echo := func(content string, _ Limits) (any, error) { return content, nil }
	summarize := func(facts any) string {
		if s, ok := facts.(string); ok {
			return "Lines: " + strconv.Itoa(strings.Count(s, "\n")+1) + "."
		}
		return ""
	}
	if parse == nil {
		parse = echo
	}

	Register(AnalyzerDefinition{
		Info:      AnalyzerInfo{Type: FileTypeText, Label: "TXT", Extensions: []string{".txt"}},
		Parse:     parse,
		Summarize: summarize,
	})
	Register(AnalyzerDefinition{
		Info:      AnalyzerInfo{Type: FileTypeJSON, Label: "JSON", Extensions: []string{".json"}, StrictUTF8: true},
		Parse:     echo,
		Summarize: summarize,
	})
	Register(AnalyzerDefinition{
		Info:      AnalyzerInfo{Type: FileTypeCSV, Label: "CSV", Extensions: []string{".csv"}},
		Parse:     echo,
		Summarize: summarize,
	})
	Register(AnalyzerDefinition{
		Info:      AnalyzerInfo{Type: FileTypeSQL, Label: "SQL", Extensions: []string{".sql"}},
		Parse:     echo,
		Summarize: summarize,
	})
}
