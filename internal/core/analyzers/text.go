package analyzers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/JonMunkholm/fileparser/internal/core"
)

// TextFacts is the key_info of a .txt upload.
type TextFacts struct {
	DetectedType   string                              `json:"detected_type"`
	TotalLines     int                                 `json:"total_lines"`
	NonEmptyLines  int                                 `json:"non_empty_lines"`
	TotalChars     int                                 `json:"total_chars"`
	KeywordCounts  *orderedmap.OrderedMap[string, int] `json:"keyword_counts"`
	ImportantLines []ImportantLine                     `json:"important_lines"`
}

// ImportantLine is a line carrying an alert keyword.
type ImportantLine struct {
	LineNumber int    `json:"line_number"`
	Type       string `json:"type"`
	Content    string `json:"content"`
}

// textKeywords are counted case-insensitively, at most once per line each.
var textKeywords = []string{
	"error", "success", "failed", "warning", "total",
	"exception", "critical", "completed", "started", "finished",
}

var alertKeywords = map[string]bool{
	"error": true, "exception": true, "critical": true, "failed": true, "warning": true,
}

var (
	logTimestamp = regexp.MustCompile(`^\s*\[?\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?|^\s*\[?\d{2}:\d{2}:\d{2}\b`)
	logLevel     = regexp.MustCompile(`\b(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL)\b`)
	configLine   = regexp.MustCompile(`^\s*[A-Za-z_][\w.\-]*\s*=`)
	configNoise  = regexp.MustCompile(`^\s*([#;]|\[[^\]]+\]\s*$)`)
)

// shortTextLines is the non-empty line count below which plain text is short_text.
const shortTextLines = 50

// ParseText counts lines and keywords and classifies the text.
func ParseText(content string, limits core.Limits) (any, error) {
	lines := splitLines(content)

	facts := &TextFacts{
		TotalLines:     len(lines),
		TotalChars:     utf8.RuneCountInString(content),
		KeywordCounts:  orderedmap.New[string, int](),
		ImportantLines: []ImportantLine{},
	}

	counts := make(map[string]int, len(textKeywords))
	var logLines, configLines, configish int

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		facts.NonEmptyLines++

		if logTimestamp.MatchString(line) || logLevel.MatchString(line) {
			logLines++
		}
		switch {
		case configLine.MatchString(line):
			configLines++
			configish++
		case configNoise.MatchString(line):
			configish++
		}

		lower := strings.ToLower(line)
		alert := ""
		for _, kw := range textKeywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			counts[kw]++
			if alert == "" && alertKeywords[kw] {
				alert = kw
			}
		}

		if alert != "" && len(facts.ImportantLines) < limits.MaxImportantLines {
			facts.ImportantLines = append(facts.ImportantLines, ImportantLine{
				LineNumber: i + 1,
				Type:       alert,
				Content:    truncate(trimmed, limits.LineSnippetChars),
			})
		}
	}

	for _, kw := range textKeywords {
		if n := counts[kw]; n > 0 {
			facts.KeywordCounts.Set(kw, n)
		}
	}

	facts.DetectedType = detectTextType(facts.NonEmptyLines, logLines, configLines, configish, counts)
	return facts, nil
}

// detectTextType applies the classification precedence: structured log lines,
// key=value config, error keywords, success keywords, then length.
func detectTextType(nonEmpty, logLines, configLines, configish int, counts map[string]int) string {
	switch {
	case nonEmpty > 0 && logLines*2 > nonEmpty:
		return "log_file"
	case configLines > 0 && configish*2 > nonEmpty:
		return "config_file"
	case counts["error"] > 0 || counts["exception"] > 0:
		return "log_file"
	case counts["success"] > 0:
		return "process_log"
	case nonEmpty < shortTextLines:
		return "short_text"
	default:
		return "document"
	}
}

// splitLines splits on \n, trims a trailing \r from each line, and drops the
// empty segment a trailing newline would produce.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// SummarizeText describes the detected type, size and keyword tally.
func SummarizeText(facts any) string {
	f, ok := facts.(*TextFacts)
	if !ok {
		return ""
	}
	summary := fmt.Sprintf("Detected as %s with %d non-empty %s.",
		f.DetectedType, f.NonEmptyLines, plural(f.NonEmptyLines, "line", "lines"))

	var found []string
	for pair := f.KeywordCounts.Oldest(); pair != nil; pair = pair.Next() {
		found = append(found, fmt.Sprintf("%s(%d)", pair.Key, pair.Value))
	}
	if len(found) > 0 {
		summary += " Keywords: " + strings.Join(found, ", ") + "."
	}
	return summary
}
