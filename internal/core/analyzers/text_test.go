package analyzers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fileparser/internal/core"
)

func parseText(t *testing.T, content string) *TextFacts {
	t.Helper()
	facts, err := ParseText(content, core.DefaultLimits())
	require.NoError(t, err)
	return facts.(*TextFacts)
}

func keywordCounts(f *TextFacts) map[string]int {
	out := make(map[string]int)
	for pair := f.KeywordCounts.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

func TestParseText_Counts(t *testing.T) {
	var lines []string
	for i := 0; i < 3; i++ {
		lines = append(lines, fmt.Sprintf("step %d raised an error", i))
	}
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("step %d success", i))
	}
	for i := 0; i < 5; i++ {
		lines = append(lines, fmt.Sprintf("step %d warning: slow disk", i))
	}
	for i := 0; i < 5; i++ {
		lines = append(lines, "")
	}
	for len(lines) < 150 {
		lines = append(lines, "plain line of prose")
	}

	f := parseText(t, strings.Join(lines, "\n")+"\n")

	assert.Equal(t, 150, f.TotalLines)
	assert.Equal(t, 145, f.NonEmptyLines)
	assert.Equal(t, map[string]int{"error": 3, "success": 10, "warning": 5}, keywordCounts(f))
	assert.Equal(t, "log_file", f.DetectedType)
	assert.Len(t, f.ImportantLines, 8)
}

func TestParseText_KeywordCountedOncePerLine(t *testing.T) {
	f := parseText(t, "error error ERROR\nall good")

	assert.Equal(t, map[string]int{"error": 1}, keywordCounts(f))
	assert.Equal(t, 2, f.TotalLines)
}

func TestParseText_ImportantLines(t *testing.T) {
	long := "critical " + strings.Repeat("x", 200)
	content := strings.Join([]string{
		"boot started",
		"  disk warning and error together  ",
		long,
	}, "\n")

	f := parseText(t, content)

	require.Len(t, f.ImportantLines, 2)
	assert.Equal(t, ImportantLine{LineNumber: 2, Type: "error", Content: "disk warning and error together"}, f.ImportantLines[0])
	assert.Equal(t, 3, f.ImportantLines[1].LineNumber)
	assert.Equal(t, "critical", f.ImportantLines[1].Type)
	assert.Len(t, []rune(f.ImportantLines[1].Content), 100)
}

func TestParseText_ImportantLinesCapped(t *testing.T) {
	f := parseText(t, strings.Repeat("job failed\n", 25))

	assert.Len(t, f.ImportantLines, 10)
	assert.Equal(t, 25, keywordCounts(f)["failed"])
}

func TestParseText_DetectedType(t *testing.T) {
	many := func(line string, n int) string {
		return strings.Repeat(line+"\n", n)
	}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"timestamped log", many("2024-05-01 10:00:00 request served", 10), "log_file"},
		{"level tokens", many("INFO cache warmed", 10), "log_file"},
		{"config", "# settings\n[server]\nhost=localhost\nport = 8080\n", "config_file"},
		{"error keyword", "it all went fine\nthen an exception appeared\n", "log_file"},
		{"success keyword", "migration success\n", "process_log"},
		{"short text", "hello there\n", "short_text"},
		{"document", many("a sentence in a long essay", 60), "document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseText(t, tt.content).DetectedType)
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\n\n", []string{"a", ""}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, splitLines(tt.in), "splitLines(%q)", tt.in)
	}
}

func TestParseText_TotalCharsCountsRunes(t *testing.T) {
	f := parseText(t, "héllo")
	assert.Equal(t, 5, f.TotalChars)
}

func TestSummarizeText(t *testing.T) {
	f := parseText(t, "task started\ntask finished with success\n")

	assert.Equal(t, "Detected as process_log with 2 non-empty lines. Keywords: success(1), started(1), finished(1).", SummarizeText(f))
}
