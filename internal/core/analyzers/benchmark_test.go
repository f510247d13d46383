package analyzers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/fileparser/internal/core"
)

// ============================================================================
// Test Data Generators
// ============================================================================

func generateCSV(rows int) string {
	var b strings.Builder
	b.WriteString("id,customer_name,email,amount,created_at,active\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,Customer %d,c%d@example.com,%d.%02d,2024-01-%02d,%t\n",
			i, i, i, i*3, i%100, i%28+1, i%2 == 0)
	}
	return b.String()
}

func generateLog(lines int) string {
	levels := []string{"INFO", "WARN", "ERROR", "INFO"}
	var b strings.Builder
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&b, "2024-01-15 10:%02d:%02d %s worker %d finished batch\n", i/60%60, i%60, levels[i%4], i)
	}
	return b.String()
}

func generateSQL(inserts int) string {
	var b strings.Builder
	b.WriteString("BEGIN;\nCREATE TABLE orders (id INT PRIMARY KEY, note TEXT);\n")
	for i := 0; i < inserts; i++ {
		fmt.Fprintf(&b, "INSERT INTO orders VALUES (%d, 'it''s -- order %d'); -- seed\n", i, i)
	}
	b.WriteString("SELECT COUNT(*) FROM orders;\nCOMMIT;\n")
	return b.String()
}

func generateJSON(records int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < records; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":%d,"name":"user %d","tags":["a","b"],"address":{"city":"x"}}`, i, i)
	}
	b.WriteString("]")
	return b.String()
}

// ============================================================================
// Analyzer Benchmarks
// ============================================================================

// BenchmarkParseCSV_10K benchmarks a file past the sample cap, where rows
// are counted but not kept.
func BenchmarkParseCSV_10K(b *testing.B) {
	content := generateCSV(10000)
	limits := core.DefaultLimits()

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseCSV(content, limits); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseText_10K benchmarks keyword scanning over log lines.
func BenchmarkParseText_10K(b *testing.B) {
	content := generateLog(10000)
	limits := core.DefaultLimits()

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseText(content, limits); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseSQL_1K benchmarks statement splitting with strings and comments.
func BenchmarkParseSQL_1K(b *testing.B) {
	content := generateSQL(1000)
	limits := core.DefaultLimits()

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseSQL(content, limits); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseJSON_1K benchmarks tree building for an array of records.
func BenchmarkParseJSON_1K(b *testing.B) {
	content := generateJSON(1000)
	limits := core.DefaultLimits()

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseJSON(content, limits); err != nil {
			b.Fatal(err)
		}
	}
}

func TestGenerators(t *testing.T) {
	facts, err := ParseSQL(generateSQL(5), core.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	sql := facts.(*SQLFacts)
	if sql.TotalQueries != 7 {
		t.Errorf("TotalQueries = %d, want 7", sql.TotalQueries)
	}

	facts, err = ParseCSV(generateCSV(5), core.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	if got := facts.(*CSVFacts).Rows; got != 5 {
		t.Errorf("Rows = %d, want 5", got)
	}
}
