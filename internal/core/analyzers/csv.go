package analyzers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/JonMunkholm/fileparser/internal/core"
)

// CSVFacts is the key_info of a .csv upload.
type CSVFacts struct {
	Rows            int                                    `json:"rows"`
	Columns         int                                    `json:"columns"`
	MainColumns     []string                               `json:"main_columns"`
	AllColumns      []string                               `json:"all_columns"`
	ColumnTypes     *orderedmap.OrderedMap[string, string] `json:"column_types"`
	NullCounts      *orderedmap.OrderedMap[string, int]    `json:"null_counts"`
	SampleFirstRows []*orderedmap.OrderedMap[string, any]  `json:"sample_first_rows"`
}

// Column type names reported in column_types.
const (
	ColumnInteger = "integer"
	ColumnFloat   = "float"
	ColumnBoolean = "boolean"
	ColumnText    = "text"
	ColumnEmpty   = "empty"
)

// mainColumnTokens mark headers worth surfacing first.
var mainColumnTokens = map[string]bool{
	"id": true, "name": true, "date": true, "time": true, "price": true, "amount": true,
	"total": true, "email": true, "status": true, "type": true, "code": true,
}

var (
	headerSplit  = regexp.MustCompile(`[^A-Za-z0-9]+|([a-z0-9])([A-Z])`)
	floatPattern = regexp.MustCompile(`^[+-]?(\d+\.\d*|\.\d+|\d+)([eE][+-]?\d+)?$`)
)

// ParseCSV reads the header and samples data rows. Rows past the sample cap
// are counted but not kept.
func ParseCSV(content string, limits core.Limits) (any, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: CSV has no header row", core.ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read CSV header: %v", core.ErrParse, err)
	}
	columns := normalizeHeader(header)

	var sample [][]string
	rows := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read CSV row %d: %v", core.ErrParse, rows+1, err)
		}
		rows++
		if len(sample) < limits.CSVSampleRows {
			sample = append(sample, append([]string(nil), record...))
		}
	}

	facts := &CSVFacts{
		Rows:            rows,
		Columns:         len(columns),
		MainColumns:     pickMainColumns(columns, limits.MainColumns),
		AllColumns:      columns,
		ColumnTypes:     orderedmap.New[string, string](),
		NullCounts:      orderedmap.New[string, int](),
		SampleFirstRows: []*orderedmap.OrderedMap[string, any]{},
	}

	for i, col := range columns {
		kind, nulls := profileColumn(sample, i)
		facts.ColumnTypes.Set(col, kind)
		if nulls > 0 {
			facts.NullCounts.Set(col, nulls)
		}
	}

	for i := 0; i < len(sample) && i < limits.CSVPreviewRows; i++ {
		row := orderedmap.New[string, any]()
		for j, col := range columns {
			row.Set(col, typedCell(cell(sample[i], j)))
		}
		facts.SampleFirstRows = append(facts.SampleFirstRows, row)
	}

	return facts, nil
}

// normalizeHeader trims names, fills blanks and disambiguates duplicates
// with a numeric suffix, so every column is a distinct key.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}
	return columns
}

// pickMainColumns prefers headers containing a well-known token, in header
// order, then fills up with the remaining headers in header order.
func pickMainColumns(columns []string, max int) []string {
	main := make([]string, 0, max)
	picked := make(map[int]bool)

	for i, col := range columns {
		if len(main) >= max {
			return main
		}
		if isMainColumn(col) {
			main = append(main, col)
			picked[i] = true
		}
	}
	for i, col := range columns {
		if len(main) >= max {
			break
		}
		if !picked[i] {
			main = append(main, col)
		}
	}
	return main
}

func isMainColumn(header string) bool {
	spaced := headerSplit.ReplaceAllString(header, "$1 $2")
	for _, tok := range strings.Fields(strings.ToLower(spaced)) {
		if mainColumnTokens[tok] {
			return true
		}
	}
	return false
}

// profileColumn infers a column's type over the sample and counts its empty cells.
func profileColumn(sample [][]string, idx int) (string, int) {
	nulls := 0
	allInt, allNum, allBool := true, true, true
	nonEmpty := 0

	for _, rec := range sample {
		v := strings.TrimSpace(cell(rec, idx))
		if v == "" {
			nulls++
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if !floatPattern.MatchString(v) {
			allNum = false
		}
		if _, ok := parseBool(v); !ok {
			allBool = false
		}
	}

	switch {
	case nonEmpty == 0:
		return ColumnEmpty, nulls
	case allInt:
		return ColumnInteger, nulls
	case allNum:
		return ColumnFloat, nulls
	case allBool:
		return ColumnBoolean, nulls
	default:
		return ColumnText, nulls
	}
}

func cell(rec []string, idx int) string {
	if idx < len(rec) {
		return rec[idx]
	}
	return ""
}

// typedCell renders a preview value: numbers as numbers, blanks as null.
func typedCell(raw string) any {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if floatPattern.MatchString(v) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return raw
}

// parseBool accepts the spellings spreadsheets commonly export.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y":
		return true, true
	case "false", "f", "no", "n":
		return false, true
	default:
		return false, false
	}
}

// SummarizeCSV describes row and column counts and the main columns.
func SummarizeCSV(facts any) string {
	f, ok := facts.(*CSVFacts)
	if !ok {
		return ""
	}
	summary := fmt.Sprintf("Contains %s data %s across %d %s.",
		humanize.Comma(int64(f.Rows)), plural(f.Rows, "row", "rows"),
		f.Columns, plural(f.Columns, "column", "columns"))
	if len(f.MainColumns) > 0 {
		cols := f.MainColumns
		if len(cols) > 5 {
			cols = cols[:5]
		}
		summary += " Main columns: " + strings.Join(cols, ", ") + "."
	}
	return summary
}
