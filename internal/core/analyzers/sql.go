package analyzers

import (
	"fmt"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/JonMunkholm/fileparser/internal/core"
)

// SQLFacts is the key_info of a .sql upload.
type SQLFacts struct {
	TablesFound    []string                            `json:"tables_found"`
	TablesCount    int                                 `json:"tables_count"`
	TotalQueries   int                                 `json:"total_queries"`
	QueryTypes     *orderedmap.OrderedMap[string, int] `json:"query_types"`
	HasTransaction bool                                `json:"has_transaction"`
	HasIndex       bool                                `json:"has_index"`
}

// sqlVerbs is both the counting vocabulary and the output order of query_types.
var sqlVerbs = []string{"CREATE", "ALTER", "DROP", "INSERT", "UPDATE", "DELETE", "SELECT"}

const sqlIdent = "[`\"\\[]?((?:[A-Za-z_][\\w$]*\\.)?[A-Za-z_][\\w$]*)[`\"\\]]?"

var (
	// Leftmost match wins, so a quote inside a comment or "--" inside a
	// string is consumed by the construct that opened first. Literals accept
	// both '' and backslash escapes, as mysqldump writes 'O\'Brien'.
	sqlNoise = regexp.MustCompile(`(?s:'(?:[^'\\]|\\.|'')*')|--[^\n]*|(?s:/\*.*?\*/)`)
	sqlToken = regexp.MustCompile(`[()]|[A-Za-z_]+`)

	sqlTablePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bCREATE\s+(?:(?:GLOBAL|LOCAL)\s+)?(?:TEMP(?:ORARY)?\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` + sqlIdent),
		regexp.MustCompile(`(?i)\bALTER\s+TABLE\s+(?:IF\s+EXISTS\s+)?(?:ONLY\s+)?` + sqlIdent),
		regexp.MustCompile(`(?i)\bDROP\s+TABLE\s+(?:IF\s+EXISTS\s+)?` + sqlIdent),
		regexp.MustCompile(`(?i)\bINSERT\s+INTO\s+` + sqlIdent),
		regexp.MustCompile(`(?i)^\s*UPDATE\s+(?:ONLY\s+)?` + sqlIdent),
		regexp.MustCompile(`(?i)\bFROM\s+` + sqlIdent),
	}

	sqlTransaction = regexp.MustCompile(`(?i)\b(BEGIN|COMMIT|TRANSACTION)\b`)
	sqlIndex       = regexp.MustCompile(`(?i)\bINDEX\b`)
)

// ParseSQL counts statements by leading verb and collects the tables they touch.
func ParseSQL(content string, _ core.Limits) (any, error) {
	cleaned := stripSQL(content)

	counts := make(map[string]int, len(sqlVerbs))
	facts := &SQLFacts{
		TablesFound: []string{},
		QueryTypes:  orderedmap.New[string, int](),
	}
	seen := make(map[string]bool)

	for _, stmt := range strings.Split(cleaned, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if verb := statementVerb(stmt); verb != "" {
			counts[verb]++
			facts.TotalQueries++
		}

		for _, re := range sqlTablePatterns {
			for _, m := range re.FindAllStringSubmatch(stmt, -1) {
				name := m[1]
				key := strings.ToLower(name)
				if seen[key] {
					continue
				}
				seen[key] = true
				facts.TablesFound = append(facts.TablesFound, name)
			}
		}
	}

	for _, verb := range sqlVerbs {
		if n := counts[verb]; n > 0 {
			facts.QueryTypes.Set(verb, n)
		}
	}
	facts.TablesCount = len(facts.TablesFound)
	facts.HasTransaction = sqlTransaction.MatchString(cleaned)
	facts.HasIndex = sqlIndex.MatchString(cleaned)

	return facts, nil
}

// stripSQL removes comments and empties string literals so neither can
// contribute keywords, table names or statement separators.
func stripSQL(content string) string {
	return sqlNoise.ReplaceAllStringFunc(content, func(m string) string {
		if strings.HasPrefix(m, "'") {
			return "''"
		}
		return " "
	})
}

// statementVerb returns the counted verb that leads stmt. A WITH clause
// resolves to the first verb found outside its parenthesised subqueries.
func statementVerb(stmt string) string {
	tokens := sqlToken.FindAllString(stmt, -1)

	depth := 0
	sawWith := false
	for _, tok := range tokens {
		switch tok {
		case "(":
			depth++
			continue
		case ")":
			if depth > 0 {
				depth--
			}
			continue
		}

		word := strings.ToUpper(tok)
		if !sawWith {
			if word == "WITH" {
				sawWith = true
				continue
			}
			if isSQLVerb(word) {
				return word
			}
			return ""
		}
		if depth == 0 && isSQLVerb(word) {
			return word
		}
	}
	return ""
}

func isSQLVerb(word string) bool {
	for _, v := range sqlVerbs {
		if v == word {
			return true
		}
	}
	return false
}

// SummarizeSQL describes query and table counts.
func SummarizeSQL(facts any) string {
	f, ok := facts.(*SQLFacts)
	if !ok {
		return ""
	}
	summary := fmt.Sprintf("Contains %d SQL %s across %d %s.",
		f.TotalQueries, plural(f.TotalQueries, "query", "queries"),
		f.TablesCount, plural(f.TablesCount, "table", "tables"))
	if f.HasTransaction {
		summary += " Includes a database transaction."
	}
	return summary
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
