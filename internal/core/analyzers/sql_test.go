package analyzers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fileparser/internal/core"
)

func parseSQL(t *testing.T, content string) *SQLFacts {
	t.Helper()
	facts, err := ParseSQL(content, core.DefaultLimits())
	require.NoError(t, err)
	return facts.(*SQLFacts)
}

func queryTypes(f *SQLFacts) map[string]int {
	out := make(map[string]int)
	for pair := f.QueryTypes.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

func TestParseSQL_TransactionScript(t *testing.T) {
	var b strings.Builder
	b.WriteString("BEGIN;\n")
	for _, table := range []string{"users", "orders", "products"} {
		fmt.Fprintf(&b, "CREATE TABLE %s (id INT PRIMARY KEY, name TEXT);\n", table)
	}
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "INSERT INTO users (id, name) VALUES (%d, 'user %d');\n", i, i)
	}
	b.WriteString("SELECT * FROM users;\n")
	b.WriteString("SELECT id FROM orders WHERE id > 1;\n")
	b.WriteString("COMMIT;\n")

	f := parseSQL(t, b.String())

	assert.Equal(t, 3, f.TablesCount)
	assert.Equal(t, []string{"users", "orders", "products"}, f.TablesFound)
	assert.Equal(t, 15, f.TotalQueries)
	assert.Equal(t, map[string]int{"CREATE": 3, "INSERT": 10, "SELECT": 2}, queryTypes(f))
	assert.True(t, f.HasTransaction)
	assert.False(t, f.HasIndex)
}

func TestParseSQL_QueryTypesOrderedAndNonZero(t *testing.T) {
	f := parseSQL(t, "SELECT 1; DROP TABLE old_things; SELECT 2; CREATE INDEX idx ON t (a);")

	var keys []string
	for pair := f.QueryTypes.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"CREATE", "DROP", "SELECT"}, keys)
	assert.True(t, f.HasIndex)
	assert.Equal(t, []string{"old_things"}, f.TablesFound)
}

func TestParseSQL_IgnoresCommentsAndStrings(t *testing.T) {
	content := `-- don't count: DROP TABLE ghosts;
/* CREATE TABLE phantom (id int); */
INSERT INTO notes (body) VALUES ('see FROM nowhere; then DELETE everything');
`
	f := parseSQL(t, content)

	assert.Equal(t, 1, f.TotalQueries)
	assert.Equal(t, map[string]int{"INSERT": 1}, queryTypes(f))
	assert.Equal(t, []string{"notes"}, f.TablesFound)
	assert.False(t, f.HasTransaction)
}

func TestParseSQL_BackslashEscapedQuotes(t *testing.T) {
	content := `INSERT INTO users VALUES (1,'O\'Brien'),(2,'it''s \\');
INSERT INTO users VALUES (3,'Smith');
CREATE TABLE orders (id INT);
SELECT * FROM orders;`

	f := parseSQL(t, content)

	assert.Equal(t, 4, f.TotalQueries)
	assert.Equal(t, map[string]int{"CREATE": 1, "INSERT": 2, "SELECT": 1}, queryTypes(f))
	assert.Equal(t, []string{"users", "orders"}, f.TablesFound)
}

func TestParseSQL_WithResolvesToMainVerb(t *testing.T) {
	content := `WITH recent AS (SELECT id FROM orders WHERE created > now())
UPDATE customers SET flagged = true WHERE id IN (SELECT id FROM recent);`

	f := parseSQL(t, content)

	assert.Equal(t, map[string]int{"UPDATE": 1}, queryTypes(f))
	assert.Contains(t, f.TablesFound, "orders")
}

func TestParseSQL_QualifiedAndQuotedNames(t *testing.T) {
	f := parseSQL(t, "CREATE TABLE IF NOT EXISTS `shop`.`items` (id int);\nUPDATE public.accounts SET x = 1;\nDELETE FROM \"audit\";")

	assert.Equal(t, 3, f.TotalQueries)
	assert.Contains(t, f.TablesFound, "public.accounts")
	assert.Contains(t, f.TablesFound, "audit")
}

func TestParseSQL_NoStatements(t *testing.T) {
	f := parseSQL(t, "-- nothing here\n")

	assert.Equal(t, 0, f.TotalQueries)
	assert.Equal(t, 0, f.QueryTypes.Len())
	assert.NotNil(t, f.TablesFound)
}

func TestSummarizeSQL(t *testing.T) {
	f := parseSQL(t, "BEGIN; CREATE TABLE a (id int); INSERT INTO a VALUES (1); COMMIT;")

	assert.Equal(t, "Contains 2 SQL queries across 1 table. Includes a database transaction.", SummarizeSQL(f))
	assert.Empty(t, SummarizeSQL("not facts"))
}
