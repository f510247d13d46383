package analyzers

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fileparser/internal/core"
)

func parseCSV(t *testing.T, content string) *CSVFacts {
	t.Helper()
	facts, err := ParseCSV(content, core.DefaultLimits())
	require.NoError(t, err)
	return facts.(*CSVFacts)
}

func csvWithRows(n int) string {
	var b strings.Builder
	b.WriteString("id,name,amount,notes\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d,user%d,%d.50,\n", i, i, i)
	}
	return b.String()
}

func TestParseCSV_RowCounts(t *testing.T) {
	tests := []struct {
		name string
		rows int
	}{
		{"under sample cap", 10},
		{"at sample cap", 1000},
		{"past sample cap", 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseCSV(t, csvWithRows(tt.rows))
			assert.Equal(t, tt.rows, f.Rows)
			assert.Equal(t, 4, f.Columns)
			assert.Len(t, f.SampleFirstRows, 3)
		})
	}
}

func TestParseCSV_ColumnProfile(t *testing.T) {
	content := "id,price,active,label,blank\n1,9.99,yes,a,\n2,10,no,,\n3,1e3,true,c,\n"
	f := parseCSV(t, content)

	want := map[string]string{
		"id":     ColumnInteger,
		"price":  ColumnFloat,
		"active": ColumnBoolean,
		"label":  ColumnText,
		"blank":  ColumnEmpty,
	}
	for col, kind := range want {
		got, ok := f.ColumnTypes.Get(col)
		require.True(t, ok, "column %s missing", col)
		assert.Equal(t, kind, got, "column %s", col)
	}

	var nullCols []string
	for pair := f.NullCounts.Oldest(); pair != nil; pair = pair.Next() {
		nullCols = append(nullCols, pair.Key)
	}
	assert.Equal(t, []string{"label", "blank"}, nullCols)
	n, _ := f.NullCounts.Get("blank")
	assert.Equal(t, 3, n)
}

func TestParseCSV_SampleRowsTyped(t *testing.T) {
	f := parseCSV(t, "id,amount,name,note\n7,2.5,alice,\n")

	require.Len(t, f.SampleFirstRows, 1)
	row := f.SampleFirstRows[0]

	var keys []string
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"id", "amount", "name", "note"}, keys)

	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"amount":2.5,"name":"alice","note":null}`, string(out))
}

func TestParseCSV_MainColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{
			name:   "token matches first, in header order",
			header: "notes,customerID,region,order_date,comment,total_price,extra",
			want:   []string{"customerID", "order_date", "total_price", "notes", "region"},
		},
		{
			name:   "capped at five matches",
			header: "id,name,email,status,type,code",
			want:   []string{"id", "name", "email", "status", "type"},
		},
		{
			name:   "no matches falls back to header order",
			header: "alpha,beta",
			want:   []string{"alpha", "beta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseCSV(t, tt.header+"\n")
			assert.Equal(t, tt.want, f.MainColumns)
		})
	}
}

func TestParseCSV_HeaderNormalization(t *testing.T) {
	f := parseCSV(t, " id ,,id\n1,2,3\n")

	assert.Equal(t, []string{"id", "column_2", "id.1"}, f.AllColumns)
}

func TestParseCSV_RaggedRowsAndLazyQuotes(t *testing.T) {
	f := parseCSV(t, "a,b,c\n1,2\n3,4,5,6\n\"x\"y,z,w\n")

	assert.Equal(t, 3, f.Rows)
	n, _ := f.NullCounts.Get("c")
	assert.Equal(t, 1, n)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV("", core.DefaultLimits())
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	f := parseCSV(t, "id,name\n")

	assert.Equal(t, 0, f.Rows)
	assert.Empty(t, f.SampleFirstRows)
	v, _ := f.ColumnTypes.Get("id")
	assert.Equal(t, ColumnEmpty, v)
}

func TestSummarizeCSV(t *testing.T) {
	f := parseCSV(t, csvWithRows(1500))

	assert.Equal(t, "Contains 1,500 data rows across 4 columns. Main columns: id, name, amount, notes.", SummarizeCSV(f))
}
