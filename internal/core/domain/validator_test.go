package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalValidator_Accepts(t *testing.T) {
	v := NewLexicalValidator()

	queries := []string{
		"SELECT 1",
		"select * from roleplay_daily_reports",
		"  SELECT id FROM t  ",
		"SELECT * FROM roleplay_daily_reports;",
		"SELECT 1;  ",
		"SELECT 1;;",
		`SELECT "餐厅完整名称", "总体任务完成率" FROM roleplay_daily_reports`,
		"SELECT\n\tid,\n\tname\nFROM t\nWHERE id > 0",
		"SELECT updated_at, created_at, deleted_flag FROM t",
		"SELECT * FROM procedures_log",
		"SELECT grants FROM revocations",
		"SELECT executor FROM t",
		`SELECT count(*) FROM t GROUP BY "餐厅ID"`,
		"SELECT(1)",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			assert.NoError(t, v.Validate(q))
		})
	}
}

func TestLexicalValidator_RejectsShape(t *testing.T) {
	v := NewLexicalValidator()

	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
		{"show statement", "SHOW TABLES"},
		{"with clause first", "WITH x AS (SELECT 1) SELECT * FROM x"},
		{"explain", "EXPLAIN SELECT 1"},
		{"leading comment", "-- note\nSELECT 1"},
		{"select glued to identifier", "SELECTX FROM t"},
		{"parenthesized select", "(SELECT 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.query)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Empty(t, ve.Keyword)
			assert.Contains(t, ve.Reason, "SELECT")
		})
	}
}

func TestLexicalValidator_RejectsKeywords(t *testing.T) {
	v := NewLexicalValidator()

	tests := []struct {
		name    string
		query   string
		keyword string
	}{
		{"insert", "INSERT INTO t (a) VALUES (1)", "INSERT"},
		{"update lowercase", "update t set a = 1", "UPDATE"},
		{"delete mixed case", "DeLeTe FROM t", "DELETE"},
		{"drop table", "DROP TABLE roleplay_daily_reports", "DROP"},
		{"alter", "ALTER TABLE t ADD COLUMN x int", "ALTER"},
		{"create", "CREATE TABLE t (id int)", "CREATE"},
		{"truncate", "TRUNCATE t", "TRUNCATE"},
		{"grant", "GRANT ALL ON t TO PUBLIC", "GRANT"},
		{"revoke", "REVOKE ALL ON t FROM PUBLIC", "REVOKE"},
		{"exec", "EXEC sp_who", "EXEC"},
		{"execute", "SELECT * FROM t WHERE execute = 1", "EXECUTE"},
		{"procedure", "SELECT procedure FROM t", "PROCEDURE"},
		{"function", "SELECT function FROM t", "FUNCTION"},
		{"keyword inside select", "SELECT * FROM t WHERE note = 'please DELETE me'", "DELETE"},
		{"keyword in comment", "SELECT 1 -- drop later", "DROP"},
		{"second statement", "SELECT * FROM t; DELETE FROM t", "DELETE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.query)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.keyword, ve.Keyword)
			assert.Contains(t, ve.Reason, tt.keyword)
		})
	}
}

func TestLexicalValidator_KeywordScanOrder(t *testing.T) {
	v := NewLexicalValidator()

	// UPDATE appears before INSERT in the text, but INSERT comes first in the
	// denylist and is the one reported.
	err := v.Validate("UPDATE t SET note = 'INSERT'")
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "INSERT", ve.Keyword)
}

func TestLexicalValidator_MultiStatement(t *testing.T) {
	v := NewLexicalValidator()

	err := v.Validate("SELECT 1; SELECT 2")
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "multiple statements")
	assert.Empty(t, ve.Keyword)
}

func TestLexicalValidator_SemicolonInLiteralOverBlocks(t *testing.T) {
	v := NewLexicalValidator()

	// The scan is lexical: a semicolon inside a string literal still counts
	// as a statement separator. Rejecting here is the accepted trade-off.
	err := v.Validate("SELECT * FROM t WHERE note = 'a;b'")
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*ValidationError)))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Reason: "keyword DROP is not allowed", Keyword: "DROP"}
	assert.Equal(t, "keyword DROP is not allowed", err.Error())
}
