package domain

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// StrictValidator layers PostgreSQL's own parser on top of the lexical
// rules. The lexical pass stays authoritative for rejection reasons; the
// parser then requires the text to be exactly one plain SELECT statement,
// closing lexical blind spots such as SELECT ... INTO.
type StrictValidator struct {
	lexical *LexicalValidator
}

func NewStrictValidator() *StrictValidator {
	return &StrictValidator{lexical: NewLexicalValidator()}
}

func (v *StrictValidator) Validate(query string) error {
	if err := v.lexical.Validate(query); err != nil {
		return err
	}

	tree, err := pg_query.Parse(strings.TrimSpace(query))
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("failed to parse SQL: %v", err)}
	}

	if len(tree.Stmts) == 0 || tree.Stmts[0].Stmt == nil {
		return &ValidationError{Reason: "empty query: only SELECT queries are allowed"}
	}
	if len(tree.Stmts) > 1 {
		return &ValidationError{Reason: "multiple statements are not allowed: submit a single SELECT"}
	}

	sel, ok := tree.Stmts[0].Stmt.Node.(*pg_query.Node_SelectStmt)
	if !ok {
		return &ValidationError{Reason: "only SELECT queries are allowed: the query must start with SELECT"}
	}
	if sel.SelectStmt.GetIntoClause() != nil {
		return &ValidationError{Reason: "SELECT INTO is not allowed: only read-only SELECT queries are permitted"}
	}

	return nil
}
