package port

import "context"

// QueryExecutor runs a read-only SQL query and returns the result rows as
// column-name keyed maps.
type QueryExecutor interface {
	Execute(ctx context.Context, query string) ([]map[string]any, error)
}
