package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roleplayhq/reports-mcp/internal/core/domain"
	"github.com/roleplayhq/reports-mcp/internal/core/service"
)

// CharacterLimit caps rendered tool responses. Counted in characters, not
// bytes, so Chinese column values weigh the same as ASCII.
const CharacterLimit = 25000

// Error envelope types surfaced to the calling agent.
const (
	errTypeValidation = "QueryValidationError"
	errTypeDatabase   = "DatabaseError"
)

// queryEnvelope is the JSON body of a successful execute_custom_query call.
type queryEnvelope struct {
	Success         bool             `json:"success"`
	Query           string           `json:"query"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMS int64            `json:"execution_time_ms"`
	Data            []map[string]any `json:"data"`
	Truncated       bool             `json:"_truncated,omitempty"`
	Message         string           `json:"_message,omitempty"`
}

// schemaEnvelope is the JSON body of a successful get_view_schema_and_samples call.
type schemaEnvelope struct {
	Success     bool                `json:"success"`
	ViewName    string              `json:"view_name"`
	Description string              `json:"description"`
	Columns     []domain.ViewColumn `json:"columns"`
	SampleData  []map[string]any    `json:"sample_data"`
	Metadata    domain.ViewMetadata `json:"metadata"`
	UsageHints  []string            `json:"usage_hints"`
	Truncated   bool                `json:"_truncated,omitempty"`
	Message     string              `json:"_message,omitempty"`
}

type errorEnvelope struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// renderQueryResult serializes the result envelope. When the rendering blows
// the character budget, rows are dropped from the tail of data (binary search
// for the largest fitting prefix) and the envelope is flagged truncated.
func renderQueryResult(res *service.QueryResult) (string, error) {
	env := queryEnvelope{
		Success:         true,
		Query:           res.Query,
		RowCount:        len(res.Rows),
		ExecutionTimeMS: res.DurationMS,
		Data:            res.Rows,
	}
	if env.Data == nil {
		env.Data = []map[string]any{}
	}

	rendered, err := marshalIndent(env)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(rendered) <= CharacterLimit {
		return rendered, nil
	}

	env.Truncated = true
	env.Message = fmt.Sprintf("Response was truncated to fit within %d character limit. Original row count: %d", CharacterLimit, len(env.Data))

	return largestFitting(len(env.Data)-1, func(n int) (string, error) {
		trial := env
		trial.Data = env.Data[:n]
		trial.RowCount = n
		return marshalIndent(trial)
	})
}

// renderSchemaResult serializes the schema envelope, truncating sample rows
// the same way renderQueryResult truncates data rows.
func renderSchemaResult(view *domain.ViewSchema) (string, error) {
	env := schemaEnvelope{
		Success:     true,
		ViewName:    view.ViewName,
		Description: view.Description,
		Columns:     view.Columns,
		SampleData:  view.SampleData,
		Metadata:    view.Metadata,
		UsageHints:  view.UsageHints,
	}
	if env.SampleData == nil {
		env.SampleData = []map[string]any{}
	}

	rendered, err := marshalIndent(env)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(rendered) <= CharacterLimit {
		return rendered, nil
	}

	env.Truncated = true
	env.Message = fmt.Sprintf("Response was truncated to fit within %d character limit", CharacterLimit)

	return largestFitting(len(env.SampleData)-1, func(n int) (string, error) {
		trial := env
		trial.SampleData = env.SampleData[:n]
		return marshalIndent(trial)
	})
}

func renderError(errType, message, suggestion string) string {
	env := errorEnvelope{
		Error: errorDetail{Type: errType, Message: message, Suggestion: suggestion},
	}
	rendered, err := marshalIndent(env)
	if err != nil {
		return fmt.Sprintf(`{"success": false, "error": {"type": %q, "message": %q}}`, errType, message)
	}
	return rendered
}

// largestFitting binary-searches [0, maxRows] for the largest row count whose
// rendering stays within CharacterLimit. The zero-row rendering is returned
// even if it exceeds the budget, so callers always get a response.
func largestFitting(maxRows int, render func(n int) (string, error)) (string, error) {
	best, err := render(0)
	if err != nil {
		return "", err
	}

	lo, hi := 1, maxRows
	for lo <= hi {
		mid := (lo + hi) / 2
		trial, err := render(mid)
		if err != nil {
			return "", err
		}
		if utf8.RuneCountInString(trial) <= CharacterLimit {
			best = trial
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	return best, nil
}

// marshalIndent renders two-space indented JSON without HTML escaping, so
// Chinese text and SQL operators stay readable in the payload.
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding response: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
