package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const rpcPath = "/rest/v1/rpc/execute_sql"

// Client executes SQL through a Supabase PostgREST execute_sql RPC function.
// The anon key is sent both as the apikey header and as a bearer token, the
// way Supabase's own client libraries authenticate.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	Query string `json:"query"`
}

type rpcError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// Execute posts the query to the RPC endpoint and returns the result rows.
func (c *Client) Execute(ctx context.Context, query string) ([]map[string]any, error) {
	body, err := json.Marshal(rpcRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rpcPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling execute_sql: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var perr rpcError
		if err := json.Unmarshal(raw, &perr); err == nil && perr.Message != "" {
			if perr.Hint != "" {
				return nil, fmt.Errorf("execute_sql failed (HTTP %d): %s (hint: %s)", resp.StatusCode, perr.Message, perr.Hint)
			}
			return nil, fmt.Errorf("execute_sql failed (HTTP %d): %s", resp.StatusCode, perr.Message)
		}
		return nil, fmt.Errorf("execute_sql failed (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return decodeRows(raw)
}

// decodeRows normalizes the RPC's JSON payload into row maps. Numbers are
// kept as json.Number so integer and decimal values stay distinguishable.
func decodeRows(raw []byte) ([]map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch v := payload.(type) {
	case nil:
		return []map[string]any{}, nil
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
				continue
			}
			rows = append(rows, map[string]any{"value": item})
		}
		return rows, nil
	case map[string]any:
		return []map[string]any{v}, nil
	default:
		return []map[string]any{{"value": v}}, nil
	}
}
