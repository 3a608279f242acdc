package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/roleplayhq/reports-mcp/internal/core/domain"
	"github.com/roleplayhq/reports-mcp/internal/core/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server metadata
const serverName = "roleplay-reports"

// serverInstructions steers calling agents through the required workflow.
// Column names are Chinese and must be double-quoted in SQL, so querying
// before fetching the schema fails.
const serverInstructions = `This server provides access to restaurant roleplay task performance data.

REQUIRED WORKFLOW - YOU MUST FOLLOW THIS ORDER:
1. ALWAYS call get_view_schema_and_samples FIRST to understand the data structure
2. Then call execute_custom_query with correct column names from step 1

WHY THIS MATTERS:
- All column names are in Chinese and require double quotes in SQL
- Without the schema, you'll write incorrect queries that will fail
- The schema tool shows you all available columns with descriptions
`

// Tool descriptions
const (
	descSchema = "Get complete schema information, sample data, and metadata for the restaurant " +
		"daily reports view. Always call this FIRST, before executing any queries: all column " +
		"names are Chinese and must be double-quoted in SQL. Returns every column with its " +
		"English alias, inferred data type, and description; the five most recent sample rows; " +
		"dataset metadata (total rows, date range, restaurant list); and example query patterns " +
		"for common report shapes."

	descQuery = "Execute a custom SQL SELECT query against the restaurant daily reports view to " +
		"generate performance reports. Call get_view_schema_and_samples first to learn the " +
		"column names. Only read-only SELECT statements are accepted; a server-side row limit " +
		"(default 100 rows, maximum 1000) and a response character budget are enforced. " +
		"When users ask for a report, fetch all available columns for the requested scope and " +
		"let SQL do the filtering: single restaurant daily reports filter with " +
		`WHERE "餐厅完整名称" ILIKE '%name%' AND "运营日期"::date = 'YYYY-MM-DD', ` +
		"weekly trends use date BETWEEN ranges (optionally aggregated with AVG), and " +
		`multi-restaurant comparisons omit the restaurant filter and GROUP BY "餐厅完整名称".`

	descQueryParam = "SQL SELECT query to execute on the reports view. Must be a read-only " +
		"SELECT statement. Use double quotes for Chinese column names like \"餐厅完整名称\"."

	descRowLimitParam = "Maximum number of rows to return. Default: 100, Maximum: 1000."
)

// Error suggestions surfaced with failed calls. The Chinese ones match the
// language of the column names the agent has to work with.
const (
	suggestionValidationFmt = `请使用 SELECT 查询，例如: SELECT "餐厅完整名称", "总体任务完成率" FROM %s WHERE "运营日期"::date = CURRENT_DATE - 1`

	suggestionQueryFailed = "请检查SQL语法是否正确，特别注意中文列名需要使用双引号。可以先调用 get_view_schema_and_samples 查看可用的列名。"

	suggestionSchemaFailedFmt = "Please check database connection and ensure the %s view exists."
)

func RegisterTools(s *server.MCPServer, schema *service.SchemaService, query *service.QueryService, viewName string) {
	s.AddTool(
		mcp.NewTool("get_view_schema_and_samples",
			mcp.WithDescription(descSchema),
		),
		schemaHandler(schema, viewName),
	)

	s.AddTool(
		mcp.NewTool("execute_custom_query",
			mcp.WithDescription(descQuery),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description(descQueryParam),
			),
			mcp.WithNumber("row_limit",
				mcp.Description(descRowLimitParam),
			),
		),
		queryHandler(query, viewName),
	)
}

func schemaHandler(schema *service.SchemaService, viewName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = service.WithToolName(ctx, "get_view_schema_and_samples")

		view, err := schema.Describe(ctx)
		if err != nil {
			return schemaError(viewName, err), nil
		}

		rendered, err := renderSchemaResult(view)
		if err != nil {
			return schemaError(viewName, err), nil
		}

		return mcp.NewToolResultText(rendered), nil
	}
}

func queryHandler(query *service.QueryService, viewName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		sql, ok := args["query"].(string)
		if !ok || sql == "" {
			return validationError(viewName, "query is required"), nil
		}

		rowLimit := domain.DefaultRowLimit
		if raw, present := args["row_limit"]; present && raw != nil {
			n, ok := raw.(float64)
			if !ok {
				return validationError(viewName, "row_limit must be a number"), nil
			}
			rowLimit = int(n)
		}

		ctx = service.WithToolName(ctx, "execute_custom_query")
		res, err := query.Execute(ctx, sql, rowLimit)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				return validationError(viewName, verr.Reason), nil
			}
			return queryError(err), nil
		}

		rendered, err := renderQueryResult(res)
		if err != nil {
			return queryError(err), nil
		}

		return mcp.NewToolResultText(rendered), nil
	}
}

func validationError(viewName, message string) *mcp.CallToolResult {
	suggestion := fmt.Sprintf(suggestionValidationFmt, viewName)
	return mcp.NewToolResultError(renderError(errTypeValidation, message, suggestion))
}

func queryError(err error) *mcp.CallToolResult {
	message := fmt.Sprintf("Query execution failed: %v", err)
	return mcp.NewToolResultError(renderError(errTypeDatabase, message, suggestionQueryFailed))
}

func schemaError(viewName string, err error) *mcp.CallToolResult {
	message := fmt.Sprintf("Failed to retrieve schema and samples: %v", err)
	suggestion := fmt.Sprintf(suggestionSchemaFailedFmt, viewName)
	return mcp.NewToolResultError(renderError(errTypeDatabase, message, suggestion))
}
