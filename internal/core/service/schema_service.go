package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/roleplayhq/reports-mcp/internal/core/domain"
	"github.com/roleplayhq/reports-mcp/internal/dictionary"
)

// Well-known columns of the reports view, used by the schema metadata queries.
const (
	dateColumn           = "运营日期"
	restaurantIDColumn   = "餐厅ID"
	restaurantNameColumn = "餐厅完整名称"
)

// SchemaService builds the self-describing snapshot of the reports view:
// documented columns with inferred types, recent sample rows, and dataset
// metadata. All queries run through the QueryService pipeline so they are
// validated, row-limited, and audited like client queries.
type SchemaService struct {
	queries  *QueryService
	viewName string
	dict     *dictionary.Dictionary
	logger   *slog.Logger
}

func NewSchemaService(queries *QueryService, viewName string, dict *dictionary.Dictionary, logger *slog.Logger) *SchemaService {
	return &SchemaService{
		queries:  queries,
		viewName: viewName,
		dict:     dict,
		logger:   logger,
	}
}

// Describe queries the view for sample rows, aggregate metadata, and the
// distinct restaurant list, and merges the results with the column dictionary.
func (s *SchemaService) Describe(ctx context.Context) (*domain.ViewSchema, error) {
	sampleQuery := fmt.Sprintf(`SELECT * FROM %s ORDER BY "%s" DESC LIMIT 5`, s.viewName, dateColumn)
	sample, err := s.queries.Execute(ctx, sampleQuery, domain.MaxRowLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching sample rows: %w", err)
	}

	metadataQuery := fmt.Sprintf(
		`SELECT COUNT(*) as total_rows, MIN("%s") as earliest_date, MAX("%s") as latest_date, COUNT(DISTINCT "%s") as restaurant_count FROM %s`,
		dateColumn, dateColumn, restaurantIDColumn, s.viewName,
	)
	meta, err := s.queries.Execute(ctx, metadataQuery, domain.MaxRowLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching view metadata: %w", err)
	}

	restaurantQuery := fmt.Sprintf(`SELECT DISTINCT "%s" FROM %s ORDER BY "%s"`, restaurantNameColumn, s.viewName, restaurantNameColumn)
	restaurants, err := s.queries.Execute(ctx, restaurantQuery, domain.MaxRowLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching restaurant list: %w", err)
	}

	schema := &domain.ViewSchema{
		ViewName:    s.viewName,
		Description: s.dict.Description,
		Columns:     s.buildColumns(sample.Rows),
		SampleData:  sample.Rows,
		Metadata:    domain.ViewMetadata{Restaurants: []string{}},
		UsageHints:  s.dict.UsageHints,
	}
	if schema.SampleData == nil {
		schema.SampleData = []map[string]any{}
	}

	if len(meta.Rows) > 0 {
		raw := meta.Rows[0]
		schema.Metadata.TotalRows = asInt64(raw["total_rows"])
		schema.Metadata.DateRange.Earliest = asString(raw["earliest_date"])
		schema.Metadata.DateRange.Latest = asString(raw["latest_date"])
		schema.Metadata.RestaurantCount = asInt64(raw["restaurant_count"])
	}
	for _, row := range restaurants.Rows {
		schema.Metadata.Restaurants = append(schema.Metadata.Restaurants, asString(row[restaurantNameColumn]))
	}

	return schema, nil
}

// buildColumns lists the view's columns with data types inferred from the
// first sample row. Result-map iteration order is not stable, so documented
// columns come first in dictionary order and the remainder alphabetically.
func (s *SchemaService) buildColumns(rows []map[string]any) []domain.ViewColumn {
	columns := []domain.ViewColumn{}
	if len(rows) == 0 {
		return columns
	}
	first := rows[0]

	seen := make(map[string]bool, len(first))
	for _, doc := range s.dict.Columns {
		value, ok := first[doc.Name]
		if !ok {
			continue
		}
		seen[doc.Name] = true
		columns = append(columns, domain.ViewColumn{
			Name:        doc.Name,
			NameEnglish: doc.NameEnglish,
			DataType:    domain.InferDataType(value),
			Description: doc.Description,
		})
	}

	var rest []string
	for name := range first {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		doc := s.dict.Lookup(name)
		columns = append(columns, domain.ViewColumn{
			Name:        name,
			NameEnglish: doc.NameEnglish,
			DataType:    domain.InferDataType(first[name]),
			Description: doc.Description,
		})
	}

	return columns
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case time.Time:
		if s.Hour() == 0 && s.Minute() == 0 && s.Second() == 0 && s.Nanosecond() == 0 {
			return s.Format("2006-01-02")
		}
		return s.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
