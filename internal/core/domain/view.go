package domain

// ViewColumn describes one column of the report view for agent consumption.
// Name is the real (Chinese) column name that must be double-quoted in SQL;
// NameEnglish and Description come from the column dictionary.
type ViewColumn struct {
	Name        string `json:"name"`
	NameEnglish string `json:"name_english"`
	DataType    string `json:"data_type"`
	Description string `json:"description"`
}

// DateRange bounds the operating dates covered by the view.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// ViewMetadata aggregates view-level statistics.
type ViewMetadata struct {
	TotalRows       int64     `json:"total_rows"`
	DateRange       DateRange `json:"date_range"`
	RestaurantCount int64     `json:"restaurant_count"`
	Restaurants     []string  `json:"restaurants"`
}

// ViewSchema is the full shape-and-samples description of the report view.
type ViewSchema struct {
	ViewName    string           `json:"view_name"`
	Description string           `json:"description"`
	Columns     []ViewColumn     `json:"columns"`
	SampleData  []map[string]any `json:"sample_data"`
	Metadata    ViewMetadata     `json:"metadata"`
	UsageHints  []string         `json:"usage_hints"`
}
