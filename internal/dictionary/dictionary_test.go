package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	dict := Default()

	assert.NotEmpty(t, dict.Description)
	assert.Len(t, dict.Columns, 22)
	assert.Len(t, dict.UsageHints, 7)

	col := dict.Lookup("餐厅完整名称")
	assert.Equal(t, "restaurant_name", col.NameEnglish)
	assert.Equal(t, "餐厅名称（品牌-城市-门店）", col.Description)
}

func TestLookup_UnknownColumn(t *testing.T) {
	dict := Default()

	col := dict.Lookup("午市任务完成率")
	assert.Equal(t, "午市任务完成率", col.Name)
	assert.Equal(t, "午市任务完成率", col.NameEnglish)
	assert.Equal(t, "列数据", col.Description)
}

func TestLoadFromFile(t *testing.T) {
	yaml := `
description: "Weekly KPI reports"
columns:
  - name: "运营日期"
    name_english: "operating_date"
    description: "Reporting date"
usage_hints:
  - 'SELECT "运营日期" FROM weekly_reports'
`
	path := writeTempFile(t, yaml)

	dict, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Weekly KPI reports", dict.Description)
	require.Len(t, dict.Columns, 1)
	assert.Equal(t, "operating_date", dict.Columns[0].NameEnglish)
	assert.Len(t, dict.UsageHints, 1)
}

func TestLoadFromFile_PartialFallsBackToDefaults(t *testing.T) {
	yaml := `
description: "Custom description"
`
	path := writeTempFile(t, yaml)

	dict, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Custom description", dict.Description)
	assert.Len(t, dict.Columns, 22)
	assert.Len(t, dict.UsageHints, 7)
}

func TestLoadFromFile_EmptyColumnName(t *testing.T) {
	yaml := `
columns:
  - name: ""
    name_english: "bad"
`
	path := writeTempFile(t, yaml)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must not be empty")
}

func TestLoadFromFile_DuplicateColumn(t *testing.T) {
	yaml := `
columns:
  - name: "运营日期"
  - name: "运营日期"
`
	path := writeTempFile(t, yaml)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/dictionary.yaml")
	require.Error(t, err)
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, "columns: [invalid")

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dictionary.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}
