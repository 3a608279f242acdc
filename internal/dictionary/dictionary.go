package dictionary

// ColumnDoc describes one view column for consumers of the schema tool.
type ColumnDoc struct {
	Name        string `yaml:"name"`
	NameEnglish string `yaml:"name_english"`
	Description string `yaml:"description"`
}

// Dictionary holds operator-controlled documentation for the reports view:
// a business description, per-column docs, and example query hints that are
// merged into MCP tool responses.
type Dictionary struct {
	Description string      `yaml:"description"`
	Columns     []ColumnDoc `yaml:"columns"`
	UsageHints  []string    `yaml:"usage_hints"`
}

// Lookup returns the documentation for the named column. Columns absent from
// the dictionary get their own name as the English alias and a generic
// description.
func (d *Dictionary) Lookup(name string) ColumnDoc {
	for _, col := range d.Columns {
		if col.Name == name {
			return col
		}
	}
	return ColumnDoc{Name: name, NameEnglish: name, Description: "列数据"}
}

// Default returns the built-in dictionary for the roleplay_daily_reports view.
func Default() *Dictionary {
	return &Dictionary{
		Description: "餐厅角色扮演任务日报数据 - 57个KPI指标，涵盖总体、角色、时段维度的任务完成情况",
		Columns: []ColumnDoc{
			{Name: "报表唯一标识", NameEnglish: "report_id", Description: "每条记录的唯一标识"},
			{Name: "运营日期", NameEnglish: "operating_date", Description: "报表对应的运营日期"},
			{Name: "餐厅ID", NameEnglish: "restaurant_id", Description: "餐厅的唯一标识"},
			{Name: "餐厅完整名称", NameEnglish: "restaurant_name", Description: "餐厅名称（品牌-城市-门店）"},
			{Name: "总任务数量", NameEnglish: "total_tasks", Description: "当天所有任务的总数"},
			{Name: "已完成任务数量", NameEnglish: "completed_tasks", Description: "当天已完成的任务数量"},
			{Name: "总体任务完成率", NameEnglish: "overall_completion_rate", Description: "总体任务完成百分比 (0-100)"},
			{Name: "总体任务准时率", NameEnglish: "overall_ontime_rate", Description: "总体任务准时完成百分比 (0-100)"},
			{Name: "店长总任务数量", NameEnglish: "manager_total_tasks", Description: "店长角色的总任务数"},
			{Name: "店长已完成任务数量", NameEnglish: "manager_completed_tasks", Description: "店长已完成的任务数"},
			{Name: "店长任务完成率", NameEnglish: "manager_completion_rate", Description: "店长任务完成百分比"},
			{Name: "店长任务准时率", NameEnglish: "manager_ontime_rate", Description: "店长任务准时完成百分比"},
			{Name: "值班经理总任务数量", NameEnglish: "duty_manager_total_tasks", Description: "值班经理角色的总任务数"},
			{Name: "值班经理已完成任务数量", NameEnglish: "duty_manager_completed_tasks", Description: "值班经理已完成的任务数"},
			{Name: "值班经理任务完成率", NameEnglish: "duty_manager_completion_rate", Description: "值班经理任务完成百分比"},
			{Name: "值班经理任务准时率", NameEnglish: "duty_manager_ontime_rate", Description: "值班经理任务准时完成百分比"},
			{Name: "厨师总任务数量", NameEnglish: "chef_total_tasks", Description: "厨师角色的总任务数"},
			{Name: "厨师已完成任务数量", NameEnglish: "chef_completed_tasks", Description: "厨师已完成的任务数"},
			{Name: "厨师任务完成率", NameEnglish: "chef_completion_rate", Description: "厨师任务完成百分比"},
			{Name: "厨师任务准时率", NameEnglish: "chef_ontime_rate", Description: "厨师任务准时完成百分比"},
			{Name: "手动闭店任务是否完成", NameEnglish: "manual_closing_completed", Description: "手动闭店任务的完成状态 (true/false)"},
			{Name: "闭店任务ID", NameEnglish: "closing_task_id", Description: "闭店任务的唯一标识"},
		},
		UsageHints: []string{
			`查询时使用中文列名并加双引号: SELECT "餐厅完整名称", "总体任务完成率" FROM roleplay_daily_reports`,
			`日期过滤: WHERE "运营日期"::date = '2025-10-21'`,
			`模糊搜索餐厅: WHERE "餐厅完整名称" ILIKE '%绵阳%'`,
			`排除零任务: WHERE "总任务数量" > 0`,
			`按完成率排序: ORDER BY "总体任务完成率" DESC`,
			`聚合查询: SELECT AVG("总体任务完成率") FROM roleplay_daily_reports WHERE ...`,
			`分组统计: GROUP BY "餐厅完整名称"`,
		},
	}
}
