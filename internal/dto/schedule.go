package dto

import "hourplan/internal/model"

// ── 排期网格 DTO ──

// ScheduleCell 单周单元格
type ScheduleCell struct {
	Date       string           `json:"date"` // ISO 周一日期 "2006-01-02"
	Hours      float64          `json:"hours"`
	Phase      *model.PhaseName `json:"phase,omitempty"`
	IsOverride bool             `json:"is_override"`
}

// ScheduleRow 单行 = (项目, 人员类型, 分行) 的整年工时
type ScheduleRow struct {
	ProjectID   string         `json:"project_id"`
	ProjectName string         `json:"project_name"`
	StaffTypeID string         `json:"staff_type_id"`
	StaffName   string         `json:"staff_name"`
	Role        string         `json:"role"`
	Split       int            `json:"split"` // 1 起始
	Cells       []ScheduleCell `json:"cells"`
	TotalHours  float64        `json:"total_hours"`
}

// ScheduleData 完整排期网格：周表头 + 行列表
type ScheduleData struct {
	Headers []string      `json:"headers"` // ISO 周一日期，按时间升序
	Rows    []ScheduleRow `json:"rows"`
}

// ── 指派与优化结果 DTO ──

// SlotResolution 占位槽的一次解析结果
type SlotResolution struct {
	ProjectID   string          `json:"project_id"`
	ProjectName string          `json:"project_name"`
	Phase       model.PhaseName `json:"phase"`
	StaffTypeID string          `json:"staff_type_id"` // 选中的人员类型 id
	StaffName   string          `json:"staff_name"`
	WeeklyHours float64         `json:"weekly_hours"`
	Score       float64         `json:"score"`
}

// AssignResult 占位解析结果：已解析槽位 + 无法填补的告警
type AssignResult struct {
	Resolved []SlotResolution `json:"resolved"`
	Warnings []string         `json:"warnings"`
}

// OffsetChange 优化器对单个项目起始周的调整
type OffsetChange struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	FromOffset  int    `json:"from_offset"`
	ToOffset    int    `json:"to_offset"`
}

// OptimizeResult 时序优化结果
type OptimizeResult struct {
	Changes     []OffsetChange `json:"changes"`
	InitialCost float64        `json:"initial_cost"`
	FinalCost   float64        `json:"final_cost"`
	Iterations  int            `json:"iterations"`
}

// PlanResult 一次 optimize 动作的聚合输出：先指派、后优化、再生成
type PlanResult struct {
	Assign   *AssignResult   `json:"assign"`
	Optimize *OptimizeResult `json:"optimize"`
	Schedule *ScheduleData   `json:"schedule"`
}

