package model

import "github.com/google/uuid"

// CellKey 工时覆盖的结构化复合键（替代 "staffTypeId-splitIndex" 拼接字符串）。
// Split 为 1 起始的分行序号。
type CellKey struct {
	StaffTypeID string `json:"staff_type_id" yaml:"staff_type_id"`
	Split       int    `json:"split"         yaml:"split"`
}

// Overrides 项目的手工覆盖集合。
// 日期键统一为 ISO 格式 "2006-01-02"（周一日期）；缺失的键表示"使用计算值"。
type Overrides struct {
	// Phase 按周强制指定生效阶段，优先于自然阶段推进
	Phase map[string]PhaseName `json:"phase,omitempty" yaml:"phase,omitempty"`
	// Hours 按 (人员类型, 分行, 周) 强制指定工时，优先于计算值
	Hours map[CellKey]map[string]float64 `json:"hours,omitempty" yaml:"hours,omitempty"`
}

// Clone 深拷贝覆盖集合
func (o Overrides) Clone() Overrides {
	out := Overrides{}
	if o.Phase != nil {
		out.Phase = make(map[string]PhaseName, len(o.Phase))
		for k, v := range o.Phase {
			out.Phase[k] = v
		}
	}
	if o.Hours != nil {
		out.Hours = make(map[CellKey]map[string]float64, len(o.Hours))
		for k, byDate := range o.Hours {
			m := make(map[string]float64, len(byDate))
			for d, h := range byDate {
				m[d] = h
			}
			out.Hours[k] = m
		}
	}
	return out
}

// Project 项目 — 携带创建时冻结的阶段配置快照。
// 快照按值复制，之后对 GlobalConfig.Phases 的管理性编辑不会追溯影响既有项目。
type Project struct {
	ID              string        `json:"id"                yaml:"id"`
	Name            string        `json:"name"              yaml:"name"`
	BudgetHours     float64       `json:"budget_hours"      yaml:"budget_hours"`
	StartWeekOffset int           `json:"start_week_offset" yaml:"start_week_offset"` // 0 起始的年度周序
	Locked          bool          `json:"locked"            yaml:"locked"`            // 锁定后不参与时序优化
	Team            string        `json:"team"              yaml:"team"`
	RequiredSkills  []string      `json:"required_skills,omitempty" yaml:"required_skills,omitempty"`
	Phases          []PhaseConfig `json:"phases"            yaml:"phases"`
	Overrides       Overrides     `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// NewProject 创建项目并冻结当前全局配置的阶段快照
func NewProject(name string, budgetHours float64, startWeekOffset int, team string, cfg *GlobalConfig) *Project {
	return &Project{
		ID:              uuid.NewString(),
		Name:            name,
		BudgetHours:     budgetHours,
		StartWeekOffset: startWeekOffset,
		Team:            team,
		Phases:          ClonePhases(cfg.Phases),
	}
}

// TotalDuration 项目总时长 = 各阶段 MaxWeeks 之和（时长不随预算动态伸缩）
func (p *Project) TotalDuration() int {
	total := 0
	for _, ph := range p.Phases {
		total += ph.MaxWeeks
	}
	return total
}

// Clone 深拷贝项目（优化器试探性移动时使用）
func (p *Project) Clone() *Project {
	out := *p
	out.Phases = ClonePhases(p.Phases)
	out.RequiredSkills = append([]string(nil), p.RequiredSkills...)
	out.Overrides = p.Overrides.Clone()
	return &out
}

// CloneProjects 深拷贝项目列表
func CloneProjects(projects []*Project) []*Project {
	out := make([]*Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}

// [自证通过] internal/model/project.go
