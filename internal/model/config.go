package model

// PhaseName 阶段名称枚举（项目各阶段按此顺序依次排布）
type PhaseName string

const (
	PhasePlanning  PhaseName = "planning"  // 规划
	PhaseFieldwork PhaseName = "fieldwork" // 现场执行
	PhaseReview    PhaseName = "review"    // 复核
	PhaseReporting PhaseName = "reporting" // 报告
	PhaseWrapup    PhaseName = "wrapup"    // 收尾
)

// WeeksPerYear 年度时间线的最大周数（第 53 周之后的周直接丢弃）
const WeeksPerYear = 53

// GlobalConfig 全局配置 — 每次计算视为不可变值，修改时整体替换
type GlobalConfig struct {
	Year       int           `json:"year"        yaml:"year"`
	Phases     []PhaseConfig `json:"phases"      yaml:"phases"`
	StaffTypes []StaffType   `json:"staff_types" yaml:"staff_types"`
	Skills     []string      `json:"skills"      yaml:"skills"`
}

// PhaseConfig 阶段配置
//
// 约定：
//   - 同一项目所有阶段的 PercentBudget 之和应为 100（引擎不校验，
//     违反时静默产出偏斜的工时）
//   - 实际排期时长始终取 MaxWeeks，MinWeeks 仅作录入参考
type PhaseConfig struct {
	Name            PhaseName         `json:"name"             yaml:"name"`
	PercentBudget   float64           `json:"percent_budget"   yaml:"percent_budget"` // 0-100
	MinWeeks        int               `json:"min_weeks"        yaml:"min_weeks"`
	MaxWeeks        int               `json:"max_weeks"        yaml:"max_weeks"`
	StaffAllocation []StaffAllocation `json:"staff_allocation" yaml:"staff_allocation"`
}

// StaffAllocation 阶段内某一人员类型的工时占比（同一阶段内合计应为 100）
type StaffAllocation struct {
	Assignee   Assignee `json:"assignee"   yaml:"assignee"`
	Percentage float64  `json:"percentage" yaml:"percentage"` // 0-100
}

// Assignee 人员槽位的标签化变体：未指派（占位）| 已指派到具体人员类型。
// 用显式标记替代魔法字符串哨兵 id，使未指派状态可被穷举匹配。
type Assignee struct {
	Assigned    bool   `json:"assigned"                yaml:"assigned"`
	StaffTypeID string `json:"staff_type_id,omitempty" yaml:"staff_type_id,omitempty"`
}

// Placeholder 构造未指派占位槽
func Placeholder() Assignee { return Assignee{} }

// Staff 构造指派到具体人员类型的槽
func Staff(id string) Assignee { return Assignee{Assigned: true, StaffTypeID: id} }

// IsPlaceholder 是否为未指派占位槽
func (a Assignee) IsPlaceholder() bool { return !a.Assigned }

// Clone 深拷贝全局配置（项目创建快照与不可变值语义共用）
func (c *GlobalConfig) Clone() *GlobalConfig {
	if c == nil {
		return nil
	}
	out := &GlobalConfig{Year: c.Year}
	out.Phases = ClonePhases(c.Phases)
	out.StaffTypes = make([]StaffType, len(c.StaffTypes))
	for i, st := range c.StaffTypes {
		out.StaffTypes[i] = st.Clone()
	}
	out.Skills = append([]string(nil), c.Skills...)
	return out
}

// ClonePhases 深拷贝阶段配置列表
func ClonePhases(phases []PhaseConfig) []PhaseConfig {
	out := make([]PhaseConfig, len(phases))
	for i, p := range phases {
		out[i] = p
		out[i].StaffAllocation = append([]StaffAllocation(nil), p.StaffAllocation...)
	}
	return out
}

// StaffTypeByID 按 id 查找人员类型，找不到返回 nil
func (c *GlobalConfig) StaffTypeByID(id string) *StaffType {
	for i := range c.StaffTypes {
		if c.StaffTypes[i].ID == id {
			return &c.StaffTypes[i]
		}
	}
	return nil
}

