package model

// SkillLevel 技能等级
type SkillLevel string

const (
	SkillNone         SkillLevel = "none"
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Score 技能等级在指派打分中的加分值
func (l SkillLevel) Score() float64 {
	switch l {
	case SkillBeginner:
		return 10
	case SkillIntermediate:
		return 20
	case SkillAdvanced:
		return 30
	default:
		return 0
	}
}

// StaffType 人员类型（具体人员或角色档位）
type StaffType struct {
	ID              string                `json:"id"                 yaml:"id"`
	Name            string                `json:"name"               yaml:"name"`
	Role            string                `json:"role"               yaml:"role"`
	MaxHoursPerWeek float64               `json:"max_hours_per_week" yaml:"max_hours_per_week"`
	Team            string                `json:"team"               yaml:"team"`
	Skills          map[string]SkillLevel `json:"skills,omitempty"   yaml:"skills,omitempty"`
}

// SkillAt 查询某技能的等级，未登记视为 none
func (s *StaffType) SkillAt(skill string) SkillLevel {
	if lvl, ok := s.Skills[skill]; ok {
		return lvl
	}
	return SkillNone
}

// Clone 深拷贝人员类型
func (s StaffType) Clone() StaffType {
	out := s
	if s.Skills != nil {
		out.Skills = make(map[string]SkillLevel, len(s.Skills))
		for k, v := range s.Skills {
			out.Skills[k] = v
		}
	}
	return out
}
